package console

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/draughtworks/brewdeck/internal/client"
	"github.com/draughtworks/brewdeck/internal/confirm"
	"github.com/draughtworks/brewdeck/internal/notify"
	"github.com/draughtworks/brewdeck/internal/querystate"
	"github.com/draughtworks/brewdeck/internal/table"
	"github.com/draughtworks/brewdeck/internal/viewmodel"
	"github.com/draughtworks/brewdeck/pkg/models"
)

type customerScreen struct {
	ctx context.Context
	vm  *viewmodel.CustomerList
	tbl *table.Model[models.Customer]

	dialog        *confirm.Dialog
	pendingDelete int64

	filter    textinput.Model
	filtering bool

	// Entry form, shared by create and edit. editBase carries the request
	// fields the form does not show so an edit round-trips them unchanged;
	// the captured version feeds the pre-submit conflict check.
	form        *form
	formEditing bool
	editID      int64
	editVersion int
	editBase    models.CustomerRequest
}

func newCustomerScreen(ctx context.Context, c *client.Client, center *notify.Center, pageSize int) *customerScreen {
	qs := querystate.NewStore()
	if pageSize > 0 && pageSize != viewmodel.DefaultPageSize {
		qs.Write(querystate.Patch{"size": strconv.Itoa(pageSize)}, querystate.Replace)
	}

	s := &customerScreen{
		ctx: ctx,
		vm:  viewmodel.NewCustomerList(c.Customers(), qs, center),
	}
	s.tbl = table.New(table.Options[models.Customer]{
		Columns: []table.ColumnDef[models.Customer]{
			{Key: "id", Header: "ID", Cell: func(c models.Customer) string { return strconv.FormatInt(c.ID, 10) }, Sortable: true, Width: 4},
			{Key: "name", Header: "Name", Cell: func(c models.Customer) string { return c.Name }, Sortable: true, Width: 24},
			{Key: "email", Header: "Email", Cell: func(c models.Customer) string { return c.Email }, Sortable: true, Width: 24},
			{Key: "city", Header: "City", Cell: func(c models.Customer) string { return c.City }, Sortable: true, Width: 14},
		},
		Selectable:   true,
		EmptyMessage: "No customers match.",
	})
	s.dialog = confirm.NewUncontrolled("Delete customer", "Delete the selected customer? This cannot be undone.")

	s.filter = textinput.New()
	s.filter.Placeholder = "filter by name"
	s.filter.CharLimit = 64
	return s
}

func customerForm(title string, req models.CustomerRequest) *form {
	return newForm(title,
		formField{label: "Name", placeholder: "Acme Taproom", value: req.Name},
		formField{label: "Email", placeholder: "orders@example.com", value: req.Email},
		formField{label: "Phone", value: req.Phone},
		formField{label: "Address", placeholder: "1 Brewery Way", value: req.AddressLine1},
		formField{label: "City", value: req.City},
	)
}

// customerRequestFromValues overlays the form's five fields on base, keeping
// base's unshown fields intact for edits.
func customerRequestFromValues(base models.CustomerRequest, name, email, phone, address, city string) (models.CustomerRequest, error) {
	req := base
	req.Name = name
	req.Email = email
	req.Phone = phone
	req.AddressLine1 = address
	req.City = city
	if msg := firstViolation(req.Validate()); msg != "" {
		return req, errors.New(msg)
	}
	return req, nil
}

func (s *customerScreen) init() tea.Cmd {
	return runVM(func() { s.vm.Start(s.ctx) })
}

func (s *customerScreen) close() {
	s.vm.Close()
}

func (s *customerScreen) captures() bool {
	return s.filtering || s.form != nil || s.dialog.IsOpen()
}

func (s *customerScreen) update(msg tea.KeyMsg, keys keyMap) tea.Cmd {
	if s.dialog.IsOpen() {
		switch msg.String() {
		case "y", "enter":
			s.dialog.Confirm()
			id := s.pendingDelete
			return runVM(func() { s.vm.Delete(s.ctx, id) }) //nolint:errcheck // surfaced via notifications
		case "n", "esc":
			s.dialog.Cancel()
		}
		return nil
	}

	if s.filtering {
		switch msg.String() {
		case "enter":
			s.filtering = false
			s.filter.Blur()
			name := s.filter.Value()
			return runVM(func() { s.vm.SetFilter(name) })
		case "esc":
			s.filtering = false
			s.filter.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		return cmd
	}

	if s.form != nil {
		switch msg.String() {
		case "enter":
			req, err := customerRequestFromValues(s.editBase,
				s.form.value(0), s.form.value(1), s.form.value(2),
				s.form.value(3), s.form.value(4),
			)
			if err != nil {
				s.form.setError(err.Error())
				return nil
			}
			s.form.blur()
			s.form = nil
			if s.formEditing {
				id, version := s.editID, s.editVersion
				return runVM(func() { s.vm.SubmitEdit(s.ctx, id, version, req) }) //nolint:errcheck // surfaced via notifications
			}
			return runVM(func() { s.vm.Create(s.ctx, req) }) //nolint:errcheck // surfaced via notifications
		case "esc":
			s.form.blur()
			s.form = nil
			return nil
		}
		return s.form.update(msg)
	}

	switch {
	case key.Matches(msg, keys.Up):
		s.tbl.MoveCursor(-1)
	case key.Matches(msg, keys.Down):
		s.tbl.MoveCursor(1)
	case key.Matches(msg, keys.PrevPage):
		if s.tbl.CanPrev() {
			page := s.vm.Pagination().Page - 1
			return runVM(func() { s.vm.SetPage(page) })
		}
	case key.Matches(msg, keys.NextPage):
		if s.tbl.CanNext() {
			page := s.vm.Pagination().Page + 1
			return runVM(func() { s.vm.SetPage(page) })
		}
	case key.Matches(msg, keys.Select):
		s.tbl.ToggleCursorRow()
	case key.Matches(msg, keys.SelectAll):
		s.tbl.ToggleAll()
	case key.Matches(msg, keys.Filter):
		s.filtering = true
		return s.filter.Focus()
	case key.Matches(msg, keys.Delete):
		if row, ok := s.tbl.CursorRow(); ok {
			s.pendingDelete = row.ID
			s.dialog.Open()
		}
	case key.Matches(msg, keys.Refresh):
		return runVM(func() { s.vm.Refresh(s.ctx) })
	case key.Matches(msg, keys.New):
		s.formEditing = false
		s.editBase = models.CustomerRequest{}
		s.form = customerForm("New customer", s.editBase)
		return s.form.open()
	case key.Matches(msg, keys.Edit):
		if row, ok := s.tbl.CursorRow(); ok {
			s.formEditing = true
			s.editID = row.ID
			s.editVersion = row.Version
			s.editBase = models.CustomerRequest{
				Name:         row.Name,
				Email:        row.Email,
				Phone:        row.Phone,
				AddressLine1: row.AddressLine1,
				AddressLine2: row.AddressLine2,
				City:         row.City,
				State:        row.State,
				PostalCode:   row.PostalCode,
			}
			s.form = customerForm("Edit customer", s.editBase)
			return s.form.open()
		}
	default:
		if col, ok := sortColumnForKey(msg.String(), s.tbl); ok {
			s.tbl.ToggleSort(col)
			sort := viewmodel.Sort{Key: s.tbl.SortKey(), Dir: string(s.tbl.SortDir())}
			return runVM(func() { s.vm.SetSort(sort) })
		}
	}
	return nil
}

func (s *customerScreen) sync() {
	p := s.vm.Pagination()
	s.tbl.SetLoading(s.vm.Loading())
	s.tbl.SetRows(s.vm.Rows(), p.TotalElements)
	s.tbl.SetPage(p.Page)
	s.tbl.SetPageSize(p.Size)
	srt := s.vm.Sort()
	s.tbl.SetSort(srt.Key, table.SortDir(srt.Dir))
}

func (s *customerScreen) view() string {
	parts := []string{}
	if s.filtering || s.filter.Value() != "" {
		parts = append(parts, s.filter.View())
	}
	if s.form != nil {
		parts = append(parts, s.form.view())
	}
	parts = append(parts, s.tbl.View())
	if err := s.vm.Err(); err != nil {
		parts = append(parts, errStyle.Render(err.Error()))
	}
	if s.dialog.IsOpen() {
		parts = append(parts, s.dialog.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
