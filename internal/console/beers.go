package console

import (
	"context"
	"errors"
	"fmt"
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

// beerScreen is the beer catalog: server-side paged, filterable by name,
// sortable by number key.
type beerScreen struct {
	ctx context.Context
	vm  *viewmodel.BeerList
	tbl *table.Model[models.Beer]

	dialog        *confirm.Dialog
	pendingDelete int64

	filter    textinput.Model
	filtering bool

	// Entry form, shared by create and edit. For edits the version captured
	// when the form opened feeds the pre-submit conflict check.
	form        *form
	formEditing bool
	editID      int64
	editVersion int
}

func newBeerScreen(ctx context.Context, c *client.Client, center *notify.Center, pageSize int) *beerScreen {
	qs := querystate.NewStore()
	if pageSize > 0 && pageSize != viewmodel.DefaultPageSize {
		qs.Write(querystate.Patch{"size": strconv.Itoa(pageSize)}, querystate.Replace)
	}

	s := &beerScreen{
		ctx: ctx,
		vm:  viewmodel.NewBeerList(c.Beers(), qs, center),
	}
	s.tbl = table.New(table.Options[models.Beer]{
		Columns: []table.ColumnDef[models.Beer]{
			{Key: "id", Header: "ID", Cell: func(b models.Beer) string { return strconv.FormatInt(b.ID, 10) }, Sortable: true, Width: 4},
			{Key: "beerName", Header: "Name", Cell: func(b models.Beer) string { return b.BeerName }, Sortable: true, Width: 20},
			{Key: "beerStyle", Header: "Style", Cell: func(b models.Beer) string { return b.BeerStyle }, Sortable: true, Width: 10},
			{Key: "upc", Header: "UPC", Cell: func(b models.Beer) string { return b.UPC }, Sortable: true, Width: 14},
			{Key: "quantityOnHand", Header: "On Hand", Cell: func(b models.Beer) string { return strconv.Itoa(b.QuantityOnHand) }, Sortable: true, Width: 7},
			{Key: "price", Header: "Price", Cell: func(b models.Beer) string { return fmt.Sprintf("%.2f", b.Price) }, Sortable: true, Width: 8},
		},
		Selectable:   true,
		EmptyMessage: "No beers match.",
	})
	s.dialog = confirm.NewUncontrolled("Delete beer", "Delete the selected beer? This cannot be undone.")

	s.filter = textinput.New()
	s.filter.Placeholder = "filter by name"
	s.filter.CharLimit = 64
	return s
}

func beerForm(title string, req models.BeerRequest) *form {
	qty, price := "", ""
	if req.BeerName != "" {
		qty = strconv.Itoa(req.QuantityOnHand)
		price = strconv.FormatFloat(req.Price, 'f', 2, 64)
	}
	return newForm(title,
		formField{label: "Name", placeholder: "Mango Bobs", value: req.BeerName},
		formField{label: "Style", placeholder: "IPA", value: req.BeerStyle},
		formField{label: "UPC", placeholder: "0631234200036", value: req.UPC},
		formField{label: "On hand", placeholder: "0", value: qty},
		formField{label: "Price", placeholder: "9.99", value: price},
		formField{label: "Description", value: req.Description},
	)
}

// beerRequestFromValues parses the form's six fields, rejecting malformed
// numbers before the request's own validation runs.
func beerRequestFromValues(name, style, upc, onHand, price, desc string) (models.BeerRequest, error) {
	var req models.BeerRequest
	qty := 0
	if onHand != "" {
		n, err := strconv.Atoi(onHand)
		if err != nil {
			return req, errors.New("on hand must be a whole number")
		}
		qty = n
	}
	p, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return req, errors.New("price must be a number")
	}

	req = models.BeerRequest{
		BeerName:       name,
		BeerStyle:      style,
		UPC:            upc,
		QuantityOnHand: qty,
		Price:          p,
		Description:    desc,
	}
	if msg := firstViolation(req.Validate()); msg != "" {
		return req, errors.New(msg)
	}
	return req, nil
}

func (s *beerScreen) init() tea.Cmd {
	return runVM(func() { s.vm.Start(s.ctx) })
}

func (s *beerScreen) close() {
	s.vm.Close()
}

func (s *beerScreen) captures() bool {
	return s.filtering || s.form != nil || s.dialog.IsOpen()
}

func (s *beerScreen) update(msg tea.KeyMsg, keys keyMap) tea.Cmd {
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
			_, style := s.vm.Filters()
			return runVM(func() { s.vm.SetFilters(name, style) })
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
			req, err := beerRequestFromValues(
				s.form.value(0), s.form.value(1), s.form.value(2),
				s.form.value(3), s.form.value(4), s.form.value(5),
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
		s.form = beerForm("New beer", models.BeerRequest{})
		return s.form.open()
	case key.Matches(msg, keys.Edit):
		if row, ok := s.tbl.CursorRow(); ok {
			s.formEditing = true
			s.editID = row.ID
			s.editVersion = row.Version
			s.form = beerForm("Edit beer", models.BeerRequest{
				BeerName:       row.BeerName,
				BeerStyle:      row.BeerStyle,
				UPC:            row.UPC,
				QuantityOnHand: row.QuantityOnHand,
				Price:          row.Price,
				Description:    row.Description,
			})
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

func (s *beerScreen) sync() {
	p := s.vm.Pagination()
	s.tbl.SetLoading(s.vm.Loading())
	s.tbl.SetRows(s.vm.Rows(), p.TotalElements)
	s.tbl.SetPage(p.Page)
	s.tbl.SetPageSize(p.Size)
	srt := s.vm.Sort()
	s.tbl.SetSort(srt.Key, table.SortDir(srt.Dir))
}

func (s *beerScreen) view() string {
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

// sortColumnForKey maps a digit key to the nth sortable column.
func sortColumnForKey[T any](pressed string, m *table.Model[T]) (string, bool) {
	n, err := strconv.Atoi(pressed)
	if err != nil || n < 1 {
		return "", false
	}
	keys := m.SortableColumns()
	if n > len(keys) {
		return "", false
	}
	return keys[n-1], true
}
