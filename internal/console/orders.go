package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
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

// shipmentsOpenedMsg asks the app to switch to a freshly built shipment
// screen for one order.
type shipmentsOpenedMsg struct {
	screen *shipmentScreen
}

// orderStatusCycle is the order the "t" key walks through.
var orderStatusCycle = []string{
	string(models.OrderStatusPending),
	string(models.OrderStatusPaid),
	string(models.OrderStatusCancelled),
}

type orderScreen struct {
	ctx    context.Context
	client *client.Client
	center *notify.Center
	vm     *viewmodel.OrderList
	tbl    *table.Model[models.BeerOrder]

	dialog        *confirm.Dialog
	pendingDelete int64

	// Entry form, shared by create and edit. Edits keep the order's existing
	// lines; the captured version feeds the pre-submit conflict check.
	form        *form
	formEditing bool
	editID      int64
	editVersion int
	editLines   []models.CreateOrderItem

	pageSize int
}

func newOrderScreen(ctx context.Context, c *client.Client, center *notify.Center, pageSize int) *orderScreen {
	qs := querystate.NewStore()
	if pageSize > 0 && pageSize != viewmodel.DefaultPageSize {
		qs.Write(querystate.Patch{"size": strconv.Itoa(pageSize)}, querystate.Replace)
	}

	s := &orderScreen{
		ctx:      ctx,
		client:   c,
		center:   center,
		vm:       viewmodel.NewOrderList(c.Orders(), qs, center),
		pageSize: pageSize,
	}
	s.tbl = table.New(table.Options[models.BeerOrder]{
		Columns: []table.ColumnDef[models.BeerOrder]{
			{Key: "id", Header: "ID", Cell: func(o models.BeerOrder) string { return strconv.FormatInt(o.ID, 10) }, Sortable: true, Width: 4},
			{Key: "customerRef", Header: "Reference", Cell: func(o models.BeerOrder) string { return o.CustomerRef }, Sortable: true, Width: 16},
			{Key: "status", Header: "Status", Cell: func(o models.BeerOrder) string { return o.Status }, Sortable: true, Width: 10},
			{Key: "paymentAmount", Header: "Amount", Cell: func(o models.BeerOrder) string { return fmt.Sprintf("%.2f", o.PaymentAmount) }, Sortable: true, Width: 10},
			{Key: "createdDate", Header: "Created", Cell: func(o models.BeerOrder) string { return o.CreatedDate.Format("2006-01-02 15:04") }, Sortable: true, Width: 16},
		},
		Selectable:   true,
		EmptyMessage: "No orders match.",
	})
	s.dialog = confirm.NewUncontrolled("Delete order", "Delete the selected order and its lines? This cannot be undone.")
	return s
}

// orderCommandFromValues parses a new order with one line. More lines can be
// added after the fact through the edit flow.
func orderCommandFromValues(ref, amount, beerID, quantity string) (models.CreateOrderCommand, error) {
	var cmd models.CreateOrderCommand
	amt, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return cmd, errors.New("amount must be a number")
	}
	id, err := strconv.ParseInt(beerID, 10, 64)
	if err != nil {
		return cmd, errors.New("beer id must be a whole number")
	}
	qty, err := strconv.Atoi(quantity)
	if err != nil {
		return cmd, errors.New("quantity must be a whole number")
	}

	cmd = models.CreateOrderCommand{
		CustomerRef:   ref,
		PaymentAmount: amt,
		Items:         []models.CreateOrderItem{{BeerID: id, Quantity: qty}},
	}
	if msg := firstViolation(cmd.Validate()); msg != "" {
		return cmd, errors.New(msg)
	}
	return cmd, nil
}

// orderEditCommand parses an edited reference and amount over the order's
// existing lines.
func orderEditCommand(lines []models.CreateOrderItem, ref, amount string) (models.CreateOrderCommand, error) {
	var cmd models.CreateOrderCommand
	amt, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return cmd, errors.New("amount must be a number")
	}

	cmd = models.CreateOrderCommand{CustomerRef: ref, PaymentAmount: amt, Items: lines}
	if msg := firstViolation(cmd.Validate()); msg != "" {
		return cmd, errors.New(msg)
	}
	return cmd, nil
}

// orderItems flattens an order's lines back into the command shape Update
// expects.
func orderItems(o models.BeerOrder) []models.CreateOrderItem {
	items := make([]models.CreateOrderItem, 0, len(o.Lines))
	for _, ln := range o.Lines {
		items = append(items, models.CreateOrderItem{BeerID: ln.BeerID, Quantity: ln.OrderQuantity})
	}
	return items
}

func (s *orderScreen) init() tea.Cmd {
	return runVM(func() { s.vm.Start(s.ctx) })
}

func (s *orderScreen) close() {
	s.vm.Close()
}

func (s *orderScreen) captures() bool {
	return s.form != nil || s.dialog.IsOpen()
}

func (s *orderScreen) update(msg tea.KeyMsg, keys keyMap) tea.Cmd {
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

	if s.form != nil {
		switch msg.String() {
		case "enter":
			var cmd models.CreateOrderCommand
			var err error
			if s.formEditing {
				cmd, err = orderEditCommand(s.editLines, s.form.value(0), s.form.value(1))
			} else {
				cmd, err = orderCommandFromValues(s.form.value(0), s.form.value(1), s.form.value(2), s.form.value(3))
			}
			if err != nil {
				s.form.setError(err.Error())
				return nil
			}
			s.form.blur()
			s.form = nil
			if s.formEditing {
				id, version := s.editID, s.editVersion
				return runVM(func() { s.vm.SubmitEdit(s.ctx, id, version, cmd) }) //nolint:errcheck // surfaced via notifications
			}
			return runVM(func() { s.vm.Create(s.ctx, cmd) }) //nolint:errcheck // surfaced via notifications
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
		// Cycle the status filter: all -> PENDING -> PAID -> CANCELLED -> all.
		next := nextStatusFilter(s.vm.StatusFilter())
		return runVM(func() { s.vm.SetStatusFilter(next) })
	case key.Matches(msg, keys.Delete):
		if row, ok := s.tbl.CursorRow(); ok {
			s.pendingDelete = row.ID
			s.dialog.Open()
		}
	case key.Matches(msg, keys.Refresh):
		return runVM(func() { s.vm.Refresh(s.ctx) })
	case key.Matches(msg, keys.Open):
		if row, ok := s.tbl.CursorRow(); ok {
			screen := newShipmentScreen(s.ctx, s.client, s.center, row, s.pageSize)
			return func() tea.Msg { return shipmentsOpenedMsg{screen: screen} }
		}
	case msg.String() == "t":
		if row, ok := s.tbl.CursorRow(); ok {
			next := nextOrderStatus(row.Status)
			id, version := row.ID, row.Version
			return runVM(func() { s.vm.UpdateStatus(s.ctx, id, version, next) }) //nolint:errcheck // surfaced via notifications
		}
	case key.Matches(msg, keys.New):
		s.formEditing = false
		s.form = newForm("New order",
			formField{label: "Customer ref", placeholder: "acme-001"},
			formField{label: "Amount", placeholder: "0.00"},
			formField{label: "Beer ID", placeholder: "1"},
			formField{label: "Quantity", placeholder: "1"},
		)
		return s.form.open()
	case key.Matches(msg, keys.Edit):
		if row, ok := s.tbl.CursorRow(); ok {
			s.formEditing = true
			s.editID = row.ID
			s.editVersion = row.Version
			s.editLines = orderItems(row)
			s.form = newForm("Edit order",
				formField{label: "Customer ref", value: row.CustomerRef},
				formField{label: "Amount", value: strconv.FormatFloat(row.PaymentAmount, 'f', 2, 64)},
			)
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

func nextStatusFilter(current string) string {
	for i, st := range orderStatusCycle {
		if st == current {
			if i == len(orderStatusCycle)-1 {
				return ""
			}
			return orderStatusCycle[i+1]
		}
	}
	return orderStatusCycle[0]
}

func nextOrderStatus(current string) string {
	for i, st := range orderStatusCycle {
		if st == current {
			return orderStatusCycle[(i+1)%len(orderStatusCycle)]
		}
	}
	return orderStatusCycle[0]
}

func (s *orderScreen) sync() {
	p := s.vm.Pagination()
	s.tbl.SetLoading(s.vm.Loading())
	s.tbl.SetRows(s.vm.Rows(), p.TotalElements)
	s.tbl.SetPage(p.Page)
	s.tbl.SetPageSize(p.Size)
	srt := s.vm.Sort()
	s.tbl.SetSort(srt.Key, table.SortDir(srt.Dir))
}

func (s *orderScreen) view() string {
	parts := []string{}
	if f := s.vm.StatusFilter(); f != "" {
		parts = append(parts, notifBody.Render("status: "+f))
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
