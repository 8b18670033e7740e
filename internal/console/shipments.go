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

var shipmentStatusCycle = []string{
	string(models.ShipmentPending),
	string(models.ShipmentPacked),
	string(models.ShipmentInTransit),
	string(models.ShipmentOutForDelivery),
	string(models.ShipmentDelivered),
}

// shipmentScreen shows one order's shipments, reached by opening an order.
type shipmentScreen struct {
	ctx   context.Context
	order models.BeerOrder
	vm    *viewmodel.ShipmentList
	tbl   *table.Model[models.Shipment]

	dialog        *confirm.Dialog
	pendingDelete int64

	form *form
}

func newShipmentScreen(ctx context.Context, c *client.Client, center *notify.Center, order models.BeerOrder, pageSize int) *shipmentScreen {
	qs := querystate.NewStore()
	if pageSize > 0 && pageSize != viewmodel.DefaultPageSize {
		qs.Write(querystate.Patch{"size": strconv.Itoa(pageSize)}, querystate.Replace)
	}

	s := &shipmentScreen{
		ctx:   ctx,
		order: order,
		vm:    viewmodel.NewShipmentList(c.Shipments(), order.ID, qs, center),
	}
	s.tbl = table.New(table.Options[models.Shipment]{
		Columns: []table.ColumnDef[models.Shipment]{
			{Key: "id", Header: "ID", Cell: func(sh models.Shipment) string { return strconv.FormatInt(sh.ID, 10) }, Sortable: true, Width: 4},
			{Key: "shipmentStatus", Header: "Status", Cell: func(sh models.Shipment) string { return sh.ShipmentStatus }, Sortable: true, Width: 16},
			{Key: "carrier", Header: "Carrier", Cell: func(sh models.Shipment) string { return sh.Carrier }, Sortable: true, Width: 10},
			{Key: "trackingNumber", Header: "Tracking", Cell: func(sh models.Shipment) string { return sh.TrackingNumber }, Sortable: true, Width: 20},
		},
		EmptyMessage: "No shipments yet.",
	})
	s.dialog = confirm.NewUncontrolled("Delete shipment", "Delete the selected shipment? This cannot be undone.")
	return s
}

func (s *shipmentScreen) title() string {
	return fmt.Sprintf("Order %d shipments", s.order.ID)
}

func (s *shipmentScreen) init() tea.Cmd {
	return runVM(func() { s.vm.Start(s.ctx) })
}

func (s *shipmentScreen) close() {
	s.vm.Close()
}

func (s *shipmentScreen) captures() bool {
	return s.form != nil || s.dialog.IsOpen()
}

func (s *shipmentScreen) update(msg tea.KeyMsg, keys keyMap) tea.Cmd {
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
			req, err := shipmentCreateFromValues(s.form.value(0), s.form.value(1), s.form.value(2))
			if err != nil {
				s.form.setError(err.Error())
				return nil
			}
			s.form.blur()
			s.form = nil
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
			page := s.tbl.Page() - 1
			return runVM(func() { s.vm.SetPage(page) })
		}
	case key.Matches(msg, keys.NextPage):
		if s.tbl.CanNext() {
			page := s.tbl.Page() + 1
			return runVM(func() { s.vm.SetPage(page) })
		}
	case key.Matches(msg, keys.Delete):
		if row, ok := s.tbl.CursorRow(); ok {
			s.pendingDelete = row.ID
			s.dialog.Open()
		}
	case key.Matches(msg, keys.Refresh):
		return runVM(func() { s.vm.Refresh(s.ctx) })
	case msg.String() == "t":
		if row, ok := s.tbl.CursorRow(); ok {
			next := nextShipmentStatus(row.ShipmentStatus)
			id, version := row.ID, row.Version
			return runVM(func() { s.vm.UpdateStatus(s.ctx, id, version, next) }) //nolint:errcheck // surfaced via notifications
		}
	case key.Matches(msg, keys.New):
		s.form = newForm("New shipment",
			formField{label: "Carrier", placeholder: "UPS"},
			formField{label: "Tracking", placeholder: "1Z999"},
			formField{label: "Notes"},
		)
		return s.form.open()
	default:
		if col, ok := sortColumnForKey(msg.String(), s.tbl); ok {
			s.tbl.ToggleSort(col)
			sort := viewmodel.Sort{Key: s.tbl.SortKey(), Dir: string(s.tbl.SortDir())}
			return runVM(func() { s.vm.SetSort(sort) })
		}
	}
	return nil
}

// shipmentCreateFromValues builds a new shipment starting in PENDING; the
// "t" cycle moves it along afterwards.
func shipmentCreateFromValues(carrier, tracking, notes string) (models.ShipmentCreate, error) {
	req := models.ShipmentCreate{
		ShipmentStatus: string(models.ShipmentPending),
		Carrier:        carrier,
		TrackingNumber: tracking,
		Notes:          notes,
	}
	if msg := firstViolation(req.Validate()); msg != "" {
		return req, errors.New(msg)
	}
	return req, nil
}

func nextShipmentStatus(current string) string {
	for i, st := range shipmentStatusCycle {
		if st == current {
			return shipmentStatusCycle[(i+1)%len(shipmentStatusCycle)]
		}
	}
	return shipmentStatusCycle[0]
}

func (s *shipmentScreen) sync() {
	p := s.vm.Page()
	s.tbl.SetLoading(s.vm.Loading())
	s.tbl.SetRows(p.Content, p.TotalElements)
	s.tbl.SetPage(p.Number + 1)
	s.tbl.SetPageSize(p.Size)
	srt := s.vm.Sort()
	s.tbl.SetSort(srt.Key, table.SortDir(srt.Dir))
}

func (s *shipmentScreen) view() string {
	header := notifBody.Render(fmt.Sprintf("Order %d  %s  %.2f", s.order.ID, s.order.Status, s.order.PaymentAmount))
	parts := []string{header}
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
