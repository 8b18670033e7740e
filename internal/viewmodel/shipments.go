package viewmodel

import (
	"context"
	"strconv"

	"github.com/draughtworks/brewdeck/internal/client"
	"github.com/draughtworks/brewdeck/internal/fetch"
	"github.com/draughtworks/brewdeck/internal/notify"
	"github.com/draughtworks/brewdeck/internal/querystate"
	"github.com/draughtworks/brewdeck/pkg/models"
)

// ShipmentAPI is the slice of the shipment service the view-model needs.
// Satisfied by *client.ShipmentService.
type ShipmentAPI interface {
	List(ctx context.Context, orderID int64) ([]models.Shipment, error)
	Create(ctx context.Context, orderID int64, req models.ShipmentCreate) (*models.Shipment, error)
	Update(ctx context.Context, orderID, id int64, version int, req models.ShipmentUpdate) (*models.Shipment, error)
	Delete(ctx context.Context, orderID, id int64) error
}

// Compile-time interface guard.
var _ ShipmentAPI = (*client.ShipmentService)(nil)

var shipmentSortFields = map[string]sortField[models.Shipment]{
	"id":             {num: func(s models.Shipment) float64 { return float64(s.ID) }},
	"shipmentStatus": {str: func(s models.Shipment) string { return s.ShipmentStatus }},
	"carrier":        {str: func(s models.Shipment) string { return s.Carrier }},
	"trackingNumber": {str: func(s models.Shipment) string { return s.TrackingNumber }},
	"createdDate": {num: func(s models.Shipment) float64 {
		return float64(s.CreatedDate.UnixNano())
	}},
}

// ShipmentList drives the shipment panel of an order detail screen. The
// collection is small and unpaged on the wire; ordering and paging happen
// locally.
type ShipmentList struct {
	api      ShipmentAPI
	orderID  int64
	qs       *querystate.Store
	notifier notify.Notifier
	runner   *fetch.Runner[[]models.Shipment]
}

// NewShipmentList wires the view-model for one order's shipments.
func NewShipmentList(api ShipmentAPI, orderID int64, qs *querystate.Store, notifier notify.Notifier) *ShipmentList {
	vm := &ShipmentList{api: api, orderID: orderID, qs: qs, notifier: notifier}
	vm.runner = fetch.NewRunner(vm.load, fetch.Options[[]models.Shipment]{
		AutoRun: true,
	})
	return vm
}

// Start performs the initial fetch.
func (vm *ShipmentList) Start(ctx context.Context) {
	vm.runner.Start(ctx)
}

// Close detaches the view-model.
func (vm *ShipmentList) Close() {
	vm.runner.Detach()
}

func (vm *ShipmentList) load(ctx context.Context) ([]models.Shipment, error) {
	shipments, err := vm.api.List(ctx, vm.orderID)
	if err != nil {
		return nil, err
	}
	if shipments == nil {
		shipments = []models.Shipment{}
	}
	return shipments, nil
}

// Page returns the visible page as a canonical envelope.
func (vm *ShipmentList) Page() *models.Page[models.Shipment] {
	snap := vm.runner.State()
	st := vm.qs.Read()
	page, size := readPage(st), readSize(st)

	all := make([]models.Shipment, len(snap.Data))
	copy(all, snap.Data)
	clientSort(all, shipmentSortFields, vm.Sort())
	return normalizeSlice(all, page, size)
}

// Rows returns the visible page of shipments. Never nil.
func (vm *ShipmentList) Rows() []models.Shipment {
	return vm.Page().Content
}

// Loading reports whether a fetch is in flight.
func (vm *ShipmentList) Loading() bool {
	return vm.runner.State().Status == fetch.StatusPending
}

// Err returns the last fetch error.
func (vm *ShipmentList) Err() error {
	return vm.runner.State().Err
}

// Sort returns the active sort. An empty key leaves fetch order.
func (vm *ShipmentList) Sort() Sort {
	return ParseSort(vm.qs.Read().Get(keySort, ""), Sort{})
}

// SetPage navigates to a 1-based page.
func (vm *ShipmentList) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	vm.qs.Write(querystate.Patch{keyPage: strconv.Itoa(page)}, querystate.Push)
}

// ToggleSort activates ascending sort on key, or flips the direction when
// key is already active.
func (vm *ShipmentList) ToggleSort(key string) {
	cur := vm.Sort()
	next := Sort{Key: key, Dir: "asc"}
	if cur.Key == key && cur.Dir == "asc" {
		next.Dir = "desc"
	}
	vm.qs.Write(querystate.Patch{keySort: next.Token()}, querystate.Push)
}

// SetSort applies an explicit sort.
func (vm *ShipmentList) SetSort(s Sort) {
	vm.qs.Write(querystate.Patch{keySort: s.Token()}, querystate.Push)
}

// Refresh refetches the order's shipments.
func (vm *ShipmentList) Refresh(ctx context.Context) {
	vm.runner.Run(ctx) //nolint:errcheck // surfaced through Err
}

// Create adds a shipment under the order and refetches the list. Failures
// raise one categorized notification; success raises one confirmation.
func (vm *ShipmentList) Create(ctx context.Context, req models.ShipmentCreate) (*models.Shipment, error) {
	created, err := vm.api.Create(ctx, vm.orderID, req)
	if err != nil {
		notifyCreateFailure(vm.notifier, "shipment", err)
		return nil, err
	}
	vm.notifier.Notify(notify.Notification{
		Title:       "Shipment created",
		Description: "A shipment was added to the order.",
	})
	vm.Refresh(ctx)
	return created, nil
}

// UpdateStatus patches just the status of a shipment and replaces the row
// with the server's copy. Failures refetch and raise one notification.
func (vm *ShipmentList) UpdateStatus(ctx context.Context, id int64, version int, status string) error {
	updated, err := vm.api.Update(ctx, vm.orderID, id, version, models.ShipmentUpdate{
		ShipmentStatus: &status,
	})
	if err != nil {
		vm.runner.Run(ctx) //nolint:errcheck // resync with server state
		notifyStatusFailure(vm.notifier, err)
		return err
	}

	vm.runner.UpdateData(func(all []models.Shipment) []models.Shipment {
		for i := range all {
			if all[i].ID == id {
				all[i] = *updated
				break
			}
		}
		return all
	})
	return nil
}

// Delete removes the shipment optimistically, refetching on failure and
// raising one categorized notification.
func (vm *ShipmentList) Delete(ctx context.Context, id int64) error {
	vm.runner.UpdateData(func(all []models.Shipment) []models.Shipment {
		kept := make([]models.Shipment, 0, len(all))
		for _, s := range all {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		return kept
	})

	if err := vm.api.Delete(ctx, vm.orderID, id); err != nil {
		vm.runner.Run(ctx) //nolint:errcheck // rollback by refetch
		notifyDeleteFailure(vm.notifier, "shipment", err)
		return err
	}
	return nil
}
