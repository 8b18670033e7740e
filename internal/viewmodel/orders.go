package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/draughtworks/brewdeck/internal/client"
	"github.com/draughtworks/brewdeck/internal/fetch"
	"github.com/draughtworks/brewdeck/internal/notify"
	"github.com/draughtworks/brewdeck/internal/querystate"
	"github.com/draughtworks/brewdeck/pkg/models"
)

const keyOrderStatus = "status"

// defaultOrderSort shows the newest orders first when no sort is chosen.
var defaultOrderSort = Sort{Key: "createdDate", Dir: "desc"}

// OrderAPI is the slice of the order service the view-model needs. Satisfied
// by *client.OrderService.
type OrderAPI interface {
	List(ctx context.Context, status string) ([]models.BeerOrder, error)
	Get(ctx context.Context, id int64) (*models.BeerOrder, error)
	Create(ctx context.Context, cmd models.CreateOrderCommand) (*models.BeerOrder, error)
	Update(ctx context.Context, id int64, version int, cmd models.CreateOrderCommand) (*models.BeerOrder, error)
	UpdateStatus(ctx context.Context, id int64, version int, status string) (*models.BeerOrder, error)
	Delete(ctx context.Context, id int64) error
}

// Compile-time interface guard.
var _ OrderAPI = (*client.OrderService)(nil)

var orderSortFields = map[string]sortField[models.BeerOrder]{
	"id":            {num: func(o models.BeerOrder) float64 { return float64(o.ID) }},
	"customerRef":   {str: func(o models.BeerOrder) string { return o.CustomerRef }},
	"status":        {str: func(o models.BeerOrder) string { return o.Status }},
	"paymentAmount": {num: func(o models.BeerOrder) float64 { return o.PaymentAmount }},
	"createdDate": {num: func(o models.BeerOrder) float64 {
		return float64(o.CreatedDate.UnixNano())
	}},
}

// OrderList drives the order screen. Like customers, the endpoint returns
// the whole collection and only the status filter refetches; ordering and
// paging happen locally with a newest-first default.
type OrderList struct {
	api      OrderAPI
	qs       *querystate.Store
	notifier notify.Notifier
	runner   *fetch.Runner[[]models.BeerOrder]
	unsub    func()
}

// NewOrderList wires the view-model. Nothing is fetched until Start.
func NewOrderList(api OrderAPI, qs *querystate.Store, notifier notify.Notifier) *OrderList {
	vm := &OrderList{api: api, qs: qs, notifier: notifier}
	vm.runner = fetch.NewRunner(vm.load, fetch.Options[[]models.BeerOrder]{
		AutoRun:      true,
		Dependencies: vm.deps(qs.Read()),
	})
	return vm
}

// Start performs the initial fetch and begins reacting to filter changes.
func (vm *OrderList) Start(ctx context.Context) {
	vm.unsub = vm.qs.Subscribe(func(st querystate.State) {
		vm.runner.UpdateDependencies(ctx, vm.deps(st)...)
	})
	vm.runner.Start(ctx)
}

// Close detaches the view-model.
func (vm *OrderList) Close() {
	if vm.unsub != nil {
		vm.unsub()
	}
	vm.runner.Detach()
}

func (vm *OrderList) deps(st querystate.State) []any {
	return []any{st.Get(keyOrderStatus, "")}
}

func (vm *OrderList) load(ctx context.Context) ([]models.BeerOrder, error) {
	orders, err := vm.api.List(ctx, vm.qs.Read().Get(keyOrderStatus, ""))
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.BeerOrder{}
	}
	return orders, nil
}

// Page returns the visible page as a canonical envelope.
func (vm *OrderList) Page() *models.Page[models.BeerOrder] {
	snap := vm.runner.State()
	st := vm.qs.Read()
	page, size := readPage(st), readSize(st)

	all := make([]models.BeerOrder, len(snap.Data))
	copy(all, snap.Data)
	clientSort(all, orderSortFields, vm.Sort())
	return normalizeSlice(all, page, size)
}

// Rows returns the visible page of orders. Never nil.
func (vm *OrderList) Rows() []models.BeerOrder {
	return vm.Page().Content
}

// Pagination describes the current page position.
func (vm *OrderList) Pagination() Pagination {
	p := vm.Page()
	return Pagination{
		Page:          p.Number + 1,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

// Loading reports whether a fetch is in flight.
func (vm *OrderList) Loading() bool {
	return vm.runner.State().Status == fetch.StatusPending
}

// Err returns the last fetch error.
func (vm *OrderList) Err() error {
	return vm.runner.State().Err
}

// StatusFilter returns the active status filter.
func (vm *OrderList) StatusFilter() string {
	return vm.qs.Read().Get(keyOrderStatus, "")
}

// Sort returns the active sort, defaulting to newest first.
func (vm *OrderList) Sort() Sort {
	return ParseSort(vm.qs.Read().Get(keySort, ""), defaultOrderSort)
}

// SetStatusFilter applies the status filter and returns to page 1, even when
// the value is unchanged.
func (vm *OrderList) SetStatusFilter(status string) {
	vm.qs.Write(querystate.Patch{
		keyOrderStatus: status,
		keyPage:        "1",
	}, querystate.Push)
}

// SetPage navigates to a 1-based page.
func (vm *OrderList) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	vm.qs.Write(querystate.Patch{keyPage: strconv.Itoa(page)}, querystate.Push)
}

// ToggleSort activates ascending sort on key, or flips the direction when
// key is already active.
func (vm *OrderList) ToggleSort(key string) {
	cur := vm.Sort()
	next := Sort{Key: key, Dir: "asc"}
	if cur.Key == key && cur.Dir == "asc" {
		next.Dir = "desc"
	}
	vm.qs.Write(querystate.Patch{keySort: next.Token()}, querystate.Push)
}

// SetSort applies an explicit sort.
func (vm *OrderList) SetSort(s Sort) {
	vm.qs.Write(querystate.Patch{keySort: s.Token()}, querystate.Push)
}

// Refresh refetches the collection.
func (vm *OrderList) Refresh(ctx context.Context) {
	vm.runner.Run(ctx) //nolint:errcheck // surfaced through Err
}

// Create places an order and refetches the collection. Failures raise one
// categorized notification; success raises one confirmation.
func (vm *OrderList) Create(ctx context.Context, cmd models.CreateOrderCommand) (*models.BeerOrder, error) {
	created, err := vm.api.Create(ctx, cmd)
	if err != nil {
		notifyCreateFailure(vm.notifier, "order", err)
		return nil, err
	}
	vm.notifier.Notify(notify.Notification{
		Title:       "Order created",
		Description: fmt.Sprintf("Order %d was placed.", created.ID),
	})
	vm.Refresh(ctx)
	return created, nil
}

// SubmitEdit replaces an order's payment, reference, and lines, guarded by
// the version the form was loaded with. The server copy is re-read first:
// when it moved on, the fresh record is returned with ErrStaleEdit so the
// form can refresh instead of clobbering someone else's change.
func (vm *OrderList) SubmitEdit(ctx context.Context, id int64, loadedVersion int, cmd models.CreateOrderCommand) (*models.BeerOrder, error) {
	fresh, err := vm.api.Get(ctx, id)
	if err != nil {
		vm.notifier.Notify(notify.Notification{
			Title:       "Save failed",
			Description: "The order could not be loaded for saving.",
			Err:         err,
		})
		return nil, err
	}
	if fresh.Version != loadedVersion {
		vm.notifier.Notify(notify.Notification{
			Title:       "Conflict",
			Description: "The order was changed by someone else. The form has been refreshed.",
		})
		return fresh, ErrStaleEdit
	}

	updated, err := vm.api.Update(ctx, id, loadedVersion, cmd)
	if err != nil {
		vm.notifier.Notify(notify.Notification{
			Title:       "Save failed",
			Description: "The order could not be saved.",
			Err:         err,
		})
		return nil, err
	}
	vm.Refresh(ctx)
	return updated, nil
}

// UpdateStatus transitions an order and patches the row in place from the
// server's response. Version conflicts refetch and notify.
func (vm *OrderList) UpdateStatus(ctx context.Context, id int64, version int, status string) error {
	updated, err := vm.api.UpdateStatus(ctx, id, version, status)
	if err != nil {
		vm.runner.Run(ctx) //nolint:errcheck // resync with server state
		notifyStatusFailure(vm.notifier, err)
		return err
	}

	vm.runner.UpdateData(func(all []models.BeerOrder) []models.BeerOrder {
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

func notifyStatusFailure(n notify.Notifier, err error) {
	title := "Status change failed"
	desc := "The order status could not be changed."

	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		title = "Conflict"
		desc = "The order was changed by someone else. The list has been refreshed."
	}
	n.Notify(notify.Notification{Title: title, Description: desc, Err: err})
}

// Delete removes the order optimistically, refetching on failure and raising
// one categorized notification.
func (vm *OrderList) Delete(ctx context.Context, id int64) error {
	vm.runner.UpdateData(func(all []models.BeerOrder) []models.BeerOrder {
		kept := make([]models.BeerOrder, 0, len(all))
		for _, o := range all {
			if o.ID != id {
				kept = append(kept, o)
			}
		}
		return kept
	})

	if err := vm.api.Delete(ctx, id); err != nil {
		vm.runner.Run(ctx) //nolint:errcheck // rollback by refetch
		notifyDeleteFailure(vm.notifier, "order", err)
		return err
	}
	return nil
}
