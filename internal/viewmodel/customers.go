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

const keyCustomerName = "name"

// CustomerAPI is the slice of the customer service the view-model needs.
// Satisfied by *client.CustomerService.
type CustomerAPI interface {
	List(ctx context.Context, name string) ([]models.Customer, error)
	Get(ctx context.Context, id int64) (*models.Customer, error)
	Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error)
	Update(ctx context.Context, id int64, version int, req models.CustomerRequest) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// Compile-time interface guard.
var _ CustomerAPI = (*client.CustomerService)(nil)

// customerSortFields maps sort keys to row accessors for client-side
// ordering.
var customerSortFields = map[string]sortField[models.Customer]{
	"id":    {num: func(c models.Customer) float64 { return float64(c.ID) }},
	"name":  {str: func(c models.Customer) string { return c.Name }},
	"email": {str: func(c models.Customer) string { return c.Email }},
	"city":  {str: func(c models.Customer) string { return c.City }},
	"createdDate": {num: func(c models.Customer) float64 {
		return float64(c.CreatedDate.UnixNano())
	}},
}

// CustomerList drives the customer screen. The endpoint returns the whole
// collection, so only filter changes refetch; sorting and paging are applied
// locally over the fetched rows.
type CustomerList struct {
	api      CustomerAPI
	qs       *querystate.Store
	notifier notify.Notifier
	runner   *fetch.Runner[[]models.Customer]
	unsub    func()
}

// NewCustomerList wires the view-model. Nothing is fetched until Start.
func NewCustomerList(api CustomerAPI, qs *querystate.Store, notifier notify.Notifier) *CustomerList {
	vm := &CustomerList{api: api, qs: qs, notifier: notifier}
	vm.runner = fetch.NewRunner(vm.load, fetch.Options[[]models.Customer]{
		AutoRun:      true,
		Dependencies: vm.deps(qs.Read()),
	})
	return vm
}

// Start performs the initial fetch and begins reacting to filter changes.
func (vm *CustomerList) Start(ctx context.Context) {
	vm.unsub = vm.qs.Subscribe(func(st querystate.State) {
		vm.runner.UpdateDependencies(ctx, vm.deps(st)...)
	})
	vm.runner.Start(ctx)
}

// Close detaches the view-model.
func (vm *CustomerList) Close() {
	if vm.unsub != nil {
		vm.unsub()
	}
	vm.runner.Detach()
}

// Only the filter is a fetch dependency; page and sort changes rearrange
// rows already in hand.
func (vm *CustomerList) deps(st querystate.State) []any {
	return []any{st.Get(keyCustomerName, "")}
}

func (vm *CustomerList) load(ctx context.Context) ([]models.Customer, error) {
	customers, err := vm.api.List(ctx, vm.qs.Read().Get(keyCustomerName, ""))
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	return customers, nil
}

// Page returns the visible page as a canonical envelope: the full fetched
// collection sorted and sliced locally.
func (vm *CustomerList) Page() *models.Page[models.Customer] {
	snap := vm.runner.State()
	st := vm.qs.Read()
	page, size := readPage(st), readSize(st)

	all := make([]models.Customer, len(snap.Data))
	copy(all, snap.Data)
	clientSort(all, customerSortFields, vm.Sort())
	return normalizeSlice(all, page, size)
}

// Rows returns the visible page of customers. Never nil.
func (vm *CustomerList) Rows() []models.Customer {
	return vm.Page().Content
}

// Pagination describes the current page position.
func (vm *CustomerList) Pagination() Pagination {
	p := vm.Page()
	return Pagination{
		Page:          p.Number + 1,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

// Loading reports whether a fetch is in flight.
func (vm *CustomerList) Loading() bool {
	return vm.runner.State().Status == fetch.StatusPending
}

// Err returns the last fetch error.
func (vm *CustomerList) Err() error {
	return vm.runner.State().Err
}

// Filter returns the active name filter.
func (vm *CustomerList) Filter() string {
	return vm.qs.Read().Get(keyCustomerName, "")
}

// Sort returns the active sort. An empty key leaves fetch order.
func (vm *CustomerList) Sort() Sort {
	return ParseSort(vm.qs.Read().Get(keySort, ""), Sort{})
}

// SetFilter applies the name filter and returns to page 1, even when the
// value is unchanged.
func (vm *CustomerList) SetFilter(name string) {
	vm.qs.Write(querystate.Patch{
		keyCustomerName: name,
		keyPage:         "1",
	}, querystate.Push)
}

// SetPage navigates to a 1-based page.
func (vm *CustomerList) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	vm.qs.Write(querystate.Patch{keyPage: strconv.Itoa(page)}, querystate.Push)
}

// ToggleSort activates ascending sort on key, or flips the direction when
// key is already active.
func (vm *CustomerList) ToggleSort(key string) {
	cur := vm.Sort()
	next := Sort{Key: key, Dir: "asc"}
	if cur.Key == key && cur.Dir == "asc" {
		next.Dir = "desc"
	}
	vm.qs.Write(querystate.Patch{keySort: next.Token()}, querystate.Push)
}

// SetSort applies an explicit sort.
func (vm *CustomerList) SetSort(s Sort) {
	vm.qs.Write(querystate.Patch{keySort: s.Token()}, querystate.Push)
}

// Refresh refetches the collection.
func (vm *CustomerList) Refresh(ctx context.Context) {
	vm.runner.Run(ctx) //nolint:errcheck // surfaced through Err
}

// Create adds a customer and refetches the collection. Failures raise one
// categorized notification; success raises one confirmation.
func (vm *CustomerList) Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	created, err := vm.api.Create(ctx, req)
	if err != nil {
		notifyCreateFailure(vm.notifier, "customer", err)
		return nil, err
	}
	vm.notifier.Notify(notify.Notification{
		Title:       "Customer created",
		Description: created.Name + " was added.",
	})
	vm.Refresh(ctx)
	return created, nil
}

// SubmitEdit saves an edited customer guarded by the version the form was
// loaded with. The server copy is re-read first: when it moved on, the fresh
// record is returned with ErrStaleEdit so the form can refresh instead of
// clobbering someone else's change.
func (vm *CustomerList) SubmitEdit(ctx context.Context, id int64, loadedVersion int, req models.CustomerRequest) (*models.Customer, error) {
	fresh, err := vm.api.Get(ctx, id)
	if err != nil {
		vm.notifier.Notify(notify.Notification{
			Title:       "Save failed",
			Description: "The customer could not be loaded for saving.",
			Err:         err,
		})
		return nil, err
	}
	if fresh.Version != loadedVersion {
		vm.notifier.Notify(notify.Notification{
			Title:       "Conflict",
			Description: "The customer was changed by someone else. The form has been refreshed.",
		})
		return fresh, ErrStaleEdit
	}

	updated, err := vm.api.Update(ctx, id, loadedVersion, req)
	if err != nil {
		vm.notifier.Notify(notify.Notification{
			Title:       "Save failed",
			Description: "The customer could not be saved.",
			Err:         err,
		})
		return nil, err
	}
	vm.Refresh(ctx)
	return updated, nil
}

// Delete removes the customer optimistically, refetching on failure and
// raising one categorized notification.
func (vm *CustomerList) Delete(ctx context.Context, id int64) error {
	vm.runner.UpdateData(func(all []models.Customer) []models.Customer {
		kept := make([]models.Customer, 0, len(all))
		for _, c := range all {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		return kept
	})

	if err := vm.api.Delete(ctx, id); err != nil {
		vm.runner.Run(ctx) //nolint:errcheck // rollback by refetch
		notifyDeleteFailure(vm.notifier, "customer", err)
		return err
	}
	return nil
}
