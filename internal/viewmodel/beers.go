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

// Beer query-state keys.
const (
	keyBeerName  = "beerName"
	keyBeerStyle = "beerStyle"
)

// BeerAPI is the slice of the beer service the view-model needs. Satisfied
// by *client.BeerService.
type BeerAPI interface {
	List(ctx context.Context, p client.BeerListParams) (*models.Page[models.Beer], error)
	Get(ctx context.Context, id int64) (*models.Beer, error)
	Create(ctx context.Context, req models.BeerRequest) (*models.Beer, error)
	Update(ctx context.Context, id int64, version int, req models.BeerRequest) (*models.Beer, error)
	Delete(ctx context.Context, id int64) error
}

// Compile-time interface guard.
var _ BeerAPI = (*client.BeerService)(nil)

// BeerList drives the beer catalog screen. Paging, filtering, and sorting
// are server-side: every query-state change triggers a refetch with the new
// parameters.
type BeerList struct {
	api      BeerAPI
	qs       *querystate.Store
	notifier notify.Notifier
	runner   *fetch.Runner[*models.Page[models.Beer]]
	unsub    func()
}

// NewBeerList wires the view-model. Nothing is fetched until Start.
func NewBeerList(api BeerAPI, qs *querystate.Store, notifier notify.Notifier) *BeerList {
	vm := &BeerList{api: api, qs: qs, notifier: notifier}
	vm.runner = fetch.NewRunner(vm.load, fetch.Options[*models.Page[models.Beer]]{
		AutoRun:      true,
		Dependencies: vm.deps(qs.Read()),
	})
	return vm
}

// Start performs the initial fetch and begins reacting to query-state
// changes.
func (vm *BeerList) Start(ctx context.Context) {
	vm.unsub = vm.qs.Subscribe(func(st querystate.State) {
		vm.runner.UpdateDependencies(ctx, vm.deps(st)...)
	})
	vm.runner.Start(ctx)
}

// Close detaches the view-model: late responses no longer mutate state.
func (vm *BeerList) Close() {
	if vm.unsub != nil {
		vm.unsub()
	}
	vm.runner.Detach()
}

func (vm *BeerList) deps(st querystate.State) []any {
	return []any{
		readPage(st),
		readSize(st),
		st.Get(keyBeerName, ""),
		st.Get(keyBeerStyle, ""),
		st.Get(keySort, ""),
	}
}

func (vm *BeerList) load(ctx context.Context) (*models.Page[models.Beer], error) {
	st := vm.qs.Read()
	page, err := vm.api.List(ctx, client.BeerListParams{
		Page:      readPage(st),
		Size:      readSize(st),
		BeerName:  st.Get(keyBeerName, ""),
		BeerStyle: st.Get(keyBeerStyle, ""),
		Sort:      st.Get(keySort, ""),
	})
	if err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = []models.Beer{}
	}
	return page, nil
}

// Rows returns the current page of beers. Never nil.
func (vm *BeerList) Rows() []models.Beer {
	snap := vm.runner.State()
	if snap.Data == nil {
		return []models.Beer{}
	}
	return snap.Data.Content
}

// Pagination describes the current page position.
func (vm *BeerList) Pagination() Pagination {
	st := vm.qs.Read()
	p := Pagination{Page: readPage(st), Size: readSize(st), TotalPages: 1}
	if snap := vm.runner.State(); snap.Data != nil {
		p.TotalElements = snap.Data.TotalElements
		p.TotalPages = snap.Data.TotalPages
	}
	return p
}

// Loading reports whether a fetch is in flight.
func (vm *BeerList) Loading() bool {
	return vm.runner.State().Status == fetch.StatusPending
}

// Err returns the last fetch error, nil after a successful settle.
func (vm *BeerList) Err() error {
	return vm.runner.State().Err
}

// Filters returns the active name and style filters.
func (vm *BeerList) Filters() (name, style string) {
	st := vm.qs.Read()
	return st.Get(keyBeerName, ""), st.Get(keyBeerStyle, "")
}

// Sort returns the active sort. An empty key means server-default order.
func (vm *BeerList) Sort() Sort {
	return ParseSort(vm.qs.Read().Get(keySort, ""), Sort{})
}

// SetFilters applies the name and style filters and returns to page 1. The
// page reset happens even when the filter values are unchanged.
func (vm *BeerList) SetFilters(name, style string) {
	vm.qs.Write(querystate.Patch{
		keyBeerName:  name,
		keyBeerStyle: style,
		keyPage:      "1",
	}, querystate.Push)
}

// SetPage navigates to a 1-based page.
func (vm *BeerList) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	vm.qs.Write(querystate.Patch{keyPage: strconv.Itoa(page)}, querystate.Push)
}

// SetPageSize changes the page size and returns to page 1.
func (vm *BeerList) SetPageSize(size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	vm.qs.Write(querystate.Patch{
		keySize: strconv.Itoa(size),
		keyPage: "1",
	}, querystate.Push)
}

// ToggleSort activates ascending sort on key, or flips the direction when
// key is already active. There is no third "unsorted" state.
func (vm *BeerList) ToggleSort(key string) {
	cur := vm.Sort()
	next := Sort{Key: key, Dir: "asc"}
	if cur.Key == key && cur.Dir == "asc" {
		next.Dir = "desc"
	}
	vm.qs.Write(querystate.Patch{keySort: next.Token()}, querystate.Push)
}

// SetSort applies an explicit sort.
func (vm *BeerList) SetSort(s Sort) {
	vm.qs.Write(querystate.Patch{keySort: s.Token()}, querystate.Push)
}

// Refresh refetches the current page.
func (vm *BeerList) Refresh(ctx context.Context) {
	vm.runner.Run(ctx) //nolint:errcheck // surfaced through Err
}

// Delete removes the beer optimistically: the row disappears immediately and
// the delete runs against the server. On failure the list is refetched to
// roll back and one categorized notification is raised.
func (vm *BeerList) Delete(ctx context.Context, id int64) error {
	vm.runner.UpdateData(func(p *models.Page[models.Beer]) *models.Page[models.Beer] {
		if p == nil {
			return p
		}
		kept := make([]models.Beer, 0, len(p.Content))
		for _, b := range p.Content {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		out := *p
		out.Content = kept
		if out.TotalElements > 0 {
			out.TotalElements--
		}
		out.TotalPages = models.TotalPagesFor(out.TotalElements, out.Size)
		return &out
	})

	if err := vm.api.Delete(ctx, id); err != nil {
		vm.runner.Run(ctx) //nolint:errcheck // rollback by refetch
		notifyDeleteFailure(vm.notifier, "beer", err)
		return err
	}
	return nil
}

// Create adds a beer to the catalog, then refetches so the new row lands in
// server order. Failures raise one categorized notification; success raises
// one confirmation.
func (vm *BeerList) Create(ctx context.Context, req models.BeerRequest) (*models.Beer, error) {
	created, err := vm.api.Create(ctx, req)
	if err != nil {
		notifyCreateFailure(vm.notifier, "beer", err)
		return nil, err
	}
	vm.notifier.Notify(notify.Notification{
		Title:       "Beer created",
		Description: created.BeerName + " was added to the catalog.",
	})
	vm.Refresh(ctx)
	return created, nil
}

// SubmitEdit saves an edited beer guarded by the version the form was loaded
// with. The server copy is re-read first: when it moved on, the fresh record
// is returned with ErrStaleEdit so the form can refresh instead of clobbering
// someone else's change.
func (vm *BeerList) SubmitEdit(ctx context.Context, id int64, loadedVersion int, req models.BeerRequest) (*models.Beer, error) {
	fresh, err := vm.api.Get(ctx, id)
	if err != nil {
		vm.notifier.Notify(notify.Notification{
			Title:       "Save failed",
			Description: "The beer could not be loaded for saving.",
			Err:         err,
		})
		return nil, err
	}
	if fresh.Version != loadedVersion {
		vm.notifier.Notify(notify.Notification{
			Title:       "Conflict",
			Description: "The beer was changed by someone else. The form has been refreshed.",
		})
		return fresh, ErrStaleEdit
	}

	updated, err := vm.api.Update(ctx, id, loadedVersion, req)
	if err != nil {
		vm.notifier.Notify(notify.Notification{
			Title:       "Save failed",
			Description: "The beer could not be saved.",
			Err:         err,
		})
		return nil, err
	}
	vm.Refresh(ctx)
	return updated, nil
}
