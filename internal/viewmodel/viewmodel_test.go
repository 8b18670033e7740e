package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/draughtworks/brewdeck/internal/client"
	"github.com/draughtworks/brewdeck/internal/notify"
	"github.com/draughtworks/brewdeck/internal/querystate"
	"github.com/draughtworks/brewdeck/pkg/models"
)

type fakeBeerAPI struct {
	listCalls []client.BeerListParams
	page      *models.Page[models.Beer]
	listErr   error

	getBeer   *models.Beer
	getErr    error
	created   *models.Beer
	createErr error
	updated   *models.Beer
	updateErr error
	deleteErr error
}

func (f *fakeBeerAPI) List(_ context.Context, p client.BeerListParams) (*models.Page[models.Beer], error) {
	f.listCalls = append(f.listCalls, p)
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := *f.page
	return &page, nil
}

func (f *fakeBeerAPI) Get(context.Context, int64) (*models.Beer, error) {
	return f.getBeer, f.getErr
}

func (f *fakeBeerAPI) Create(context.Context, models.BeerRequest) (*models.Beer, error) {
	return f.created, f.createErr
}

func (f *fakeBeerAPI) Update(context.Context, int64, int, models.BeerRequest) (*models.Beer, error) {
	return f.updated, f.updateErr
}

func (f *fakeBeerAPI) Delete(context.Context, int64) error {
	return f.deleteErr
}

func beerPage(names ...string) *models.Page[models.Beer] {
	beers := make([]models.Beer, len(names))
	for i, n := range names {
		beers[i] = models.Beer{ID: int64(i + 1), Version: 1, BeerName: n}
	}
	return &models.Page[models.Beer]{
		Content:       beers,
		TotalElements: len(beers),
		TotalPages:    models.TotalPagesFor(len(beers), 10),
		Size:          10,
	}
}

func newBeerList(t *testing.T, api *fakeBeerAPI) (*BeerList, *querystate.Store, *notify.Recorder) {
	t.Helper()
	qs := querystate.NewStore()
	rec := notify.NewRecorder()
	vm := NewBeerList(api, qs, rec)
	vm.Start(context.Background())
	t.Cleanup(vm.Close)
	return vm, qs, rec
}

func TestBeerList_FetchUsesQueryState(t *testing.T) {
	api := &fakeBeerAPI{page: beerPage("Mango Bobs", "Pinball Porter")}
	vm, _, _ := newBeerList(t, api)

	vm.SetFilters("Mango", "IPA")
	vm.SetPage(3)
	vm.ToggleSort("beerName")

	if len(api.listCalls) < 4 {
		t.Fatalf("listCalls = %d, want at least 4", len(api.listCalls))
	}
	last := api.listCalls[len(api.listCalls)-1]
	if last.Page != 3 || last.BeerName != "Mango" || last.BeerStyle != "IPA" || last.Sort != "beerName,asc" {
		t.Fatalf("last list params = %+v", last)
	}
}

func TestBeerList_FilterChangeResetsPage(t *testing.T) {
	api := &fakeBeerAPI{page: beerPage("Mango Bobs")}
	vm, qs, _ := newBeerList(t, api)

	vm.SetPage(4)
	if got := vm.Pagination().Page; got != 4 {
		t.Fatalf("Page = %d, want 4", got)
	}

	before := qs.HistoryLen()
	vm.SetFilters("", "")
	if got := vm.Pagination().Page; got != 1 {
		t.Fatalf("Page after filter change = %d, want 1", got)
	}
	if got := qs.HistoryLen(); got != before+1 {
		t.Fatalf("HistoryLen = %d, want %d (one entry per filter change)", got, before+1)
	}
}

func TestBeerList_FilterChangeWithSameValuesStillResetsPage(t *testing.T) {
	api := &fakeBeerAPI{page: beerPage("Mango Bobs")}
	vm, _, _ := newBeerList(t, api)

	vm.SetFilters("Mango", "")
	vm.SetPage(2)
	vm.SetFilters("Mango", "")

	if got := vm.Pagination().Page; got != 1 {
		t.Fatalf("Page = %d, want 1", got)
	}
}

func TestBeerList_ToggleSortFlipsDirection(t *testing.T) {
	api := &fakeBeerAPI{page: beerPage("Mango Bobs")}
	vm, _, _ := newBeerList(t, api)

	vm.ToggleSort("beerName")
	if s := vm.Sort(); s.Key != "beerName" || s.Dir != "asc" {
		t.Fatalf("Sort = %+v, want beerName asc", s)
	}
	vm.ToggleSort("beerName")
	if s := vm.Sort(); s.Dir != "desc" {
		t.Fatalf("Sort = %+v, want beerName desc", s)
	}
	vm.ToggleSort("beerName")
	if s := vm.Sort(); s.Dir != "asc" {
		t.Fatalf("Sort = %+v, want beerName asc again", s)
	}
	vm.ToggleSort("upc")
	if s := vm.Sort(); s.Key != "upc" || s.Dir != "asc" {
		t.Fatalf("Sort = %+v, want upc asc after column switch", s)
	}
}

func TestBeerList_OptimisticDeleteRemovesRowImmediately(t *testing.T) {
	api := &fakeBeerAPI{page: beerPage("Mango Bobs", "Pinball Porter", "Galaxy Cat")}
	vm, _, rec := newBeerList(t, api)

	if err := vm.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	rows := vm.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	for _, b := range rows {
		if b.ID == 2 {
			t.Fatalf("deleted row still visible: %+v", b)
		}
	}
	if got := vm.Pagination().TotalElements; got != 2 {
		t.Fatalf("TotalElements = %d, want 2", got)
	}
	if seen := rec.Seen(); len(seen) != 0 {
		t.Fatalf("notifications on success = %d, want 0", len(seen))
	}
}

func TestBeerList_DeleteConflictRollsBackAndNotifiesOnce(t *testing.T) {
	api := &fakeBeerAPI{
		page:      beerPage("Mango Bobs", "Pinball Porter"),
		deleteErr: &client.Error{Code: "conflict", Message: "changed", Status: 409},
	}
	vm, _, rec := newBeerList(t, api)

	if err := vm.Delete(context.Background(), 1); err == nil {
		t.Fatal("Delete() error = nil, want conflict")
	}

	// The rollback refetch restores the server's copy of the page.
	rows := vm.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(rows) after rollback = %d, want 2", len(rows))
	}

	seen := rec.Seen()
	if len(seen) != 1 {
		t.Fatalf("notifications = %d, want exactly 1", len(seen))
	}
	if seen[0].Title != "Conflict" {
		t.Fatalf("notification title = %q, want Conflict", seen[0].Title)
	}
}

func TestBeerList_DeleteFailureCategories(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
	}{
		{"conflict", &client.Error{Code: "conflict", Status: 409}, "Conflict"},
		{"bad request", &client.Error{Code: "bad_request", Status: 400, Message: "nope"}, "Invalid request"},
		{"server error", &client.Error{Code: "server_error", Status: 500}, "Delete failed"},
		{"transport", errors.New("connection refused"), "Delete failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeBeerAPI{page: beerPage("Mango Bobs"), deleteErr: tt.err}
			vm, _, rec := newBeerList(t, api)

			_ = vm.Delete(context.Background(), 1)

			seen := rec.Seen()
			if len(seen) != 1 {
				t.Fatalf("notifications = %d, want 1", len(seen))
			}
			if seen[0].Title != tt.wantTitle {
				t.Fatalf("title = %q, want %q", seen[0].Title, tt.wantTitle)
			}
		})
	}
}

func TestBeerList_SubmitEditStaleVersionRefreshes(t *testing.T) {
	api := &fakeBeerAPI{
		page:    beerPage("Mango Bobs"),
		getBeer: &models.Beer{ID: 1, Version: 5, BeerName: "Mango Bobs 2.0"},
	}
	vm, _, rec := newBeerList(t, api)

	fresh, err := vm.SubmitEdit(context.Background(), 1, 3, models.BeerRequest{BeerName: "Edited"})
	if !errors.Is(err, ErrStaleEdit) {
		t.Fatalf("SubmitEdit() error = %v, want ErrStaleEdit", err)
	}
	if fresh == nil || fresh.Version != 5 {
		t.Fatalf("fresh = %+v, want server copy at version 5", fresh)
	}

	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Conflict" {
		t.Fatalf("notifications = %+v, want one Conflict", seen)
	}
}

func TestBeerList_SubmitEditCurrentVersionSaves(t *testing.T) {
	api := &fakeBeerAPI{
		page:    beerPage("Mango Bobs"),
		getBeer: &models.Beer{ID: 1, Version: 3},
		updated: &models.Beer{ID: 1, Version: 4, BeerName: "Edited"},
	}
	vm, _, rec := newBeerList(t, api)

	got, err := vm.SubmitEdit(context.Background(), 1, 3, models.BeerRequest{BeerName: "Edited"})
	if err != nil {
		t.Fatalf("SubmitEdit() error = %v", err)
	}
	if got.Version != 4 {
		t.Fatalf("Version = %d, want 4", got.Version)
	}
	if seen := rec.Seen(); len(seen) != 0 {
		t.Fatalf("notifications on success = %d, want 0", len(seen))
	}
}

func TestBeerList_CreateRefetchesAndNotifies(t *testing.T) {
	api := &fakeBeerAPI{
		page:    beerPage("Mango Bobs"),
		created: &models.Beer{ID: 9, Version: 1, BeerName: "Galaxy Cat"},
	}
	vm, _, rec := newBeerList(t, api)

	fetched := len(api.listCalls)
	got, err := vm.Create(context.Background(), models.BeerRequest{BeerName: "Galaxy Cat"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.ID != 9 {
		t.Fatalf("created ID = %d, want 9", got.ID)
	}
	if len(api.listCalls) != fetched+1 {
		t.Fatalf("listCalls = %d, want %d (refetch after create)", len(api.listCalls), fetched+1)
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Beer created" {
		t.Fatalf("notifications = %+v, want one Beer created", seen)
	}
}

func TestBeerList_CreateRejectionNotifiesOnce(t *testing.T) {
	api := &fakeBeerAPI{
		page:      beerPage("Mango Bobs"),
		createErr: &client.Error{Code: "bad_request", Status: 400, Message: "price must be positive"},
	}
	vm, _, rec := newBeerList(t, api)

	if _, err := vm.Create(context.Background(), models.BeerRequest{}); err == nil {
		t.Fatal("Create() error = nil, want rejection")
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Invalid request" {
		t.Fatalf("notifications = %+v, want one Invalid request", seen)
	}
}

type fakeCustomerAPI struct {
	customers   []models.Customer
	listCalls   []string
	getCustomer *models.Customer
	getErr      error
	created     *models.Customer
	createErr   error
	updated     *models.Customer
	updateErr   error
	deleteErr   error
}

func (f *fakeCustomerAPI) List(_ context.Context, name string) ([]models.Customer, error) {
	f.listCalls = append(f.listCalls, name)
	out := make([]models.Customer, len(f.customers))
	copy(out, f.customers)
	return out, nil
}

func (f *fakeCustomerAPI) Get(context.Context, int64) (*models.Customer, error) {
	return f.getCustomer, f.getErr
}

func (f *fakeCustomerAPI) Create(context.Context, models.CustomerRequest) (*models.Customer, error) {
	return f.created, f.createErr
}

func (f *fakeCustomerAPI) Update(context.Context, int64, int, models.CustomerRequest) (*models.Customer, error) {
	return f.updated, f.updateErr
}

func (f *fakeCustomerAPI) Delete(context.Context, int64) error {
	return f.deleteErr
}

func newCustomerList(t *testing.T, api *fakeCustomerAPI) (*CustomerList, *querystate.Store, *notify.Recorder) {
	t.Helper()
	qs := querystate.NewStore()
	rec := notify.NewRecorder()
	vm := NewCustomerList(api, qs, rec)
	vm.Start(context.Background())
	t.Cleanup(vm.Close)
	return vm, qs, rec
}

func customersNamed(names ...string) []models.Customer {
	out := make([]models.Customer, len(names))
	for i, n := range names {
		out[i] = models.Customer{ID: int64(i + 1), Version: 1, Name: n}
	}
	return out
}

func TestCustomerList_OnlyFilterChangesRefetch(t *testing.T) {
	api := &fakeCustomerAPI{customers: customersNamed("Alpha", "Bravo")}
	vm, _, _ := newCustomerList(t, api)

	fetched := len(api.listCalls)
	vm.SetPage(2)
	vm.ToggleSort("name")
	if got := len(api.listCalls); got != fetched {
		t.Fatalf("listCalls after page+sort = %d, want %d (no refetch)", got, fetched)
	}

	vm.SetFilter("Alp")
	if got := len(api.listCalls); got != fetched+1 {
		t.Fatalf("listCalls after filter = %d, want %d", got, fetched+1)
	}
	if last := api.listCalls[len(api.listCalls)-1]; last != "Alp" {
		t.Fatalf("filter sent = %q, want Alp", last)
	}
}

func TestCustomerList_ClientSideSortAscThenDescReverses(t *testing.T) {
	api := &fakeCustomerAPI{customers: customersNamed("bravo", "Alpha", "charlie")}
	vm, _, _ := newCustomerList(t, api)

	vm.ToggleSort("name")
	asc := vm.Rows()
	vm.ToggleSort("name")
	desc := vm.Rows()

	if len(asc) != 3 || len(desc) != 3 {
		t.Fatalf("len asc/desc = %d/%d, want 3/3", len(asc), len(desc))
	}
	// Case-insensitive ascending order.
	if asc[0].Name != "Alpha" || asc[1].Name != "bravo" || asc[2].Name != "charlie" {
		t.Fatalf("asc order = %v", []string{asc[0].Name, asc[1].Name, asc[2].Name})
	}
	// Unique keys: descending is the exact reverse.
	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Fatalf("desc is not the reverse of asc: asc=%v desc=%v", asc, desc)
		}
	}
}

func TestCustomerList_NumericSortByID(t *testing.T) {
	api := &fakeCustomerAPI{customers: []models.Customer{
		{ID: 10, Name: "ten"},
		{ID: 2, Name: "two"},
		{ID: 1, Name: "one"},
	}}
	vm, _, _ := newCustomerList(t, api)

	vm.ToggleSort("id")
	rows := vm.Rows()
	if rows[0].ID != 1 || rows[1].ID != 2 || rows[2].ID != 10 {
		t.Fatalf("numeric sort order = %v, want 1,2,10", []int64{rows[0].ID, rows[1].ID, rows[2].ID})
	}
}

func TestCustomerList_ClientSidePaging(t *testing.T) {
	var names []string
	for i := 1; i <= 25; i++ {
		names = append(names, fmt.Sprintf("Customer %03d", i))
	}
	api := &fakeCustomerAPI{customers: customersNamed(names...)}
	vm, _, _ := newCustomerList(t, api)

	p := vm.Pagination()
	if p.TotalElements != 25 || p.TotalPages != 3 {
		t.Fatalf("Pagination = %+v, want 25 elements over 3 pages", p)
	}

	vm.SetPage(3)
	rows := vm.Rows()
	if len(rows) != 5 {
		t.Fatalf("len(rows) on page 3 = %d, want 5", len(rows))
	}
	if rows[0].Name != "Customer 021" {
		t.Fatalf("first row on page 3 = %q, want Customer 021", rows[0].Name)
	}

	vm.SetPage(9)
	if got := vm.Rows(); len(got) != 0 {
		t.Fatalf("rows past the end = %d, want 0", len(got))
	}
}

func TestCustomerList_EmptyCollectionNormalizes(t *testing.T) {
	api := &fakeCustomerAPI{}
	vm, _, _ := newCustomerList(t, api)

	p := vm.Page()
	if p.Content == nil {
		t.Fatal("Content = nil, want empty slice")
	}
	if p.TotalElements != 0 || p.TotalPages != 1 {
		t.Fatalf("envelope = %+v, want 0 elements, 1 page", p)
	}
}

func TestCustomerList_OptimisticDeleteConflict(t *testing.T) {
	api := &fakeCustomerAPI{
		customers: customersNamed("Alpha", "Bravo"),
		deleteErr: &client.Error{Code: "conflict", Status: 409},
	}
	vm, _, rec := newCustomerList(t, api)

	_ = vm.Delete(context.Background(), 1)

	if got := len(vm.Rows()); got != 2 {
		t.Fatalf("rows after rollback = %d, want 2", got)
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Conflict" {
		t.Fatalf("notifications = %+v, want one Conflict", seen)
	}
}

func TestCustomerList_CreateRefetchesAndNotifies(t *testing.T) {
	api := &fakeCustomerAPI{
		customers: customersNamed("Alpha"),
		created:   &models.Customer{ID: 5, Version: 1, Name: "Bravo"},
	}
	vm, _, rec := newCustomerList(t, api)

	fetched := len(api.listCalls)
	if _, err := vm.Create(context.Background(), models.CustomerRequest{Name: "Bravo"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(api.listCalls) != fetched+1 {
		t.Fatalf("listCalls = %d, want %d (refetch after create)", len(api.listCalls), fetched+1)
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Customer created" {
		t.Fatalf("notifications = %+v, want one Customer created", seen)
	}
}

func TestCustomerList_SubmitEditStaleVersionRefreshes(t *testing.T) {
	api := &fakeCustomerAPI{
		customers:   customersNamed("Alpha"),
		getCustomer: &models.Customer{ID: 1, Version: 7, Name: "Alpha Renamed"},
	}
	vm, _, rec := newCustomerList(t, api)

	fresh, err := vm.SubmitEdit(context.Background(), 1, 2, models.CustomerRequest{Name: "Edited"})
	if !errors.Is(err, ErrStaleEdit) {
		t.Fatalf("SubmitEdit() error = %v, want ErrStaleEdit", err)
	}
	if fresh == nil || fresh.Version != 7 {
		t.Fatalf("fresh = %+v, want server copy at version 7", fresh)
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Conflict" {
		t.Fatalf("notifications = %+v, want one Conflict", seen)
	}
}

func TestCustomerList_SubmitEditCurrentVersionSaves(t *testing.T) {
	api := &fakeCustomerAPI{
		customers:   customersNamed("Alpha"),
		getCustomer: &models.Customer{ID: 1, Version: 2},
		updated:     &models.Customer{ID: 1, Version: 3, Name: "Edited"},
	}
	vm, _, rec := newCustomerList(t, api)

	got, err := vm.SubmitEdit(context.Background(), 1, 2, models.CustomerRequest{Name: "Edited"})
	if err != nil {
		t.Fatalf("SubmitEdit() error = %v", err)
	}
	if got.Version != 3 {
		t.Fatalf("Version = %d, want 3", got.Version)
	}
	if seen := rec.Seen(); len(seen) != 0 {
		t.Fatalf("notifications on success = %d, want 0", len(seen))
	}
}

type fakeOrderAPI struct {
	orders     []models.BeerOrder
	listCalls  []string
	getOrder   *models.BeerOrder
	getErr     error
	created    *models.BeerOrder
	createErr  error
	replaced   *models.BeerOrder
	replaceErr error
	updated    *models.BeerOrder
	updateErr  error
	deleteErr  error
}

func (f *fakeOrderAPI) List(_ context.Context, status string) ([]models.BeerOrder, error) {
	f.listCalls = append(f.listCalls, status)
	out := make([]models.BeerOrder, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeOrderAPI) Get(context.Context, int64) (*models.BeerOrder, error) {
	return f.getOrder, f.getErr
}

func (f *fakeOrderAPI) Create(context.Context, models.CreateOrderCommand) (*models.BeerOrder, error) {
	return f.created, f.createErr
}

func (f *fakeOrderAPI) Update(context.Context, int64, int, models.CreateOrderCommand) (*models.BeerOrder, error) {
	return f.replaced, f.replaceErr
}

func (f *fakeOrderAPI) UpdateStatus(context.Context, int64, int, string) (*models.BeerOrder, error) {
	return f.updated, f.updateErr
}

func (f *fakeOrderAPI) Delete(context.Context, int64) error {
	return f.deleteErr
}

func newOrderList(t *testing.T, api *fakeOrderAPI) (*OrderList, *querystate.Store, *notify.Recorder) {
	t.Helper()
	qs := querystate.NewStore()
	rec := notify.NewRecorder()
	vm := NewOrderList(api, qs, rec)
	vm.Start(context.Background())
	t.Cleanup(vm.Close)
	return vm, qs, rec
}

func TestOrderList_DefaultSortNewestFirst(t *testing.T) {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	api := &fakeOrderAPI{orders: []models.BeerOrder{
		{ID: 1, CreatedDate: base},
		{ID: 2, CreatedDate: base.Add(2 * time.Hour)},
		{ID: 3, CreatedDate: base.Add(time.Hour)},
	}}
	vm, _, _ := newOrderList(t, api)

	rows := vm.Rows()
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0].ID != 2 || rows[1].ID != 3 || rows[2].ID != 1 {
		t.Fatalf("default order = %v, want newest first (2,3,1)",
			[]int64{rows[0].ID, rows[1].ID, rows[2].ID})
	}
}

func TestOrderList_StatusFilterResetsPageAndRefetches(t *testing.T) {
	api := &fakeOrderAPI{orders: []models.BeerOrder{{ID: 1, Status: "PENDING"}}}
	vm, _, _ := newOrderList(t, api)

	vm.SetPage(2)
	fetched := len(api.listCalls)
	vm.SetStatusFilter("PAID")

	if got := vm.Pagination().Page; got != 1 {
		t.Fatalf("Page = %d, want 1", got)
	}
	if got := len(api.listCalls); got != fetched+1 {
		t.Fatalf("listCalls = %d, want %d", got, fetched+1)
	}
	if last := api.listCalls[len(api.listCalls)-1]; last != "PAID" {
		t.Fatalf("status sent = %q, want PAID", last)
	}
}

func TestOrderList_UpdateStatusPatchesRowInPlace(t *testing.T) {
	api := &fakeOrderAPI{
		orders:  []models.BeerOrder{{ID: 1, Version: 1, Status: "PENDING"}},
		updated: &models.BeerOrder{ID: 1, Version: 2, Status: "PAID"},
	}
	vm, _, rec := newOrderList(t, api)

	if err := vm.UpdateStatus(context.Background(), 1, 1, "PAID"); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	rows := vm.Rows()
	if rows[0].Status != "PAID" || rows[0].Version != 2 {
		t.Fatalf("row = %+v, want PAID at version 2", rows[0])
	}
	if seen := rec.Seen(); len(seen) != 0 {
		t.Fatalf("notifications on success = %d, want 0", len(seen))
	}
}

func TestOrderList_UpdateStatusConflictNotifies(t *testing.T) {
	api := &fakeOrderAPI{
		orders:    []models.BeerOrder{{ID: 1, Version: 1, Status: "PENDING"}},
		updateErr: &client.Error{Code: "conflict", Status: 409},
	}
	vm, _, rec := newOrderList(t, api)

	if err := vm.UpdateStatus(context.Background(), 1, 1, "PAID"); err == nil {
		t.Fatal("UpdateStatus() error = nil, want conflict")
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Conflict" {
		t.Fatalf("notifications = %+v, want one Conflict", seen)
	}
}

func TestOrderList_CreateRefetchesAndNotifies(t *testing.T) {
	api := &fakeOrderAPI{
		orders:  []models.BeerOrder{{ID: 1}},
		created: &models.BeerOrder{ID: 2, Version: 1, CustomerRef: "acme-001"},
	}
	vm, _, rec := newOrderList(t, api)

	fetched := len(api.listCalls)
	cmd := models.CreateOrderCommand{
		CustomerRef:   "acme-001",
		PaymentAmount: 25,
		Items:         []models.CreateOrderItem{{BeerID: 1, Quantity: 2}},
	}
	if _, err := vm.Create(context.Background(), cmd); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(api.listCalls) != fetched+1 {
		t.Fatalf("listCalls = %d, want %d (refetch after create)", len(api.listCalls), fetched+1)
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Order created" {
		t.Fatalf("notifications = %+v, want one Order created", seen)
	}
}

func TestOrderList_SubmitEditStaleVersionRefreshes(t *testing.T) {
	api := &fakeOrderAPI{
		orders:   []models.BeerOrder{{ID: 1, Version: 1}},
		getOrder: &models.BeerOrder{ID: 1, Version: 4},
	}
	vm, _, rec := newOrderList(t, api)

	cmd := models.CreateOrderCommand{
		PaymentAmount: 30,
		Items:         []models.CreateOrderItem{{BeerID: 1, Quantity: 1}},
	}
	fresh, err := vm.SubmitEdit(context.Background(), 1, 1, cmd)
	if !errors.Is(err, ErrStaleEdit) {
		t.Fatalf("SubmitEdit() error = %v, want ErrStaleEdit", err)
	}
	if fresh == nil || fresh.Version != 4 {
		t.Fatalf("fresh = %+v, want server copy at version 4", fresh)
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Conflict" {
		t.Fatalf("notifications = %+v, want one Conflict", seen)
	}
}

type fakeShipmentAPI struct {
	shipments []models.Shipment
	created   *models.Shipment
	createErr error
	updated   *models.Shipment
	updateErr error
	deleteErr error
}

func (f *fakeShipmentAPI) List(context.Context, int64) ([]models.Shipment, error) {
	out := make([]models.Shipment, len(f.shipments))
	copy(out, f.shipments)
	return out, nil
}

func (f *fakeShipmentAPI) Create(context.Context, int64, models.ShipmentCreate) (*models.Shipment, error) {
	return f.created, f.createErr
}

func (f *fakeShipmentAPI) Update(context.Context, int64, int64, int, models.ShipmentUpdate) (*models.Shipment, error) {
	return f.updated, f.updateErr
}

func (f *fakeShipmentAPI) Delete(context.Context, int64, int64) error {
	return f.deleteErr
}

func TestShipmentList_UpdateStatusAndDelete(t *testing.T) {
	api := &fakeShipmentAPI{
		shipments: []models.Shipment{
			{ID: 1, Version: 1, ShipmentStatus: "PENDING"},
			{ID: 2, Version: 1, ShipmentStatus: "PACKED"},
		},
		updated: &models.Shipment{ID: 1, Version: 2, ShipmentStatus: "IN_TRANSIT"},
	}
	qs := querystate.NewStore()
	rec := notify.NewRecorder()
	vm := NewShipmentList(api, 7, qs, rec)
	vm.Start(context.Background())
	t.Cleanup(vm.Close)

	if err := vm.UpdateStatus(context.Background(), 1, 1, "IN_TRANSIT"); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if rows := vm.Rows(); rows[0].ShipmentStatus != "IN_TRANSIT" {
		t.Fatalf("row status = %q, want IN_TRANSIT", rows[0].ShipmentStatus)
	}

	if err := vm.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := len(vm.Rows()); got != 1 {
		t.Fatalf("rows after delete = %d, want 1", got)
	}
	if seen := rec.Seen(); len(seen) != 0 {
		t.Fatalf("notifications = %d, want 0", len(seen))
	}
}

func TestShipmentList_CreateRefetchesAndNotifies(t *testing.T) {
	api := &fakeShipmentAPI{
		shipments: []models.Shipment{{ID: 1, ShipmentStatus: "PENDING"}},
		created:   &models.Shipment{ID: 2, Version: 1, ShipmentStatus: "PENDING"},
	}
	qs := querystate.NewStore()
	rec := notify.NewRecorder()
	vm := NewShipmentList(api, 7, qs, rec)
	vm.Start(context.Background())
	t.Cleanup(vm.Close)

	if _, err := vm.Create(context.Background(), models.ShipmentCreate{ShipmentStatus: "PENDING"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	seen := rec.Seen()
	if len(seen) != 1 || seen[0].Title != "Shipment created" {
		t.Fatalf("notifications = %+v, want one Shipment created", seen)
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		token    string
		fallback Sort
		want     Sort
	}{
		{"", Sort{}, Sort{}},
		{"", Sort{Key: "createdDate", Dir: "desc"}, Sort{Key: "createdDate", Dir: "desc"}},
		{"name,asc", Sort{}, Sort{Key: "name", Dir: "asc"}},
		{"name,desc", Sort{}, Sort{Key: "name", Dir: "desc"}},
		{"name", Sort{}, Sort{Key: "name", Dir: "asc"}},
		{"name,DESC", Sort{}, Sort{Key: "name", Dir: "desc"}},
	}
	for _, tt := range tests {
		if got := ParseSort(tt.token, tt.fallback); got != tt.want {
			t.Errorf("ParseSort(%q) = %+v, want %+v", tt.token, got, tt.want)
		}
	}
}

func TestSortToken(t *testing.T) {
	if got := (Sort{Key: "name", Dir: "desc"}).Token(); got != "name,desc" {
		t.Fatalf("Token() = %q, want name,desc", got)
	}
	if got := (Sort{}).Token(); got != "" {
		t.Fatalf("Token() on zero sort = %q, want empty", got)
	}
}
