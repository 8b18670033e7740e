package table

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

type beerRow struct {
	ID    int64
	Name  string
	Price float64
}

type anonymousRow struct {
	Name string
}

func beerColumns() []ColumnDef[beerRow] {
	return []ColumnDef[beerRow]{
		{Key: "beerName", Header: "Name", Sortable: true,
			Cell: func(r beerRow) string { return r.Name }},
		{Key: "price", Header: "Price", Sortable: true,
			Cell: func(r beerRow) string { return fmt.Sprintf("%.2f", r.Price) }},
		{Key: "id", Header: "ID",
			Cell: func(r beerRow) string { return strconv.FormatInt(r.ID, 10) }},
	}
}

func makeRows(n int) []beerRow {
	rows := make([]beerRow, n)
	for i := range rows {
		rows[i] = beerRow{ID: int64(i + 1), Name: fmt.Sprintf("Beer %02d", i+1), Price: float64(i) + 0.5}
	}
	return rows
}

func TestSortToggleStateMachine(t *testing.T) {
	var gotKey string
	var gotDir SortDir
	m := New(Options[beerRow]{
		Columns:      beerColumns(),
		OnSortChange: func(k string, d SortDir) { gotKey, gotDir = k, d },
	})

	// First toggle on an inactive column: ascending.
	m.ToggleSort("price")
	if gotKey != "price" || gotDir != SortAsc {
		t.Fatalf("first toggle = (%q, %q), want (price, asc)", gotKey, gotDir)
	}

	// Second toggle on the active column: descending.
	m.ToggleSort("price")
	if gotDir != SortDesc {
		t.Fatalf("second toggle dir = %q, want desc", gotDir)
	}

	// Third toggle: back to ascending, never an unsorted state.
	m.ToggleSort("price")
	if gotDir != SortAsc {
		t.Fatalf("third toggle dir = %q, want asc", gotDir)
	}

	// Switching columns resets to ascending regardless of prior direction.
	m.ToggleSort("price") // price desc again
	m.ToggleSort("beerName")
	if gotKey != "beerName" || gotDir != SortAsc {
		t.Errorf("column switch = (%q, %q), want (beerName, asc)", gotKey, gotDir)
	}
}

func TestToggleSortIgnoresUnsortableColumn(t *testing.T) {
	fired := false
	m := New(Options[beerRow]{
		Columns:      beerColumns(),
		OnSortChange: func(string, SortDir) { fired = true },
	})

	m.ToggleSort("id")
	if fired {
		t.Error("OnSortChange fired for non-sortable column")
	}
	if m.SortKey() != "" {
		t.Errorf("SortKey = %q, want empty", m.SortKey())
	}
}

func TestSelectAllScopedToVisiblePage(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns(), Selectable: true})
	m.SetPageSize(10)
	m.SetRows(makeRows(10), 25)

	m.ToggleAll()
	if got := len(m.Selected()); got != 10 {
		t.Fatalf("Selected after ToggleAll = %d, want 10 (visible page only, not 25)", got)
	}
	if !m.AllVisibleSelected() {
		t.Error("AllVisibleSelected = false after ToggleAll")
	}

	// Toggling all again clears only the visible rows.
	m.ToggleAll()
	if got := len(m.Selected()); got != 0 {
		t.Errorf("Selected after second ToggleAll = %d, want 0", got)
	}
}

func TestIndeterminateHeaderState(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns(), Selectable: true})
	rows := makeRows(3)
	m.SetRows(rows, 3)

	if m.Indeterminate() {
		t.Error("Indeterminate with nothing selected")
	}

	m.ToggleRow(rows[0])
	if !m.Indeterminate() {
		t.Error("not Indeterminate with one of three selected")
	}

	m.ToggleRow(rows[1])
	m.ToggleRow(rows[2])
	if m.Indeterminate() {
		t.Error("Indeterminate with everything selected")
	}
	if !m.AllVisibleSelected() {
		t.Error("AllVisibleSelected = false with everything selected")
	}
}

func TestSelectionSurvivesPageChange(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns(), Selectable: true})
	first := makeRows(10)
	m.SetRows(first, 25)
	m.ToggleRow(first[2])

	// Navigate to another page and back; the selection set is external to
	// the visible rows.
	m.SetRows(makeRows(25)[10:20], 25)
	m.SetRows(first, 25)
	if !m.IsSelected(first[2]) {
		t.Error("selection lost across page change")
	}
}

func TestRowIdentityDefaultsToIDField(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns(), Selectable: true})
	rows := makeRows(2)
	m.SetRows(rows, 2)

	m.ToggleRow(rows[1])
	if got := m.Selected(); len(got) != 1 || got[0] != "2" {
		t.Errorf("Selected = %v, want [2] from the ID field", got)
	}
}

func TestRowIdentityStructuralFallback(t *testing.T) {
	cols := []ColumnDef[anonymousRow]{
		{Key: "name", Header: "Name", Cell: func(r anonymousRow) string { return r.Name }},
	}
	m := New(Options[anonymousRow]{Columns: cols, Selectable: true})
	rows := []anonymousRow{{Name: "alpha"}, {Name: "beta"}}
	m.SetRows(rows, 2)

	m.ToggleRow(rows[0])
	if !m.IsSelected(anonymousRow{Name: "alpha"}) {
		t.Error("structurally identical row not recognized as selected")
	}
	if m.IsSelected(anonymousRow{Name: "beta"}) {
		t.Error("unselected row reported selected")
	}
}

func TestPagerScenario(t *testing.T) {
	// 25 rows at page size 10: three pages, Next disabled only on the last.
	m := New(Options[beerRow]{Columns: beerColumns()})
	m.SetPageSize(10)
	all := makeRows(25)

	m.SetPage(1)
	m.SetRows(all[0:10], 25)
	if m.TotalPages() != 3 {
		t.Fatalf("TotalPages = %d, want 3", m.TotalPages())
	}
	if m.CanPrev() {
		t.Error("Prev enabled on page 1")
	}
	if !m.CanNext() {
		t.Error("Next disabled on page 1")
	}

	m.SetPage(2)
	m.SetRows(all[10:20], 25)
	if !m.CanPrev() || !m.CanNext() {
		t.Error("both pager controls should be enabled on page 2")
	}

	m.SetPage(3)
	m.SetRows(all[20:25], 25)
	if len(m.Rows()) != 5 {
		t.Errorf("page 3 rows = %d, want 5", len(m.Rows()))
	}
	if m.CanNext() {
		t.Error("Next enabled on the last page")
	}
}

func TestTotalPagesFloorsAtOne(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns()})
	m.SetPageSize(10)
	m.SetRows(nil, 0)
	if m.TotalPages() != 1 {
		t.Errorf("TotalPages with no data = %d, want 1", m.TotalPages())
	}
}

func TestOutOfRangePageStillRenders(t *testing.T) {
	// The model never clamps; callers own page validity.
	m := New(Options[beerRow]{Columns: beerColumns()})
	m.SetPageSize(10)
	m.SetRows(nil, 25)
	m.SetPage(9)

	view := m.View()
	if !strings.Contains(view, "Page 9 of 3") {
		t.Errorf("View missing out-of-range pager line:\n%s", view)
	}
	if m.CanNext() {
		t.Error("Next enabled past the last page")
	}
}

func TestLoadingTakesPrecedenceOverEmpty(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns(), EmptyMessage: "No beers found."})
	m.SetRows(nil, 0)
	m.SetLoading(true)

	view := m.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("View missing loading indicator")
	}
	if strings.Contains(view, "No beers found.") {
		t.Error("empty state rendered while loading")
	}

	m.SetLoading(false)
	view = m.View()
	if !strings.Contains(view, "No beers found.") {
		t.Error("empty state missing when not loading and no rows")
	}
}

func TestViewShowsSortMarkerAndSelection(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns(), Selectable: true})
	rows := makeRows(2)
	m.SetRows(rows, 2)
	m.ToggleSort("beerName")
	m.ToggleRow(rows[0])

	view := m.View()
	if !strings.Contains(view, "Name ^") {
		t.Errorf("View missing ascending sort marker:\n%s", view)
	}
	if !strings.Contains(view, "[x]") {
		t.Errorf("View missing selected checkbox:\n%s", view)
	}
	if !strings.Contains(view, "[~]") {
		t.Errorf("View missing indeterminate header checkbox:\n%s", view)
	}
}

func TestCursorMovement(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns(), Selectable: true})
	rows := makeRows(3)
	m.SetRows(rows, 3)

	m.MoveCursor(1)
	m.MoveCursor(1)
	if row, ok := m.CursorRow(); !ok || row.ID != 3 {
		t.Errorf("CursorRow = %v, want ID 3", row)
	}

	// Clamped at the last row.
	m.MoveCursor(5)
	if row, _ := m.CursorRow(); row.ID != 3 {
		t.Errorf("CursorRow after overshoot = %v, want ID 3", row)
	}

	m.MoveCursor(-10)
	if row, _ := m.CursorRow(); row.ID != 1 {
		t.Errorf("CursorRow after undershoot = %v, want ID 1", row)
	}

	m.ToggleCursorRow()
	if !m.IsSelected(rows[0]) {
		t.Error("ToggleCursorRow did not select the highlighted row")
	}
}

func TestColumnWidthsCountCellsNotBytes(t *testing.T) {
	m := New(Options[beerRow]{Columns: beerColumns()})
	m.SetRows([]beerRow{
		{ID: 1, Name: "Kölsch Überbräu", Price: 4.5},
		{ID: 2, Name: "Pale Ale", Price: 5.0},
	}, 2)

	// "Kölsch Überbräu" is 15 cells but 18 bytes; a byte-based width would
	// pad the shorter name 3 cells too far.
	widths := m.columnWidths()
	if widths[0] != 15 {
		t.Fatalf("name column width = %d, want 15", widths[0])
	}

	if got := pad("Kölsch", 8); got != "Kölsch  " {
		t.Errorf("pad(Kölsch, 8) = %q, want two trailing spaces", got)
	}
	if got := pad("Kölsch", 5); got != "Kölsch" {
		t.Errorf("pad(Kölsch, 5) = %q, want unchanged", got)
	}
}
