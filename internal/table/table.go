// Package table is a generic tabular view for the admin console: rows and
// columns over any row type, with column sorting affordances, per-page row
// selection, loading/empty states, and pager controls. It renders to a
// string with lipgloss and keeps no opinion about where its data comes from.
package table

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SortDir is a sort direction token.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ColumnDef describes one column over rows of type T.
type ColumnDef[T any] struct {
	Key      string         // Sort key reported through OnSortChange.
	Header   string         // Rendered header text.
	Cell     func(T) string // Cell renderer for one row.
	Sortable bool
	Width    int // Minimum rendered width; grows to fit content.
}

// Options configure a Model.
type Options[T any] struct {
	Columns []ColumnDef[T]
	// RowID extracts a stable identifier for selection and cursor keys.
	// When nil, an exported ID field is used if the row has one, falling
	// back to the row's full structural string.
	RowID func(T) string
	// Selectable enables checkbox selection.
	Selectable bool
	// OnSortChange fires after ToggleSort settles on a new key/direction.
	OnSortChange func(key string, dir SortDir)
	// EmptyMessage renders when there are no rows and loading is false.
	EmptyMessage string
}

// Model holds the view state for one table.
type Model[T any] struct {
	columns      []ColumnDef[T]
	rowID        func(T) string
	selectable   bool
	onSortChange func(string, SortDir)
	emptyMessage string

	rows     []T
	loading  bool
	sortKey  string
	sortDir  SortDir
	selected map[string]struct{}
	cursor   int

	page     int // 1-based
	pageSize int
	total    int
}

// New creates a table model.
func New[T any](opts Options[T]) *Model[T] {
	m := &Model[T]{
		columns:      opts.Columns,
		rowID:        opts.RowID,
		selectable:   opts.Selectable,
		onSortChange: opts.OnSortChange,
		emptyMessage: opts.EmptyMessage,
		selected:     make(map[string]struct{}),
		page:         1,
		pageSize:     10,
	}
	if m.rowID == nil {
		m.rowID = defaultRowID[T]
	}
	if m.emptyMessage == "" {
		m.emptyMessage = "No results."
	}
	return m
}

// defaultRowID uses an exported ID field when present, and the row's full
// structural string otherwise, so keys stay stable across renders even
// without an explicit identifier.
func defaultRowID[T any](row T) string {
	v := reflect.ValueOf(row)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if f := v.FieldByName("ID"); f.IsValid() && f.CanInterface() {
			return fmt.Sprint(f.Interface())
		}
	}
	return fmt.Sprintf("%#v", row)
}

// SetRows replaces the visible rows and the total element count behind them.
// The cursor is clamped into the new row range; selection is preserved.
func (m *Model[T]) SetRows(rows []T, total int) {
	m.rows = rows
	m.total = total
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Rows returns the currently visible rows.
func (m *Model[T]) Rows() []T { return m.rows }

// SetLoading toggles the loading state. Loading takes precedence over the
// empty state in View.
func (m *Model[T]) SetLoading(v bool) { m.loading = v }

// Loading reports the loading state.
func (m *Model[T]) Loading() bool { return m.loading }

// ToggleSort advances the sort state for a column key: an inactive column
// becomes active ascending; an active ascending column flips to descending
// and back again. There is no third unsorted state. Non-sortable keys are
// ignored.
func (m *Model[T]) ToggleSort(key string) {
	var col *ColumnDef[T]
	for i := range m.columns {
		if m.columns[i].Key == key {
			col = &m.columns[i]
			break
		}
	}
	if col == nil || !col.Sortable {
		return
	}

	if m.sortKey != key {
		m.sortKey = key
		m.sortDir = SortAsc
	} else if m.sortDir == SortAsc {
		m.sortDir = SortDesc
	} else {
		m.sortDir = SortAsc
	}

	if m.onSortChange != nil {
		m.onSortChange(m.sortKey, m.sortDir)
	}
}

// SetSort forces the sort state without firing OnSortChange, for restoring
// from saved query state.
func (m *Model[T]) SetSort(key string, dir SortDir) {
	m.sortKey = key
	m.sortDir = dir
}

// SortableColumns returns the keys of sortable columns in display order.
func (m *Model[T]) SortableColumns() []string {
	keys := make([]string, 0, len(m.columns))
	for _, c := range m.columns {
		if c.Sortable {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// SortKey returns the active sort key, empty when unsorted.
func (m *Model[T]) SortKey() string { return m.sortKey }

// SortDir returns the active sort direction.
func (m *Model[T]) SortDir() SortDir { return m.sortDir }

// ToggleRow flips one row's membership in the selection set.
func (m *Model[T]) ToggleRow(row T) {
	if !m.selectable {
		return
	}
	id := m.rowID(row)
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
	} else {
		m.selected[id] = struct{}{}
	}
}

// ToggleAll selects every visible row when any is unselected, and clears
// the visible rows from the selection when all are already selected.
// Selection is always scoped to the current page, never the full dataset.
func (m *Model[T]) ToggleAll() {
	if !m.selectable {
		return
	}
	if m.AllVisibleSelected() {
		for _, row := range m.rows {
			delete(m.selected, m.rowID(row))
		}
		return
	}
	for _, row := range m.rows {
		m.selected[m.rowID(row)] = struct{}{}
	}
}

// Selected returns the selected identifiers in visible-row order first,
// then any off-page identifiers.
func (m *Model[T]) Selected() []string {
	out := make([]string, 0, len(m.selected))
	seen := make(map[string]struct{}, len(m.selected))
	for _, row := range m.rows {
		id := m.rowID(row)
		if _, ok := m.selected[id]; ok {
			out = append(out, id)
			seen[id] = struct{}{}
		}
	}
	for id := range m.selected {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// IsSelected reports whether a row is in the selection set.
func (m *Model[T]) IsSelected(row T) bool {
	_, ok := m.selected[m.rowID(row)]
	return ok
}

// ClearSelection empties the selection set.
func (m *Model[T]) ClearSelection() {
	m.selected = make(map[string]struct{})
}

// AllVisibleSelected reports whether every visible row is selected. False
// for an empty page.
func (m *Model[T]) AllVisibleSelected() bool {
	if len(m.rows) == 0 {
		return false
	}
	for _, row := range m.rows {
		if _, ok := m.selected[m.rowID(row)]; !ok {
			return false
		}
	}
	return true
}

// Indeterminate reports the header checkbox's mixed state: some but not all
// visible rows selected.
func (m *Model[T]) Indeterminate() bool {
	if len(m.rows) == 0 || m.AllVisibleSelected() {
		return false
	}
	for _, row := range m.rows {
		if _, ok := m.selected[m.rowID(row)]; ok {
			return true
		}
	}
	return false
}

// MoveCursor moves the highlighted row by delta, clamped to visible rows.
func (m *Model[T]) MoveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
	}
}

// CursorRow returns the highlighted row, false when the page is empty.
func (m *Model[T]) CursorRow() (T, bool) {
	var zero T
	if len(m.rows) == 0 || m.cursor >= len(m.rows) {
		return zero, false
	}
	return m.rows[m.cursor], true
}

// ToggleCursorRow toggles selection of the highlighted row.
func (m *Model[T]) ToggleCursorRow() {
	if row, ok := m.CursorRow(); ok {
		m.ToggleRow(row)
	}
}

// SetPage records the 1-based page number. The model never clamps: callers
// own page validity, and an out-of-range page still renders.
func (m *Model[T]) SetPage(page int) { m.page = page }

// Page returns the 1-based page number.
func (m *Model[T]) Page() int { return m.page }

// SetPageSize records the page size used for pager math.
func (m *Model[T]) SetPageSize(size int) {
	if size > 0 {
		m.pageSize = size
	}
}

// TotalPages computes ceil(total / pageSize) with a floor of one page.
func (m *Model[T]) TotalPages() int {
	if m.total <= 0 || m.pageSize <= 0 {
		return 1
	}
	pages := (m.total + m.pageSize - 1) / m.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// CanPrev reports whether the pager's Prev control is enabled.
func (m *Model[T]) CanPrev() bool { return m.page > 1 }

// CanNext reports whether the pager's Next control is enabled.
func (m *Model[T]) CanNext() bool { return m.page < m.TotalPages() }

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	selectedMark  = "[x]"
	unselectedBox = "[ ]"
	mixedMark     = "[~]"
)

// View renders the table: header, body or loading/empty placeholder, and
// pager line.
func (m *Model[T]) View() string {
	widths := m.columnWidths()

	var b strings.Builder
	b.WriteString(m.renderHeader(widths))
	b.WriteByte('\n')

	switch {
	case m.loading:
		b.WriteString(dimStyle.Render("Loading..."))
		b.WriteByte('\n')
	case len(m.rows) == 0:
		b.WriteString(dimStyle.Render(m.emptyMessage))
		b.WriteByte('\n')
	default:
		for i, row := range m.rows {
			b.WriteString(m.renderRow(row, i == m.cursor, widths))
			b.WriteByte('\n')
		}
	}

	b.WriteString(m.renderPager())
	return b.String()
}

func (m *Model[T]) columnWidths() []int {
	widths := make([]int, len(m.columns))
	for i, col := range m.columns {
		w := lipgloss.Width(col.Header) + 2 // room for the sort marker
		if col.Width > w {
			w = col.Width
		}
		for _, row := range m.rows {
			if l := lipgloss.Width(col.Cell(row)); l > w {
				w = l
			}
		}
		widths[i] = w
	}
	return widths
}

func (m *Model[T]) renderHeader(widths []int) string {
	cells := make([]string, 0, len(m.columns)+1)
	if m.selectable {
		mark := unselectedBox
		if m.AllVisibleSelected() {
			mark = selectedMark
		} else if m.Indeterminate() {
			mark = mixedMark
		}
		cells = append(cells, mark)
	}
	for i, col := range m.columns {
		label := col.Header
		if col.Sortable && col.Key == m.sortKey {
			if m.sortDir == SortAsc {
				label += " ^"
			} else {
				label += " v"
			}
		}
		cells = append(cells, pad(label, widths[i]))
	}
	return headerStyle.Render(strings.Join(cells, "  "))
}

func (m *Model[T]) renderRow(row T, active bool, widths []int) string {
	cells := make([]string, 0, len(m.columns)+1)
	if m.selectable {
		mark := unselectedBox
		if m.IsSelected(row) {
			mark = selectedMark
		}
		cells = append(cells, mark)
	}
	for i, col := range m.columns {
		cells = append(cells, pad(col.Cell(row), widths[i]))
	}
	line := strings.Join(cells, "  ")
	if active {
		return cursorStyle.Render(line)
	}
	return line
}

func (m *Model[T]) renderPager() string {
	prev := "< Prev"
	next := "Next >"
	if !m.CanPrev() {
		prev = dimStyle.Render(prev)
	}
	if !m.CanNext() {
		next = dimStyle.Render(next)
	}
	return fmt.Sprintf("%s  Page %d of %d  %s", prev, m.page, m.TotalPages(), next)
}

// pad right-pads s to a terminal-cell width; len is wrong for multi-byte
// runes, so widths go through lipgloss.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
