// Package viewmodel composes the query-state store, the async fetcher, and
// the REST client into per-entity list state for the console: rows,
// pagination, filters, sort, and mutating actions that all funnel through
// the store. Rendering layers consume these types and never see transport
// details or pagination envelope differences.
package viewmodel

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/draughtworks/brewdeck/internal/client"
	"github.com/draughtworks/brewdeck/internal/notify"
	"github.com/draughtworks/brewdeck/internal/querystate"
	"github.com/draughtworks/brewdeck/pkg/models"
)

// ErrStaleEdit is returned when a submit detects that the record changed on
// the server after the form was loaded. The caller receives the fresh record
// and should re-render the form from it.
var ErrStaleEdit = errors.New("record changed since the form was loaded")

// DefaultPageSize is the page size used when the query state has none.
const DefaultPageSize = 10

// Query-state keys shared by every list screen.
const (
	keyPage = "page"
	keySize = "size"
	keySort = "sort"
)

// Pagination is the uniform descriptor every list view-model exposes,
// regardless of whether the backend paged the data or the view-model did.
type Pagination struct {
	Page          int // 1-based.
	Size          int
	TotalElements int
	TotalPages    int
}

// Sort is the single active sort: one key, one direction.
type Sort struct {
	Key string
	Dir string // "asc" or "desc".
}

// Token serializes the sort as the combined "key,dir" form used in query
// state and on the wire.
func (s Sort) Token() string {
	if s.Key == "" {
		return ""
	}
	return s.Key + "," + s.Dir
}

// ParseSort splits a "key,dir" token, applying the fallback when the token
// is empty. A bare key defaults to ascending.
func ParseSort(token string, fallback Sort) Sort {
	if token == "" {
		return fallback
	}
	parts := strings.SplitN(token, ",", 2)
	s := Sort{Key: parts[0], Dir: "asc"}
	if len(parts) == 2 && strings.EqualFold(parts[1], "desc") {
		s.Dir = "desc"
	}
	return s
}

// readPage extracts the 1-based page from query state, floored at 1.
func readPage(st querystate.State) int {
	n, err := strconv.Atoi(st.Get(keyPage, "1"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// readSize extracts the page size from query state, bounded to [1, 100].
func readSize(st querystate.State) int {
	n, err := strconv.Atoi(st.Get(keySize, strconv.Itoa(DefaultPageSize)))
	if err != nil || n < 1 {
		return DefaultPageSize
	}
	if n > 100 {
		n = 100
	}
	return n
}

// sortField describes how one sort key reads a comparable value from a row.
// Numeric fields compare numerically; everything else compares as a
// lowercased string.
type sortField[T any] struct {
	str func(T) string
	num func(T) float64
}

// clientSort stable-sorts rows by the named field. Unknown keys leave the
// order untouched.
func clientSort[T any](rows []T, fields map[string]sortField[T], s Sort) {
	f, ok := fields[s.Key]
	if !ok {
		return
	}
	desc := s.Dir == "desc"
	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		if f.num != nil {
			less = f.num(rows[i]) < f.num(rows[j])
		} else {
			less = strings.ToLower(f.str(rows[i])) < strings.ToLower(f.str(rows[j]))
		}
		if desc {
			return !less && !equalField(f, rows[i], rows[j])
		}
		return less
	})
}

func equalField[T any](f sortField[T], a, b T) bool {
	if f.num != nil {
		return f.num(a) == f.num(b)
	}
	return strings.ToLower(f.str(a)) == strings.ToLower(f.str(b))
}

// clientSlice returns the 1-based page slice [(page-1)*size, +size), clamped
// to the collection bounds.
func clientSlice[T any](rows []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(rows) || start < 0 {
		return []T{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// notifyDeleteFailure raises exactly one notification for a failed delete,
// categorized by what went wrong: the record changed underneath us, the
// server rejected the request, or something else entirely.
func notifyDeleteFailure(n notify.Notifier, entity string, err error) {
	title := "Delete failed"
	desc := "The " + entity + " could not be deleted."

	var apiErr *client.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusConflict:
			title = "Conflict"
			desc = "The " + entity + " was changed by someone else. The list has been refreshed."
		case http.StatusBadRequest:
			title = "Invalid request"
			desc = "The " + entity + " could not be deleted: " + apiErr.Message
		}
	}
	n.Notify(notify.Notification{Title: title, Description: desc, Err: err})
}

// notifyCreateFailure raises exactly one notification for a failed create:
// server-side validation rejections name the violation, everything else is a
// generic failure.
func notifyCreateFailure(n notify.Notifier, entity string, err error) {
	title := "Create failed"
	desc := "The " + entity + " could not be created."

	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		title = "Invalid request"
		desc = "The " + entity + " could not be created: " + apiErr.Message
	}
	n.Notify(notify.Notification{Title: title, Description: desc, Err: err})
}

// normalizeSlice wraps an unpaged collection into a canonical page envelope
// after client-side slicing, so bare-array endpoints and paged endpoints
// look identical past this boundary.
func normalizeSlice[T any](all []T, page, size int) *models.Page[T] {
	content := clientSlice(all, page, size)
	out := make([]T, len(content))
	copy(out, content)
	return &models.Page[T]{
		Content:       out,
		TotalElements: len(all),
		TotalPages:    models.TotalPagesFor(len(all), size),
		Size:          size,
		Number:        page - 1,
	}
}
