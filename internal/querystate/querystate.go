// Package querystate models list-screen parameters (page, size, filters,
// sort) as a navigable key-value store with history semantics, so console
// screens can share and restore their position the way a URL query string
// would.
package querystate

import (
	"net/url"
	"sort"
	"sync"
)

// Mode selects how a write affects navigation history.
type Mode int

const (
	// Push records a new history entry (the default for user actions).
	Push Mode = iota
	// Replace rewrites the current entry without growing history.
	Replace
)

// State is a flat snapshot of the store. Values are never empty strings;
// writing an empty value removes the key.
type State map[string]string

// Get returns the value for key, or fallback when absent.
func (s State) Get(key, fallback string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

// Clone returns an independent copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Encode serializes the state as a canonical query string with sorted keys.
func (s State) Encode() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := url.Values{}
	for _, k := range keys {
		vals.Set(k, s[k])
	}
	return vals.Encode()
}

// Patch is a set of key updates to merge into the current state. Empty
// values delete their key; unspecified keys are preserved.
type Patch map[string]string

// PatchFunc derives a patch from the current state. The snapshot passed in
// is fresh at application time, so concurrent writers merge against the
// latest state rather than a stale read.
type PatchFunc func(current State) Patch

// Listener observes navigation events. It receives the state after the
// write has been applied.
type Listener func(State)

// Store is the process-wide navigation state for one console session.
// All access goes through Read and Write; there is no ambient lookup.
type Store struct {
	mu        sync.Mutex
	current   State
	history   []State
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store with an empty current state and one history entry.
func NewStore() *Store {
	return &Store{
		current:   State{},
		history:   []State{{}},
		listeners: make(map[int]Listener),
	}
}

// ParseStore creates a store initialized from an encoded query string.
// Malformed pairs are dropped rather than failing the whole parse.
func ParseStore(query string) *Store {
	s := NewStore()
	vals, err := url.ParseQuery(query)
	if err == nil {
		for k := range vals {
			if v := vals.Get(k); v != "" {
				s.current[k] = v
			}
		}
		s.history[len(s.history)-1] = s.current.Clone()
	}
	return s
}

// Read returns a snapshot of the current state. The snapshot is a copy;
// mutating it does not affect the store.
func (s *Store) Read() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Write merges the patch into the current state and navigates. Keys with
// empty values are removed; all other keys are set. Push mode appends a
// history entry, Replace rewrites the current one. Listeners run after the
// state has settled, outside the lock.
func (s *Store) Write(patch Patch, mode Mode) {
	s.write(func(State) Patch { return patch }, mode)
}

// WriteFunc is Write with a patch derived from a fresh snapshot of the
// current state, for callers that need read-modify-write atomicity.
func (s *Store) WriteFunc(fn PatchFunc, mode Mode) {
	s.write(fn, mode)
}

func (s *Store) write(fn PatchFunc, mode Mode) {
	s.mu.Lock()

	patch := fn(s.current.Clone())
	next := s.current.Clone()
	for k, v := range patch {
		if v == "" {
			delete(next, k)
		} else {
			next[k] = v
		}
	}
	s.current = next

	switch mode {
	case Replace:
		s.history[len(s.history)-1] = next.Clone()
	default:
		s.history = append(s.history, next.Clone())
	}

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	snapshot := next.Clone()
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// Back pops the latest history entry and makes the previous one current.
// Returns false when already at the oldest entry.
func (s *Store) Back() bool {
	s.mu.Lock()

	if len(s.history) < 2 {
		s.mu.Unlock()
		return false
	}
	s.history = s.history[:len(s.history)-1]
	s.current = s.history[len(s.history)-1].Clone()

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	snapshot := s.current.Clone()
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

// HistoryLen reports the number of history entries.
func (s *Store) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Subscribe registers a listener for navigation events and returns an
// unsubscribe function.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
