// Package fetch wraps an asynchronous data-producing operation with status
// tracking, dependency-driven auto-runs, and detach-aware state updates so a
// screen that has been torn down is never mutated by a late response.
package fetch

import (
	"context"
	"sync"
)

// Status is the lifecycle of a fetch operation.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

// String implements fmt.Stringer for log output.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Operation produces the value a Runner tracks.
type Operation[T any] func(ctx context.Context) (T, error)

// Options configure a Runner.
type Options[T any] struct {
	// AutoRun triggers a run on Start and whenever UpdateDependencies
	// observes a change.
	AutoRun bool
	// Dependencies is the initial dependency snapshot compared shallowly,
	// in order, against later UpdateDependencies calls.
	Dependencies []any
	// OnSuccess fires after a successful settle while attached.
	OnSuccess func(T)
	// OnError fires after a failed settle while attached.
	OnError func(error)
}

// Snapshot is a point-in-time view of a Runner's state.
type Snapshot[T any] struct {
	Status Status
	Data   T
	// HasData distinguishes a zero-value payload from no payload.
	HasData bool
	Err     error
}

// Runner tracks one operation's state. Concurrent Run calls are not
// serialized and superseded calls are not cancelled: the latest settle wins,
// which may not be the latest issued. Callers needing strict ordering must
// serialize runs themselves.
type Runner[T any] struct {
	op        Operation[T]
	onSuccess func(T)
	onError   func(error)
	autoRun   bool

	mu       sync.Mutex
	status   Status
	data     T
	hasData  bool
	err      error
	deps     []any
	detached bool
}

// NewRunner creates a Runner in the idle state. Nothing runs until Start,
// Run, or a dependency change.
func NewRunner[T any](op Operation[T], opts Options[T]) *Runner[T] {
	return &Runner[T]{
		op:        op,
		onSuccess: opts.OnSuccess,
		onError:   opts.OnError,
		autoRun:   opts.AutoRun,
		deps:      append([]any(nil), opts.Dependencies...),
	}
}

// Start performs the initial auto-run, if configured. Safe to call once per
// screen mount.
func (r *Runner[T]) Start(ctx context.Context) {
	if r.autoRun {
		r.Run(ctx) //nolint:errcheck // auto-runs surface through state, not returns
	}
}

// Run moves to pending, clears any previous error, and invokes the
// operation. The result is always returned to the caller; state is only
// mutated while the Runner is attached.
func (r *Runner[T]) Run(ctx context.Context) (T, error) {
	r.mu.Lock()
	r.status = StatusPending
	r.err = nil
	r.mu.Unlock()

	data, err := r.op(ctx)

	r.mu.Lock()
	if r.detached {
		r.mu.Unlock()
		return data, err
	}
	var onSuccess func(T)
	var onError func(error)
	if err != nil {
		r.status = StatusError
		r.err = err
		onError = r.onError
	} else {
		r.status = StatusSuccess
		r.data = data
		r.hasData = true
		onSuccess = r.onSuccess
	}
	r.mu.Unlock()

	if onError != nil {
		onError(err)
	}
	if onSuccess != nil {
		onSuccess(data)
	}
	return data, err
}

// UpdateDependencies compares deps against the previous snapshot (shallow,
// ordered) and, when they differ and AutoRun is set, runs the operation
// synchronously. Returns true when a change was observed.
func (r *Runner[T]) UpdateDependencies(ctx context.Context, deps ...any) bool {
	r.mu.Lock()
	changed := len(deps) != len(r.deps)
	if !changed {
		for i := range deps {
			if deps[i] != r.deps[i] {
				changed = true
				break
			}
		}
	}
	if changed {
		r.deps = append([]any(nil), deps...)
	}
	autoRun := r.autoRun
	r.mu.Unlock()

	if changed && autoRun {
		r.Run(ctx) //nolint:errcheck // auto-runs surface through state, not returns
	}
	return changed
}

// Detach stops all future state mutation. In-flight operations still settle
// and return to their callers, but the Runner no longer records them.
func (r *Runner[T]) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detached = true
}

// Reset returns the Runner to idle with no data and no error.
func (r *Runner[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.status = StatusIdle
	r.data = zero
	r.hasData = false
	r.err = nil
}

// SetData replaces the tracked value without running the operation, for
// optimistic mutations. Status moves to success.
func (r *Runner[T]) SetData(data T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.detached {
		return
	}
	r.data = data
	r.hasData = true
	r.status = StatusSuccess
}

// UpdateData applies fn to the current value, for in-place optimistic edits.
func (r *Runner[T]) UpdateData(fn func(T) T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.detached {
		return
	}
	r.data = fn(r.data)
	r.hasData = true
	r.status = StatusSuccess
}

// State returns a snapshot of the current status, data, and error.
func (r *Runner[T]) State() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot[T]{Status: r.status, Data: r.data, HasData: r.hasData, Err: r.err}
}
