package de

import (
	"fmt"
	"math"
	"sync"

	psode "github.com/adameus03/pso-de"
)

// Context is an opaque handle to a registered callback state.  It is the
// only thing that crosses a solver boundary; Invoke turns it back into the
// typed state.
type Context uintptr

type entry struct {
	dims int
	call func(View) float64
	key  interface{}

	mu  sync.Mutex
	err error
}

func (e *entry) record(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
}

var registry = struct {
	sync.Mutex
	next    Context
	entries map[Context]*entry
	busy    map[interface{}]Context
}{
	entries: map[Context]*entry{},
	busy:    map[interface{}]Context{},
}

// Register makes state available to callbacks through the returned Context
// until Delete is called.  A state can be registered only once at a time;
// a second registration fails with ErrContextBusy.
func Register[S any](state *S, dims int, fn func(*S, []float64) float64) (Context, error) {
	if state == nil {
		return 0, fmt.Errorf("de: register: nil state")
	}
	call := func(x View) float64 { return fn(state, x.Copy()) }
	return register(state, dims, call)
}

func register(key interface{}, dims int, call func(View) float64) (Context, error) {
	registry.Lock()
	defer registry.Unlock()

	if key != nil {
		if _, ok := registry.busy[key]; ok {
			return 0, ErrContextBusy
		}
	}
	registry.next++
	ctx := registry.next
	registry.entries[ctx] = &entry{dims: dims, call: call, key: key}
	if key != nil {
		registry.busy[key] = ctx
	}
	return ctx, nil
}

func lookup(ctx Context) (*entry, bool) {
	registry.Lock()
	defer registry.Unlock()
	e, ok := registry.entries[ctx]
	return e, ok
}

// Delete ends the registration.  Deleting an unknown context is a no-op.
func (ctx Context) Delete() {
	registry.Lock()
	defer registry.Unlock()
	e, ok := registry.entries[ctx]
	if !ok {
		return
	}
	delete(registry.entries, ctx)
	if e.key != nil {
		delete(registry.busy, e.key)
	}
}

// Err returns the first failure recorded by Invoke for ctx.
func (ctx Context) Err() error {
	e, ok := lookup(ctx)
	if !ok {
		return ErrUnknownContext
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Invoke is the Callback every solver target points at.  It resolves ctx,
// checks that x has the registered dimension and calls the typed function.
// A dimension mismatch or a panic in the function is recorded on the
// context and evaluates to +Inf, so the solver always sees a value.
func Invoke(x View, ctx Context) (val float64) {
	e, ok := lookup(ctx)
	if !ok {
		return math.Inf(1)
	}
	if x.Len() != e.dims {
		e.record(&BoundaryError{Op: "invoke", Err: &psode.DimensionError{Want: e.dims, Got: x.Len()}})
		return math.Inf(1)
	}

	defer func() {
		if r := recover(); r != nil {
			e.record(&BoundaryError{Op: "callback", Err: fmt.Errorf("panic: %v", r)})
			val = math.Inf(1)
		}
	}()
	return e.call(x)
}

// registered returns the number of live contexts.
func registered() int {
	registry.Lock()
	defer registry.Unlock()
	return len(registry.entries)
}
