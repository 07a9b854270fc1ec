package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrSystemNotFound     = errors.New("ecs: system not registered")
	ErrSystemTypeMismatch = errors.New("ecs: system signature mismatch")
)

// SystemID refers to a callable registered on a world. In and Out are the
// callable's input and output types.
type SystemID[In, Out any] struct {
	id uint64
}

func (s SystemID[In, Out]) Valid() bool {
	return s.id != 0
}

func (s SystemID[In, Out]) String() string {
	return fmt.Sprintf("system#%d", s.id)
}

// SystemWithInput is the shape of every registered callable.
type SystemWithInput[In, Out any] func(w *World, in In) (Out, error)

type callable struct {
	name string
	fn   any
}

// RegisterSystem stores fn on the world and returns a handle to it. The name
// only shows up in error messages.
func RegisterSystem[In, Out any](w *World, name string, fn SystemWithInput[In, Out]) SystemID[In, Out] {
	if w == nil || fn == nil {
		return SystemID[In, Out]{}
	}
	if w.callables == nil {
		w.callables = make(map[uint64]callable)
	}
	w.nextCall++
	w.callables[w.nextCall] = callable{name: name, fn: fn}
	return SystemID[In, Out]{id: w.nextCall}
}

// UnregisterSystem removes a callable. Later runs of id fail with
// ErrSystemNotFound.
func UnregisterSystem[In, Out any](w *World, id SystemID[In, Out]) bool {
	if w == nil {
		return false
	}
	if _, ok := w.callables[id.id]; !ok {
		return false
	}
	delete(w.callables, id.id)
	return true
}

// RunSystemWithInput invokes the callable behind id with in. Failures to
// resolve the callable are reported as ErrSystemNotFound or
// ErrSystemTypeMismatch; errors returned by the callable pass through
// unchanged.
func RunSystemWithInput[In, Out any](w *World, id SystemID[In, Out], in In) (Out, error) {
	var zero Out
	if w == nil {
		return zero, fmt.Errorf("%w: %s on nil world", ErrSystemNotFound, id)
	}
	entry, ok := w.callables[id.id]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrSystemNotFound, id)
	}
	fn, ok := entry.fn.(SystemWithInput[In, Out])
	if !ok {
		return zero, fmt.Errorf("%w: %s (%s) is %T", ErrSystemTypeMismatch, id, entry.name, entry.fn)
	}
	return fn(w, in)
}

// SystemName returns the name a callable was registered with.
func SystemName[In, Out any](w *World, id SystemID[In, Out]) string {
	if w == nil {
		return ""
	}
	return w.callables[id.id].name
}

// HasSystem reports whether id still resolves to a callable.
func HasSystem[In, Out any](w *World, id SystemID[In, Out]) bool {
	if w == nil {
		return false
	}
	_, ok := w.callables[id.id]
	return ok
}
