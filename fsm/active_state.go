package fsm

import (
	"fmt"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/ecs/component"
)

// ActiveState is the per-entity marker for machine M. It is a plain value
// cell: any S can be written, legality lives in which transitions exist.
type ActiveState[M any, S comparable] struct {
	ID S
}

// Kind returns the component kind that stores ActiveState[M, S].
func Kind[M any, S comparable]() component.ComponentKind[ActiveState[M, S]] {
	return component.KindOf[ActiveState[M, S]]()
}

// Init enters e into machine M at state id, replacing any previous marker.
func Init[M any, S comparable](w *ecs.World, e ecs.Entity, id S) error {
	return ecs.Add(w, e, Kind[M, S](), &ActiveState[M, S]{ID: id})
}

// Get returns the active state of e in machine M.
func Get[M any, S comparable](w *ecs.World, e ecs.Entity) (S, error) {
	marker, ok := ecs.Get(w, e, Kind[M, S]())
	if !ok {
		var zero S
		return zero, fmt.Errorf("%w: machine %s entity %s", ErrNotFound, MachineName[M](), e)
	}
	return marker.ID, nil
}

// Set overwrites the active state of e in machine M.
func Set[M any, S comparable](w *ecs.World, e ecs.Entity, id S) error {
	marker, ok := ecs.Get(w, e, Kind[M, S]())
	if !ok {
		return fmt.Errorf("%w: machine %s entity %s", ErrNotFound, MachineName[M](), e)
	}
	marker.ID = id
	return nil
}

// Retire removes e from machine M.
func Retire[M any, S comparable](w *ecs.World, e ecs.Entity) bool {
	return ecs.Remove(w, e, Kind[M, S]())
}
