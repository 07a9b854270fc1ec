package fsm

import (
	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/ecs/component"
)

// Filter narrows the entities a Transition considers. It runs during the scan
// and must not mutate the world.
type Filter func(w *ecs.World, e ecs.Entity) bool

// With accepts entities carrying every kind.
func With(kinds ...component.AnyKind) Filter {
	return func(w *ecs.World, e ecs.Entity) bool {
		for _, k := range kinds {
			if !ecs.HasKind(w, e, k) {
				return false
			}
		}
		return true
	}
}

// Without accepts entities carrying none of kinds.
func Without(kinds ...component.AnyKind) Filter {
	return func(w *ecs.World, e ecs.Entity) bool {
		for _, k := range kinds {
			if ecs.HasKind(w, e, k) {
				return false
			}
		}
		return true
	}
}

// InState accepts entities whose machine M marker currently holds id.
func InState[M any, S comparable](id S) Filter {
	return func(w *ecs.World, e ecs.Entity) bool {
		cur, err := Get[M, S](w, e)
		return err == nil && cur == id
	}
}

// All accepts entities that pass every filter. Nil filters are ignored.
func All(filters ...Filter) Filter {
	return func(w *ecs.World, e ecs.Entity) bool {
		for _, f := range filters {
			if f != nil && !f(w, e) {
				return false
			}
		}
		return true
	}
}
