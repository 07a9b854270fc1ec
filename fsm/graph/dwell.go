package graph

import (
	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/ecs/component"
	"github.com/milk9111/ecsfsm/fsm"
)

// Dwell counts the ticks an entity has spent in its current state of
// machine M.
type Dwell[M any] struct {
	Ticks int
}

func dwellKind[M any]() component.ComponentKind[Dwell[M]] {
	return component.KindOf[Dwell[M]]()
}

// DwellOf returns the dwell count of e in machine M, or 0.
func DwellOf[M any](w *ecs.World, e ecs.Entity) int {
	if d, ok := ecs.Get(w, e, dwellKind[M]()); ok {
		return d.Ticks
	}
	return 0
}

func resetDwell[M any](w *ecs.World, e ecs.Entity) error {
	if d, ok := ecs.Get(w, e, dwellKind[M]()); ok {
		d.Ticks = 0
		return nil
	}
	return ecs.Add(w, e, dwellKind[M](), &Dwell[M]{})
}

type dwellSystem[M any] struct{}

func (dwellSystem[M]) Update(w *ecs.World) error {
	ecs.ForEach2(w, fsm.Kind[M, string](), dwellKind[M](), func(_ ecs.Entity, _ *fsm.ActiveState[M, string], d *Dwell[M]) {
		d.Ticks++
	})
	return nil
}
