package fsm

import "github.com/milk9111/ecsfsm/ecs"

// SkipReason says why a qualifying entity did not complete a transition.
type SkipReason string

const (
	SkipEntityVanished SkipReason = "entity_vanished"
	SkipMarkerRemoved  SkipReason = "marker_removed"
	SkipLifecycleError SkipReason = "lifecycle_error"
)

// Observer is told about every committed or skipped transition. States are
// passed as any so one observer can watch machines with different state types.
type Observer interface {
	Transitioned(machine string, e ecs.Entity, prev, next any)
	Skipped(machine string, e ecs.Entity, reason SkipReason)
}

type nopObserver struct{}

func (nopObserver) Transitioned(string, ecs.Entity, any, any) {}
func (nopObserver) Skipped(string, ecs.Entity, SkipReason)    {}
