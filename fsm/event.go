package fsm

import (
	"fmt"

	"github.com/milk9111/ecsfsm/ecs"
)

// EventTransition is the ecs.Event type published after each committed
// transition. Data holds the TransitionEvent value.
const EventTransition = "fsm.transition"

// TransitionEvent is passed by value to every hook of one transition attempt.
// Prev is captured before any hook runs, so Before and After hooks see the
// same pair.
type TransitionEvent[S comparable] struct {
	Entity ecs.Entity
	Prev   S
	Next   S
}

func (ev TransitionEvent[S]) String() string {
	return fmt.Sprintf("entity=%s prev=%v next=%v", ev.Entity, ev.Prev, ev.Next)
}

// HookFunc reacts to a transition. A returned error aborts the tick unless it
// only reports a vanished entity or marker.
type HookFunc[S comparable] func(w *ecs.World, ev TransitionEvent[S]) error

// HookID is the world handle of a registered hook.
type HookID[S comparable] = ecs.SystemID[TransitionEvent[S], struct{}]

// ConditionFunc decides whether e may take a transition this tick.
type ConditionFunc func(w *ecs.World, e ecs.Entity) (bool, error)

// ConditionID is the world handle of a registered condition.
type ConditionID = ecs.SystemID[ecs.Entity, bool]

// RegisterHook stores fn on the world without attaching it to a registry.
func RegisterHook[S comparable](w *ecs.World, name string, fn HookFunc[S]) HookID[S] {
	if fn == nil {
		return HookID[S]{}
	}
	return ecs.RegisterSystem[TransitionEvent[S], struct{}](w, name, func(w *ecs.World, ev TransitionEvent[S]) (struct{}, error) {
		return struct{}{}, fn(w, ev)
	})
}

// RegisterCondition stores fn on the world and returns its handle.
func RegisterCondition(w *ecs.World, name string, fn ConditionFunc) ConditionID {
	if fn == nil {
		return ConditionID{}
	}
	return ecs.RegisterSystem(w, name, ecs.SystemWithInput[ecs.Entity, bool](fn))
}

// Always is a condition that lets every candidate through.
func Always(*ecs.World, ecs.Entity) (bool, error) {
	return true, nil
}

// Never is a condition that blocks every candidate.
func Never(*ecs.World, ecs.Entity) (bool, error) {
	return false, nil
}
