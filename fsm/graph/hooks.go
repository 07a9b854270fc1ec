package graph

import (
	"fmt"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/fsm"
)

// HookFactory builds a hook from the action's arg.
type HookFactory func(env Env, arg any) (fsm.HookFunc[string], error)

// Actions is a name -> factory table for hooks.
type Actions struct {
	factories map[string]HookFactory
}

// DefaultActions returns log, add_tag and remove_tag.
func DefaultActions() *Actions {
	a := &Actions{factories: map[string]HookFactory{}}
	a.Register("log", func(env Env, arg any) (fsm.HookFunc[string], error) {
		msg := "transition"
		if s, ok := asString(arg); ok {
			msg = s
		}
		return func(_ *ecs.World, ev fsm.TransitionEvent[string]) error {
			env.Logger.Info().
				Str("machine", env.Machine).
				Stringer("entity", ev.Entity).
				Str("prev", ev.Prev).
				Str("next", ev.Next).
				Msg(msg)
			return nil
		}, nil
	})
	a.Register("add_tag", func(env Env, arg any) (fsm.HookFunc[string], error) {
		name, ok := asString(arg)
		if !ok {
			return nil, fmt.Errorf("add_tag wants a tag name, got %v", arg)
		}
		return func(w *ecs.World, ev fsm.TransitionEvent[string]) error {
			return env.Tags.Add(w, ev.Entity, name)
		}, nil
	})
	a.Register("remove_tag", func(env Env, arg any) (fsm.HookFunc[string], error) {
		name, ok := asString(arg)
		if !ok {
			return nil, fmt.Errorf("remove_tag wants a tag name, got %v", arg)
		}
		return func(w *ecs.World, ev fsm.TransitionEvent[string]) error {
			env.Tags.Remove(w, ev.Entity, name)
			return nil
		}, nil
	})
	return a
}

func (a *Actions) Register(name string, f HookFactory) {
	if a.factories == nil {
		a.factories = map[string]HookFactory{}
	}
	a.factories[name] = f
}

func (a *Actions) Lookup(name string) (HookFactory, bool) {
	f, ok := a.factories[name]
	return f, ok
}
