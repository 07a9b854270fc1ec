package graph

import (
	"fmt"
	"sort"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/fsm"
)

// ConditionFactory builds a condition from the edge's arg.
type ConditionFactory func(env Env, arg any) (fsm.ConditionFunc, error)

// Conditions is a name -> factory table consulted by Build.
type Conditions struct {
	factories map[string]ConditionFactory
}

// DefaultConditions returns a table holding the built-in conditions:
// always, never, dwell_at_least, has_tag and lacks_tag.
func DefaultConditions() *Conditions {
	c := &Conditions{factories: map[string]ConditionFactory{}}
	c.Register("always", func(Env, any) (fsm.ConditionFunc, error) {
		return fsm.Always, nil
	})
	c.Register("never", func(Env, any) (fsm.ConditionFunc, error) {
		return fsm.Never, nil
	})
	c.Register("dwell_at_least", func(env Env, arg any) (fsm.ConditionFunc, error) {
		n, ok := asInt(arg)
		if !ok || n < 0 {
			return nil, fmt.Errorf("dwell_at_least wants a non-negative tick count, got %v", arg)
		}
		return func(w *ecs.World, e ecs.Entity) (bool, error) {
			return env.Dwell(w, e) >= n, nil
		}, nil
	})
	c.Register("has_tag", func(env Env, arg any) (fsm.ConditionFunc, error) {
		name, ok := asString(arg)
		if !ok {
			return nil, fmt.Errorf("has_tag wants a tag name, got %v", arg)
		}
		return func(w *ecs.World, e ecs.Entity) (bool, error) {
			return env.Tags.Has(w, e, name), nil
		}, nil
	})
	c.Register("lacks_tag", func(env Env, arg any) (fsm.ConditionFunc, error) {
		name, ok := asString(arg)
		if !ok {
			return nil, fmt.Errorf("lacks_tag wants a tag name, got %v", arg)
		}
		return func(w *ecs.World, e ecs.Entity) (bool, error) {
			return !env.Tags.Has(w, e, name), nil
		}, nil
	})
	return c
}

// Register adds or replaces a factory.
func (c *Conditions) Register(name string, f ConditionFactory) {
	if c.factories == nil {
		c.factories = map[string]ConditionFactory{}
	}
	c.factories[name] = f
}

func (c *Conditions) Lookup(name string) (ConditionFactory, bool) {
	f, ok := c.factories[name]
	return f, ok
}

func (c *Conditions) Names() []string {
	out := make([]string, 0, len(c.factories))
	for name := range c.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
