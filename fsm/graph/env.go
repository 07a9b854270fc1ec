package graph

import (
	"github.com/rs/zerolog"

	"github.com/milk9111/ecsfsm/ecs"
)

// Env is what condition and hook factories get to build their callables. It
// hides the machine type so one factory serves every graph machine.
type Env struct {
	Machine string
	Tags    *Tags
	Logger  zerolog.Logger
	// State returns the entity's current state in this machine.
	State func(w *ecs.World, e ecs.Entity) (string, error)
	// Dwell returns the ticks spent in the current state.
	Dwell func(w *ecs.World, e ecs.Entity) int
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		return int(t), true
	case float32:
		return int(t), true
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}
