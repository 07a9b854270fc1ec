package fsm

import (
	"errors"
	"fmt"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/ecs/component"
)

var (
	// ErrNotFound is returned when an entity has no marker for a machine.
	ErrNotFound = errors.New("fsm: active state not found")
	// ErrMissingRegistry means Install was never called for a machine.
	ErrMissingRegistry = errors.New("fsm: transition registry not installed")
	// ErrDuplicateRegistry means Install ran twice for the same machine.
	ErrDuplicateRegistry = errors.New("fsm: transition registry already installed")
	// ErrInvalidCondition means a transition was built without a condition.
	ErrInvalidCondition = errors.New("fsm: invalid condition")
)

// Phase names the step of a transition attempt an error came from.
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseCondition Phase = "condition"
	PhaseBefore    Phase = "before"
	PhaseAfter     Phase = "after"
)

// ConfigError reports a setup or invocation failure. It aborts the tick it
// happened in; data races against entity removal never produce one.
type ConfigError struct {
	Machine string
	Phase   Phase
	Entity  ecs.Entity
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Entity.Valid() {
		return fmt.Sprintf("fsm: machine %s: %s phase: entity %s: %v", e.Machine, e.Phase, e.Entity, e.Err)
	}
	return fmt.Sprintf("fsm: machine %s: %s phase: %v", e.Machine, e.Phase, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// isLifecycle reports whether err only says that an entity or its marker went
// away, which is data, not a setup mistake.
func isLifecycle(err error) bool {
	return errors.Is(err, component.ErrEntityNotAlive) || errors.Is(err, ErrNotFound)
}
