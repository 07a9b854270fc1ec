package fsm

import "github.com/milk9111/ecsfsm/ecs"

type hookList[S comparable] struct {
	hooks []HookID[S]
}

// Register appends id. Registration order is execution order.
func (l *hookList[S]) Register(id HookID[S]) {
	l.hooks = append(l.hooks, id)
}

// Snapshot returns a copy of the registered hooks, so a hook that registers
// more hooks does not change the list currently being run.
func (l *hookList[S]) Snapshot() []HookID[S] {
	if len(l.hooks) == 0 {
		return nil
	}
	return append([]HookID[S](nil), l.hooks...)
}

func (l *hookList[S]) Len() int {
	return len(l.hooks)
}

// BeforeTransition holds the hooks run before machine M commits a new state.
type BeforeTransition[M any, S comparable] struct {
	hookList[S]
}

// AfterTransition holds the hooks run after machine M committed a new state.
type AfterTransition[M any, S comparable] struct {
	hookList[S]
}

// Install adds empty Before and After registries for machine M. Every machine
// a Transition drives must be installed, even with no hooks.
func Install[M any, S comparable](w *ecs.World) error {
	if ecs.HasResource[BeforeTransition[M, S]](w) || ecs.HasResource[AfterTransition[M, S]](w) {
		return &ConfigError{Machine: MachineName[M](), Phase: PhaseSetup, Err: ErrDuplicateRegistry}
	}
	ecs.InsertResource(w, &BeforeTransition[M, S]{})
	ecs.InsertResource(w, &AfterTransition[M, S]{})
	return nil
}

// Registries returns both registries of machine M.
func Registries[M any, S comparable](w *ecs.World) (*BeforeTransition[M, S], *AfterTransition[M, S], error) {
	before, ok := ecs.Resource[BeforeTransition[M, S]](w)
	if !ok {
		return nil, nil, &ConfigError{Machine: MachineName[M](), Phase: PhaseBefore, Err: ErrMissingRegistry}
	}
	after, ok := ecs.Resource[AfterTransition[M, S]](w)
	if !ok {
		return nil, nil, &ConfigError{Machine: MachineName[M](), Phase: PhaseAfter, Err: ErrMissingRegistry}
	}
	return before, after, nil
}

// OnBefore registers fn and appends it to machine M's Before hooks.
func OnBefore[M any, S comparable](w *ecs.World, name string, fn HookFunc[S]) (HookID[S], error) {
	before, _, err := Registries[M, S](w)
	if err != nil {
		return HookID[S]{}, err
	}
	id := RegisterHook(w, name, fn)
	before.Register(id)
	return id, nil
}

// OnAfter registers fn and appends it to machine M's After hooks.
func OnAfter[M any, S comparable](w *ecs.World, name string, fn HookFunc[S]) (HookID[S], error) {
	_, after, err := Registries[M, S](w)
	if err != nil {
		return HookID[S]{}, err
	}
	id := RegisterHook(w, name, fn)
	after.Register(id)
	return id, nil
}
