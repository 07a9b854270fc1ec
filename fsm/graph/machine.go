package graph

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/fsm"
	"github.com/milk9111/ecsfsm/prefabs"
)

// Options tunes Build. Zero values fall back to the defaults.
type Options struct {
	Conditions *Conditions
	Actions    *Actions
	Logger     *zerolog.Logger
	Observer   fsm.Observer
	LoadScript func(name string) ([]byte, error)
}

// Machine is a graph compiled for machine type M. States are strings.
type Machine[M any] struct {
	graph       *Graph
	env         Env
	transitions []*fsm.Transition[M, string]
	scripts     []*scriptCondition
	logger      zerolog.Logger
}

// Build installs machine M on the world and compiles one transition per
// edge. Edges run in declaration order, so an entity moved by an earlier edge
// can be picked up by a later one within the same tick.
func Build[M any](w *ecs.World, g *Graph, opts Options) (*Machine[M], error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrInvalidGraph)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if opts.Conditions == nil {
		opts.Conditions = DefaultConditions()
	}
	if opts.Actions == nil {
		opts.Actions = DefaultActions()
	}
	if opts.LoadScript == nil {
		opts.LoadScript = prefabs.LoadScript
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("graph", g.Name).Logger()

	m := &Machine[M]{
		graph:  g,
		logger: logger,
		env: Env{
			Machine: g.Name,
			Tags:    TagsOf(w),
			Logger:  logger,
			State:   fsm.Get[M, string],
			Dwell:   DwellOf[M],
		},
	}

	if err := fsm.Install[M, string](w); err != nil {
		return nil, err
	}
	before, after, err := fsm.Registries[M, string](w)
	if err != nil {
		return nil, err
	}
	if err := m.attachHooks(w, opts.Actions, g.Hooks.Before, before.Register); err != nil {
		return nil, err
	}
	if err := m.attachHooks(w, opts.Actions, g.Hooks.After, after.Register); err != nil {
		return nil, err
	}
	after.Register(fsm.RegisterHook[string](w, g.Name+".reset_dwell", func(w *ecs.World, ev fsm.TransitionEvent[string]) error {
		return resetDwell[M](w, ev.Entity)
	}))

	for _, edge := range g.Transitions {
		cond, err := m.condition(edge, opts)
		if err != nil {
			return nil, fmt.Errorf("graph %s: transition %s: %w", g.Name, edge.Label(), err)
		}
		trOpts := []fsm.Option{
			fsm.WithName(edge.Label()),
			fsm.WithFilter(fsm.InState[M](edge.From)),
			fsm.WithLogger(logger),
		}
		if opts.Observer != nil {
			trOpts = append(trOpts, fsm.WithObserver(opts.Observer))
		}
		id := fsm.RegisterCondition(w, g.Name+"."+edge.Label(), cond)
		m.transitions = append(m.transitions, fsm.NewTransition[M](id, edge.To, trOpts...))
	}
	return m, nil
}

func (m *Machine[M]) attachHooks(w *ecs.World, actions *Actions, list []Action, register func(fsm.HookID[string])) error {
	for _, a := range list {
		factory, ok := actions.Lookup(a.Name)
		if !ok {
			return fmt.Errorf("graph %s: unknown hook %q", m.graph.Name, a.Name)
		}
		hook, err := factory(m.env, a.Arg)
		if err != nil {
			return fmt.Errorf("graph %s: hook %s: %w", m.graph.Name, a.Name, err)
		}
		register(fsm.RegisterHook(w, m.graph.Name+"."+a.Name, hook))
	}
	return nil
}

func (m *Machine[M]) condition(edge Edge, opts Options) (fsm.ConditionFunc, error) {
	if edge.Script != "" {
		sc, err := newScriptCondition(edge.Script, m.env, opts.LoadScript)
		if err != nil {
			return nil, err
		}
		m.scripts = append(m.scripts, sc)
		return sc.condition(), nil
	}
	factory, ok := opts.Conditions.Lookup(edge.When)
	if !ok {
		return nil, fmt.Errorf("unknown condition %q", edge.When)
	}
	return factory(m.env, edge.Arg)
}

// Spawn enters e into the machine at the graph's initial state.
func (m *Machine[M]) Spawn(w *ecs.World, e ecs.Entity) error {
	if err := fsm.Init[M](w, e, m.graph.Initial); err != nil {
		return err
	}
	return resetDwell[M](w, e)
}

// Systems returns the dwell counter followed by every transition, ready for
// an ecs.Scheduler.
func (m *Machine[M]) Systems() []ecs.System {
	out := make([]ecs.System, 0, len(m.transitions)+1)
	out = append(out, dwellSystem[M]{})
	for _, t := range m.transitions {
		out = append(out, t)
	}
	return out
}

// Transitions returns the compiled edges.
func (m *Machine[M]) Transitions() []*fsm.Transition[M, string] {
	return append([]*fsm.Transition[M, string](nil), m.transitions...)
}

func (m *Machine[M]) Graph() *Graph {
	return m.graph
}

// Reload recompiles every script condition whose file name matches changed.
// A script that fails to compile keeps its previous version and the error is
// returned.
func (m *Machine[M]) Reload(changed string) (bool, error) {
	reloaded := false
	for _, sc := range m.scripts {
		if !sc.matches(changed) {
			continue
		}
		if err := sc.reload(); err != nil {
			m.logger.Error().Err(err).Str("script", sc.path).Msg("script reload failed")
			return reloaded, err
		}
		m.logger.Info().Str("script", sc.path).Msg("script reloaded")
		reloaded = true
	}
	return reloaded, nil
}
