package fsm

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/ecsfsm/ecs"
)

// Option configures a Transition at construction.
type Option func(*options)

type options struct {
	name     string
	filter   Filter
	logger   *zerolog.Logger
	observer Observer
	publish  bool
}

// WithFilter restricts the source entities of the transition.
func WithFilter(f Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithName labels the transition in logs.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithoutEvents stops the transition from pushing EventTransition events.
func WithoutEvents() Option {
	return func(o *options) {
		o.publish = false
	}
}

// Transition is one directed edge of machine M's state graph. It implements
// ecs.System; add one per edge to the host's scheduler.
type Transition[M any, S comparable] struct {
	name      string
	machine   string
	condition ConditionID
	target    S
	filter    Filter
	logger    zerolog.Logger
	observer  Observer
	publish   bool
}

type candidate[S comparable] struct {
	entity ecs.Entity
	state  S
}

// NewTransition builds the edge "entities of machine M that pass the filter
// move to target when condition holds". Without WithFilter every entity in
// machine M is a source.
func NewTransition[M any, S comparable](condition ConditionID, target S, opts ...Option) *Transition[M, S] {
	o := options{observer: nopObserver{}, publish: true}
	for _, opt := range opts {
		opt(&o)
	}

	machine := MachineName[M]()
	logger := log.Logger
	if o.logger != nil {
		logger = *o.logger
	}
	ctx := logger.With().Str("component", "fsm").Str("machine", machine)
	if o.name != "" {
		ctx = ctx.Str("transition", o.name)
	}

	return &Transition[M, S]{
		name:      o.name,
		machine:   machine,
		condition: condition,
		target:    target,
		filter:    o.filter,
		logger:    ctx.Logger(),
		observer:  o.observer,
		publish:   o.publish,
	}
}

func (t *Transition[M, S]) Name() string {
	return t.name
}

func (t *Transition[M, S]) Target() S {
	return t.target
}

// Validate reports the configuration errors Update would hit, without
// touching any entity.
func (t *Transition[M, S]) Validate(w *ecs.World) error {
	if _, _, err := Registries[M, S](w); err != nil {
		return err
	}
	if !t.condition.Valid() || !ecs.HasSystem(w, t.condition) {
		return &ConfigError{Machine: t.machine, Phase: PhaseCondition, Err: ErrInvalidCondition}
	}
	return nil
}

// Update runs one pass of the transition over the world.
func (t *Transition[M, S]) Update(w *ecs.World) error {
	before, after, err := Registries[M, S](w)
	if err != nil {
		return err
	}

	for _, c := range t.scan(w) {
		if err := t.attempt(w, before, after, c); err != nil {
			return err
		}
	}
	return nil
}

// scan copies the candidate set before any user code runs.
func (t *Transition[M, S]) scan(w *ecs.World) []candidate[S] {
	var out []candidate[S]
	ecs.ForEach(w, Kind[M, S](), func(e ecs.Entity, marker *ActiveState[M, S]) {
		if t.filter != nil && !t.filter(w, e) {
			return
		}
		out = append(out, candidate[S]{entity: e, state: marker.ID})
	})
	return out
}

func (t *Transition[M, S]) attempt(w *ecs.World, before *BeforeTransition[M, S], after *AfterTransition[M, S], c candidate[S]) error {
	if !ecs.IsAlive(w, c.entity) {
		t.skip(c.entity, SkipEntityVanished, nil)
		return nil
	}
	// An earlier entity's hooks may have retired or moved this one since
	// the scan; the payload carries the state as it is now.
	current, ok := ecs.Get(w, c.entity, Kind[M, S]())
	if !ok {
		t.skip(c.entity, SkipMarkerRemoved, nil)
		return nil
	}
	c.state = current.ID

	ok, err := ecs.RunSystemWithInput(w, t.condition, c.entity)
	if err != nil {
		if isLifecycle(err) {
			t.skip(c.entity, SkipLifecycleError, err)
			return nil
		}
		return &ConfigError{Machine: t.machine, Phase: PhaseCondition, Entity: c.entity, Err: err}
	}
	if !ok {
		return nil
	}

	ev := TransitionEvent[S]{Entity: c.entity, Prev: c.state, Next: t.target}

	completed, err := t.runHooks(w, PhaseBefore, before.Snapshot(), ev)
	if err != nil || !completed {
		return err
	}

	marker, ok := ecs.Get(w, c.entity, Kind[M, S]())
	if !ok {
		reason := SkipMarkerRemoved
		if !ecs.IsAlive(w, c.entity) {
			reason = SkipEntityVanished
		}
		t.skip(c.entity, reason, nil)
		return nil
	}
	marker.ID = t.target

	// The state is committed at this point; a lifecycle error here only cuts
	// the remaining After hooks short.
	if _, err := t.runHooks(w, PhaseAfter, after.Snapshot(), ev); err != nil {
		return err
	}

	if t.publish {
		w.Events().Push(ecs.Event{Type: EventTransition, Data: ev})
	}
	t.observer.Transitioned(t.machine, c.entity, ev.Prev, ev.Next)
	t.logger.Debug().
		Stringer("entity", c.entity).
		Any("prev", ev.Prev).
		Any("next", ev.Next).
		Msg("transition committed")
	return nil
}

// runHooks invokes hooks in order. It returns false without an error when a
// hook reported that the entity went away.
func (t *Transition[M, S]) runHooks(w *ecs.World, phase Phase, hooks []HookID[S], ev TransitionEvent[S]) (bool, error) {
	for _, id := range hooks {
		if _, err := ecs.RunSystemWithInput(w, id, ev); err != nil {
			if isLifecycle(err) {
				if phase == PhaseBefore {
					t.skip(ev.Entity, SkipLifecycleError, err)
				} else {
					t.logger.Debug().Err(err).Stringer("entity", ev.Entity).Str("hook", ecs.SystemName(w, id)).Msg("after hooks cut short")
				}
				return false, nil
			}
			return false, &ConfigError{Machine: t.machine, Phase: phase, Entity: ev.Entity, Err: err}
		}
	}
	return true, nil
}

func (t *Transition[M, S]) skip(e ecs.Entity, reason SkipReason, err error) {
	t.observer.Skipped(t.machine, e, reason)
	evt := t.logger.Debug().Stringer("entity", e).Str("reason", string(reason))
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Msg("transition skipped")
}
