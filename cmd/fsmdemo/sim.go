package main

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/ecs/component"
	"github.com/milk9111/ecsfsm/fsm"
	"github.com/milk9111/ecsfsm/fsm/graph"
	"github.com/milk9111/ecsfsm/prefabs"
)

const (
	screenWidth  = 1280
	screenHeight = 720

	gravity     = 900.0
	floorY      = 640.0
	bodyRadius  = 16.0
	kickSpeed   = 520.0
	restSpeed   = 20.0
	stepDT      = 1.0 / 60.0
	groundedTag = "grounded"
)

// Machine markers.
type motionMachine struct{}
type moodMachine struct{}

// Motion states are identified by type.
type Airborne struct{}
type Grounded struct{}

var (
	airborneID = fsm.TypeOf[Airborne]()
	groundedID = fsm.TypeOf[Grounded]()
)

// PhysicsBody links an entity to its chipmunk body.
type PhysicsBody struct {
	Body *cp.Body
}

var PhysicsBodyComponent = component.NewComponent[PhysicsBody]()

// BodyView is a read-only row for rendering and logs.
type BodyView struct {
	Entity ecs.Entity
	X, Y   float64
	Motion string
	Mood   string
}

type Sim struct {
	world     *ecs.World
	space     *cp.Space
	scheduler *ecs.Scheduler
	mood      *graph.Machine[moodMachine]
	bodies    []ecs.Entity
	ticks     int
	kickEvery int
	logger    zerolog.Logger
}

func NewSim(cfg Config, logger zerolog.Logger, obs fsm.Observer) (*Sim, error) {
	g, err := graph.Load(cfg.Graph)
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	s := &Sim{
		world:     w,
		space:     newSpace(),
		kickEvery: cfg.KickEvery,
		logger:    logger,
	}

	mood, err := graph.Build[moodMachine](w, g, graph.Options{Logger: &logger, Observer: obs})
	if err != nil {
		return nil, err
	}
	s.mood = mood

	motion, err := s.motionSystems(obs)
	if err != nil {
		return nil, err
	}

	s.scheduler = ecs.NewScheduler(ecs.SystemFunc(s.physics), ecs.SystemFunc(s.kick))
	for _, sys := range motion {
		s.scheduler.Add(sys)
	}
	for _, sys := range mood.Systems() {
		s.scheduler.Add(sys)
	}

	spacing := screenWidth / float64(cfg.Bodies+1)
	for i := 0; i < cfg.Bodies; i++ {
		if err := s.spawn(spacing*float64(i+1), 80+float64(i%3)*60); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})

	floor := cp.NewSegment(space.StaticBody, cp.Vector{X: 0, Y: floorY}, cp.Vector{X: screenWidth, Y: floorY}, 0)
	floor.SetFriction(0.9)
	floor.SetElasticity(0.5)
	space.AddShape(floor)
	return space
}

// motionSystems installs the type-identified motion machine. Hooks keep the
// "grounded" tag in sync so the mood graph's scripts can see it.
func (s *Sim) motionSystems(obs fsm.Observer) ([]ecs.System, error) {
	w := s.world
	if err := fsm.Install[motionMachine, fsm.TypeID](w); err != nil {
		return nil, err
	}
	tags := graph.TagsOf(w)
	_, err := fsm.OnAfter[motionMachine, fsm.TypeID](w, "sync_grounded_tag", func(w *ecs.World, ev fsm.TransitionEvent[fsm.TypeID]) error {
		if ev.Next == groundedID {
			return tags.Add(w, ev.Entity, groundedTag)
		}
		tags.Remove(w, ev.Entity, groundedTag)
		return nil
	})
	if err != nil {
		return nil, err
	}

	landed := fsm.RegisterCondition(w, "landed", func(w *ecs.World, e ecs.Entity) (bool, error) {
		pb, ok := ecs.Get(w, e, PhysicsBodyComponent.Kind())
		if !ok || pb.Body == nil {
			return false, nil
		}
		pos, vel := pb.Body.Position(), pb.Body.Velocity()
		return pos.Y >= floorY-bodyRadius-4 && math.Abs(vel.Y) < restSpeed, nil
	})
	liftedOff := fsm.RegisterCondition(w, "lifted_off", func(w *ecs.World, e ecs.Entity) (bool, error) {
		pb, ok := ecs.Get(w, e, PhysicsBodyComponent.Kind())
		if !ok || pb.Body == nil {
			return false, nil
		}
		return pb.Body.Position().Y < floorY-bodyRadius-8, nil
	})

	edge := func(name string, cond fsm.ConditionID, from, to fsm.TypeID) ecs.System {
		return fsm.NewTransition[motionMachine](cond, to,
			fsm.WithName(name),
			fsm.WithLogger(s.logger),
			fsm.WithObserver(obs),
			fsm.WithFilter(fsm.InState[motionMachine](from)),
		)
	}
	return []ecs.System{
		edge("land", landed, airborneID, groundedID),
		edge("lift_off", liftedOff, groundedID, airborneID),
	}, nil
}

func (s *Sim) spawn(x, y float64) error {
	w := s.world
	e := ecs.CreateEntity(w)

	mass := 1.0
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, bodyRadius, cp.Vector{}))
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := cp.NewCircle(body, bodyRadius, cp.Vector{})
	shape.SetFriction(0.7)
	shape.SetElasticity(0.6)
	s.space.AddBody(body)
	s.space.AddShape(shape)

	if err := ecs.Add(w, e, PhysicsBodyComponent.Kind(), &PhysicsBody{Body: body}); err != nil {
		return err
	}
	if err := fsm.Init[motionMachine](w, e, airborneID); err != nil {
		return err
	}
	if err := s.mood.Spawn(w, e); err != nil {
		return err
	}
	s.bodies = append(s.bodies, e)
	return nil
}

func (s *Sim) physics(*ecs.World) error {
	s.space.Step(stepDT)
	return nil
}

// kick launches every grounded body on a fixed cadence, staggered by entity.
func (s *Sim) kick(w *ecs.World) error {
	if s.kickEvery <= 0 {
		return nil
	}
	for i, e := range s.bodies {
		if (s.ticks+i*17)%s.kickEvery != 0 {
			continue
		}
		state, err := fsm.Get[motionMachine, fsm.TypeID](w, e)
		if err != nil || state != groundedID {
			continue
		}
		if pb, ok := ecs.Get(w, e, PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
			vel := pb.Body.Velocity()
			pb.Body.SetVelocityVector(cp.Vector{X: vel.X, Y: -kickSpeed})
		}
	}
	return nil
}

// Step advances the simulation one tick.
func (s *Sim) Step() error {
	s.ticks++
	return s.scheduler.Update(s.world)
}

// Reload forwards a changed prefab path to the mood machine.
// Scripts reload in place; graph files are only read at startup.
func (s *Sim) Reload(path string) {
	if prefabs.IsGraphFile(path) {
		s.logger.Warn().Str("path", path).Msg("graph changes need a restart")
		return
	}
	if _, err := s.mood.Reload(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("keeping previous script")
	}
}

func (s *Sim) Ticks() int {
	return s.ticks
}

func (s *Sim) Bodies() []BodyView {
	out := make([]BodyView, 0, len(s.bodies))
	for _, e := range s.bodies {
		view := BodyView{Entity: e}
		if pb, ok := ecs.Get(s.world, e, PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
			pos := pb.Body.Position()
			view.X, view.Y = pos.X, pos.Y
		}
		if motion, err := fsm.Get[motionMachine, fsm.TypeID](s.world, e); err == nil {
			view.Motion = motion.String()
		}
		if mood, err := fsm.Get[moodMachine, string](s.world, e); err == nil {
			view.Mood = mood
		}
		out = append(out, view)
	}
	return out
}

func (v BodyView) String() string {
	return fmt.Sprintf("%s %-14s %-8s (%.0f, %.0f)", v.Entity, v.Motion, v.Mood, v.X, v.Y)
}
