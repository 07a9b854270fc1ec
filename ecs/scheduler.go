package ecs

import "fmt"

type System interface {
	Update(w *World) error
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w *World) error

func (f SystemFunc) Update(w *World) error {
	return f(w)
}

type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Update runs one tick. Events left over from the previous tick are dropped
// first, so everything in the queue after Update returns was produced by this
// tick. The first failing system aborts the tick.
func (s *Scheduler) Update(w *World) error {
	w.Events().flush()
	for i, system := range s.systems {
		if err := system.Update(w); err != nil {
			return fmt.Errorf("ecs: system %d (%T): %w", i, system, err)
		}
	}
	return nil
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
