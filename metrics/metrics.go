// Package metrics exports transition counters to Prometheus.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/fsm"
)

// Observer implements fsm.Observer. Labels are machine and state names only;
// entities never become label values.
type Observer struct {
	transitions *prometheus.CounterVec
	skips       *prometheus.CounterVec
}

var _ fsm.Observer = (*Observer)(nil)

// NewObserver creates the counters and registers them on reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecsfsm",
			Name:      "transitions_total",
			Help:      "Committed state transitions, by machine and state pair.",
		}, []string{"machine", "from", "to"}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecsfsm",
			Name:      "transition_skips_total",
			Help:      "Qualifying transitions that did not complete, by machine and reason.",
		}, []string{"machine", "reason"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{o.transitions, o.skips} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("metrics: register: %w", err)
			}
		}
	}
	return o, nil
}

func (o *Observer) Transitioned(machine string, _ ecs.Entity, prev, next any) {
	o.transitions.WithLabelValues(machine, fmt.Sprint(prev), fmt.Sprint(next)).Inc()
}

func (o *Observer) Skipped(machine string, _ ecs.Entity, reason fsm.SkipReason) {
	o.skips.WithLabelValues(machine, string(reason)).Inc()
}
