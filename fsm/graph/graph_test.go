package graph

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/fsm"
)

type doorMachine struct{}
type scriptMachine struct{}
type embeddedMachine struct{}

const doorYAML = `
name: door
initial: closed
states: [closed, opening, open]
hooks:
  before: [log]
  after:
    - add_tag: moved
    - remove_tag: locked
transitions:
  - {from: closed, to: opening, when: dwell_at_least, arg: 2}
  - {from: opening, to: open, when: has_tag, arg: powered}
  - {from: open, to: closed, when: never}
`

func quietOptions(scripts map[string]string) Options {
	nop := zerolog.Nop()
	return Options{
		Logger: &nop,
		LoadScript: func(name string) ([]byte, error) {
			src, ok := scripts[name]
			if !ok {
				return nil, fmt.Errorf("no script %s", name)
			}
			return []byte(src), nil
		},
	}
}

func tick(t *testing.T, s *ecs.Scheduler, w *ecs.World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.Update(w))
	}
}

func TestParse(t *testing.T) {
	g, err := Parse([]byte(doorYAML))
	require.NoError(t, err)

	assert.Equal(t, "door", g.Name)
	assert.Equal(t, "closed", g.Initial)
	assert.Equal(t, []string{"closed", "opening", "open"}, g.States)
	require.Len(t, g.Transitions, 3)
	assert.Equal(t, "closed->opening", g.Transitions[0].Label())
	assert.Equal(t, 2, g.Transitions[0].Arg)

	assert.Equal(t, []Action{{Name: "log"}}, g.Hooks.Before)
	assert.Equal(t, []Action{{Name: "add_tag", Arg: "moved"}, {Name: "remove_tag", Arg: "locked"}}, g.Hooks.After)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing_name", "initial: a\nstates: [a]\n"},
		{"no_states", "name: x\ninitial: a\n"},
		{"duplicate_state", "name: x\ninitial: a\nstates: [a, a]\n"},
		{"undeclared_initial", "name: x\ninitial: b\nstates: [a]\n"},
		{"undeclared_target", "name: x\ninitial: a\nstates: [a]\ntransitions:\n  - {from: a, to: b, when: always}\n"},
		{"no_condition", "name: x\ninitial: a\nstates: [a, b]\ntransitions:\n  - {from: a, to: b}\n"},
		{"two_conditions", "name: x\ninitial: a\nstates: [a, b]\ntransitions:\n  - {from: a, to: b, when: always, script: s.tengo}\n"},
		{"bad_action", "name: x\ninitial: a\nstates: [a]\nhooks:\n  after:\n    - {log: a, add_tag: b}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.ErrorIs(t, err, ErrInvalidGraph)
		})
	}

	_, err := Parse([]byte("name: [unterminated"))
	assert.Error(t, err)
}

func TestBuildRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown_condition", "name: a\ninitial: x\nstates: [x, y]\ntransitions:\n  - {from: x, to: y, when: teleported}\n", "unknown condition"},
		{"unknown_hook", "name: b\ninitial: x\nstates: [x]\nhooks:\n  before: [explode]\n", "unknown hook"},
		{"bad_condition_arg", "name: c\ninitial: x\nstates: [x, y]\ntransitions:\n  - {from: x, to: y, when: dwell_at_least, arg: soon}\n", "dwell_at_least"},
		{"bad_hook_arg", "name: d\ninitial: x\nstates: [x]\nhooks:\n  after: [add_tag]\n", "add_tag"},
		{"missing_script", "name: e\ninitial: x\nstates: [x, y]\ntransitions:\n  - {from: x, to: y, script: gone.tengo}\n", "gone.tengo"},
		{"script_syntax", "name: f\ninitial: x\nstates: [x, y]\ntransitions:\n  - {from: x, to: y, script: broken.tengo}\n", "broken.tengo"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Parse([]byte(tc.yaml))
			require.NoError(t, err)
			_, err = Build[doorMachine](ecs.NewWorld(), g, quietOptions(map[string]string{"broken.tengo": "result = ("}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuildTwiceIsDuplicate(t *testing.T) {
	w := ecs.NewWorld()
	g, err := Parse([]byte(doorYAML))
	require.NoError(t, err)

	_, err = Build[doorMachine](w, g, quietOptions(nil))
	require.NoError(t, err)
	_, err = Build[doorMachine](w, g, quietOptions(nil))
	assert.ErrorIs(t, err, fsm.ErrDuplicateRegistry)
}

func TestDoorRuns(t *testing.T) {
	w := ecs.NewWorld()
	g, err := Parse([]byte(doorYAML))
	require.NoError(t, err)

	m, err := Build[doorMachine](w, g, quietOptions(nil))
	require.NoError(t, err)
	assert.Len(t, m.Transitions(), 3)
	assert.Same(t, g, m.Graph())

	door := ecs.CreateEntity(w)
	require.NoError(t, m.Spawn(w, door))
	tags := TagsOf(w)
	require.NoError(t, tags.Add(w, door, "locked"))

	s := ecs.NewScheduler(m.Systems()...)
	state := func() string {
		st, err := fsm.Get[doorMachine, string](w, door)
		require.NoError(t, err)
		return st
	}

	tick(t, s, w, 1)
	assert.Equal(t, "closed", state())
	assert.Equal(t, 1, DwellOf[doorMachine](w, door))

	tick(t, s, w, 1)
	assert.Equal(t, "opening", state())
	assert.Equal(t, 0, DwellOf[doorMachine](w, door), "dwell resets on transition")
	assert.Equal(t, []string{"moved"}, tags.Names(w, door))

	tick(t, s, w, 3)
	assert.Equal(t, "opening", state(), "needs power")

	require.NoError(t, tags.Add(w, door, "powered"))
	tick(t, s, w, 1)
	assert.Equal(t, "open", state())

	tick(t, s, w, 5)
	assert.Equal(t, "open", state())
	assert.Equal(t, 5, DwellOf[doorMachine](w, door))
}

const alarmYAML = `
name: alarm
initial: idle
states: [idle, ringing]
transitions:
  - {from: idle, to: ringing, script: ring.tengo}
  - {from: ringing, to: idle, when: lacks_tag, arg: smoke}
`

func TestScriptConditionAndReload(t *testing.T) {
	w := ecs.NewWorld()
	g, err := Parse([]byte(alarmYAML))
	require.NoError(t, err)

	scripts := map[string]string{
		"ring.tengo": `
result = false
for i, t in tags {
	if t == "smoke" && state == "idle" {
		result = true
	}
}
`,
	}
	m, err := Build[scriptMachine](w, g, quietOptions(scripts))
	require.NoError(t, err)

	e := ecs.CreateEntity(w)
	require.NoError(t, m.Spawn(w, e))
	s := ecs.NewScheduler(m.Systems()...)
	state := func() string {
		st, _ := fsm.Get[scriptMachine, string](w, e)
		return st
	}

	tick(t, s, w, 2)
	assert.Equal(t, "idle", state())

	tags := TagsOf(w)
	require.NoError(t, tags.Add(w, e, "smoke"))
	tick(t, s, w, 1)
	assert.Equal(t, "ringing", state())

	tags.Remove(w, e, "smoke")
	tick(t, s, w, 1)
	assert.Equal(t, "idle", state())

	// a newer script rings on dwell alone
	scripts["ring.tengo"] = "result = dwell >= 3\n"
	reloaded, err := m.Reload("/some/dir/prefabs/scripts/ring.tengo")
	require.NoError(t, err)
	assert.True(t, reloaded)

	reloaded, err = m.Reload("other.tengo")
	require.NoError(t, err)
	assert.False(t, reloaded)

	// keep the smoke around so ringing does not fall straight back to idle
	require.NoError(t, tags.Add(w, e, "smoke"))

	tick(t, s, w, 2)
	assert.Equal(t, "idle", state())
	tick(t, s, w, 1)
	assert.Equal(t, "ringing", state())

	// a broken script keeps the previous version
	scripts["ring.tengo"] = "result = ("
	_, err = m.Reload("ring.tengo")
	assert.Error(t, err)
}

func TestScriptRuntimeErrorAbortsTick(t *testing.T) {
	w := ecs.NewWorld()
	g, err := Parse([]byte(alarmYAML))
	require.NoError(t, err)

	m, err := Build[scriptMachine](w, g, quietOptions(map[string]string{
		"ring.tengo": "x := 0\nresult = 1 / x\n",
	}))
	require.NoError(t, err)

	e := ecs.CreateEntity(w)
	require.NoError(t, m.Spawn(w, e))

	var cfg *fsm.ConfigError
	require.NotPanics(t, func() {
		err = ecs.NewScheduler(m.Systems()...).Update(w)
	})
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, fsm.PhaseCondition, cfg.Phase)
	assert.Equal(t, e, cfg.Entity)
	assert.Contains(t, err.Error(), "ring.tengo")
}

func TestEmbeddedMoodGraph(t *testing.T) {
	g, err := Load("mood")
	require.NoError(t, err)

	w := ecs.NewWorld()
	opts := quietOptions(nil)
	opts.LoadScript = nil
	m, err := Build[embeddedMachine](w, g, opts)
	require.NoError(t, err)
	assert.Equal(t, "calm", m.Graph().Initial)
}

func TestCustomCondition(t *testing.T) {
	conds := DefaultConditions()
	conds.Register("odd_entity", func(Env, any) (fsm.ConditionFunc, error) {
		return func(_ *ecs.World, e ecs.Entity) (bool, error) {
			return uint64(e)%2 == 1, nil
		}, nil
	})
	assert.Contains(t, conds.Names(), "odd_entity")
	assert.Contains(t, conds.Names(), "dwell_at_least")

	type customMachine struct{}
	g, err := Parse([]byte("name: odd\ninitial: a\nstates: [a, b]\ntransitions:\n  - {from: a, to: b, when: odd_entity}\n"))
	require.NoError(t, err)
	opts := quietOptions(nil)
	opts.Conditions = conds

	w := ecs.NewWorld()
	m, err := Build[customMachine](w, g, opts)
	require.NoError(t, err)

	e1 := ecs.CreateEntity(w)
	e2 := ecs.CreateEntity(w)
	require.NoError(t, m.Spawn(w, e1))
	require.NoError(t, m.Spawn(w, e2))
	tick(t, ecs.NewScheduler(m.Systems()...), w, 1)

	s1, _ := fsm.Get[customMachine, string](w, e1)
	s2, _ := fsm.Get[customMachine, string](w, e2)
	assert.Equal(t, "b", s1)
	assert.Equal(t, "a", s2)
}
