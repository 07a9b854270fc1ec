package graph

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/fsm"
)

// scriptCondition evaluates a tengo script per candidate. The script sees
// `entity`, `state`, `dwell` and `tags`, and must assign a bool to `result`.
type scriptCondition struct {
	path     string
	compiled *tengo.Compiled
	env      Env
	load     func(string) ([]byte, error)
}

func newScriptCondition(scriptPath string, env Env, load func(string) ([]byte, error)) (*scriptCondition, error) {
	sc := &scriptCondition{path: scriptPath, env: env, load: load}
	if err := sc.reload(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *scriptCondition) reload() error {
	src, err := sc.load(sc.path)
	if err != nil {
		return fmt.Errorf("script %s: %w", sc.path, err)
	}

	script := tengo.NewScript(src)
	for _, v := range []struct {
		name  string
		value any
	}{
		{"entity", int64(0)},
		{"state", ""},
		{"dwell", 0},
		{"tags", []any{}},
		{"result", false},
	} {
		if err := script.Add(v.name, v.value); err != nil {
			return fmt.Errorf("script %s: %s: %w", sc.path, v.name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("script %s: %w", sc.path, err)
	}
	sc.compiled = compiled
	return nil
}

// matches reports whether a changed file path refers to this script.
func (sc *scriptCondition) matches(changed string) bool {
	return path.Base(filepath.ToSlash(changed)) == path.Base(filepath.ToSlash(sc.path))
}

func (sc *scriptCondition) condition() fsm.ConditionFunc {
	return func(w *ecs.World, e ecs.Entity) (bool, error) {
		state, err := sc.env.State(w, e)
		if err != nil {
			return false, err
		}
		tags := sc.env.Tags.Names(w, e)
		tagList := make([]any, len(tags))
		for i, t := range tags {
			tagList[i] = t
		}

		run := sc.compiled.Clone()
		if err := run.Set("entity", int64(e)); err != nil {
			return false, err
		}
		if err := run.Set("state", state); err != nil {
			return false, err
		}
		if err := run.Set("dwell", sc.env.Dwell(w, e)); err != nil {
			return false, err
		}
		if err := run.Set("tags", tagList); err != nil {
			return false, err
		}
		if err := sc.run(run); err != nil {
			return false, err
		}
		return run.Get("result").Bool(), nil
	}
}

// run executes a cloned script. Some tengo runtime faults, integer division
// by zero among them, surface as Go panics; they come back as errors here.
func (sc *scriptCondition) run(c *tengo.Compiled) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script %s: %v", sc.path, r)
		}
	}()
	if err := c.Run(); err != nil {
		return fmt.Errorf("script %s: %w", sc.path, err)
	}
	return nil
}
