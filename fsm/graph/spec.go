package graph

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/ecsfsm/prefabs"
)

var ErrInvalidGraph = errors.New("graph: invalid definition")

// Graph is a flat state graph as written in YAML.
type Graph struct {
	Name        string   `yaml:"name"`
	Initial     string   `yaml:"initial"`
	States      []string `yaml:"states"`
	Hooks       Hooks    `yaml:"hooks"`
	Transitions []Edge   `yaml:"transitions"`
}

type Hooks struct {
	Before []Action `yaml:"before"`
	After  []Action `yaml:"after"`
}

// Edge is one transition. Exactly one of When and Script must be set.
type Edge struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	When   string `yaml:"when"`
	Arg    any    `yaml:"arg"`
	Script string `yaml:"script"`
}

func (e Edge) Label() string {
	return e.From + "->" + e.To
}

// Action is a named hook with an optional argument. In YAML it is either a
// bare name (`- log`) or a single-key mapping (`- add_tag: alarmed`).
type Action struct {
	Name string
	Arg  any
}

func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		a.Name = strings.TrimSpace(value.Value)
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("%w: action at line %d must have exactly one key", ErrInvalidGraph, value.Line)
		}
		a.Name = strings.TrimSpace(value.Content[0].Value)
		return value.Content[1].Decode(&a.Arg)
	default:
		return fmt.Errorf("%w: action at line %d must be a name or a mapping", ErrInvalidGraph, value.Line)
	}
}

// Parse decodes and validates a YAML graph.
func Parse(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("graph: decode: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Load reads a graph from the prefab directory (disk first, then embedded).
func Load(name string) (*Graph, error) {
	data, err := prefabs.Load(name)
	if err != nil {
		return nil, err
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

// Validate checks that every referenced state is declared. Condition and hook
// names are checked later, by Build, against the registries in use.
func (g *Graph) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidGraph)
	}
	if len(g.States) == 0 {
		return fmt.Errorf("%w: %s declares no states", ErrInvalidGraph, g.Name)
	}
	declared := make(map[string]bool, len(g.States))
	for _, s := range g.States {
		if s == "" {
			return fmt.Errorf("%w: %s has an empty state name", ErrInvalidGraph, g.Name)
		}
		if declared[s] {
			return fmt.Errorf("%w: %s declares state %q twice", ErrInvalidGraph, g.Name, s)
		}
		declared[s] = true
	}
	if !declared[g.Initial] {
		return fmt.Errorf("%w: %s initial state %q is not declared", ErrInvalidGraph, g.Name, g.Initial)
	}
	for i, e := range g.Transitions {
		if !declared[e.From] || !declared[e.To] {
			return fmt.Errorf("%w: %s transition %d (%s) uses an undeclared state", ErrInvalidGraph, g.Name, i, e.Label())
		}
		if (e.When == "") == (e.Script == "") {
			return fmt.Errorf("%w: %s transition %d (%s) needs exactly one of when or script", ErrInvalidGraph, g.Name, i, e.Label())
		}
	}
	return nil
}
