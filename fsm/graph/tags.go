package graph

import (
	"sort"

	"github.com/milk9111/ecsfsm/ecs"
	"github.com/milk9111/ecsfsm/ecs/component"
)

// Tag is a named zero-data marker component.
type Tag struct {
	Name string
}

// Tags maps tag names to component kinds. One instance lives on the world as a
// resource and is shared by every graph machine.
type Tags struct {
	kinds map[string]component.ComponentKind[Tag]
}

// TagsOf returns the world's tag table, creating it on first use.
func TagsOf(w *ecs.World) *Tags {
	if t, ok := ecs.Resource[Tags](w); ok {
		return t
	}
	t := &Tags{kinds: map[string]component.ComponentKind[Tag]{}}
	ecs.InsertResource(w, t)
	return t
}

// Kind returns the component kind for name.
func (t *Tags) Kind(name string) component.ComponentKind[Tag] {
	k, ok := t.kinds[name]
	if !ok {
		k = component.NewComponentKind[Tag]()
		t.kinds[name] = k
	}
	return k
}

func (t *Tags) Add(w *ecs.World, e ecs.Entity, name string) error {
	return ecs.Add(w, e, t.Kind(name), &Tag{Name: name})
}

func (t *Tags) Remove(w *ecs.World, e ecs.Entity, name string) bool {
	k, ok := t.kinds[name]
	if !ok {
		return false
	}
	return ecs.Remove(w, e, k)
}

func (t *Tags) Has(w *ecs.World, e ecs.Entity, name string) bool {
	k, ok := t.kinds[name]
	return ok && ecs.Has(w, e, k)
}

// Names returns the sorted tag names e carries.
func (t *Tags) Names(w *ecs.World, e ecs.Entity) []string {
	var out []string
	for name, k := range t.kinds {
		if ecs.Has(w, e, k) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
