// Package fsm overlays flat finite-state machines on ecs entities.
//
// An entity joins machine M by carrying an ActiveState[M, S] component, where
// M is a marker type that keeps independent machines apart and S is any
// comparable state identifier (TypeID by default, strings or enums work just
// as well). Each directed edge of a state graph is one Transition value: once
// per tick it snapshots the entities that carry the marker and pass its source
// filter, asks a registered condition about each one, and for every entity
// that qualifies runs the Before hooks, commits the new state and runs the
// After hooks, strictly in that order and one entity at a time.
//
// Hooks and conditions are world callables (ecs.RegisterSystem), so they can
// freely add or remove components, including the marker itself. The engine
// re-checks the marker right before committing and skips the entity if a hook
// removed it.
package fsm
