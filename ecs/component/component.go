package component

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

type ComponentID uint32

var nextComponentID atomic.Uint32

// AnyKind is satisfied by every ComponentKind regardless of its value type.
// Filters that only care about presence take this.
type AnyKind interface {
	ID() ComponentID
	Valid() bool
}

type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(nextComponentID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

var typeKinds sync.Map // reflect.Type -> ComponentID

// KindOf returns the kind bound to the Go type T, allocating it on first use.
// Every call with the same T yields the same kind, which lets generic code
// (for example a marker parameterized by a machine type) find its storage
// without a package-level variable per instantiation.
func KindOf[T any]() ComponentKind[T] {
	t := reflect.TypeFor[T]()
	if id, ok := typeKinds.Load(t); ok {
		return ComponentKind[T]{id: id.(ComponentID)}
	}
	fresh := ComponentID(nextComponentID.Add(1))
	id, _ := typeKinds.LoadOrStore(t, fresh)
	return ComponentKind[T]{id: id.(ComponentID)}
}
