package ecs

import "reflect"

// Resources are world-global singletons keyed by their Go type. Generic
// instantiations are distinct keys, so Registry[A] and Registry[B] never
// collide.

// InsertResource stores r as the resource of type T, replacing any previous one.
func InsertResource[T any](w *World, r *T) {
	if w == nil || r == nil {
		return
	}
	if w.resources == nil {
		w.resources = make(map[reflect.Type]any)
	}
	w.resources[reflect.TypeFor[T]()] = r
}

// Resource returns the resource of type T.
func Resource[T any](w *World) (*T, bool) {
	if w == nil {
		return nil, false
	}
	r, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	cast, ok := r.(*T)
	return cast, ok
}

func HasResource[T any](w *World) bool {
	_, ok := Resource[T](w)
	return ok
}

// RemoveResource drops the resource of type T and reports whether it existed.
func RemoveResource[T any](w *World) bool {
	if w == nil {
		return false
	}
	key := reflect.TypeFor[T]()
	if _, ok := w.resources[key]; !ok {
		return false
	}
	delete(w.resources, key)
	return true
}
