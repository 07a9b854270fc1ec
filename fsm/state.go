package fsm

import "reflect"

// TypeID is a state identifier derived from a Go type. It lets states be
// declared as empty marker structs:
//
//	type Idle struct{}
//	fsm.TypeOf[Idle]()
type TypeID struct {
	t reflect.Type
}

// TypeOf returns the identity token of T.
func TypeOf[T any]() TypeID {
	return TypeID{t: reflect.TypeFor[T]()}
}

func (id TypeID) IsZero() bool {
	return id.t == nil
}

func (id TypeID) String() string {
	if id.t == nil {
		return "<none>"
	}
	return id.t.String()
}

// MachineName renders the machine marker type for logs and errors.
func MachineName[M any]() string {
	return reflect.TypeFor[M]().String()
}
