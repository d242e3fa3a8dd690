package reflection

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Object is a raw object reference handed in by an external store. The
// engine only reads through Ptr, and leaf visitors may write primitives in
// place; the memory stays owned by the store.
type Object struct {
	Ptr  unsafe.Pointer
	Type TypeID
}

// ObjectOf references *v.
func ObjectOf[T any](v *T) Object {
	return Object{Ptr: unsafe.Pointer(v), Type: TypeOf[T]()}
}

// ObjectOfValue references the value behind a non-nil pointer held in an interface.
func ObjectOfValue(v any) (Object, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return Object{}, fmt.Errorf("%T: %w", v, ErrNotAPointer)
	}
	if rv.IsNil() {
		return Object{}, fmt.Errorf("%T: %w", v, ErrNilObject)
	}
	return Object{Ptr: rv.UnsafePointer(), Type: TypeIDOf(rv.Type().Elem())}, nil
}

func (o Object) IsNil() bool {
	return o.Ptr == nil
}

// memberAddr is the single place where member addresses are derived from an
// owner base. Bounds are verified in reflectdebug builds.
func memberAddr(base unsafe.Pointer, owner TypeInfo, m MemberInfo) unsafe.Pointer {
	checkBounds(owner.Name, m.FieldName, owner.Size, m.Offset, m.Variable.Size())
	return unsafe.Add(base, m.Offset)
}

// elementAddr addresses element i of a contiguous run.
func elementAddr(begin unsafe.Pointer, i int, elemSize uintptr) unsafe.Pointer {
	return unsafe.Add(begin, uintptr(i)*elemSize)
}

// Load reads a T stored at addr.
func Load[T any](addr unsafe.Pointer) T {
	return *(*T)(addr)
}

// Store writes v at addr in place.
func Store[T any](addr unsafe.Pointer, v T) {
	*(*T)(addr) = v
}

// View returns a typed pointer onto addr.
func View[T any](addr unsafe.Pointer) *T {
	return (*T)(addr)
}

// Slice views n contiguous Ts starting at addr.
func Slice[T any](addr unsafe.Pointer, n int) []T {
	return unsafe.Slice((*T)(addr), n)
}
