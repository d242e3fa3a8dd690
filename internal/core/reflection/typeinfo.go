package reflection

import (
	"reflect"
	"slices"
	"strings"
	"unsafe"
)

// TypeFlags describes the composition of a registered type.
type TypeFlags uint32

const (
	IsComponent TypeFlags = 1 << iota
	IsSequenceContainer
	IsFixedArray
	HasMembers
	IsTemplated
	IsPrimitive
)

var typeFlagNames = []struct {
	flag TypeFlags
	name string
}{
	{IsComponent, "IsComponent"},
	{IsSequenceContainer, "IsSequenceContainer"},
	{IsFixedArray, "IsFixedArray"},
	{HasMembers, "HasMembers"},
	{IsTemplated, "IsTemplated"},
	{IsPrimitive, "IsPrimitive"},
}

func (f TypeFlags) Has(flag TypeFlags) bool {
	return f&flag == flag
}

func (f TypeFlags) String() string {
	if f == 0 {
		return "None"
	}
	parts := make([]string, 0, len(typeFlagNames))
	for _, n := range typeFlagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// TypeInfo is the static shape of one registered type.
type TypeInfo struct {
	ID    TypeID
	Name  string
	Size  uintptr
	Flags TypeFlags

	// Inner holds the element type(s) of templated types. Current containers
	// carry exactly one.
	Inner []TypeID

	// ArrayLen is the element count of IsFixedArray types.
	ArrayLen int

	// Sequence reads and resizes the runtime storage of IsSequenceContainer types.
	Sequence SequenceLayout

	// Native is set when the type was derived from a Go type.
	Native reflect.Type
}

// IsContainer reports whether the type is a sequence container or a fixed array.
func (ti TypeInfo) IsContainer() bool {
	return ti.Flags&(IsSequenceContainer|IsFixedArray) != 0
}

// IsComposite reports whether traversal recurses into instances of this type.
func (ti TypeInfo) IsComposite() bool {
	return ti.Flags.Has(HasMembers) && !ti.IsContainer()
}

// Elem returns the first inner type.
func (ti TypeInfo) Elem() (TypeID, bool) {
	if len(ti.Inner) == 0 {
		return InvalidTypeID, false
	}
	return ti.Inner[0], true
}

func (ti TypeInfo) clone() TypeInfo {
	ti.Inner = slices.Clone(ti.Inner)
	return ti
}

// SequenceLayout exposes the runtime storage of a dynamically sized container.
type SequenceLayout interface {
	// Range returns the byte range holding the live elements.
	Range(addr unsafe.Pointer) (begin, end unsafe.Pointer)
	// Resize sets the live element count to n, preserving the leading elements.
	Resize(addr unsafe.Pointer, n int)
}

// SliceLayout is the SequenceLayout of a Go slice type.
type SliceLayout struct {
	sliceType reflect.Type
	elemSize  uintptr
}

func NewSliceLayout(sliceType reflect.Type) SliceLayout {
	return SliceLayout{
		sliceType: sliceType,
		elemSize:  sliceType.Elem().Size(),
	}
}

func (l SliceLayout) Range(addr unsafe.Pointer) (begin, end unsafe.Pointer) {
	s := reflect.NewAt(l.sliceType, addr).Elem()
	n := s.Len()
	if n == 0 {
		return nil, nil
	}
	begin = s.UnsafePointer()
	return begin, unsafe.Add(begin, uintptr(n)*l.elemSize)
}

func (l SliceLayout) Resize(addr unsafe.Pointer, n int) {
	s := reflect.NewAt(l.sliceType, addr).Elem()
	if s.Len() == n {
		return
	}
	resized := reflect.MakeSlice(l.sliceType, n, n)
	reflect.Copy(resized, s)
	s.Set(resized)
}

// elementCount derives the live count from a byte range.
func elementCount(begin, end unsafe.Pointer, elemSize uintptr) int {
	if begin == nil || end == nil || elemSize == 0 {
		return 0
	}
	return int((uintptr(end) - uintptr(begin)) / elemSize)
}
