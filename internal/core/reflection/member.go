package reflection

import (
	"cmp"
	"slices"
	"unsafe"
)

// MemberFlags carry editor and serialization hints for one member.
type MemberFlags uint8

const (
	Hidden MemberFlags = 1 << iota
	NeverOwnsPointerData
	OwnsPointerData
)

func (f MemberFlags) Has(flag MemberFlags) bool {
	return f&flag == flag
}

const pointerSize = unsafe.Sizeof(uintptr(0))

// Variable describes the declared shape of a member: its underlying type,
// pointer indirection, fixed array length and const qualification.
type Variable struct {
	Type         TypeID
	PointerDepth uint8
	ArrayLen     int
	Const        bool

	// ElemSize is the size of one value of Type. Filled from the registry
	// when left zero.
	ElemSize uintptr
}

// Size is the number of bytes the member occupies inside its owner.
func (v Variable) Size() uintptr {
	if v.PointerDepth > 0 {
		return pointerSize
	}
	if v.ArrayLen > 0 {
		return v.ElemSize * uintptr(v.ArrayLen)
	}
	return v.ElemSize
}

func (v Variable) IsPointer() bool { return v.PointerDepth > 0 }

func (v Variable) IsArray() bool { return v.ArrayLen > 0 }

// MemberInfo describes one field of a composite type.
type MemberInfo struct {
	FieldName string
	// Label is shown by editors; FieldName is used when empty.
	Label    string
	Offset   uintptr
	Variable Variable
	Flags    MemberFlags
	// Step is the numeric granularity hint handed to leaf visitors. Zero
	// means the visitor default.
	Step float32

	index int
}

// DisplayName returns the label editors show for the member.
func (m MemberInfo) DisplayName() string {
	if m.Label != "" {
		return m.Label
	}
	return m.FieldName
}

// canonicalMembers copies members into canonical order: by offset, then by
// declaration order for members sharing an offset.
func canonicalMembers(members []MemberInfo) []MemberInfo {
	out := make([]MemberInfo, len(members))
	for i, m := range members {
		m.index = i
		out[i] = m
	}
	slices.SortStableFunc(out, func(a, b MemberInfo) int {
		if c := cmp.Compare(a.Offset, b.Offset); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
	return out
}
