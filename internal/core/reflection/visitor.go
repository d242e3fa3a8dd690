package reflection

import (
	"math"
	"reflect"
	"slices"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// LeafFunc handles one primitive value at addr. step is a numeric
// granularity hint for editors.
type LeafFunc func(label string, addr unsafe.Pointer, step float32)

// Entry binds a leaf callback to a type.
type Entry struct {
	Type TypeID
	Func LeafFunc
}

// LeafOf adapts a typed callback into an Entry for T.
func LeafOf[T any](fn func(label string, v *T, step float32)) Entry {
	return Entry{
		Type: TypeOf[T](),
		Func: func(label string, addr unsafe.Pointer, step float32) {
			fn(label, (*T)(addr), step)
		},
	}
}

// Table maps type ids to leaf callbacks. It is built once from a fixed entry
// list and read-only afterwards.
type Table struct {
	funcs map[TypeID]LeafFunc
}

// NewTable builds a table; later entries for the same type replace earlier
// ones and entries without a callback are ignored.
func NewTable(entries ...Entry) *Table {
	t := &Table{funcs: make(map[TypeID]LeafFunc, len(entries))}
	for _, e := range entries {
		if e.Func == nil || !e.Type.Valid() {
			continue
		}
		t.funcs[e.Type] = e.Func
	}
	return t
}

func (t *Table) Lookup(id TypeID) (LeafFunc, bool) {
	if t == nil {
		return nil, false
	}
	fn, ok := t.funcs[id]
	return fn, ok
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.funcs)
}

// Types lists the ids with a callback in ascending order.
func (t *Table) Types() []TypeID {
	if t == nil {
		return nil
	}
	ids := make([]TypeID, 0, len(t.funcs))
	for id := range t.funcs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NoticeKind classifies a field traversal could not present.
type NoticeKind uint8

const (
	// UnknownType: the member type has no registry entry.
	UnknownType NoticeKind = iota + 1
	// UnsupportedElementType: a container whose element type has no leaf visitor.
	UnsupportedElementType
	// UnsupportedShape: pointers, maps and other shapes that are recognized but not walked.
	UnsupportedShape
	// NoLeafVisitor: a registered leaf type the visitor has no callback for.
	NoLeafVisitor
)

func (k NoticeKind) String() string {
	switch k {
	case UnknownType:
		return "unknown type"
	case UnsupportedElementType:
		return "unsupported element type"
	case UnsupportedShape:
		return "unsupported shape"
	case NoLeafVisitor:
		return "no leaf visitor"
	default:
		return "unknown notice"
	}
}

// Notice reports a field rendered or serialized as nothing.
type Notice struct {
	Label string
	Path  string
	Type  TypeID
	Kind  NoticeKind
}

// Message is the placeholder text editors display in place of the value.
func (n Notice) Message() string {
	switch n.Kind {
	case UnknownType:
		return n.Label + ": type not reflectable"
	default:
		return n.Label + ": not yet supported (" + n.Kind.String() + ")"
	}
}

// Visitor receives the leaves of a traversal.
type Visitor interface {
	Leaf(id TypeID) (LeafFunc, bool)
	Unsupported(n Notice)
}

// CompositeVisitor is implemented by visitors that track nesting. Returning
// false from EnterComposite skips the subtree; ExitComposite is then not called.
type CompositeVisitor interface {
	EnterComposite(label string, id TypeID) bool
	ExitComposite(label string, id TypeID)
}

// SequenceVisitor is implemented by visitors that need container boundaries.
// BeginSequence runs before the element count is read, so a decoder may
// resize the container through ref.
type SequenceVisitor interface {
	BeginSequence(label string, ref SequenceRef)
	EndSequence(label string, ref SequenceRef)
}

// SequenceRef gives visitors access to a container member.
type SequenceRef struct {
	Elem     TypeID
	ElemSize uintptr
	Fixed    bool

	addr   unsafe.Pointer
	layout SequenceLayout
	length int
}

// Len returns the live element count.
func (s SequenceRef) Len() int {
	if s.Fixed || s.layout == nil {
		return s.length
	}
	begin, end := s.layout.Range(s.addr)
	return elementCount(begin, end, s.ElemSize)
}

// Resize changes the live element count. Fixed arrays ignore it.
func (s SequenceRef) Resize(n int) {
	if s.Fixed || s.layout == nil || n < 0 {
		return
	}
	s.layout.Resize(s.addr, n)
}

// TableVisitor adapts a Table into a Visitor.
type TableVisitor struct {
	Table         *Table
	OnUnsupported func(Notice)
}

func (v TableVisitor) Leaf(id TypeID) (LeafFunc, bool) {
	return v.Table.Lookup(id)
}

func (v TableVisitor) Unsupported(n Notice) {
	if v.OnUnsupported != nil {
		v.OnUnsupported(n)
	}
}

// Number is the set of numeric leaf types.
type Number interface {
	constraints.Integer | constraints.Float
}

// NumberLeaf builds an Entry for a numeric type from a callback working on
// float64. Integer results are clamped to the range of T; NaN is dropped.
func NumberLeaf[T Number](fn func(label string, value float64, step float32) (float64, bool)) Entry {
	lo, hi, integral := integerRange[T]()
	return LeafOf(func(label string, v *T, step float32) {
		updated, changed := fn(label, float64(*v), step)
		if !changed {
			return
		}
		if !integral {
			*v = T(updated)
			return
		}
		switch {
		case math.IsNaN(updated):
		case updated <= float64(lo):
			*v = lo
		case updated >= float64(hi):
			*v = hi
		default:
			*v = T(updated)
		}
	})
}

// integerRange reports the bounds of an integer T. Floats report false.
func integerRange[T Number]() (lo, hi T, ok bool) {
	t := reflect.TypeFor[T]()
	low, high := reflect.New(t).Elem(), reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := t.Bits()
		low.SetInt(-1 << (bits - 1))
		high.SetInt(1<<(bits-1) - 1)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		high.SetUint(math.MaxUint64 >> (64 - t.Bits()))
	default:
		return lo, hi, false
	}
	return low.Interface().(T), high.Interface().(T), true
}
