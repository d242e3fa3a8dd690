package reflection

import (
	"bytes"
	"strconv"
	"unsafe"

	"github.com/zeusync/editor/pkg/generic"
)

// Formatter renders the value at addr for the debug dump.
type Formatter func(addr unsafe.Pointer) string

// FormatterEntry binds a Formatter to a type.
type FormatterEntry struct {
	Type   TypeID
	Format Formatter
}

// FormatterOf adapts a typed formatting function.
func FormatterOf[T any](fn func(v T) string) FormatterEntry {
	return FormatterEntry{
		Type:   TypeOf[T](),
		Format: func(addr unsafe.Pointer) string { return fn(*(*T)(addr)) },
	}
}

func numberFormatter[T Number]() FormatterEntry {
	return FormatterOf(func(v T) string { return FormatNumber(v) })
}

// FormatNumber renders integers exactly and floats in their shortest form.
func FormatNumber[T Number](v T) string {
	var half T = 1
	if half/2 != 0 {
		return strconv.FormatFloat(float64(v), 'f', -1, int(unsafe.Sizeof(v))*8)
	}
	var zero T
	if zero-1 < zero {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatUint(uint64(v), 10)
}

// PrimitiveFormatters covers Go's basic kinds.
func PrimitiveFormatters() []FormatterEntry {
	return []FormatterEntry{
		FormatterOf(strconv.FormatBool),
		FormatterOf(strconv.Quote),
		numberFormatter[int](),
		numberFormatter[int8](),
		numberFormatter[int16](),
		numberFormatter[int32](),
		numberFormatter[int64](),
		numberFormatter[uint](),
		numberFormatter[uint8](),
		numberFormatter[uint16](),
		numberFormatter[uint32](),
		numberFormatter[uint64](),
		numberFormatter[float32](),
		numberFormatter[float64](),
	}
}

var dumpBuffers = generic.NewResetPool(
	func() *bytes.Buffer { return new(bytes.Buffer) },
	func(b *bytes.Buffer) { b.Reset() },
)

// Dumper renders objects as an indented text tree, one line per leaf.
type Dumper struct {
	walker     *Walker
	formatters map[TypeID]Formatter
}

// NewDumper builds a dumper over the primitive formatters plus extra ones.
func NewDumper(walker *Walker, extra ...FormatterEntry) *Dumper {
	d := &Dumper{
		walker:     walker,
		formatters: make(map[TypeID]Formatter),
	}
	for _, e := range append(PrimitiveFormatters(), extra...) {
		if e.Format != nil {
			d.formatters[e.Type] = e.Format
		}
	}
	return d
}

// Dump renders obj. Unsupported fields appear with their placeholder message.
func (d *Dumper) Dump(obj Object) string {
	buf := dumpBuffers.Get()
	defer dumpBuffers.Put(buf)

	name := obj.Type.String()
	if info, ok := d.walker.registry.lookup(obj.Type); ok {
		name = info.Name
	}
	buf.WriteString(name)
	buf.WriteByte('\n')

	v := &dumpVisitor{dumper: d, buf: buf, indent: 1}
	d.walker.Walk(obj, v)
	return buf.String()
}

type dumpVisitor struct {
	dumper *Dumper
	buf    *bytes.Buffer
	indent int
}

func (v *dumpVisitor) Leaf(id TypeID) (LeafFunc, bool) {
	format, ok := v.dumper.formatters[id]
	if !ok {
		return nil, false
	}
	return func(label string, addr unsafe.Pointer, _ float32) {
		v.line(label + ": " + format(addr))
	}, true
}

func (v *dumpVisitor) Unsupported(n Notice) {
	v.line(n.Message())
}

func (v *dumpVisitor) EnterComposite(label string, _ TypeID) bool {
	v.line(label + ":")
	v.indent++
	return true
}

func (v *dumpVisitor) ExitComposite(string, TypeID) {
	v.indent--
}

func (v *dumpVisitor) BeginSequence(label string, ref SequenceRef) {
	v.line(label + ": (" + strconv.Itoa(ref.Len()) + ")")
	v.indent++
}

func (v *dumpVisitor) EndSequence(string, SequenceRef) {
	v.indent--
}

func (v *dumpVisitor) line(s string) {
	for range v.indent {
		v.buf.WriteString("  ")
	}
	v.buf.WriteString(s)
	v.buf.WriteByte('\n')
}
