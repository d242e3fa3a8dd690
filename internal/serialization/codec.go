// Package serialization maps reflected objects to and from YAML documents.
package serialization

import (
	"fmt"
	"slices"
	"unsafe"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/engine/components"
	"github.com/zeusync/editor/internal/engine/types"
)

// Codec converts the value at an address to and from a YAML node.
type Codec struct {
	Type   reflection.TypeID
	Encode func(addr unsafe.Pointer) (*yaml.Node, error)
	Decode func(node *yaml.Node, addr unsafe.Pointer) error
}

// CodecOf uses yaml.v3's own mapping for T. Flow codecs render sequences
// inline, the way vectors are written in scene files.
func CodecOf[T any](flow bool) Codec {
	return Codec{
		Type: reflection.TypeOf[T](),
		Encode: func(addr unsafe.Pointer) (*yaml.Node, error) {
			n := new(yaml.Node)
			if err := n.Encode(reflection.Load[T](addr)); err != nil {
				return nil, err
			}
			if flow {
				n.Style = yaml.FlowStyle
			}
			return n, nil
		},
		Decode: func(node *yaml.Node, addr unsafe.Pointer) error {
			var v T
			if err := node.Decode(&v); err != nil {
				return err
			}
			reflection.Store(addr, v)
			return nil
		},
	}
}

// EnumCodec writes E by name and reads either a name or its number.
func EnumCodec[E ~int32](names []string) Codec {
	return Codec{
		Type: reflection.TypeOf[E](),
		Encode: func(addr unsafe.Pointer) (*yaml.Node, error) {
			v := reflection.Load[E](addr)
			if v < 0 || int(v) >= len(names) {
				return nil, fmt.Errorf("enum value %d out of range", v)
			}
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: names[v]}, nil
		},
		Decode: func(node *yaml.Node, addr unsafe.Pointer) error {
			if node.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: expected scalar", node.Line)
			}
			if i := slices.Index(names, node.Value); i >= 0 {
				reflection.Store(addr, E(i))
				return nil
			}
			var n int32
			if err := node.Decode(&n); err != nil {
				return fmt.Errorf("line %d: unknown value %q", node.Line, node.Value)
			}
			if n < 0 || int(n) >= len(names) {
				return fmt.Errorf("line %d: value %d out of range", node.Line, n)
			}
			reflection.Store(addr, E(n))
			return nil
		},
	}
}

// Table is an immutable set of codecs keyed by type.
type Table struct {
	codecs map[reflection.TypeID]Codec
}

func NewTable(codecs ...Codec) *Table {
	t := &Table{codecs: make(map[reflection.TypeID]Codec, len(codecs))}
	for _, c := range codecs {
		t.codecs[c.Type] = c
	}
	return t
}

func (t *Table) Lookup(id reflection.TypeID) (Codec, bool) {
	if t == nil {
		return Codec{}, false
	}
	c, ok := t.codecs[id]
	return c, ok
}

func (t *Table) Len() int {
	return len(t.codecs)
}

// PrimitiveCodecs covers Go's basic kinds.
func PrimitiveCodecs() []Codec {
	return []Codec{
		CodecOf[bool](false),
		CodecOf[string](false),
		CodecOf[int](false),
		CodecOf[int8](false),
		CodecOf[int16](false),
		CodecOf[int32](false),
		CodecOf[int64](false),
		CodecOf[uint](false),
		CodecOf[uint8](false),
		CodecOf[uint16](false),
		CodecOf[uint32](false),
		CodecOf[uint64](false),
		CodecOf[float32](false),
		CodecOf[float64](false),
	}
}

// EngineCodecs covers the math types and component enums.
func EngineCodecs() []Codec {
	return []Codec{
		CodecOf[types.Vec2](true),
		CodecOf[types.Vec3](true),
		CodecOf[types.Vec4](true),
		CodecOf[types.IVec2](true),
		CodecOf[types.IVec3](true),
		CodecOf[types.IVec4](true),
		CodecOf[types.Color](true),
		CodecOf[types.Mat4](true),
		EnumCodec[components.ProjectionType](components.ProjectionNames()),
		EnumCodec[components.LightType](components.LightNames()),
	}
}

// DefaultTable holds the primitive and engine codecs.
func DefaultTable() *Table {
	return NewTable(append(PrimitiveCodecs(), EngineCodecs()...)...)
}
