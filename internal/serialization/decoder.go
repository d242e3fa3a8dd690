package serialization

import (
	"fmt"
	"strings"
	"unsafe"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
)

// Decoder writes values from YAML mapping nodes into objects in place.
// Keys missing from the document leave their fields untouched.
type Decoder struct {
	walker *reflection.Walker
	table  *Table
	logger log.Log
}

// NewDecoder uses DefaultTable when table is nil.
func NewDecoder(walker *reflection.Walker, table *Table, logger log.Log) *Decoder {
	if table == nil {
		table = DefaultTable()
	}
	return &Decoder{walker: walker, table: table, logger: log.OrNop(logger)}
}

// Decode applies node to obj. Sequences are resized to the document's length
// before their elements are read. Every malformed value is reported, the
// first one is returned wrapped in ErrInvalidValue with its field path.
func (d *Decoder) Decode(node *yaml.Node, obj reflection.Object) error {
	if obj.IsNil() {
		return reflection.ErrNilObject
	}
	if _, ok := d.walker.Registry().TypeInfo(obj.Type); !ok {
		return fmt.Errorf("%w: %s", reflection.ErrUnknownType, obj.Type)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d", ErrNotMapping, node.Line)
	}

	st := &decodeState{decoder: d, stack: []*decodeFrame{{node: node}}}
	d.walker.Walk(obj, st)
	for _, err := range st.errs[min(1, len(st.errs)):] {
		d.logger.Warn("invalid value", log.Error(err))
	}
	if len(st.errs) > 0 {
		return st.errs[0]
	}
	return nil
}

type decodeFrame struct {
	node  *yaml.Node
	index int
}

type decodeState struct {
	decoder *Decoder
	stack   []*decodeFrame
	path    []string
	errs    []error
}

func (st *decodeState) top() *decodeFrame {
	return st.stack[len(st.stack)-1]
}

// take returns the source node for the next value of the current frame.
func (st *decodeState) take(label string) *yaml.Node {
	f := st.top()
	if f.node == nil {
		return nil
	}
	if f.node.Kind == yaml.SequenceNode {
		i := f.index
		f.index++
		if i < len(f.node.Content) {
			return f.node.Content[i]
		}
		return nil
	}
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == label {
			return f.node.Content[i+1]
		}
	}
	return nil
}

func (st *decodeState) fail(label string, err error) {
	path := strings.Join(append(st.path[:len(st.path):len(st.path)], label), ".")
	st.errs = append(st.errs, fmt.Errorf("%s: %w: %w", path, ErrInvalidValue, err))
}

func (st *decodeState) Leaf(id reflection.TypeID) (reflection.LeafFunc, bool) {
	c, ok := st.decoder.table.Lookup(id)
	if !ok {
		return nil, false
	}
	return func(label string, addr unsafe.Pointer, _ float32) {
		src := st.take(label)
		if src == nil {
			return
		}
		if err := c.Decode(src, addr); err != nil {
			st.fail(label, err)
		}
	}, true
}

func (st *decodeState) Unsupported(n reflection.Notice) {
	st.decoder.logger.Debug("field not deserialized",
		log.String("path", n.Path),
		log.Stringer("kind", n.Kind),
	)
}

func (st *decodeState) EnterComposite(label string, _ reflection.TypeID) bool {
	src := st.take(label)
	if src == nil {
		return false
	}
	if src.Kind != yaml.MappingNode {
		st.fail(label, fmt.Errorf("line %d: expected mapping", src.Line))
		return false
	}
	st.stack = append(st.stack, &decodeFrame{node: src})
	st.path = append(st.path, label)
	return true
}

func (st *decodeState) ExitComposite(string, reflection.TypeID) {
	st.stack = st.stack[:len(st.stack)-1]
	st.path = st.path[:len(st.path)-1]
}

func (st *decodeState) BeginSequence(label string, ref reflection.SequenceRef) {
	src := st.take(label)
	if src != nil && src.Kind != yaml.SequenceNode {
		st.fail(label, fmt.Errorf("line %d: expected sequence", src.Line))
		src = nil
	}
	if _, ok := st.decoder.table.Lookup(ref.Elem); ok && src != nil && !ref.Fixed {
		ref.Resize(len(src.Content))
	}
	st.stack = append(st.stack, &decodeFrame{node: src})
}

func (st *decodeState) EndSequence(string, reflection.SequenceRef) {
	st.stack = st.stack[:len(st.stack)-1]
}
