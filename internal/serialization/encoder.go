package serialization

import (
	"fmt"
	"unsafe"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
)

// Encoder builds YAML mapping nodes from objects. It keeps no per-call state
// and may be used from several goroutines.
type Encoder struct {
	walker *reflection.Walker
	table  *Table
	logger log.Log
}

// NewEncoder uses DefaultTable when table is nil.
func NewEncoder(walker *reflection.Walker, table *Table, logger log.Log) *Encoder {
	if table == nil {
		table = DefaultTable()
	}
	return &Encoder{walker: walker, table: table, logger: log.OrNop(logger)}
}

// Encode returns obj as a mapping keyed by field label. Composites nest as
// mappings, sequences as block sequences and fixed arrays as flow
// sequences. Fields without a codec are left out.
func (e *Encoder) Encode(obj reflection.Object) (*yaml.Node, error) {
	if obj.IsNil() {
		return nil, reflection.ErrNilObject
	}
	if _, ok := e.walker.Registry().TypeInfo(obj.Type); !ok {
		return nil, fmt.Errorf("%w: %s", reflection.ErrUnknownType, obj.Type)
	}

	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	st := &encodeState{encoder: e, stack: []*encodeFrame{{node: root}}}
	e.walker.Walk(obj, st)
	if st.err != nil {
		return nil, st.err
	}
	return root, nil
}

type encodeFrame struct {
	node *yaml.Node
	skip bool
}

type encodeState struct {
	encoder *Encoder
	stack   []*encodeFrame
	err     error
}

func (st *encodeState) top() *encodeFrame {
	return st.stack[len(st.stack)-1]
}

func (st *encodeState) push(f *encodeFrame) {
	st.stack = append(st.stack, f)
}

func (st *encodeState) pop() *encodeFrame {
	f := st.top()
	st.stack = st.stack[:len(st.stack)-1]
	return f
}

func (st *encodeState) add(label string, n *yaml.Node) {
	parent := st.top().node
	if parent.Kind == yaml.SequenceNode {
		parent.Content = append(parent.Content, n)
		return
	}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: label},
		n,
	)
}

func (st *encodeState) Leaf(id reflection.TypeID) (reflection.LeafFunc, bool) {
	c, ok := st.encoder.table.Lookup(id)
	if !ok {
		return nil, false
	}
	return func(label string, addr unsafe.Pointer, _ float32) {
		n, err := c.Encode(addr)
		if err != nil {
			if st.err == nil {
				st.err = fmt.Errorf("%s: %w", label, err)
			}
			return
		}
		st.add(label, n)
	}, true
}

func (st *encodeState) Unsupported(n reflection.Notice) {
	st.encoder.logger.Debug("field not serialized",
		log.String("path", n.Path),
		log.Stringer("kind", n.Kind),
	)
}

func (st *encodeState) EnterComposite(string, reflection.TypeID) bool {
	st.push(&encodeFrame{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}})
	return true
}

func (st *encodeState) ExitComposite(label string, _ reflection.TypeID) {
	st.add(label, st.pop().node)
}

func (st *encodeState) BeginSequence(_ string, ref reflection.SequenceRef) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if ref.Fixed {
		n.Style = yaml.FlowStyle
	}
	_, ok := st.encoder.table.Lookup(ref.Elem)
	st.push(&encodeFrame{node: n, skip: !ok})
}

func (st *encodeState) EndSequence(label string, _ reflection.SequenceRef) {
	if f := st.pop(); !f.skip {
		st.add(label, f.node)
	}
}
