package reflection

import (
	"strconv"
	"unsafe"

	"github.com/zeusync/editor/internal/core/observability/log"
)

// DefaultMaxDepth bounds composite nesting. Registered graphs are expected to
// be acyclic; the bound turns a cyclic registration into a logged error.
const DefaultMaxDepth = 64

// Decision is the single outcome traversal records per member.
type Decision uint8

const (
	DecisionLeaf Decision = iota
	DecisionSequence
	DecisionArray
	DecisionRecurse
	DecisionSkip
	DecisionUnknown
	DecisionUnsupported

	decisionCount
)

func (d Decision) String() string {
	switch d {
	case DecisionLeaf:
		return "leaf"
	case DecisionSequence:
		return "sequence"
	case DecisionArray:
		return "array"
	case DecisionRecurse:
		return "recurse"
	case DecisionSkip:
		return "skip"
	case DecisionUnknown:
		return "unknown"
	case DecisionUnsupported:
		return "unsupported"
	default:
		return "decision(" + strconv.Itoa(int(d)) + ")"
	}
}

// DecisionObserver is told about every member decision, in visit order.
type DecisionObserver interface {
	Decided(path string, member MemberInfo, d Decision)
}

// DecisionObserverFunc adapts a function into a DecisionObserver.
type DecisionObserverFunc func(path string, member MemberInfo, d Decision)

func (f DecisionObserverFunc) Decided(path string, member MemberInfo, d Decision) {
	f(path, member, d)
}

// Stats summarizes one Walk.
type Stats struct {
	// Decisions counts member decisions by kind.
	Decisions [decisionCount]int
	// LeafCalls counts leaf visitor invocations, elements included.
	LeafCalls int
	// Notices counts Unsupported calls.
	Notices int
}

// Members is the total number of member decisions.
func (s Stats) Members() int {
	total := 0
	for _, n := range s.Decisions {
		total += n
	}
	return total
}

func (s Stats) Count(d Decision) int {
	if d >= decisionCount {
		return 0
	}
	return s.Decisions[d]
}

// Walker drives visitors over raw objects by their registered shape. A Walker
// holds no per-walk state and may be shared once its registry is sealed.
type Walker struct {
	registry *Registry
	logger   log.Log
	maxDepth int
	observer DecisionObserver
}

type WalkerOption func(*Walker)

func WithMaxDepth(depth int) WalkerOption {
	return func(w *Walker) {
		if depth > 0 {
			w.maxDepth = depth
		}
	}
}

func WithObserver(o DecisionObserver) WalkerOption {
	return func(w *Walker) { w.observer = o }
}

func WithLogger(l log.Log) WalkerOption {
	return func(w *Walker) { w.logger = log.OrNop(l) }
}

func NewWalker(registry *Registry, opts ...WalkerOption) *Walker {
	w := &Walker{
		registry: registry,
		logger:   registry.logger,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Walker) Registry() *Registry {
	return w.registry
}

// walk carries the state of one Walk call.
type walk struct {
	visitor   Visitor
	composite CompositeVisitor
	sequence  SequenceVisitor
	observer  DecisionObserver
	stats     Stats
}

// Walk visits every value reachable from obj in canonical member order.
// Unknown and unsupported fields degrade to notices; Walk never fails.
func (w *Walker) Walk(obj Object, v Visitor) Stats {
	st := &walk{visitor: v, observer: w.observer}
	st.composite, _ = v.(CompositeVisitor)
	st.sequence, _ = v.(SequenceVisitor)

	info, ok := w.registry.lookup(obj.Type)
	if !ok {
		w.logger.Debug("object type not reflectable", log.Stringer("type", obj.Type))
		w.notify(st, Notice{Type: obj.Type, Kind: UnknownType})
		return st.stats
	}
	if obj.Ptr == nil {
		w.logger.Warn("walk of nil object", log.String("type", info.Name))
		return st.stats
	}

	// a leaf handed in directly
	if fn, ok := v.Leaf(obj.Type); ok && !info.IsComposite() {
		fn(info.Name, obj.Ptr, 0)
		st.stats.LeafCalls++
		return st.stats
	}

	w.walkComposite(st, obj.Ptr, info, "", 0)
	return st.stats
}

func (w *Walker) walkComposite(st *walk, base unsafe.Pointer, owner TypeInfo, prefix string, depth int) {
	if depth >= w.maxDepth {
		w.logger.Error("composite nesting exceeds max depth, registration is likely cyclic",
			log.String("type", owner.Name),
			log.String("path", prefix),
			log.Int("max_depth", w.maxDepth),
		)
		w.notify(st, Notice{Label: owner.Name, Path: prefix, Type: owner.ID, Kind: UnsupportedShape})
		return
	}

	for _, m := range w.registry.memberSet(owner.ID) {
		d := w.walkMember(st, base, owner, m, prefix, depth)
		st.stats.Decisions[d]++
		if st.observer != nil {
			st.observer.Decided(joinPath(prefix, m.FieldName), m, d)
		}
	}
}

func (w *Walker) walkMember(st *walk, base unsafe.Pointer, owner TypeInfo, m MemberInfo, prefix string, depth int) Decision {
	v := m.Variable
	if v.PointerDepth > 2 || v.Const || m.Flags.Has(Hidden) {
		return DecisionSkip
	}

	label := m.DisplayName()
	path := joinPath(prefix, m.FieldName)

	if v.IsPointer() {
		w.notify(st, Notice{Label: label, Path: path, Type: v.Type, Kind: UnsupportedShape})
		return DecisionUnsupported
	}

	addr := memberAddr(base, owner, m)

	if v.IsArray() {
		size, d, ok := w.elementSize(st, label, path, v.Type, v.ElemSize)
		if !ok {
			return d
		}
		w.walkElements(st, label, path, m.Step, SequenceRef{
			Elem:     v.Type,
			ElemSize: size,
			Fixed:    true,
			addr:     addr,
			length:   v.ArrayLen,
		})
		return DecisionArray
	}

	info, ok := w.registry.lookup(v.Type)
	if !ok {
		w.logger.Debug("member type not reflectable",
			log.String("owner", owner.Name),
			log.String("path", path),
			log.Stringer("type", v.Type),
		)
		w.notify(st, Notice{Label: label, Path: path, Type: v.Type, Kind: UnknownType})
		return DecisionUnknown
	}

	if info.Flags.Has(IsSequenceContainer) {
		elem, ok := info.Elem()
		if !ok || info.Sequence == nil {
			w.notify(st, Notice{Label: label, Path: path, Type: v.Type, Kind: UnsupportedShape})
			return DecisionUnsupported
		}
		size, d, ok := w.elementSize(st, label, path, elem, 0)
		if !ok {
			return d
		}
		w.walkElements(st, label, path, m.Step, SequenceRef{
			Elem:     elem,
			ElemSize: size,
			addr:     addr,
			layout:   info.Sequence,
		})
		return DecisionSequence
	}

	if fn, ok := st.visitor.Leaf(v.Type); ok {
		fn(label, addr, m.Step)
		st.stats.LeafCalls++
		return DecisionLeaf
	}

	if info.Flags.Has(IsFixedArray) {
		elem, ok := info.Elem()
		if !ok {
			w.notify(st, Notice{Label: label, Path: path, Type: v.Type, Kind: UnsupportedShape})
			return DecisionUnsupported
		}
		size, d, ok := w.elementSize(st, label, path, elem, 0)
		if !ok {
			return d
		}
		w.walkElements(st, label, path, m.Step, SequenceRef{
			Elem:     elem,
			ElemSize: size,
			Fixed:    true,
			addr:     addr,
			length:   info.ArrayLen,
		})
		return DecisionArray
	}

	if info.IsComposite() {
		if st.composite != nil && !st.composite.EnterComposite(label, v.Type) {
			return DecisionRecurse
		}
		w.walkComposite(st, addr, info, path, depth+1)
		if st.composite != nil {
			st.composite.ExitComposite(label, v.Type)
		}
		return DecisionRecurse
	}

	kind := UnsupportedShape
	if info.Flags.Has(IsPrimitive) {
		kind = NoLeafVisitor
	}
	w.notify(st, Notice{Label: label, Path: path, Type: v.Type, Kind: kind})
	return DecisionUnsupported
}

// elementSize resolves the stride of container elements. An unregistered
// element type or a zero stride reports a notice and the failed decision.
func (w *Walker) elementSize(st *walk, label, path string, elem TypeID, hint uintptr) (uintptr, Decision, bool) {
	info, ok := w.registry.lookup(elem)
	if !ok {
		w.logger.Debug("element type not reflectable",
			log.String("path", path),
			log.Stringer("type", elem),
		)
		w.notify(st, Notice{Label: label, Path: path, Type: elem, Kind: UnknownType})
		return 0, DecisionUnknown, false
	}
	size := hint
	if size == 0 {
		size = info.Size
	}
	if size == 0 {
		w.notify(st, Notice{Label: label, Path: path, Type: elem, Kind: UnsupportedShape})
		return 0, DecisionUnsupported, false
	}
	return size, 0, true
}

// walkElements applies the per-element leaf-or-unsupported rule to a
// sequence container or fixed array.
func (w *Walker) walkElements(st *walk, label, path string, step float32, ref SequenceRef) {
	if st.sequence != nil {
		st.sequence.BeginSequence(label, ref)
	}

	fn, ok := st.visitor.Leaf(ref.Elem)
	if !ok {
		w.notify(st, Notice{Label: label, Path: path, Type: ref.Elem, Kind: UnsupportedElementType})
	} else {
		begin, n := ref.addr, ref.length
		if !ref.Fixed {
			var end unsafe.Pointer
			begin, end = ref.layout.Range(ref.addr)
			n = elementCount(begin, end, ref.ElemSize)
		}
		for i := range n {
			fn(elementLabel(label, i), elementAddr(begin, i, ref.ElemSize), step)
			st.stats.LeafCalls++
		}
	}

	if st.sequence != nil {
		st.sequence.EndSequence(label, ref)
	}
}

func (w *Walker) notify(st *walk, n Notice) {
	st.stats.Notices++
	st.visitor.Unsupported(n)
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func elementLabel(label string, i int) string {
	return label + "[" + strconv.Itoa(i) + "]"
}
