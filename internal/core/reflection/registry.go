package reflection

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zeusync/editor/internal/core/observability/log"
)

// Registry catalogs type shapes. It is written during a startup phase and
// frozen by Seal; after that every read is lock-free and safe to share
// between goroutines. Registering after Seal fails with ErrRegistrySealed.
type Registry struct {
	mu     sync.Mutex // serializes writers until sealed
	sealed atomic.Bool

	types   map[TypeID]TypeInfo
	members map[TypeID][]MemberInfo
	names   map[string]TypeID

	// in-progress Go types, guards recursive RegisterNative calls
	pending map[TypeID]struct{}

	logger log.Log
}

func NewRegistry(logger log.Log) *Registry {
	return &Registry{
		types:   make(map[TypeID]TypeInfo),
		members: make(map[TypeID][]MemberInfo),
		names:   make(map[string]TypeID),
		pending: make(map[TypeID]struct{}),
		logger:  log.OrNop(logger),
	}
}

// RegisterType inserts or overwrites the TypeInfo of id. Last write wins.
func (r *Registry) RegisterType(id TypeID, info TypeInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerTypeLocked(id, info)
}

func (r *Registry) registerTypeLocked(id TypeID, info TypeInfo) error {
	if r.sealed.Load() {
		return ErrRegistrySealed
	}
	if !id.Valid() {
		return ErrInvalidTypeID
	}

	info = info.clone()
	info.ID = id
	if prev, ok := r.types[id]; ok && prev.Name != info.Name {
		delete(r.names, prev.Name)
	}
	r.types[id] = info
	if info.Name != "" {
		r.names[info.Name] = id
	}

	r.logger.Debug("type registered",
		log.String("name", info.Name),
		log.Stringer("id", id),
		log.Uintptr("size", info.Size),
		log.Stringer("flags", info.Flags),
	)
	return nil
}

// RegisterMembers attaches the member set of a registered composite type.
// Members are stored in canonical order. Each member must fit inside the owner.
func (r *Registry) RegisterMembers(id TypeID, members []MemberInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerMembersLocked(id, members)
}

func (r *Registry) registerMembersLocked(id TypeID, members []MemberInfo) error {
	if r.sealed.Load() {
		return ErrRegistrySealed
	}
	owner, ok := r.types[id]
	if !ok {
		return fmt.Errorf("register members of %s: %w", id, ErrUnknownType)
	}

	ordered := canonicalMembers(members)
	for i := range ordered {
		r.resolveElemSize(&ordered[i].Variable)
		if err := checkMemberBounds(owner, ordered[i]); err != nil {
			return err
		}
	}

	r.members[id] = ordered
	r.logger.Debug("members registered",
		log.String("name", owner.Name),
		log.Int("count", len(ordered)),
	)
	return nil
}

// Register is the combined form of RegisterType and RegisterMembers.
func (r *Registry) Register(id TypeID, name string, size uintptr, flags TypeFlags, members ...MemberInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(members) > 0 {
		flags |= HasMembers
	}
	if err := r.registerTypeLocked(id, TypeInfo{Name: name, Size: size, Flags: flags}); err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	return r.registerMembersLocked(id, members)
}

// TypeInfo returns the shape of id. The second result is false for types that
// were never registered; callers treat them as not reflectable.
func (r *Registry) TypeInfo(id TypeID) (TypeInfo, bool) {
	info, ok := r.lookup(id)
	if !ok {
		return TypeInfo{}, false
	}
	return info.clone(), true
}

// Members returns a copy of the canonical member set of id. It is empty for
// primitives and unknown types.
func (r *Registry) Members(id TypeID) []MemberInfo {
	return slices.Clone(r.memberSet(id))
}

func (r *Registry) IsTemplated(id TypeID) bool {
	info, ok := r.lookup(id)
	return ok && info.Flags.Has(IsTemplated)
}

// TemplateInnerTypes returns the element type ids of a templated type.
func (r *Registry) TemplateInnerTypes(id TypeID) []TypeID {
	info, ok := r.lookup(id)
	if !ok || !info.Flags.Has(IsTemplated) {
		return nil
	}
	return slices.Clone(info.Inner)
}

// Lookup resolves a registered display name.
func (r *Registry) Lookup(name string) (TypeID, bool) {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	id, ok := r.names[name]
	return id, ok
}

// Types returns every registered id in ascending order.
func (r *Registry) Types() []TypeID {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	ids := make([]TypeID, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Registry) Len() int {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return len(r.types)
}

func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Seal validates the catalog and freezes it. On validation failure the
// registry stays writable and the joined errors are returned.
func (r *Registry) Seal() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return nil
	}

	var errs []error
	for _, id := range sortedKeys(r.types) {
		info := r.types[id]
		members := r.members[id]

		switch {
		case info.Flags.Has(HasMembers) && len(members) == 0:
			errs = append(errs, fmt.Errorf("%s: %w", info.Name, ErrMissingMembers))
		case !info.Flags.Has(HasMembers) && len(members) > 0:
			errs = append(errs, fmt.Errorf("%s: %w", info.Name, ErrFlagMismatch))
		}
		if info.IsContainer() && len(info.Inner) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", info.Name, ErrMissingInnerType))
		}
		if info.Flags.Has(IsSequenceContainer) && info.Sequence == nil {
			errs = append(errs, fmt.Errorf("%s: %w", info.Name, ErrMissingLayout))
		}

		for i := range members {
			r.resolveElemSize(&members[i].Variable)
			if err := checkMemberBounds(info, members[i]); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.pending = nil
	r.sealed.Store(true)
	r.logger.Debug("registry sealed", log.Int("types", len(r.types)))
	return nil
}

// lookup is the allocation-free read path used by traversal.
func (r *Registry) lookup(id TypeID) (TypeInfo, bool) {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	info, ok := r.types[id]
	return info, ok
}

func (r *Registry) memberSet(id TypeID) []MemberInfo {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return r.members[id]
}

func (r *Registry) resolveElemSize(v *Variable) {
	if v.ElemSize != 0 {
		return
	}
	if info, ok := r.types[v.Type]; ok {
		v.ElemSize = info.Size
	}
}

func checkMemberBounds(owner TypeInfo, m MemberInfo) error {
	if m.Offset+m.Variable.Size() > owner.Size {
		return fmt.Errorf("%s.%s at offset %d size %d, owner size %d: %w",
			owner.Name, m.FieldName, m.Offset, m.Variable.Size(), owner.Size, ErrMemberOutOfBounds)
	}
	return nil
}

func sortedKeys[V any](m map[TypeID]V) []TypeID {
	keys := make([]TypeID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
