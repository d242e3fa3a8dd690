package reflection

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/zeusync/editor/internal/core/observability/log"
)

// TagName is the struct tag read by RegisterNative:
//
//	Position Vec3    `reflect:"name=Position,step=0.1"`
//	cache    []byte  `reflect:"-"`
//	ID       uint64  `reflect:"const"`
//	Target   *Entity `reflect:"borrows"`
const TagName = "reflect"

type nativeOptions struct {
	name  string
	flags TypeFlags
}

type NativeOption func(*nativeOptions)

// WithName overrides the registered display name (default: the Go type name).
func WithName(name string) NativeOption {
	return func(o *nativeOptions) { o.name = name }
}

// AsComponent flags the type as an ECS component.
func AsComponent() NativeOption {
	return func(o *nativeOptions) { o.flags |= IsComponent }
}

// RegisterPrimitive registers T as a leaf type without members.
func RegisterPrimitive[T any](r *Registry, name string) (TypeID, error) {
	t := reflect.TypeFor[T]()
	if name == "" {
		name = t.String()
	}
	id := TypeIDOf(t)
	err := r.RegisterType(id, TypeInfo{
		Name:   name,
		Size:   t.Size(),
		Flags:  IsPrimitive,
		Native: t,
	})
	return id, err
}

// RegisterStruct derives the shape of struct T from its exported fields and
// registers it together with every type it references.
func RegisterStruct[T any](r *Registry, opts ...NativeOption) (TypeID, error) {
	return r.RegisterNative(reflect.TypeFor[T](), opts...)
}

// RegisterComponent is RegisterStruct with the IsComponent flag.
func RegisterComponent[T any](r *Registry, opts ...NativeOption) (TypeID, error) {
	return r.RegisterNative(reflect.TypeFor[T](), append(opts, AsComponent())...)
}

// RegisterNative registers a Go struct type. Referenced types that are not
// registered yet are registered on demand: structs recursively, slices as
// sequence containers, named arrays as fixed arrays, basic kinds as
// primitives. Types already present keep their existing registration.
func (r *Registry) RegisterNative(t reflect.Type, opts ...NativeOption) (TypeID, error) {
	if t.Kind() != reflect.Struct {
		return InvalidTypeID, fmt.Errorf("register %s: %w", t, ErrNotAStruct)
	}

	o := nativeOptions{name: t.Name()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = t.String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerStructLocked(t, o)
}

func (r *Registry) registerStructLocked(t reflect.Type, o nativeOptions) (TypeID, error) {
	id := TypeIDOf(t)
	r.pending[id] = struct{}{}
	defer delete(r.pending, id)

	members := make([]MemberInfo, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, skip := parseTag(f.Tag.Get(TagName))
		if skip {
			continue
		}

		ft := f.Type
		var depth uint8
		for ft.Kind() == reflect.Pointer {
			depth++
			ft = ft.Elem()
		}
		arrayLen := 0
		if depth == 0 && ft.Kind() == reflect.Array && ft.Name() == "" {
			arrayLen = ft.Len()
			ft = ft.Elem()
		}

		if _, err := r.ensureLocked(ft); err != nil {
			return InvalidTypeID, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}

		members = append(members, MemberInfo{
			FieldName: f.Name,
			Label:     tag.label,
			Offset:    f.Offset,
			Variable: Variable{
				Type:         TypeIDOf(ft),
				PointerDepth: depth,
				ArrayLen:     arrayLen,
				Const:        tag.isConst,
				ElemSize:     ft.Size(),
			},
			Flags: tag.flags,
			Step:  tag.step,
		})
	}

	flags := o.flags
	if len(members) > 0 {
		flags |= HasMembers
	}
	if err := r.registerTypeLocked(id, TypeInfo{
		Name:   o.name,
		Size:   t.Size(),
		Flags:  flags,
		Native: t,
	}); err != nil {
		return InvalidTypeID, err
	}
	if len(members) == 0 {
		return id, nil
	}
	if err := r.registerMembersLocked(id, members); err != nil {
		return InvalidTypeID, err
	}
	return id, nil
}

// ensureLocked registers t on demand and returns its id.
func (r *Registry) ensureLocked(t reflect.Type) (TypeID, error) {
	id := TypeIDOf(t)
	if _, ok := r.types[id]; ok {
		return id, nil
	}
	if _, ok := r.pending[id]; ok {
		return id, nil
	}

	switch t.Kind() {
	case reflect.Struct:
		name := t.Name()
		if name == "" {
			name = t.String()
		}
		return r.registerStructLocked(t, nativeOptions{name: name})

	case reflect.Slice:
		elem, err := r.ensureLocked(t.Elem())
		if err != nil {
			return InvalidTypeID, err
		}
		return id, r.registerTypeLocked(id, TypeInfo{
			Name:     t.String(),
			Size:     t.Size(),
			Flags:    IsSequenceContainer | IsTemplated,
			Inner:    []TypeID{elem},
			Sequence: NewSliceLayout(t),
			Native:   t,
		})

	case reflect.Array:
		elem, err := r.ensureLocked(t.Elem())
		if err != nil {
			return InvalidTypeID, err
		}
		return id, r.registerTypeLocked(id, TypeInfo{
			Name:     t.String(),
			Size:     t.Size(),
			Flags:    IsFixedArray | IsTemplated,
			Inner:    []TypeID{elem},
			ArrayLen: t.Len(),
			Native:   t,
		})

	case reflect.Map:
		key, err := r.ensureLocked(t.Key())
		if err != nil {
			return InvalidTypeID, err
		}
		val, err := r.ensureLocked(t.Elem())
		if err != nil {
			return InvalidTypeID, err
		}
		// multi-key containers are recorded but not walked
		return id, r.registerTypeLocked(id, TypeInfo{
			Name:   t.String(),
			Size:   t.Size(),
			Flags:  IsTemplated,
			Inner:  []TypeID{key, val},
			Native: t,
		})

	case reflect.Pointer:
		if _, err := r.ensureLocked(t.Elem()); err != nil {
			return InvalidTypeID, err
		}
		return id, r.registerTypeLocked(id, TypeInfo{Name: t.String(), Size: t.Size(), Native: t})

	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128, reflect.String:
		return id, r.registerTypeLocked(id, TypeInfo{
			Name:   t.String(),
			Size:   t.Size(),
			Flags:  IsPrimitive,
			Native: t,
		})

	default:
		// interfaces, channels and funcs are opaque
		r.logger.Debug("opaque type registered", log.String("type", t.String()))
		return id, r.registerTypeLocked(id, TypeInfo{Name: t.String(), Size: t.Size(), Native: t})
	}
}

type fieldTag struct {
	label   string
	isConst bool
	flags   MemberFlags
	step    float32
}

func parseTag(raw string) (tag fieldTag, skip bool) {
	if raw == "-" {
		return tag, true
	}
	for _, part := range strings.Split(raw, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "hidden":
			tag.flags |= Hidden
		case "const", "readonly":
			tag.isConst = true
		case "owns":
			tag.flags |= OwnsPointerData
		case "borrows":
			tag.flags |= NeverOwnsPointerData
		case "name":
			tag.label = value
		case "step":
			if step, err := strconv.ParseFloat(value, 32); err == nil {
				tag.step = float32(step)
			}
		}
	}
	return tag, false
}
