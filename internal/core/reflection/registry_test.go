package reflection

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec3 [3]float32

type vec4 [4]float32

type transform struct {
	Position vec3
	Scale    vec3
	Rotation vec4
}

type lightKind int32

type light struct {
	Kind      lightKind
	Color     vec3
	Intensity float32 `reflect:"step=0.05"`
	Enabled   bool
	Name      string     `reflect:"name=Display Name"`
	ID        uint64     `reflect:"const"`
	Scratch   []byte     `reflect:"hidden"`
	Owner     *transform `reflect:"borrows"`
	Deep      ***int32
	Tags      map[string]int32
	cache     int
	Ignored   int `reflect:"-"`
}

func localCounter() reflect.Type {
	type local struct{ A int32 }
	return reflect.TypeFor[local]()
}

func localLabel() reflect.Type {
	type local struct{ B string }
	return reflect.TypeFor[local]()
}

func TestTypeID(t *testing.T) {
	t.Run("Stable", func(t *testing.T) {
		require.Equal(t, TypeOf[int32](), TypeOf[int32]())
		require.Equal(t, TypeOf[transform](), TypeIDOf(reflect.TypeOf(transform{})))
	})

	t.Run("Distinct", func(t *testing.T) {
		ids := map[TypeID]string{}
		for name, id := range map[string]TypeID{
			"int32":     TypeOf[int32](),
			"uint32":    TypeOf[uint32](),
			"lightKind": TypeOf[lightKind](),
			"vec3":      TypeOf[vec3](),
			"[3]f32":    TypeOf[[3]float32](),
			"[]int32":   TypeOf[[]int32](),
			"*int32":    TypeOf[*int32](),
			"transform": TypeOf[transform](),
		} {
			prev, dup := ids[id]
			require.Falsef(t, dup, "%s collides with %s", name, prev)
			ids[id] = name
			require.True(t, id.Valid())
		}
	})

	t.Run("Same Spelling", func(t *testing.T) {
		a, b := TypeIDOf(localCounter()), TypeIDOf(localLabel())
		require.NotEqual(t, a, b)
		require.Equal(t, a, TypeIDOf(localCounter()))
		require.Equal(t, b, TypeIDOf(localLabel()))

		nameA, _ := CanonicalName(a)
		nameB, _ := CanonicalName(b)
		require.NotEqual(t, nameA, nameB)
		require.Contains(t, []string{nameA, nameB}, "github.com/zeusync/editor/internal/core/reflection.local")

		r := NewRegistry(nil)
		_, err := r.RegisterNative(localCounter())
		require.NoError(t, err)
		_, err = r.RegisterNative(localLabel())
		require.NoError(t, err)
		require.NoError(t, r.Seal())

		infoA, ok := r.TypeInfo(a)
		require.True(t, ok)
		require.Equal(t, uintptr(4), infoA.Size)
		infoB, ok := r.TypeInfo(b)
		require.True(t, ok)
		require.Equal(t, unsafe.Sizeof(""), infoB.Size)
	})

	t.Run("Named", func(t *testing.T) {
		require.Equal(t, TypeOf[float32](), NamedTypeID("float32"))

		name, ok := CanonicalName(TypeOf[transform]())
		require.True(t, ok)
		require.Equal(t, "github.com/zeusync/editor/internal/core/reflection.transform", name)
		require.Equal(t, InvalidTypeID, TypeIDOf(nil))
	})
}

func TestRegistry_RegisterType(t *testing.T) {
	t.Run("Unknown Type Fails Softly", func(t *testing.T) {
		r := NewRegistry(nil)

		info, ok := r.TypeInfo(NamedTypeID("never.registered"))
		require.False(t, ok)
		require.Equal(t, TypeInfo{}, info)
		require.Empty(t, r.Members(NamedTypeID("never.registered")))
		require.False(t, r.IsTemplated(NamedTypeID("never.registered")))
		require.Nil(t, r.TemplateInnerTypes(NamedTypeID("never.registered")))
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		r := NewRegistry(nil)
		id := NamedTypeID("engine.Handle")

		require.NoError(t, r.RegisterType(id, TypeInfo{Name: "Handle", Size: 4}))
		require.NoError(t, r.RegisterType(id, TypeInfo{Name: "EngineHandle", Size: 8}))

		info, ok := r.TypeInfo(id)
		require.True(t, ok)
		require.Equal(t, "EngineHandle", info.Name)
		require.Equal(t, uintptr(8), info.Size)
		require.Equal(t, id, info.ID)

		_, ok = r.Lookup("Handle")
		require.False(t, ok)
		got, ok := r.Lookup("EngineHandle")
		require.True(t, ok)
		require.Equal(t, id, got)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r := NewRegistry(nil)
		require.ErrorIs(t, r.RegisterType(InvalidTypeID, TypeInfo{Name: "x"}), ErrInvalidTypeID)
	})
}

func TestRegistry_Members(t *testing.T) {
	t.Run("Canonical Order", func(t *testing.T) {
		r := NewRegistry(nil)
		f32 := TypeOf[float32]()
		require.NoError(t, r.RegisterType(f32, TypeInfo{Name: "float32", Size: 4, Flags: IsPrimitive}))

		owner := NamedTypeID("engine.Pair")
		require.NoError(t, r.Register(owner, "Pair", 8, 0,
			MemberInfo{FieldName: "second", Offset: 4, Variable: Variable{Type: f32}},
			MemberInfo{FieldName: "first", Offset: 0, Variable: Variable{Type: f32}},
		))

		members := r.Members(owner)
		require.Len(t, members, 2)
		require.Equal(t, "first", members[0].FieldName)
		require.Equal(t, "second", members[1].FieldName)
		require.Equal(t, uintptr(4), members[0].Variable.ElemSize)

		info, _ := r.TypeInfo(owner)
		require.True(t, info.Flags.Has(HasMembers))

		// callers get a copy
		members[0].FieldName = "mutated"
		require.Equal(t, "first", r.Members(owner)[0].FieldName)
	})

	t.Run("Out Of Bounds", func(t *testing.T) {
		r := NewRegistry(nil)
		f32 := TypeOf[float32]()
		require.NoError(t, r.RegisterType(f32, TypeInfo{Name: "float32", Size: 4, Flags: IsPrimitive}))

		err := r.Register(NamedTypeID("engine.Tiny"), "Tiny", 4, 0,
			MemberInfo{FieldName: "a", Offset: 2, Variable: Variable{Type: f32}},
		)
		require.ErrorIs(t, err, ErrMemberOutOfBounds)
	})

	t.Run("Unknown Owner", func(t *testing.T) {
		r := NewRegistry(nil)
		err := r.RegisterMembers(NamedTypeID("engine.Ghost"), []MemberInfo{{FieldName: "a"}})
		require.ErrorIs(t, err, ErrUnknownType)
	})
}

func TestRegistry_Seal(t *testing.T) {
	t.Run("Rejects Writes After Seal", func(t *testing.T) {
		r := NewRegistry(nil)
		_, err := RegisterPrimitive[int32](r, "int32")
		require.NoError(t, err)
		require.NoError(t, r.Seal())
		require.True(t, r.Sealed())

		_, err = RegisterPrimitive[int64](r, "int64")
		require.ErrorIs(t, err, ErrRegistrySealed)
		require.ErrorIs(t, r.RegisterMembers(TypeOf[int32](), nil), ErrRegistrySealed)
		require.NoError(t, r.Seal())
	})

	t.Run("Missing Members", func(t *testing.T) {
		r := NewRegistry(nil)
		require.NoError(t, r.RegisterType(NamedTypeID("engine.Hollow"), TypeInfo{Name: "Hollow", Size: 4, Flags: HasMembers}))

		require.ErrorIs(t, r.Seal(), ErrMissingMembers)
		require.False(t, r.Sealed())
	})

	t.Run("Container Without Inner", func(t *testing.T) {
		r := NewRegistry(nil)
		require.NoError(t, r.RegisterType(NamedTypeID("engine.List"), TypeInfo{Name: "List", Size: 24, Flags: IsSequenceContainer}))

		err := r.Seal()
		require.ErrorIs(t, err, ErrMissingInnerType)
		require.ErrorIs(t, err, ErrMissingLayout)
	})
}

func TestRegisterNative(t *testing.T) {
	r := NewRegistry(nil)
	id, err := RegisterComponent[light](r, WithName("Light"))
	require.NoError(t, err)
	require.NoError(t, r.Seal())

	info, ok := r.TypeInfo(id)
	require.True(t, ok)
	require.Equal(t, "Light", info.Name)
	require.True(t, info.Flags.Has(IsComponent|HasMembers))

	t.Run("Sizes Match Native", func(t *testing.T) {
		for _, tid := range r.Types() {
			info, ok := r.TypeInfo(tid)
			require.True(t, ok)
			require.NotNil(t, info.Native, info.Name)
			require.Equal(t, info.Native.Size(), info.Size, info.Name)
		}
		lightInfo, _ := r.TypeInfo(TypeOf[light]())
		require.Equal(t, unsafe.Sizeof(light{}), lightInfo.Size)
		vecInfo, _ := r.TypeInfo(TypeOf[vec3]())
		require.Equal(t, unsafe.Sizeof(vec3{}), vecInfo.Size)
	})

	t.Run("Members From Tags", func(t *testing.T) {
		members := r.Members(id)
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = m.FieldName
		}
		require.Equal(t, []string{"Kind", "Color", "Intensity", "Enabled", "Name", "ID", "Scratch", "Owner", "Deep", "Tags"}, names)

		byName := map[string]MemberInfo{}
		for _, m := range members {
			byName[m.FieldName] = m
		}
		require.Equal(t, float32(0.05), byName["Intensity"].Step)
		require.Equal(t, "Display Name", byName["Name"].DisplayName())
		require.True(t, byName["ID"].Variable.Const)
		require.True(t, byName["Scratch"].Flags.Has(Hidden))
		require.True(t, byName["Owner"].Flags.Has(NeverOwnsPointerData))
		require.Equal(t, uint8(1), byName["Owner"].Variable.PointerDepth)
		require.Equal(t, TypeOf[transform](), byName["Owner"].Variable.Type)
		require.Equal(t, uint8(3), byName["Deep"].Variable.PointerDepth)
		require.Equal(t, unsafe.Offsetof(light{}.Enabled), byName["Enabled"].Offset)
	})

	t.Run("Containers", func(t *testing.T) {
		bytesID := TypeOf[[]byte]()
		require.True(t, r.IsTemplated(bytesID))
		require.Equal(t, []TypeID{TypeOf[byte]()}, r.TemplateInnerTypes(bytesID))

		vecInfo, ok := r.TypeInfo(TypeOf[vec3]())
		require.True(t, ok)
		require.True(t, vecInfo.Flags.Has(IsFixedArray))
		require.Equal(t, 3, vecInfo.ArrayLen)

		mapInfo, ok := r.TypeInfo(TypeOf[map[string]int32]())
		require.True(t, ok)
		require.Len(t, mapInfo.Inner, 2)
		require.False(t, mapInfo.IsContainer())
	})

	t.Run("Not A Struct", func(t *testing.T) {
		_, err := NewRegistry(nil).RegisterNative(reflect.TypeFor[int]())
		require.ErrorIs(t, err, ErrNotAStruct)
	})
}

type listNode struct {
	Value int32
	Next  *listNode
}

func TestRegisterNative_SelfReference(t *testing.T) {
	r := NewRegistry(nil)
	id, err := RegisterStruct[listNode](r)
	require.NoError(t, err)
	require.NoError(t, r.Seal())

	members := r.Members(id)
	require.Len(t, members, 2)
	assert.Equal(t, id, members[1].Variable.Type)
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		raw  string
		skip bool
		want fieldTag
	}{
		{raw: "", want: fieldTag{}},
		{raw: "-", skip: true},
		{raw: "hidden,readonly", want: fieldTag{flags: Hidden, isConst: true}},
		{raw: "owns, name=Mesh", want: fieldTag{flags: OwnsPointerData, label: "Mesh"}},
		{raw: "step=0.25", want: fieldTag{step: 0.25}},
		{raw: "step=oops", want: fieldTag{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, skip := parseTag(tt.raw)
			require.Equal(t, tt.skip, skip)
			if !skip {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTypeFlags_String(t *testing.T) {
	assert.Equal(t, "None", TypeFlags(0).String())
	assert.Equal(t, "IsSequenceContainer|IsTemplated", (IsTemplated | IsSequenceContainer).String())
}
