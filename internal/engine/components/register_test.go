package components

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/engine/types"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)
	require.True(t, r.Sealed())

	t.Run("Components", func(t *testing.T) {
		for name, size := range map[string]uintptr{
			"Transform":      unsafe.Sizeof(Transform{}),
			"Camera":         unsafe.Sizeof(Camera{}),
			"Light":          unsafe.Sizeof(Light{}),
			"MeshRenderer":   unsafe.Sizeof(MeshRenderer{}),
			"SpriteAnimator": unsafe.Sizeof(SpriteAnimator{}),
			"Name":           unsafe.Sizeof(Name{}),
			"Tag":            unsafe.Sizeof(Tag{}),
		} {
			id, ok := r.Lookup(name)
			require.True(t, ok, name)
			info, ok := r.TypeInfo(id)
			require.True(t, ok)
			require.Equal(t, size, info.Size, name)
			require.True(t, info.Flags.Has(reflection.IsComponent|reflection.HasMembers), name)
		}
	})

	t.Run("Transform Layout", func(t *testing.T) {
		members := r.Members(reflection.TypeOf[Transform]())
		require.Len(t, members, 3)
		require.Equal(t, uintptr(0), members[0].Offset)
		require.Equal(t, uintptr(12), members[1].Offset)
		require.Equal(t, uintptr(24), members[2].Offset)
		require.Equal(t, reflection.TypeOf[types.Vec3](), members[0].Variable.Type)
		require.Equal(t, reflection.TypeOf[types.Vec4](), members[2].Variable.Type)
	})

	t.Run("Math Types Stay Leaves", func(t *testing.T) {
		info, ok := r.TypeInfo(reflection.TypeOf[types.Vec3]())
		require.True(t, ok)
		require.False(t, info.Flags.Has(reflection.IsFixedArray))
	})

	t.Run("Sprite Frames", func(t *testing.T) {
		framesID := reflection.TypeOf[[]int32]()
		require.True(t, r.IsTemplated(framesID))
		require.Equal(t, []reflection.TypeID{reflection.TypeOf[int32]()}, r.TemplateInnerTypes(framesID))
	})
}

func TestEnumNames(t *testing.T) {
	require.Equal(t, "Orthographic", ProjectionOrthographic.String())
	require.Equal(t, "Unknown", ProjectionType(9).String())
	require.Equal(t, "Spot", LightSpot.String())
	require.Len(t, LightNames(), 3)
}

func TestFormatters(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	dumper := reflection.NewDumper(reflection.NewWalker(r), Formatters()...)
	light := Light{Type: LightSpot, Intensity: 2}
	out := dumper.Dump(reflection.ObjectOf(&light))

	require.Contains(t, out, "Light\n")
	require.Contains(t, out, "  Type: Spot\n")
	require.Contains(t, out, "  Intensity: 2\n")
	require.NotContains(t, out, "not yet supported")
}
