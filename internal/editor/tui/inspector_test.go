package tui

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/editor/internal/core/events/bus"
	"github.com/zeusync/editor/internal/core/models"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/editor/properties"
	"github.com/zeusync/editor/internal/engine/components"
	"github.com/zeusync/editor/internal/engine/types"
)

func newTestInspector(t *testing.T, store *models.Store, opts ...Option) (*Inspector, tcell.SimulationScreen) {
	t.Helper()
	registry, err := components.NewRegistry(nil)
	require.NoError(t, err)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	return NewInspector(screen, reflection.NewWalker(registry), store, nil, properties.DefaultConfig(), opts...), screen
}

func TestInspector_EditsSelectedEntity(t *testing.T) {
	store := models.NewStore()
	player := store.Create()
	_, err := models.Add(store, player, components.Name{Value: "player"})
	require.NoError(t, err)
	tr, err := models.Add(store, player, components.NewTransform())
	require.NoError(t, err)
	other := store.Create()
	_, err = models.Add(store, other, components.Tag{Value: "enemy"})
	require.NoError(t, err)

	insp, _ := newTestInspector(t, store)
	insp.Draw()
	require.Equal(t, []string{
		"Entity 1/2: player",
		"v Name",
		`  Value: "player"`,
		"",
		"v Transform",
		"  Position: (0, 0, 0)",
		"  Scale: (1, 1, 1)",
		"  Rotation: (0, 0, 0, 1)",
		"",
	}, insp.Widgets().Lines())
	assert.False(t, insp.Dirty())

	for range 5 {
		insp.handleKey(tcell.KeyDown, 0, tcell.ModNone)
	}
	insp.handleKey(tcell.KeyRight, 0, tcell.ModNone)
	insp.Draw()

	assert.Equal(t, types.Vec3{0.5, 0, 0}, tr.Position)
	assert.Equal(t, "  Position: (<0.5>, 0, 0)", insp.Widgets().Lines()[5])
	assert.True(t, insp.Dirty())

	insp.handleKey(tcell.KeyPgDn, 0, tcell.ModNone)
	insp.Draw()
	selected, ok := insp.Selected()
	require.True(t, ok)
	assert.Equal(t, other, selected)
	assert.Equal(t, "Entity 2/2: "+other.String(), insp.Widgets().Lines()[0])
	assert.Equal(t, 0, insp.Widgets().Focus())

	insp.handleKey(tcell.KeyPgDn, 0, tcell.ModNone)
	insp.Draw()
	selected, _ = insp.Selected()
	assert.Equal(t, other, selected)

	assert.True(t, insp.handleKey(tcell.KeyEscape, 0, tcell.ModNone))
}

func TestInspector_EmptyScene(t *testing.T) {
	insp, _ := newTestInspector(t, models.NewStore())
	insp.Draw()
	assert.Equal(t, []string{"Scene is empty"}, insp.Widgets().Lines())
	_, ok := insp.Selected()
	assert.False(t, ok)
}

func TestInspector_RunStopsOnContext(t *testing.T) {
	store := models.NewStore()
	store.Create()
	insp, _ := newTestInspector(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := insp.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, insp.Widgets().Lines())
}

func TestInspector_PublishesEvents(t *testing.T) {
	store := models.NewStore()
	first := store.Create()
	_, err := models.Add(store, first, components.NewTransform())
	require.NoError(t, err)
	second := store.Create()

	events := bus.New()
	var got []bus.Event
	for _, kind := range []bus.Kind{bus.EntitySelected, bus.FieldsChanged} {
		events.Subscribe(kind, func(e bus.Event) error {
			got = append(got, e)
			return nil
		})
	}

	insp, _ := newTestInspector(t, store, WithEvents(events, "level"))
	insp.Draw()
	insp.Draw()
	require.Len(t, got, 1, "selection is published once per change")
	assert.Equal(t, bus.EntitySelected, got[0].Kind)
	assert.Equal(t, first, got[0].Entity)
	assert.Equal(t, "level", got[0].Scene)
	assert.Equal(t, "inspector", got[0].Source)

	for range 3 {
		insp.handleKey(tcell.KeyDown, 0, tcell.ModNone)
	}
	insp.handleKey(tcell.KeyLeft, 0, tcell.ModNone)
	insp.Draw()
	require.Len(t, got, 2)
	assert.Equal(t, bus.FieldsChanged, got[1].Kind)
	assert.Equal(t, 1, got[1].Changed)

	insp.handleKey(tcell.KeyPgDn, 0, tcell.ModNone)
	insp.Draw()
	require.Len(t, got, 3)
	assert.Equal(t, second, got[2].Entity)
}
