package editor_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/editor/internal/core/events/bus"
	"github.com/zeusync/editor/internal/core/models"
	"github.com/zeusync/editor/internal/editor"
	"github.com/zeusync/editor/internal/editor/config"
	"github.com/zeusync/editor/internal/engine/components"
	"github.com/zeusync/editor/internal/injector"
)

func newTestEditor(t *testing.T) *editor.Editor {
	t.Helper()
	cfg := config.Default()
	cfg.Log.Level = "silent"
	e, err := injector.InitializeEditor(cfg)
	require.NoError(t, err)
	return e
}

func TestEditor_SaveAndOpen(t *testing.T) {
	e := newTestEditor(t)
	src, err := editor.DemoScene("demo")
	require.NoError(t, err)

	var events []bus.Event
	for _, kind := range []bus.Kind{bus.SceneSaved, bus.SceneLoaded} {
		e.Events.Subscribe(kind, func(ev bus.Event) error {
			events = append(events, ev)
			return nil
		})
	}

	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, e.SaveScene(context.Background(), path, src))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file must not be left behind")

	dst, err := e.OpenScene(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "demo", dst.Name)
	require.Equal(t, src.Store.Entities(), dst.Store.Entities())

	camera := dst.Store.Entities()[0]
	cam, ok := models.Get[components.Camera](dst.Store, camera)
	require.True(t, ok)
	assert.True(t, cam.IsMain)
	assert.Equal(t, components.ProjectionPerspective, cam.Projection)

	require.Len(t, events, 2)
	assert.Equal(t, bus.SceneSaved, events[0].Kind)
	assert.Equal(t, bus.SceneLoaded, events[1].Kind)
	assert.Equal(t, path, events[1].Scene)

	player := dst.Store.Entities()[2]
	anim, ok := models.Get[components.SpriteAnimator](dst.Store, player)
	require.True(t, ok)
	assert.Equal(t, []int32{0, 1, 2, 3}, anim.Frames)
}

func TestEditor_OpenMissing(t *testing.T) {
	e := newTestEditor(t)
	_, err := e.OpenScene(context.Background(), filepath.Join(t.TempDir(), "none.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEditor_Dump(t *testing.T) {
	e := newTestEditor(t)
	sc, err := editor.DemoScene("demo")
	require.NoError(t, err)

	out := e.Dump(sc)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "scene demo", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "entity "))
	assert.Equal(t, "  Name", lines[2])
	assert.Equal(t, `    Value: "Main Camera"`, lines[3])
	assert.Contains(t, out, "    Projection: Perspective\n")
	assert.Contains(t, out, "    Type: Directional\n")
	assert.Contains(t, out, "    Model: not yet supported (unsupported shape)\n")
	assert.NotContains(t, out, "ProjectionMatrix")
}
