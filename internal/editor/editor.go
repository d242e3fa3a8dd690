// Package editor ties the registry, traversal and scene serializer into the
// operations the command line exposes.
package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/editor/internal/core/events/bus"
	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/editor/config"
	"github.com/zeusync/editor/internal/editor/scene"
	"github.com/zeusync/editor/internal/editor/tui"
	"github.com/zeusync/editor/internal/engine/components"
	"github.com/zeusync/editor/internal/engine/types"
)

type Editor struct {
	Config   config.Config
	Logger   *log.Logger
	Registry *reflection.Registry
	Walker   *reflection.Walker
	Scenes   *scene.Serializer
	Dumper   *reflection.Dumper
	Events   bus.Bus
}

func New(
	cfg config.Config,
	logger *log.Logger,
	registry *reflection.Registry,
	walker *reflection.Walker,
	scenes *scene.Serializer,
	dumper *reflection.Dumper,
	events bus.Bus,
) *Editor {
	return &Editor{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Walker:   walker,
		Scenes:   scenes,
		Dumper:   dumper,
		Events:   events,
	}
}

func (e *Editor) OpenScene(ctx context.Context, path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sc, err := e.Scenes.Load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	e.Logger.Info("scene opened",
		log.String("path", path),
		log.String("scene", sc.Name),
		log.Int("entities", sc.Store.Len()),
	)
	e.publish(bus.Event{Kind: bus.SceneLoaded, Scene: path})
	return sc, nil
}

// SaveScene writes to a temporary file next to path and renames it over
// path, so a failed save leaves the previous file intact.
func (e *Editor) SaveScene(ctx context.Context, path string, sc *scene.Scene) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err = e.Scenes.Save(ctx, tmp, sc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	e.Logger.Info("scene saved", log.String("path", path), log.String("scene", sc.Name))
	e.publish(bus.Event{Kind: bus.SceneSaved, Scene: path})
	return nil
}

// Dump renders every entity and its components as text.
func (e *Editor) Dump(sc *scene.Scene) string {
	var b strings.Builder
	b.WriteString("scene " + sc.Name + "\n")
	for _, id := range sc.Store.Entities() {
		b.WriteString("entity " + id.String() + "\n")
		for _, obj := range sc.Store.Components(id) {
			for _, line := range strings.Split(strings.TrimRight(e.Dumper.Dump(obj), "\n"), "\n") {
				b.WriteString("  " + line + "\n")
			}
		}
	}
	return b.String()
}

func (e *Editor) Inspector(screen tcell.Screen, sc *scene.Scene) *tui.Inspector {
	return tui.NewInspector(screen, e.Walker, sc.Store, e.Logger, e.Config.Properties(),
		tui.WithEvents(e.Events, sc.Name))
}

func (e *Editor) publish(ev bus.Event) {
	if e.Events == nil {
		return
	}
	ev.Source = "editor"
	if err := e.Events.Publish(ev); err != nil {
		e.Logger.Warn("event handler failed", log.Stringer("kind", ev.Kind), log.Error(err))
	}
}

// DemoScene builds a small scene with one of each component.
func DemoScene(name string) (*scene.Scene, error) {
	sc := scene.New(name)
	store := sc.Store

	camera := store.Create()
	for _, c := range []any{
		&components.Name{Value: "Main Camera"},
		ptr(components.NewTransform()),
		&components.Camera{
			IsMain:         true,
			Position:       types.Vec3{0, 2, 10},
			Up:             types.Vec3{0, 1, 0},
			Forward:        types.Vec3{0, 0, -1},
			ClearColor:     types.Color{0.1, 0.1, 0.15},
			Projection:     components.ProjectionPerspective,
			ProjectionSize: types.Vec2{1280, 720},
		},
	} {
		if _, err := store.Attach(camera, c); err != nil {
			return nil, err
		}
	}

	sun := store.Create()
	for _, c := range []any{
		&components.Name{Value: "Sun"},
		&components.Light{
			Type:         components.LightDirectional,
			Direction:    types.Vec3{-0.3, -1, -0.2},
			Color:        types.Color{1, 0.95, 0.8},
			AmbientColor: types.Color{0.1, 0.1, 0.1},
			Intensity:    1,
		},
	} {
		if _, err := store.Attach(sun, c); err != nil {
			return nil, err
		}
	}

	player := store.Create()
	for _, c := range []any{
		&components.Name{Value: "Player"},
		&components.Tag{Value: "player"},
		ptr(components.NewTransform()),
		&components.MeshRenderer{UsesLights: true, CastShadows: true},
		&components.SpriteAnimator{Frames: []int32{0, 1, 2, 3}, FrameTime: 0.1, Looping: true},
	} {
		if _, err := store.Attach(player, c); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func ptr[T any](v T) *T {
	return &v
}
