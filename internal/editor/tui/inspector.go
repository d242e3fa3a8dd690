package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/editor/internal/core/events/bus"
	"github.com/zeusync/editor/internal/core/models"
	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/editor/properties"
	"github.com/zeusync/editor/internal/engine/components"
)

var _ properties.Widgets = (*Widgets)(nil)

// Inspector shows the properties of one entity at a time. PgUp and PgDn
// change the selected entity.
type Inspector struct {
	screen  tcell.Screen
	widgets *Widgets
	panel   *properties.Panel
	store   *models.Store
	logger  log.Log
	events  bus.Bus
	scene   string

	selected int
	shown    models.EntityID
	dirty    bool
}

type Option func(*Inspector)

// WithEvents publishes EntitySelected and FieldsChanged events for scene
// on b.
func WithEvents(b bus.Bus, scene string) Option {
	return func(i *Inspector) {
		i.events = b
		i.scene = scene
	}
}

func NewInspector(screen tcell.Screen, walker *reflection.Walker, store *models.Store, logger log.Log, cfg properties.Config, opts ...Option) *Inspector {
	logger = log.OrNop(logger)
	widgets := NewWidgets(screen)
	i := &Inspector{
		screen:  screen,
		widgets: widgets,
		panel:   properties.NewPanel(walker, widgets, logger, cfg),
		store:   store,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Inspector) Widgets() *Widgets {
	return i.widgets
}

// Dirty reports whether any field was edited since the inspector started.
func (i *Inspector) Dirty() bool {
	return i.dirty
}

// Selected returns the entity being shown, if any.
func (i *Inspector) Selected() (models.EntityID, bool) {
	entities := i.store.Entities()
	if len(entities) == 0 {
		return models.EntityID{}, false
	}
	i.selected = min(max(i.selected, 0), len(entities)-1)
	return entities[i.selected], true
}

// Draw renders one frame, applying any queued input.
func (i *Inspector) Draw() {
	i.widgets.BeginFrame()
	defer i.widgets.EndFrame()

	id, ok := i.Selected()
	if !ok {
		i.widgets.Text("Scene is empty")
		return
	}

	if id != i.shown {
		i.shown = id
		i.publish(bus.Event{Kind: bus.EntitySelected, Entity: id})
	}

	title := id.String()
	if name, ok := models.Get[components.Name](i.store, id); ok && name.Value != "" {
		title = name.Value
	}
	i.widgets.Text(fmt.Sprintf("Entity %d/%d: %s", i.selected+1, i.store.Len(), title))

	stats := i.panel.Draw(i.store, id)
	if stats.Changed > 0 {
		i.dirty = true
		i.logger.Debug("entity edited",
			log.Stringer("entity", id),
			log.Int("changed", stats.Changed),
		)
		i.publish(bus.Event{Kind: bus.FieldsChanged, Entity: id, Changed: stats.Changed})
	}
}

func (i *Inspector) publish(ev bus.Event) {
	if i.events == nil {
		return
	}
	ev.Source = "inspector"
	ev.Scene = i.scene
	if err := i.events.Publish(ev); err != nil {
		i.logger.Warn("event handler failed", log.Stringer("kind", ev.Kind), log.Error(err))
	}
}

// HandleKey applies a key press and reports whether the inspector should quit.
func (i *Inspector) HandleKey(ev *tcell.EventKey) bool {
	return i.handleKey(ev.Key(), ev.Rune(), ev.Modifiers())
}

func (i *Inspector) handleKey(key tcell.Key, r rune, mod tcell.ModMask) bool {
	switch key {
	case tcell.KeyPgUp:
		i.selected--
		i.widgets.focus = 0
	case tcell.KeyPgDn:
		i.selected++
		i.widgets.focus = 0
	default:
		return i.widgets.handleKey(key, r, mod)
	}
	return false
}

// Run draws and processes events until Escape, Ctrl-C, a closed screen or
// the context ends. The screen must already be initialized.
func (i *Inspector) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(events)
		for {
			ev := i.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	i.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if i.HandleKey(ev) {
					i.logger.Info("inspector closed", log.Bool("dirty", i.dirty))
					return nil
				}
			case *tcell.EventResize:
				i.screen.Sync()
			}
			i.Draw()
		}
	}
}
