// Package properties draws editable widgets for every reflected field of the
// selected entity's components.
package properties

import (
	"strconv"
	"unsafe"

	"github.com/zeusync/editor/internal/core/models"
	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/engine/components"
	"github.com/zeusync/editor/internal/engine/types"
)

// DefaultSliderSpeed is the drag step used when a field has no step hint.
const DefaultSliderSpeed float32 = 0.5

type Config struct {
	SliderSpeed float32
	TextMaxSize int
}

func DefaultConfig() Config {
	return Config{
		SliderSpeed: DefaultSliderSpeed,
		TextMaxSize: components.NameMaxSize,
	}
}

// DrawStats summarizes one Draw call.
type DrawStats struct {
	Components int
	Fields     int
	Changed    int
	Notices    int
}

// Panel is the property inspector. It is not safe for concurrent use; it
// runs on the UI thread once per frame.
type Panel struct {
	walker  *reflection.Walker
	widgets Widgets
	table   *reflection.Table
	logger  log.Log
	cfg     Config

	changed int
}

func NewPanel(walker *reflection.Walker, widgets Widgets, logger log.Log, cfg Config) *Panel {
	if cfg.SliderSpeed <= 0 {
		cfg.SliderSpeed = DefaultSliderSpeed
	}
	if cfg.TextMaxSize <= 0 {
		cfg.TextMaxSize = components.NameMaxSize
	}
	p := &Panel{
		walker:  walker,
		widgets: widgets,
		logger:  log.OrNop(logger),
		cfg:     cfg,
	}
	p.table = reflection.NewTable(p.entries()...)
	return p
}

// Table exposes the widget table, e.g. to list the editable types.
func (p *Panel) Table() *reflection.Table {
	return p.table
}

// Draw renders one collapsing header per component of the entity.
func (p *Panel) Draw(store *models.Store, entity models.EntityID) DrawStats {
	var stats DrawStats
	if !store.Exists(entity) {
		p.widgets.Text("No entity selected")
		return stats
	}

	for _, obj := range store.Components(entity) {
		stats.Components++
		name := obj.Type.String()
		if info, ok := p.walker.Registry().TypeInfo(obj.Type); ok {
			name = info.Name
		}
		if !p.widgets.CollapsingHeader(name) {
			continue
		}
		s := p.DrawObject(obj)
		stats.Fields += s.LeafCalls
		stats.Changed += p.changed
		stats.Notices += s.Notices
		p.widgets.Separator()
	}
	return stats
}

// DrawObject renders the fields of one object without a header.
func (p *Panel) DrawObject(obj reflection.Object) reflection.Stats {
	p.changed = 0
	return p.walker.Walk(obj, panelVisitor{panel: p})
}

type panelVisitor struct {
	panel *Panel
}

func (v panelVisitor) Leaf(id reflection.TypeID) (reflection.LeafFunc, bool) {
	return v.panel.table.Lookup(id)
}

func (v panelVisitor) Unsupported(n reflection.Notice) {
	v.panel.logger.Debug("field not drawn",
		log.String("path", n.Path),
		log.Stringer("kind", n.Kind),
	)
	v.panel.widgets.Text(n.Message())
}

func (v panelVisitor) EnterComposite(label string, _ reflection.TypeID) bool {
	return v.panel.widgets.TreeNode(label)
}

func (v panelVisitor) ExitComposite(string, reflection.TypeID) {
	v.panel.widgets.TreePop()
}

func (v panelVisitor) BeginSequence(label string, ref reflection.SequenceRef) {
	v.panel.widgets.Text(label + " (" + strconv.Itoa(ref.Len()) + ")")
}

func (v panelVisitor) EndSequence(string, reflection.SequenceRef) {}

func (p *Panel) speed(step float32) float32 {
	if step > 0 {
		return step
	}
	return p.cfg.SliderSpeed
}

func (p *Panel) track(changed bool) {
	if changed {
		p.changed++
	}
}

func (p *Panel) entries() []reflection.Entry {
	return []reflection.Entry{
		numberEntry[float32](p),
		numberEntry[float64](p),
		numberEntry[int](p),
		numberEntry[int8](p),
		numberEntry[int16](p),
		numberEntry[int32](p),
		numberEntry[int64](p),
		numberEntry[uint](p),
		numberEntry[uint8](p),
		numberEntry[uint16](p),
		numberEntry[uint32](p),
		numberEntry[uint64](p),

		reflection.LeafOf(func(label string, v *bool, _ float32) {
			p.track(p.widgets.Checkbox(label, v))
		}),
		reflection.LeafOf(func(label string, v *string, _ float32) {
			p.track(p.widgets.InputText(label, v, p.cfg.TextMaxSize))
		}),

		floatVector[types.Vec2](p),
		floatVector[types.Vec3](p),
		floatVector[types.Vec4](p),
		intVector[types.IVec2](p),
		intVector[types.IVec3](p),
		intVector[types.IVec4](p),

		reflection.LeafOf(func(label string, v *types.Color, _ float32) {
			p.track(p.widgets.ColorEdit3(label, (*[3]float32)(v)))
		}),
		reflection.LeafOf(func(label string, v *types.Mat4, step float32) {
			if !p.widgets.TreeNode(label) {
				return
			}
			for i := range v {
				p.track(p.widgets.DragFloatN(label+"["+strconv.Itoa(i)+"]", v[i][:], p.speed(step)))
			}
			p.widgets.TreePop()
		}),

		enumEntry[components.ProjectionType](p, components.ProjectionNames()),
		enumEntry[components.LightType](p, components.LightNames()),
	}
}

func numberEntry[T reflection.Number](p *Panel) reflection.Entry {
	integral := isIntegral[T]()
	return reflection.NumberLeaf[T](func(label string, value float64, step float32) (float64, bool) {
		speed := p.speed(step)
		if integral {
			speed = max(speed, 1)
		}
		changed := p.widgets.DragNumber(label, &value, speed)
		p.track(changed)
		return value, changed
	})
}

// isIntegral reports whether T drops fractions, so integer fields never drag
// by less than one.
func isIntegral[T reflection.Number]() bool {
	var one T = 1
	return one/2 == 0
}

type floatArray interface {
	types.Vec2 | types.Vec3 | types.Vec4
}

type intArray interface {
	types.IVec2 | types.IVec3 | types.IVec4
}

func floatVector[V floatArray](p *Panel) reflection.Entry {
	var zero V
	n := int(unsafe.Sizeof(zero) / unsafe.Sizeof(float32(0)))
	return reflection.Entry{
		Type: reflection.TypeOf[V](),
		Func: func(label string, addr unsafe.Pointer, step float32) {
			p.track(p.widgets.DragFloatN(label, reflection.Slice[float32](addr, n), p.speed(step)))
		},
	}
}

func intVector[V intArray](p *Panel) reflection.Entry {
	var zero V
	n := int(unsafe.Sizeof(zero) / unsafe.Sizeof(int32(0)))
	return reflection.Entry{
		Type: reflection.TypeOf[V](),
		Func: func(label string, addr unsafe.Pointer, step float32) {
			p.track(p.widgets.DragIntN(label, reflection.Slice[int32](addr, n), max(p.speed(step), 1)))
		},
	}
}

func enumEntry[E ~int32](p *Panel, names []string) reflection.Entry {
	return reflection.LeafOf(func(label string, v *E, _ float32) {
		current := int(*v)
		if p.widgets.Combo(label, &current, names) && current >= 0 && current < len(names) {
			*v = E(current)
			p.changed++
		}
	})
}
