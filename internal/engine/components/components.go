// Package components defines the engine components the editor inspects.
package components

import "github.com/zeusync/editor/internal/engine/types"

// NameMaxSize bounds Name and Tag values, as the engine's fixed buffers do.
const NameMaxSize = 64

type Transform struct {
	Position types.Vec3
	Scale    types.Vec3
	Rotation types.Vec4
}

func NewTransform() Transform {
	return Transform{Scale: types.Vec3{1, 1, 1}, Rotation: types.Vec4{0, 0, 0, 1}}
}

type ProjectionType int32

const (
	ProjectionNone ProjectionType = iota
	ProjectionPerspective
	ProjectionOrthographic
)

var projectionNames = []string{"None", "Perspective", "Orthographic"}

func (p ProjectionType) String() string {
	if p < 0 || int(p) >= len(projectionNames) {
		return "Unknown"
	}
	return projectionNames[p]
}

// ProjectionNames lists the selectable projections in value order.
func ProjectionNames() []string { return projectionNames }

type Camera struct {
	IsMain           bool `reflect:"name=Main"`
	Position         types.Vec3
	Up               types.Vec3  `reflect:"name=Up Vector"`
	Forward          types.Vec3  `reflect:"name=Forward Vector"`
	ClearColor       types.Color `reflect:"name=Clear Color"`
	LookAtTarget     types.Vec3  `reflect:"name=Look At Target"`
	Projection       ProjectionType
	ProjectionMatrix types.Mat4 `reflect:"hidden"`
	ProjectionSize   types.Vec2 `reflect:"name=Projection Size"`
}

type LightType int32

const (
	LightPoint LightType = iota
	LightDirectional
	LightSpot
)

var lightNames = []string{"Point", "Directional", "Spot"}

func (l LightType) String() string {
	if l < 0 || int(l) >= len(lightNames) {
		return "Unknown"
	}
	return lightNames[l]
}

func LightNames() []string { return lightNames }

type Light struct {
	Type         LightType
	Position     types.Vec3
	Direction    types.Vec3
	Color        types.Color
	AmbientColor types.Color `reflect:"name=Ambient Color"`
	Intensity    float32
}

// Model is an engine-owned asset referenced by renderers.
type Model struct {
	Name string
	Path string
}

type MeshRenderer struct {
	IsStatic    bool   `reflect:"name=Is Static"`
	UsesLights  bool   `reflect:"name=Uses Lights"`
	CastShadows bool   `reflect:"name=Cast Shadows"`
	Model       *Model `reflect:"borrows"`
}

type SpriteAnimator struct {
	Frames    []int32
	FrameTime float32 `reflect:"name=Frame Time,step=0.01"`
	Looping   bool
	Current   int32 `reflect:"const"`
}

type Name struct {
	Value string
}

type Tag struct {
	Value string
}
