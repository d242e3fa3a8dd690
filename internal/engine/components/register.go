package components

import (
	"fmt"

	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/engine/types"
)

// Register adds the math types and every engine component to r. It runs
// once during startup, before the registry is sealed.
func Register(r *reflection.Registry) error {
	if err := types.Register(r); err != nil {
		return fmt.Errorf("register math types: %w", err)
	}
	if _, err := reflection.RegisterPrimitive[ProjectionType](r, "ProjectionType"); err != nil {
		return err
	}
	if _, err := reflection.RegisterPrimitive[LightType](r, "LightType"); err != nil {
		return err
	}

	for _, reg := range []func(*reflection.Registry) (reflection.TypeID, error){
		component[Name]("Name"),
		component[Tag]("Tag"),
		component[Transform]("Transform"),
		component[Camera]("Camera"),
		component[Light]("Light"),
		component[MeshRenderer]("MeshRenderer"),
		component[SpriteAnimator]("SpriteAnimator"),
	} {
		if _, err := reg(r); err != nil {
			return err
		}
	}
	return nil
}

func component[T any](name string) func(*reflection.Registry) (reflection.TypeID, error) {
	return func(r *reflection.Registry) (reflection.TypeID, error) {
		id, err := reflection.RegisterComponent[T](r, reflection.WithName(name))
		if err != nil {
			return id, fmt.Errorf("register component %s: %w", name, err)
		}
		return id, nil
	}
}

// NewRegistry returns a sealed registry holding every engine type.
func NewRegistry(logger log.Log) (*reflection.Registry, error) {
	r := reflection.NewRegistry(logger)
	if err := Register(r); err != nil {
		return nil, err
	}
	if err := r.Seal(); err != nil {
		return nil, fmt.Errorf("seal registry: %w", err)
	}
	return r, nil
}

// Formatters renders the math types and enums by value for the debug dump.
func Formatters() []reflection.FormatterEntry {
	return append(types.Formatters(),
		reflection.FormatterOf(ProjectionType.String),
		reflection.FormatterOf(LightType.String),
	)
}
