// Package types holds the engine math values. They share glm's memory layout
// and are registered as leaf types so editors handle them as one widget.
package types

import (
	"strings"

	"github.com/zeusync/editor/internal/core/reflection"
)

type (
	Vec2 [2]float32
	Vec3 [3]float32
	Vec4 [4]float32

	IVec2 [2]int32
	IVec3 [3]int32
	IVec4 [4]int32

	// Mat4 is column-major like glm::mat4.
	Mat4 [4]Vec4

	// Color is an RGB triple in [0, 1].
	Color [3]float32
)

func Identity() Mat4 {
	return Mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
}

func (v Vec2) String() string  { return formatVector(v[:]) }
func (v Vec3) String() string  { return formatVector(v[:]) }
func (v Vec4) String() string  { return formatVector(v[:]) }
func (v IVec2) String() string { return formatVector(v[:]) }
func (v IVec3) String() string { return formatVector(v[:]) }
func (v IVec4) String() string { return formatVector(v[:]) }
func (c Color) String() string { return formatVector(c[:]) }

func (m Mat4) String() string {
	rows := make([]string, len(m))
	for i, col := range m {
		rows[i] = col.String()
	}
	return "[" + strings.Join(rows, ", ") + "]"
}

func formatVector[T reflection.Number](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = reflection.FormatNumber(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Register adds the math types to r as primitives.
func Register(r *reflection.Registry) error {
	for _, reg := range []func(*reflection.Registry) error{
		primitive[Vec2]("Vec2"),
		primitive[Vec3]("Vec3"),
		primitive[Vec4]("Vec4"),
		primitive[IVec2]("IVec2"),
		primitive[IVec3]("IVec3"),
		primitive[IVec4]("IVec4"),
		primitive[Mat4]("Mat4"),
		primitive[Color]("Color"),
	} {
		if err := reg(r); err != nil {
			return err
		}
	}
	return nil
}

func primitive[T any](name string) func(*reflection.Registry) error {
	return func(r *reflection.Registry) error {
		_, err := reflection.RegisterPrimitive[T](r, name)
		return err
	}
}

// Formatters renders the math types for the debug dump.
func Formatters() []reflection.FormatterEntry {
	return []reflection.FormatterEntry{
		reflection.FormatterOf(Vec2.String),
		reflection.FormatterOf(Vec3.String),
		reflection.FormatterOf(Vec4.String),
		reflection.FormatterOf(IVec2.String),
		reflection.FormatterOf(IVec3.String),
		reflection.FormatterOf(IVec4.String),
		reflection.FormatterOf(Mat4.String),
		reflection.FormatterOf(Color.String),
	}
}
