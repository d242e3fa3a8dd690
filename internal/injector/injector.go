//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/editor/internal/editor"
	"github.com/zeusync/editor/internal/editor/config"
)

func InitializeEditor(cfg config.Config) (*editor.Editor, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
