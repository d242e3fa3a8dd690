package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/editor/internal/core/events/bus"
	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/editor"
	"github.com/zeusync/editor/internal/editor/config"
	"github.com/zeusync/editor/internal/editor/scene"
	"github.com/zeusync/editor/internal/engine/components"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideRegistry,
	ProvideWalker,
	ProvideSceneSerializer,
	ProvideDumper,
	ProvideEvents,
	editor.New,
)

func ProvideLogger(cfg config.Config) (*log.Logger, error) {
	return cfg.Logger()
}

// ProvideRegistry returns the sealed registry of every engine type.
func ProvideRegistry(logger log.Log) (*reflection.Registry, error) {
	return components.NewRegistry(logger)
}

func ProvideWalker(registry *reflection.Registry, cfg config.Config, logger log.Log) *reflection.Walker {
	return reflection.NewWalker(registry,
		reflection.WithMaxDepth(cfg.Reflection.MaxDepth),
		reflection.WithLogger(logger),
	)
}

func ProvideSceneSerializer(walker *reflection.Walker, cfg config.Config, logger log.Log) *scene.Serializer {
	return scene.NewSerializer(walker, logger, cfg.Scene.Workers)
}

func ProvideDumper(walker *reflection.Walker) *reflection.Dumper {
	return reflection.NewDumper(walker, components.Formatters()...)
}

// ProvideEvents returns the editor event bus with deliveries logged.
func ProvideEvents(logger log.Log) bus.Bus {
	b := bus.New()
	b.AddObserver(bus.LogObserver{Logger: logger})
	return b
}
