// Package config holds the editor settings read from editor.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/editor/properties"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Reflection ReflectionConfig `yaml:"reflection"`
	Panel      PanelConfig      `yaml:"panel"`
	Scene      SceneConfig      `yaml:"scene"`
}

type LogConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"output_paths,omitempty"`
}

type ReflectionConfig struct {
	// MaxDepth bounds composite nesting during traversal.
	MaxDepth int `yaml:"max_depth"`
}

type PanelConfig struct {
	SliderSpeed float32 `yaml:"slider_speed"`
	TextMaxSize int     `yaml:"text_max_size"`
}

type SceneConfig struct {
	// Workers is the number of goroutines encoding or decoding components,
	// zero meaning GOMAXPROCS.
	Workers int `yaml:"workers"`
}

func Default() Config {
	panel := properties.DefaultConfig()
	return Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Reflection: ReflectionConfig{MaxDepth: reflection.DefaultMaxDepth},
		Panel: PanelConfig{
			SliderSpeed: panel.SliderSpeed,
			TextMaxSize: panel.TextMaxSize,
		},
	}
}

// Load reads YAML from r over the defaults. Unknown keys are rejected and an
// empty document yields the defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()

	cfg, err := Load(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Encoding {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.encoding %q: want console or json", c.Log.Encoding))
	}
	if c.Reflection.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("reflection.max_depth %d: must be positive", c.Reflection.MaxDepth))
	}
	if c.Panel.SliderSpeed <= 0 {
		errs = append(errs, fmt.Errorf("panel.slider_speed %g: must be positive", c.Panel.SliderSpeed))
	}
	if c.Panel.TextMaxSize <= 0 {
		errs = append(errs, fmt.Errorf("panel.text_max_size %d: must be positive", c.Panel.TextMaxSize))
	}
	if c.Scene.Workers < 0 {
		errs = append(errs, fmt.Errorf("scene.workers %d: must not be negative", c.Scene.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Logger builds the zap-backed logger described by the log section.
func (c Config) Logger() (*log.Logger, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(level, log.Options{
		Encoding:    c.Log.Encoding,
		OutputPaths: c.Log.OutputPaths,
	}), nil
}

func (c Config) Properties() properties.Config {
	return properties.Config{
		SliderSpeed: c.Panel.SliderSpeed,
		TextMaxSize: c.Panel.TextMaxSize,
	}
}
