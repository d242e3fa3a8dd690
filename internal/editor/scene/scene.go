// Package scene reads and writes scene files: a named list of entities, each
// with its components keyed by registered type name.
package scene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/editor/internal/core/models"
	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/core/reflection"
	"github.com/zeusync/editor/internal/serialization"
	"github.com/zeusync/editor/pkg/concurrent"
)

var (
	ErrInvalidDocument = errors.New("scene: invalid document")
	ErrEmptyDocument   = errors.New("scene: empty document")
)

// Document is the on-disk layout of a scene.
type Document struct {
	Name     string           `yaml:"name"`
	Entities []EntityDocument `yaml:"entities"`
}

type EntityDocument struct {
	ID         string     `yaml:"id"`
	Components *yaml.Node `yaml:"components"`
}

type Scene struct {
	Name  string
	Store *models.Store
}

func New(name string) *Scene {
	return &Scene{Name: name, Store: models.NewStore()}
}

// Serializer encodes and decodes scenes. Components are processed on a
// bounded pool of goroutines.
type Serializer struct {
	walker  *reflection.Walker
	encoder *serialization.Encoder
	decoder *serialization.Decoder
	logger  log.Log
	workers int
}

// NewSerializer uses GOMAXPROCS workers when workers is not positive.
func NewSerializer(walker *reflection.Walker, logger log.Log, workers int) *Serializer {
	logger = log.OrNop(logger)
	table := serialization.DefaultTable()
	return &Serializer{
		walker:  walker,
		encoder: serialization.NewEncoder(walker, table, logger),
		decoder: serialization.NewDecoder(walker, table, logger),
		logger:  logger,
		workers: concurrent.Workers(workers),
	}
}

// Save writes the scene with entities in creation order and components in
// attach order.
func (s *Serializer) Save(ctx context.Context, w io.Writer, sc *Scene) error {
	entities, err := concurrent.Map(ctx, sc.Store.Entities(), s.workers, func(_ context.Context, id models.EntityID) (EntityDocument, error) {
		return s.encodeEntity(sc.Store, id)
	})
	if err != nil {
		return err
	}

	data, err := serialization.EncodeDocument(Document{Name: sc.Name, Entities: entities})
	if err != nil {
		return fmt.Errorf("encode scene %q: %w", sc.Name, err)
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("write scene %q: %w", sc.Name, err)
	}

	s.logger.Debug("scene saved",
		log.String("scene", sc.Name),
		log.Int("entities", len(entities)),
	)
	return nil
}

func (s *Serializer) encodeEntity(store *models.Store, id models.EntityID) (EntityDocument, error) {
	components := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, obj := range store.Components(id) {
		info, ok := s.walker.Registry().TypeInfo(obj.Type)
		if !ok {
			s.logger.Warn("component type not registered, skipped",
				log.Stringer("entity", id),
				log.Stringer("type", obj.Type),
			)
			continue
		}
		node, err := s.encoder.Encode(obj)
		if err != nil {
			return EntityDocument{}, fmt.Errorf("entity %s component %s: %w", id, info.Name, err)
		}
		components.Content = append(components.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: info.Name},
			node,
		)
	}
	return EntityDocument{ID: id.String(), Components: components}, nil
}

type decodeJob struct {
	entity models.EntityID
	name   string
	node   *yaml.Node
	obj    reflection.Object
}

// Load reads a scene into a new store. Entities are created in document
// order; component values are decoded concurrently afterwards. Unknown
// component names are skipped with a warning.
func (s *Serializer) Load(ctx context.Context, r io.Reader) (*Scene, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	sc := New(doc.Name)
	var jobs []decodeJob
	for i, ed := range doc.Entities {
		id, err := s.createEntity(sc.Store, ed.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: entity %d: %w", ErrInvalidDocument, i, err)
		}
		entityJobs, err := s.attachComponents(sc.Store, id, ed.Components)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, entityJobs...)
	}

	err := concurrent.Each(ctx, slices.Values(jobs), s.workers, func(_ context.Context, job decodeJob) error {
		if err := s.decoder.Decode(job.node, job.obj); err != nil {
			return fmt.Errorf("entity %s component %s: %w", job.entity, job.name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scene loaded",
		log.String("scene", sc.Name),
		log.Int("entities", sc.Store.Len()),
		log.Int("components", len(jobs)),
	)
	return sc, nil
}

func (s *Serializer) createEntity(store *models.Store, raw string) (models.EntityID, error) {
	if raw == "" {
		return store.Create(), nil
	}
	id, err := models.ParseEntityID(raw)
	if err != nil {
		return id, err
	}
	return id, store.CreateWithID(id)
}

func (s *Serializer) attachComponents(store *models.Store, id models.EntityID, node *yaml.Node) ([]decodeJob, error) {
	if node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: entity %s: components must be a mapping (line %d)", ErrInvalidDocument, id, node.Line)
	}

	registry := s.walker.Registry()
	jobs := make([]decodeJob, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		typeID, ok := registry.Lookup(name)
		if !ok {
			s.logger.Warn("unknown component in scene, skipped",
				log.Stringer("entity", id),
				log.String("component", name),
			)
			continue
		}
		info, _ := registry.TypeInfo(typeID)
		if !info.Flags.Has(reflection.IsComponent) || info.Native == nil {
			s.logger.Warn("type is not a component, skipped",
				log.Stringer("entity", id),
				log.String("component", name),
			)
			continue
		}
		obj, err := store.AttachNew(id, info.Native)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		jobs = append(jobs, decodeJob{entity: id, name: name, node: node.Content[i+1], obj: obj})
	}
	return jobs, nil
}
