// Package models is the in-memory component store the editor inspects. It
// owns component memory and hands out raw object references to the
// reflection engine.
package models

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/zeusync/editor/internal/core/reflection"
)

var (
	ErrEntityNotFound    = errors.New("entity not found")
	ErrEntityExists      = errors.New("entity already exists")
	ErrComponentExists   = errors.New("component already attached")
	ErrComponentNotFound = errors.New("component not found")
)

type EntityID uuid.UUID

// ComponentID identifies a component type; it is the component's TypeID.
type ComponentID = reflection.TypeID

func NewEntityID() EntityID {
	return EntityID(uuid.New())
}

func ParseEntityID(s string) (EntityID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EntityID{}, fmt.Errorf("parse entity id %q: %w", s, err)
	}
	return EntityID(id), nil
}

func (id EntityID) String() string {
	return uuid.UUID(id).String()
}

func (id EntityID) IsZero() bool {
	return id == EntityID{}
}

type entity struct {
	components map[ComponentID]any
	order      []ComponentID
}

// Store holds entities and their components. Components are heap values
// addressed through stable pointers for as long as they stay attached.
type Store struct {
	mu       sync.RWMutex
	entities map[EntityID]*entity
	order    []EntityID
}

func NewStore() *Store {
	return &Store{entities: make(map[EntityID]*entity)}
}

// Create adds an entity with a fresh id.
func (s *Store) Create() EntityID {
	id := NewEntityID()
	_ = s.CreateWithID(id)
	return id
}

func (s *Store) CreateWithID(id EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; ok {
		return fmt.Errorf("%s: %w", id, ErrEntityExists)
	}
	s.entities[id] = &entity{components: make(map[ComponentID]any)}
	s.order = append(s.order, id)
	return nil
}

func (s *Store) Destroy(id EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	delete(s.entities, id)
	for i, e := range s.order {
		if e == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Exists(id EntityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entities[id]
	return ok
}

// Entities returns ids in creation order.
func (s *Store) Entities() []EntityID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]EntityID(nil), s.order...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Attach stores component, which must be a non-nil pointer, on the entity.
func (s *Store) Attach(id EntityID, component any) (reflection.Object, error) {
	obj, err := reflection.ObjectOfValue(component)
	if err != nil {
		return reflection.Object{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return reflection.Object{}, fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	if _, exists := e.components[obj.Type]; exists {
		return reflection.Object{}, fmt.Errorf("%s on %s: %w", reflect.TypeOf(component).Elem(), id, ErrComponentExists)
	}
	e.components[obj.Type] = component
	e.order = append(e.order, obj.Type)
	return obj, nil
}

// AttachNew allocates a zero value of t and attaches it.
func (s *Store) AttachNew(id EntityID, t reflect.Type) (reflection.Object, error) {
	return s.Attach(id, reflect.New(t).Interface())
}

func (s *Store) Detach(id EntityID, component ComponentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	if _, ok = e.components[component]; !ok {
		return fmt.Errorf("%s on %s: %w", component, id, ErrComponentNotFound)
	}
	delete(e.components, component)
	for i, c := range e.order {
		if c == component {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// Object returns the raw reference to one component.
func (s *Store) Object(id EntityID, component ComponentID) (reflection.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return reflection.Object{}, false
	}
	c, ok := e.components[component]
	if !ok {
		return reflection.Object{}, false
	}
	obj, err := reflection.ObjectOfValue(c)
	return obj, err == nil
}

// Components returns the entity's components in attach order.
func (s *Store) Components(id EntityID) []reflection.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return nil
	}
	objects := make([]reflection.Object, 0, len(e.order))
	for _, cid := range e.order {
		if obj, err := reflection.ObjectOfValue(e.components[cid]); err == nil {
			objects = append(objects, obj)
		}
	}
	return objects
}

// Add attaches a copy of value to the entity and returns the stored pointer.
func Add[T any](s *Store, id EntityID, value T) (*T, error) {
	ptr := new(T)
	*ptr = value
	if _, err := s.Attach(id, ptr); err != nil {
		return nil, err
	}
	return ptr, nil
}

func Get[T any](s *Store, id EntityID) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	c, ok := e.components[reflection.TypeOf[T]()]
	if !ok {
		return nil, false
	}
	ptr, ok := c.(*T)
	return ptr, ok
}

func Has[T any](s *Store, id EntityID) bool {
	_, ok := Get[T](s, id)
	return ok
}
