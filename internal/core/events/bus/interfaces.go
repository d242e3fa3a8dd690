package bus

import (
	"strconv"
	"time"

	"github.com/zeusync/editor/internal/core/models"
)

// Bus is a thread-safe, in-process pub/sub bus for editor events.
//
// Handlers subscribe by Kind and are called synchronously in the publisher's
// goroutine, in subscription order. Handler errors are joined and returned
// from Publish. Metrics are collected only while observers are registered.
type Bus interface {
	Publish(event Event) error
	// PublishAsync delivers in a separate goroutine; the returned channel
	// receives the joined handler error and is then closed.
	PublishAsync(event Event) <-chan error
	Subscribe(kind Kind, handler Handler) Subscription
	// Unsubscribe cancels sub. A nil subscription is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	Metrics() Metrics
}

type Kind uint8

const (
	SceneLoaded Kind = iota + 1
	SceneSaved
	EntitySelected
	FieldsChanged
)

func (k Kind) String() string {
	switch k {
	case SceneLoaded:
		return "scene.loaded"
	case SceneSaved:
		return "scene.saved"
	case EntitySelected:
		return "entity.selected"
	case FieldsChanged:
		return "entity.fields_changed"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Event is delivered by value; handlers must not retain pointers into it.
type Event struct {
	Kind      Kind
	Source    string
	Timestamp time.Time
	// Scene is the scene name or file path the event refers to.
	Scene  string
	Entity models.EntityID
	// Changed counts edited fields for FieldsChanged.
	Changed int
}

type Handler func(event Event) error

// Subscription is a registered handler. Cancel may be called more than once.
type Subscription interface {
	ID() string
	Kind() Kind
	IsActive() bool
	Cancel() error
}

// Observer is notified around every delivery and should return quickly.
type Observer interface {
	OnPublish(event Event)
	OnDelivered(event Event, handlers int, err error, elapsed time.Duration)
}

type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	Subscribers       uint64
}
