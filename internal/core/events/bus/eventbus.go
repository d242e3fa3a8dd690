package bus

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/editor/internal/core/observability/log"
)

type subscription struct {
	id     string
	kind   Kind
	seq    uint64
	fn     Handler
	active atomic.Bool
	cancel func()
}

func (s *subscription) ID() string     { return s.id }
func (s *subscription) Kind() Kind     { return s.kind }
func (s *subscription) IsActive() bool { return s.active.Load() }
func (s *subscription) Cancel() error {
	if s.active.Swap(false) && s.cancel != nil {
		s.cancel()
	}
	return nil
}

type inMemoryBus struct {
	mu        sync.RWMutex
	handlers  map[Kind]map[string]*subscription
	seq       uint64
	metrics   Metrics
	observers map[Observer]struct{}
}

func New() Bus {
	return &inMemoryBus{
		handlers:  make(map[Kind]map[string]*subscription),
		observers: make(map[Observer]struct{}),
	}
}

func (b *inMemoryBus) Subscribe(kind Kind, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[string]*subscription)
	}
	b.seq++
	s := &subscription{id: uuid.NewString(), kind: kind, seq: b.seq, fn: handler}
	s.active.Store(true)
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[kind], s.id)
	}
	b.handlers[kind][s.id] = s
	return s
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) Publish(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	start := time.Now()

	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.handlers[event.Kind]))
	for _, s := range b.handlers[event.Kind] {
		subs = append(subs, s)
	}
	observers := make([]Observer, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	slices.SortFunc(subs, func(x, y *subscription) int { return cmp.Compare(x.seq, y.seq) })

	for _, obs := range observers {
		obs.OnPublish(event)
	}

	var errs []error
	delivered := 0
	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		delivered++
		if err := s.fn(event); err != nil {
			errs = append(errs, err)
		}
	}
	all := errors.Join(errs...)

	if len(observers) > 0 {
		elapsed := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(event, delivered, all, elapsed)
		}

		b.mu.Lock()
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(delivered)
		if all != nil {
			b.metrics.Errors++
		}
		var total uint64
		for _, m := range b.handlers {
			total += uint64(len(m))
		}
		b.metrics.Subscribers = total
		b.mu.Unlock()
	}
	return all
}

func (b *inMemoryBus) PublishAsync(event Event) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- b.Publish(event)
		close(ch)
	}()
	return ch
}

func (b *inMemoryBus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// LogObserver writes every delivery to a logger at debug level and handler
// failures at warn level.
type LogObserver struct {
	Logger log.Log
}

func (o LogObserver) OnPublish(Event) {}

func (o LogObserver) OnDelivered(event Event, handlers int, err error, elapsed time.Duration) {
	fields := []log.Field{
		log.Stringer("kind", event.Kind),
		log.String("source", event.Source),
		log.Int("handlers", handlers),
		log.Duration("elapsed", elapsed),
	}
	if err != nil {
		o.Logger.Warn("event handler failed", append(fields, log.Error(err))...)
		return
	}
	o.Logger.Debug("event delivered", fields...)
}
