package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/editor/internal/core/models"
	"github.com/zeusync/editor/internal/core/observability/log"
)

type testObserver struct {
	mu             sync.Mutex
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(Event) {
	o.mu.Lock()
	o.publishCount++
	o.mu.Unlock()
}

func (o *testObserver) OnDelivered(_ Event, handlers int, err error, _ time.Duration) {
	o.mu.Lock()
	o.deliveredCount += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestPublishSubscribe(t *testing.T) {
	b := New()
	entity := models.NewEntityID()

	var got []Event
	sub := b.Subscribe(FieldsChanged, func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.True(t, sub.IsActive())
	require.NotEmpty(t, sub.ID())
	assert.Equal(t, FieldsChanged, sub.Kind())

	require.NoError(t, b.Publish(Event{Kind: FieldsChanged, Source: "test", Entity: entity, Changed: 2}))
	require.NoError(t, b.Publish(Event{Kind: SceneSaved}))

	require.Len(t, got, 1)
	assert.Equal(t, entity, got[0].Entity)
	assert.Equal(t, 2, got[0].Changed)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestDeliveryOrder(t *testing.T) {
	b := New()
	var order []int
	for i := range 5 {
		b.Subscribe(SceneLoaded, func(Event) error {
			order = append(order, i)
			return nil
		})
	}
	require.NoError(t, b.Publish(Event{Kind: SceneLoaded}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub := b.Subscribe(SceneSaved, func(Event) error { calls++; return nil })

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	assert.False(t, sub.IsActive())

	require.NoError(t, b.Publish(Event{Kind: SceneSaved}))
	assert.Zero(t, calls)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	first, second := errors.New("first"), errors.New("second")
	b.Subscribe(SceneSaved, func(Event) error { return first })
	b.Subscribe(SceneSaved, func(Event) error { return nil })
	b.Subscribe(SceneSaved, func(Event) error { return second })

	err := b.Publish(Event{Kind: SceneSaved})
	require.ErrorIs(t, err, first)
	require.ErrorIs(t, err, second)
}

func TestPublishAsync(t *testing.T) {
	b := New()
	fail := errors.New("fail")
	b.Subscribe(EntitySelected, func(Event) error { return fail })

	select {
	case err := <-b.PublishAsync(Event{Kind: EntitySelected}):
		require.ErrorIs(t, err, fail)
	case <-time.After(time.Second):
		t.Fatal("async publish did not complete")
	}
}

func TestObserversAndMetrics(t *testing.T) {
	b := New()
	b.Subscribe(SceneLoaded, func(Event) error { return nil })
	b.Subscribe(SceneLoaded, func(Event) error { return errors.New("x") })

	require.Error(t, b.Publish(Event{Kind: SceneLoaded}))
	assert.Zero(t, b.Metrics().Published, "metrics are collected only while observed")

	obs := &testObserver{}
	b.AddObserver(obs)
	require.Error(t, b.Publish(Event{Kind: SceneLoaded}))

	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 2, obs.deliveredCount)
	assert.Error(t, obs.lastErr)
	assert.Equal(t, Metrics{Published: 1, DeliveredHandlers: 2, Errors: 1, Subscribers: 2}, b.Metrics())

	b.RemoveObserver(obs)
	require.Error(t, b.Publish(Event{Kind: SceneLoaded}))
	assert.Equal(t, 1, obs.publishCount)
}

func TestLogObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := New()
	b.AddObserver(LogObserver{Logger: log.NewFromZap(zap.New(core), log.LevelDebug)})

	b.Subscribe(SceneSaved, func(Event) error { return errors.New("disk full") })
	require.Error(t, b.Publish(Event{Kind: SceneSaved, Source: "editor"}))
	require.NoError(t, b.Publish(Event{Kind: SceneLoaded}))

	require.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	entry := logs.FilterMessage("event handler failed").All()[0]
	assert.Equal(t, "scene.saved", entry.ContextMap()["kind"])
	assert.Equal(t, 1, logs.FilterMessage("event delivered").Len())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "entity.fields_changed", FieldsChanged.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
