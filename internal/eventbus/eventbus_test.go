package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu  sync.Mutex
	got []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.got = append(c.got, ev)
	c.mu.Unlock()
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.got))
	for _, ev := range c.got {
		out = append(out, ev.EventType)
	}
	return out
}

func publish(t *testing.T, bus EventBus, eventType string, priority int) {
	t.Helper()
	ev, err := NewEnvelope("test", eventType, 1, priority, ActorDiedPayload{ActorID: eventType})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))
}

func TestMemoryBusDeliversInOrder(t *testing.T) {
	bus := NewMemoryBus(16)
	c := &collector{}
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	publish(t, bus, TypeTurnChanged, PriorityHigh)
	publish(t, bus, TypeProjectileFired, PriorityNormal)
	publish(t, bus, TypeDetonation, PriorityNormal)
	bus.Close()

	assert.Equal(t, []string{TypeTurnChanged, TypeProjectileFired, TypeDetonation}, c.types())

	stats := bus.Metrics()
	assert.Equal(t, uint64(3), stats.Published)
	assert.Equal(t, uint64(3), stats.Consumed)
	assert.Zero(t, stats.InFlight)
}

func TestMemoryBusFilter(t *testing.T) {
	bus := NewMemoryBus(16)
	deaths := &collector{}
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeActorDied}}, deaths.handle)
	require.NoError(t, err)

	publish(t, bus, TypeDetonation, PriorityNormal)
	publish(t, bus, TypeActorDied, PriorityCritical)
	bus.Close()

	assert.Equal(t, []string{TypeActorDied}, deaths.types())
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(16)
	c := &collector{}
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	publish(t, bus, TypeDetonation, PriorityNormal)
	bus.Close()

	assert.Empty(t, c.types())
}

func TestMemoryBusClosed(t *testing.T) {
	bus := NewMemoryBus(4)
	bus.Close()
	bus.Close()

	ev, err := NewEnvelope("test", TypeDetonation, 1, PriorityNormal, DetonationPayload{})
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)

	_, err = bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryBusDropsLowPriorityWhenFull(t *testing.T) {
	bus := NewMemoryBus(1)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})
	require.NoError(t, err)

	// Первое событие занимает обработчик, второе заполняет буфер
	publish(t, bus, TypeDetonation, PriorityLow)
	<-started
	publish(t, bus, TypeDetonation, PriorityLow)
	publish(t, bus, TypeDetonation, PriorityLow)

	assert.Equal(t, uint64(1), bus.Metrics().Dropped)
	close(release)
	bus.Close()
	assert.Equal(t, uint64(2), bus.Metrics().Published)
}

func TestMetricsExporterSync(t *testing.T) {
	bus := NewMemoryBus(16)
	reg := prometheus.NewRegistry()
	exp, err := NewMetricsExporter(bus, reg)
	require.NoError(t, err)

	publish(t, bus, TypeDetonation, PriorityNormal)
	publish(t, bus, TypeActorDied, PriorityCritical)
	bus.Close()

	exp.Sync()
	exp.Sync()
	assert.Equal(t, 2.0, testutil.ToFloat64(exp.published))
	assert.Equal(t, 0.0, testutil.ToFloat64(exp.inflight))

	_, err = NewMetricsExporter(bus, reg)
	assert.Error(t, err, "Повторная регистрация в том же регистре")
}
