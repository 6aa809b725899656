package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/game"
	"github.com/annel0/artillery/internal/terrain"
	"github.com/annel0/artillery/internal/turn"
	"github.com/annel0/artillery/internal/vec"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimulation(t *testing.T) *game.Simulation {
	t.Helper()
	cfg := config.Default()
	field, err := terrain.New(cfg.World.Width, cfg.World.Height, cfg.World.CellSize, terrain.Flat(500))
	require.NoError(t, err)
	sim, err := game.NewSimulation(cfg, field)
	require.NoError(t, err)
	_, err = sim.AddActor(vec.Vec2Float{X: 100, Y: 470}, nil)
	require.NoError(t, err)
	_, err = sim.AddActor(vec.Vec2Float{X: 500, Y: 470}, nil)
	require.NoError(t, err)
	return sim
}

func TestObserveTick(t *testing.T) {
	m := New()
	sim := newSimulation(t)
	_, err := sim.AddCollectable(vec.Vec2Float{X: 300, Y: 480}, config.CollectableSpec{Kind: "health", Value: 5})
	require.NoError(t, err)

	report := game.TickReport{
		Tick:  1,
		Gate:  turn.Gate{TurnChanged: true},
		Fired: []game.Shot{{ProjectileID: "p", Weapon: game.Grenade}},
		Detonations: []game.DetonationReport{{
			Detonation:   game.Detonation{Weapon: game.Bazooka, Cause: game.CauseContact},
			Hits:         []game.Hit{{Damage: 15}, {Damage: 5}},
			CellsCleared: 12,
		}},
		Pickups: []game.Pickup{{Kind: game.CollectAmmo}, {Kind: game.CollectAmmo}, {Kind: game.CollectHealth}},
		Deaths:  []string{"a"},
		Removed: 2,
	}
	m.ObserveTick(report, sim, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shots.WithLabelValues("grenade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.detonations.WithLabelValues("bazooka", "contact")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pickups.WithLabelValues("ammo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pickups.WithLabelValues("health")))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.damage))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.cellsCleared))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deaths))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.removed))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.aliveActors))
	assert.Equal(t, float64(sim.Field.SolidCount()), testutil.ToFloat64(m.solidCells))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collectables))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.actorHealth.WithLabelValues("actor_1")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.tickDuration))
}

func TestObserveTickWithoutSimulation(t *testing.T) {
	m := New()
	m.ObserveTick(game.TickReport{Tick: 1}, nil, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.aliveActors))
}

func TestUpdateProcess(t *testing.T) {
	m := New()
	if err := m.UpdateProcess(); err != nil {
		t.Skipf("gopsutil недоступен в окружении: %v", err)
	}
	assert.Greater(t, testutil.ToFloat64(m.processRSS), 0.0)
}

func TestServeStopsOnCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0", time.Hour) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve не завершился после отмены контекста")
	}
}
