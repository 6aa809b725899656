package game

import (
	"testing"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/terrain"
	"github.com/annel0/artillery/internal/vec"
	"github.com/stretchr/testify/require"
)

// testConfig конфигурация без ветра и трения для предсказуемых чисел
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Physics.Wind = 0
	cfg.Physics.GroundDrag = 0
	return cfg
}

// newFlatSimulation создаёт симуляцию с ровным полом на y=500
func newFlatSimulation(t *testing.T, cfg *config.Config) *Simulation {
	t.Helper()
	return newSimulationWith(t, cfg, terrain.Flat(500))
}

func newSimulationWith(t *testing.T, cfg *config.Config, surface terrain.HeightFunc) *Simulation {
	t.Helper()
	field, err := terrain.New(cfg.World.Width, cfg.World.Height, cfg.World.CellSize, surface)
	require.NoError(t, err)
	sim, err := NewSimulation(cfg, field)
	require.NoError(t, err)
	return sim
}

func addActor(t *testing.T, sim *Simulation, x, y float64) *Actor {
	t.Helper()
	a, err := sim.AddActor(vec.Vec2Float{X: x, Y: y}, nil)
	require.NoError(t, err)
	return a
}
