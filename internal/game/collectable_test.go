package game

import (
	"testing"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/turn"
	"github.com/annel0/artillery/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addCollectable(t *testing.T, sim *Simulation, x, y float64, spec config.CollectableSpec) *Collectable {
	t.Helper()
	c, err := sim.AddCollectable(vec.Vec2Float{X: x, Y: y}, spec)
	require.NoError(t, err)
	return c
}

func TestFireRejectedWithoutAmmo(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	a := addActor(t, sim, 100, 470)
	a.Ammo[Grenade] = 0
	gate := turn.Gate{MayAct: true, MayFire: true}

	id, err := sim.Apply(a, turn.Action{Kind: turn.ActionFire, Weapon: "grenade"}, gate)
	assert.ErrorIs(t, err, ErrNoAmmo)
	assert.Empty(t, id)
	assert.Empty(t, sim.Projectiles)
	assert.False(t, sim.Scheduler.HasFired(), "Отклонённый выстрел не тратит ход")
	assert.Equal(t, Bazooka, a.Weapon, "Оружие не переключается на пустое")
}

func TestFireConsumesAmmo(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	a := addActor(t, sim, 100, 470)
	gate := turn.Gate{MayAct: true, MayFire: true}
	require.Equal(t, 10, a.AmmoFor(Grenade))

	_, err := sim.Apply(a, turn.Action{Kind: turn.ActionFire, Weapon: "grenade"}, gate)
	require.NoError(t, err)
	assert.Equal(t, 9, a.AmmoFor(Grenade))
	assert.Len(t, sim.Projectiles, 1)

	_, err = sim.Apply(a, turn.Action{Kind: turn.ActionFire, Weapon: "bazooka"}, gate)
	require.NoError(t, err)
	assert.Equal(t, config.UnlimitedAmmo, a.AmmoFor(Bazooka), "Безлимитное оружие не расходуется")
	assert.Equal(t, 9, a.AmmoFor(Grenade))

	_, err = sim.Apply(a, turn.Action{Kind: turn.ActionFire, Weapon: "air_strike"}, gate)
	assert.ErrorIs(t, err, ErrNoAmmo, "Авиаудар доступен только после подбора")
}

func TestActorViewCarriesAmmo(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	a := addActor(t, sim, 100, 470)
	a.Ammo[Shotgun] = 2

	view := a.View()
	assert.Equal(t, 2, view.Ammo["shotgun"])
	assert.True(t, view.CanFire("bazooka"))
	assert.False(t, view.CanFire("air_strike"))
}

func TestAddCollectableValidation(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())

	_, err := sim.AddCollectable(vec.Vec2Float{X: 100, Y: 100}, config.CollectableSpec{Kind: "armor"})
	assert.ErrorIs(t, err, ErrUnknownCollectable)

	_, err = sim.AddCollectable(vec.Vec2Float{X: 100, Y: 100}, config.CollectableSpec{Kind: "weapon"})
	assert.ErrorIs(t, err, ErrUnknownWeapon, "Предмет-оружие требует оружия")

	_, err = sim.AddCollectable(vec.Vec2Float{X: 100, Y: 100}, config.CollectableSpec{Kind: "ammo", Weapon: "laser"})
	assert.ErrorIs(t, err, ErrUnknownWeapon)

	_, err = sim.AddCollectable(vec.Vec2Float{X: 790, Y: 100}, config.CollectableSpec{Kind: "health", Value: 5})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	cfg := testConfig()
	cfg.Physics.MaxDepenetrationSteps = 5
	deep := newFlatSimulation(t, cfg)
	_, err = deep.AddCollectable(vec.Vec2Float{X: 100, Y: 560}, config.CollectableSpec{Kind: "health", Value: 5})
	assert.ErrorIs(t, err, ErrInvalidSpawn)
	assert.Empty(t, deep.Collectables)
}

func TestCollectableFallsOntoSurface(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	addActor(t, sim, 100, 470)
	c := addCollectable(t, sim, 400, 300, config.CollectableSpec{Kind: "health", Value: 10})

	for i := 0; i < 200; i++ {
		_, err := sim.Tick()
		require.NoError(t, err)
	}
	assert.Equal(t, 480.0, c.Body.Position.Y, "Предмет лежит на полу")
	assert.Equal(t, 400.0, c.Body.Position.X)
	require.Len(t, sim.Collectables, 1)

	snap := sim.Snapshot()
	require.Len(t, snap.Collectables, 1)
	assert.Equal(t, "health", snap.Collectables[0].Kind)
	assert.Equal(t, 10, snap.Collectables[0].Value)
}

func TestHealthPickupIsCapped(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	a := addActor(t, sim, 100, 470)
	a.Health = 90
	c := addCollectable(t, sim, 105, 480, config.CollectableSpec{Kind: "health", Value: 25})

	report, err := sim.Tick()
	require.NoError(t, err)
	require.Len(t, report.Pickups, 1)
	p := report.Pickups[0]
	assert.Equal(t, c.ID, p.CollectableID)
	assert.Equal(t, a.ID, p.ActorID)
	assert.Equal(t, CollectHealth, p.Kind)
	assert.Equal(t, 10, p.Amount, "Здоровье не превышает максимум")
	assert.Equal(t, 100, a.Health)
	assert.True(t, c.Collected())
	assert.Empty(t, sim.Collectables, "Подобранный предмет удаляется в конце тика")
}

func TestAmmoPickup(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	a := addActor(t, sim, 100, 470)
	addCollectable(t, sim, 105, 480, config.CollectableSpec{Kind: "ammo", Value: 3, Weapon: "grenade"})

	report, err := sim.Tick()
	require.NoError(t, err)
	require.Len(t, report.Pickups, 1)
	assert.Equal(t, Grenade, report.Pickups[0].Weapon)
	assert.Equal(t, 3, report.Pickups[0].Amount)
	assert.Equal(t, 13, a.AmmoFor(Grenade))

	// Без оружия патроны идут в текущее; базука безлимитна
	addCollectable(t, sim, 105, 480, config.CollectableSpec{Kind: "ammo", Value: 3})
	report, err = sim.Tick()
	require.NoError(t, err)
	require.Len(t, report.Pickups, 1)
	assert.Equal(t, Bazooka, report.Pickups[0].Weapon)
	assert.Equal(t, config.UnlimitedAmmo, report.Pickups[0].Amount)
	assert.Equal(t, config.UnlimitedAmmo, a.AmmoFor(Bazooka))
}

func TestWeaponPickupSwitchesWeapon(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	a := addActor(t, sim, 100, 470)
	require.False(t, a.HasAmmo(AirStrike))
	addCollectable(t, sim, 105, 480, config.CollectableSpec{Kind: "weapon", Weapon: "air_strike"})

	report, err := sim.Tick()
	require.NoError(t, err)
	require.Len(t, report.Pickups, 1)
	assert.Equal(t, CollectWeapon, report.Pickups[0].Kind)
	assert.Equal(t, 1, report.Pickups[0].Amount, "Оружие без боезапаса даёт один выстрел")
	assert.Equal(t, AirStrike, a.Weapon)
	assert.True(t, a.HasAmmo(AirStrike))
}

func TestCollectableGoesToLowestIndex(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	addActor(t, sim, 100, 470)
	addActor(t, sim, 125, 470)
	addCollectable(t, sim, 120, 480, config.CollectableSpec{Kind: "ammo", Value: 2, Weapon: "shotgun"})

	report, err := sim.Tick()
	require.NoError(t, err)
	require.Len(t, report.Pickups, 1)
	assert.Equal(t, 0, report.Pickups[0].ActorIndex)
	assert.Equal(t, 12, sim.Actors[0].AmmoFor(Shotgun))
	assert.Equal(t, 10, sim.Actors[1].AmmoFor(Shotgun))
}

func TestDeadActorDoesNotCollect(t *testing.T) {
	sim := newFlatSimulation(t, testConfig())
	a := addActor(t, sim, 100, 470)
	addActor(t, sim, 400, 470)
	a.Dead = true
	addCollectable(t, sim, 105, 480, config.CollectableSpec{Kind: "health", Value: 5})

	report, err := sim.Tick()
	require.NoError(t, err)
	assert.Empty(t, report.Pickups)
	assert.Len(t, sim.Collectables, 1)
}
