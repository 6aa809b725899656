package eventbus

import (
	"testing"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/game"
	"github.com/annel0/artillery/internal/turn"
	"github.com/annel0/artillery/internal/vec"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTickReportOrder(t *testing.T) {
	report := game.TickReport{
		Tick: 42,
		Gate: turn.Gate{TurnChanged: true, Turn: 3, Active: 1},
		Fired: []game.Shot{
			{ProjectileID: "p1", Actor: 1, Weapon: game.Grenade, Angle: 1.5},
		},
		Pickups: []game.Pickup{
			{CollectableID: "c0", ActorID: "a1", ActorIndex: 1, Kind: game.CollectAmmo, Weapon: game.Shotgun, Amount: 3},
			{CollectableID: "c1", ActorID: "a1", ActorIndex: 1, Kind: game.CollectHealth, Amount: 20},
		},
		Detonations: []game.DetonationReport{{
			Detonation: game.Detonation{
				ProjectileID: "p0",
				Center:       vec.Vec2Float{X: 400, Y: 300},
				Weapon:       game.Bazooka,
				Spec:         config.WeaponSpec{BlastRadius: 40},
				Cause:        game.CauseFuse,
			},
			Hits:         []game.Hit{{ActorID: "a0", Damage: 15, Distance: 20}},
			CellsCleared: 50,
			ExplosionID:  "e0",
		}},
		Deaths: []string{"a0"},
	}

	events, err := FromTickReport("match", report)
	require.NoError(t, err)
	require.Len(t, events, 6)

	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.EventType)
		assert.Equal(t, uint64(42), ev.Tick)
		assert.Equal(t, "match", ev.Source)
		_, err := uuid.Parse(ev.ID)
		assert.NoError(t, err)
	}
	assert.Equal(t, []string{
		TypeTurnChanged, TypeProjectileFired, TypeCollectablePicked, TypeCollectablePicked, TypeDetonation, TypeActorDied,
	}, types)

	turnChanged, err := Decode[TurnChangedPayload](events[0])
	require.NoError(t, err)
	assert.Equal(t, TurnChangedPayload{Turn: 3, Active: 1}, turnChanged)

	fired, err := Decode[ProjectileFiredPayload](events[1])
	require.NoError(t, err)
	assert.Equal(t, "grenade", fired.Weapon)
	assert.Equal(t, 1, fired.Actor)

	ammo, err := Decode[CollectablePickedPayload](events[2])
	require.NoError(t, err)
	assert.Equal(t, CollectablePickedPayload{CollectableID: "c0", ActorID: "a1", Kind: "ammo", Weapon: "shotgun", Amount: 3}, ammo)
	assert.Equal(t, PriorityLow, events[2].Priority)

	health, err := Decode[CollectablePickedPayload](events[3])
	require.NoError(t, err)
	assert.Empty(t, health.Weapon, "Аптечка без оружия")
	assert.Equal(t, 20, health.Amount)

	det, err := Decode[DetonationPayload](events[4])
	require.NoError(t, err)
	assert.Equal(t, "bazooka", det.Weapon)
	assert.Equal(t, "fuse", det.Cause)
	assert.Equal(t, 40.0, det.Radius)
	assert.Equal(t, 50, det.CellsCleared)
	require.Len(t, det.Hits, 1)
	assert.Equal(t, 15, det.Hits[0].Damage)

	assert.Equal(t, PriorityCritical, events[5].Priority)
}

func TestFromTickReportQuietTick(t *testing.T) {
	events, err := FromTickReport("match", game.TickReport{Tick: 1})
	require.NoError(t, err)
	assert.Empty(t, events)
}
