package turn

import (
	"bytes"
	"testing"

	"github.com/annel0/artillery/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allAlive(int) bool { return true }

func TestSchedulerPhasesAndRotation(t *testing.T) {
	s := NewScheduler(180, 10, 1.0/3.0)
	s.SetActorCount(3)

	var slots, fireSlots int
	var gate Gate
	for i := 1; i < 180; i++ {
		gate = s.Tick(allAlive)
		require.Equal(t, 0, gate.Active)
		require.False(t, gate.TurnChanged)
		if gate.MayAct {
			slots++
			assert.Equal(t, ActorActing, gate.Phase)
			assert.Zero(t, gate.Counter%10)
		} else {
			assert.Equal(t, WaitingForAction, gate.Phase)
		}
		if gate.MayFire {
			fireSlots++
			assert.GreaterOrEqual(t, gate.Counter, 60, "Выстрел разрешён только после трети хода")
		}
	}
	assert.Equal(t, 17, slots)
	assert.Equal(t, 12, fireSlots, "Без выстрела слот стрельбы открыт в каждом слоте после порога")

	gate = s.Tick(allAlive)
	assert.True(t, gate.TurnChanged)
	assert.Equal(t, TurnTimeout, gate.Phase)
	assert.Equal(t, 1, gate.Active)
	assert.Equal(t, 0, s.Counter())
	assert.Equal(t, 1, s.TurnNumber())

	gate = s.Tick(allAlive)
	assert.Equal(t, WaitingForAction, gate.Phase, "После таймаута автомат возвращается к ожиданию")
}

func TestSchedulerFireOncePerTurn(t *testing.T) {
	s := NewScheduler(30, 5, 0.5)
	s.SetActorCount(2)

	fired := 0
	for i := 0; i < 29; i++ {
		gate := s.Tick(allAlive)
		if gate.MayFire {
			fired++
			s.MarkFired()
		}
	}
	assert.Equal(t, 1, fired)
	assert.True(t, s.HasFired())

	gate := s.Tick(allAlive)
	require.True(t, gate.TurnChanged)
	assert.False(t, s.HasFired(), "Флаг выстрела сбрасывается при смене хода")
}

func TestSchedulerWrapsAndSkipsDead(t *testing.T) {
	s := NewScheduler(2, 1, 0)
	s.SetActorCount(3)
	dead := map[int]bool{1: true}
	alive := func(i int) bool { return !dead[i] }

	order := []int{}
	for i := 0; i < 8; i++ {
		if gate := s.Tick(alive); gate.TurnChanged {
			order = append(order, gate.Active)
		}
	}
	assert.Equal(t, []int{2, 0, 2, 0}, order)

	// Активный персонаж выбыл посреди хода: ход передаётся сразу
	dead[0] = true
	require.Equal(t, 0, s.Active())
	gate := s.Tick(alive)
	assert.True(t, gate.TurnChanged)
	assert.Equal(t, 2, gate.Active)
}

func TestSchedulerWithoutActors(t *testing.T) {
	s := NewScheduler(10, 1, 0)
	gate := s.Tick(allAlive)
	assert.Equal(t, -1, gate.Active)
	assert.False(t, gate.MayAct)
	assert.Equal(t, -1, s.Active())
}

func TestSchedulerLogsTurnChanges(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger("turn", &buf)
	logger.SetLevel(logging.DEBUG)

	s := NewScheduler(2, 1, 0)
	s.SetLogger(logger)
	s.SetActorCount(2)

	s.Tick(allAlive)
	s.Tick(allAlive)
	assert.Contains(t, buf.String(), "Ход 1: время вышло, #0 -> #1")

	buf.Reset()
	s.Tick(func(i int) bool { return i != 1 })
	assert.Contains(t, buf.String(), "персонаж #1 выбыл на тике 1, ход передан #0")
}
