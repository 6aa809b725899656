package game

import (
	"strconv"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/physics"
	"github.com/annel0/artillery/internal/turn"
)

// Actor персонаж-участник: физическое тело, здоровье, прицел и оружие.
// Здоровье не ограничено снизу; персонаж выбывает при Health <= 0.
type Actor struct {
	ID       string
	Index    int
	Body     *physics.Body
	Health   int
	Active   bool
	AimAngle float64
	Weapon   WeaponKind
	Ammo     map[WeaponKind]int // config.UnlimitedAmmo: без ограничения
	Dead     bool
}

// newAmmo начальный боезапас по таблице оружия
func newAmmo(weapons WeaponTable) map[WeaponKind]int {
	ammo := make(map[WeaponKind]int, len(weapons))
	for kind, spec := range weapons {
		ammo[kind] = spec.Ammo
	}
	return ammo
}

// AmmoFor возвращает боезапас оружия; отсутствующее оружие считается пустым
func (a *Actor) AmmoFor(kind WeaponKind) int {
	return a.Ammo[kind]
}

// HasAmmo сообщает, можно ли выстрелить из оружия
func (a *Actor) HasAmmo(kind WeaponKind) bool {
	n := a.AmmoFor(kind)
	return n == config.UnlimitedAmmo || n > 0
}

// consumeAmmo списывает один выстрел
func (a *Actor) consumeAmmo(kind WeaponKind) {
	if n := a.AmmoFor(kind); n > 0 {
		a.Ammo[kind] = n - 1
	}
}

// addAmmo пополняет боезапас; неограниченное оружие не меняется.
// n == config.UnlimitedAmmo снимает ограничение.
func (a *Actor) addAmmo(kind WeaponKind, n int) {
	if a.Ammo == nil {
		a.Ammo = make(map[WeaponKind]int)
	}
	cur := a.Ammo[kind]
	switch {
	case cur == config.UnlimitedAmmo:
	case n == config.UnlimitedAmmo:
		a.Ammo[kind] = config.UnlimitedAmmo
	default:
		a.Ammo[kind] = cur + n
	}
}

// Alive сообщает, участвует ли персонаж в игре
func (a *Actor) Alive() bool {
	return !a.Dead
}

// ShouldDie порог выбывания
func (a *Actor) ShouldDie() bool {
	return a.Health <= 0
}

// View возвращает представление персонажа для источника решений
func (a *Actor) View() turn.ActorView {
	return turn.ActorView{
		Index:    a.Index,
		ID:       a.ID,
		Position: a.Body.Position,
		Velocity: a.Body.Velocity,
		Health:   a.Health,
		AimAngle: a.AimAngle,
		Weapon:   a.Weapon.String(),
		Ammo:     a.ammoView(),
		Grounded: a.Body.Grounded(),
	}
}

func (a *Actor) ammoView() map[string]int {
	out := make(map[string]int, len(a.Ammo))
	for kind, n := range a.Ammo {
		out[kind.String()] = n
	}
	return out
}

// Label короткая метка персонажа для метрик и логов
func (a *Actor) Label() string {
	return "actor_" + strconv.Itoa(a.Index)
}
