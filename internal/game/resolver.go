package game

import (
	"math"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/vec"
)

// DetonationCause причина подрыва
type DetonationCause int

const (
	CauseContact DetonationCause = iota
	CauseFuse
)

// String возвращает строковое представление причины
func (c DetonationCause) String() string {
	if c == CauseFuse {
		return "fuse"
	}
	return "contact"
}

// Detonation событие подрыва, порождаемое жизненным циклом снаряда и
// потребляемое симуляцией за один шаг: урон, отброс, разрушение ландшафта.
type Detonation struct {
	ProjectileID string
	Center       vec.Vec2Float
	Weapon       WeaponKind
	Spec         config.WeaponSpec
	Owner        int
	Cause        DetonationCause
}

// Hit результат воздействия взрыва на одного персонажа
type Hit struct {
	ActorIndex int
	ActorID    string
	Distance   float64
	Damage     int
	Impulse    vec.Vec2Float // До деления на вес персонажа, включая подъём
}

// ExplosionResolver вычисляет урон и отброс от взрыва
type ExplosionResolver struct{}

// NewExplosionResolver создаёт резолвер
func NewExplosionResolver() *ExplosionResolver {
	return &ExplosionResolver{}
}

// Compute вычисляет попадания по всем живым персонажам, не изменяя их.
// Урон и отброс линейно спадают до нуля на границе радиуса влияния.
// При нулевом расстоянии направление отброса: строго вверх.
func (r *ExplosionResolver) Compute(actors []*Actor, d Detonation) []Hit {
	influence := d.Spec.Influence()
	if influence <= 0 {
		return nil
	}

	var hits []Hit
	for _, a := range actors {
		if !a.Alive() {
			continue
		}

		offset := a.Body.Position.Sub(d.Center)
		dist := offset.Length()
		if dist >= influence {
			continue
		}

		falloff := 1 - dist/influence
		dir := offset.NormalizedOr(vec.Up)
		impulse := dir.Mul(d.Spec.KnockbackScale * falloff)
		impulse.Y += d.Spec.LiftBias

		hits = append(hits, Hit{
			ActorIndex: a.Index,
			ActorID:    a.ID,
			Distance:   dist,
			Damage:     int(math.Round(d.Spec.BaseDamage * falloff)),
			Impulse:    impulse,
		})
	}
	return hits
}

// Apply вычисляет все попадания, а затем применяет их. Изменения одного персонажа
// не влияют на расчёт для другого в рамках одного взрыва.
func (r *ExplosionResolver) Apply(actors []*Actor, d Detonation) []Hit {
	hits := r.Compute(actors, d)

	byIndex := make(map[int]*Actor, len(actors))
	for _, a := range actors {
		byIndex[a.Index] = a
	}

	for _, h := range hits {
		a := byIndex[h.ActorIndex]
		a.Health -= h.Damage
		a.Body.ApplyImpulse(h.Impulse)
	}
	return hits
}
