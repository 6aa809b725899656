package game

import (
	"fmt"
	"math"

	"github.com/annel0/artillery/internal/physics"
	"github.com/annel0/artillery/internal/terrain"
	"github.com/annel0/artillery/internal/vec"
	"github.com/google/uuid"
)

// ProjectileLifecycle создаёт снаряды, ведёт их полёт и определяет подрыв
type ProjectileLifecycle struct {
	field      *terrain.Field
	integrator *physics.Integrator
	weapons    WeaponTable
}

// NewProjectileLifecycle создаёт жизненный цикл снарядов
func NewProjectileLifecycle(field *terrain.Field, integrator *physics.Integrator, weapons WeaponTable) *ProjectileLifecycle {
	return &ProjectileLifecycle{
		field:      field,
		integrator: integrator,
		weapons:    weapons,
	}
}

// Spawn создаёт снаряд. Позиция вне мира и неизвестное оружие отклоняются здесь,
// а не в физике тика.
func (l *ProjectileLifecycle) Spawn(pos, vel vec.Vec2Float, kind WeaponKind, owner int) (*Projectile, error) {
	spec, err := l.weapons.Spec(kind)
	if err != nil {
		return nil, err
	}
	if !l.field.InBounds(pos) {
		return nil, fmt.Errorf("%w: снаряд в (%.2f, %.2f)", ErrOutOfBounds, pos.X, pos.Y)
	}

	body := physics.NewBody(pos, spec.Size, spec.Size, spec.Weight)
	body.Velocity = vel
	body.WindAffected = true

	fuse := FuseDisabled
	if spec.FuseTicks > 0 {
		fuse = spec.FuseTicks
	}

	return &Projectile{
		ID:     uuid.NewString(),
		Body:   body,
		Weapon: kind,
		Fuse:   fuse,
		Owner:  owner,
	}, nil
}

// FireFrom выпускает снаряд из центра персонажа в направлении его прицела
func (l *ProjectileLifecycle) FireFrom(a *Actor, kind WeaponKind) (*Projectile, error) {
	spec, err := l.weapons.Spec(kind)
	if err != nil {
		return nil, err
	}
	vel := vec.FromAngle(a.AimAngle, spec.Speed)
	return l.Spawn(a.Body.Center(), vel, kind, a.Index)
}

// Integrate продвигает все снаряды, не помеченные на удаление
func (l *ProjectileLifecycle) Integrate(projectiles []*Projectile, dt float64) {
	for _, p := range projectiles {
		if p.removed {
			continue
		}
		p.prevX = p.Body.Position.X
		l.integrator.Step(p.Body, dt)
	}
}

// Resolve проверяет выход за границы, таймер и контакт с ландшафтом.
// Снаряд вне мира удаляется молча; подорванные снаряды помечаются на удаление
// и возвращаются как события подрыва.
func (l *ProjectileLifecycle) Resolve(projectiles []*Projectile) []Detonation {
	var detonations []Detonation

	for _, p := range projectiles {
		if p.removed {
			continue
		}

		if !l.field.InBounds(p.Body.Position) {
			p.removed = true
			continue
		}

		if p.FuseActive() {
			p.Fuse--
			if p.Fuse <= 0 {
				detonations = append(detonations, l.detonate(p, CauseFuse))
				continue
			}
			if !l.rest(p) {
				detonations = append(detonations, l.detonate(p, CauseContact))
			}
			continue
		}

		if l.field.CheckCollision(p.Body.Bounds()) {
			detonations = append(detonations, l.detonate(p, CauseContact))
		}
	}

	return detonations
}

// Tick продвигает снаряды и разрешает столкновения за один вызов
func (l *ProjectileLifecycle) Tick(projectiles []*Projectile, dt float64) []Detonation {
	l.Integrate(projectiles, dt)
	return l.Resolve(projectiles)
}

// rest укладывает снаряд с таймером на поверхность.
// Подъём ограничен одной ячейкой; более глубокое пересечение при горизонтальном
// движении считается ударом о стену: горизонтальный шаг отменяется, vx гасится.
// false означает, что снаряд застрял в ландшафте и должен взорваться на месте.
func (l *ProjectileLifecycle) rest(p *Projectile) bool {
	b := p.Body
	if !l.field.CheckCollision(b.Bounds()) {
		return true
	}

	// Лишний шаг уходит на выравнивание к границе ячейки
	step := l.integrator.DepenetrationStep
	shallow := *l.integrator
	shallow.MaxDepenetrationSteps = int(math.Ceil(l.field.CellSize()/step)) + 1
	if _, err := shallow.ResolveGroundContact(b, l.field); err == nil {
		return true
	}

	if b.Position.X != p.prevX {
		wall := b.Bounds()
		wall.X = p.prevX
		if !l.field.CheckCollision(wall) {
			b.Position.X = p.prevX
			b.Velocity.X = 0
			return true
		}
	}

	_, err := l.integrator.ResolveGroundContact(b, l.field)
	return err == nil
}

// detonate помечает снаряд на удаление и порождает событие подрыва
func (l *ProjectileLifecycle) detonate(p *Projectile, cause DetonationCause) Detonation {
	p.removed = true
	spec, _ := l.weapons.Spec(p.Weapon)
	return Detonation{
		ProjectileID: p.ID,
		Center:       p.Body.Position,
		Weapon:       p.Weapon,
		Spec:         spec,
		Owner:        p.Owner,
		Cause:        cause,
	}
}

// Compact удаляет помеченные снаряды, сохраняя порядок остальных
func Compact(projectiles []*Projectile) []*Projectile {
	kept := projectiles[:0]
	for _, p := range projectiles {
		if !p.removed {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(projectiles); i++ {
		projectiles[i] = nil
	}
	return kept
}
