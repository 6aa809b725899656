package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/logging"
	"github.com/annel0/artillery/internal/physics"
	"github.com/annel0/artillery/internal/terrain"
	"github.com/annel0/artillery/internal/turn"
	"github.com/annel0/artillery/internal/vec"
	"github.com/google/uuid"
)

// DetonationReport итог одного подрыва за тик
type DetonationReport struct {
	Detonation
	Hits         []Hit
	CellsCleared int
	ExplosionID  string
}

// Shot выстрел, произведённый за тик
type Shot struct {
	ProjectileID string
	Actor        int
	Weapon       WeaponKind
	Angle        float64
}

// TickReport итог тика для внешних потребителей (метрики, события, логи)
type TickReport struct {
	Tick        uint64
	Gate        turn.Gate
	Action      turn.Action
	Fired       []Shot
	Detonations []DetonationReport
	Pickups     []Pickup
	Deaths      []string // ID выбывших персонажей
	Removed     int      // Снаряды, покинувшие мир без взрыва
}

// Simulation единый контекст симуляции: ландшафт, тела и коллекции сущностей.
// Все изменения выполняются синхронно внутри Tick одним владельцем.
type Simulation struct {
	cfg *config.Config

	Field      *terrain.Field
	Integrator *physics.Integrator
	Scheduler  *turn.Scheduler
	Lifecycle  *ProjectileLifecycle
	Resolver   *ExplosionResolver
	Weapons    WeaponTable

	Actors       []*Actor
	Projectiles  []*Projectile
	Explosions   []*Explosion
	Collectables []*Collectable

	controllers []turn.Controller
	tick        uint64
	logger      *logging.Logger
}

// NewSimulation собирает симуляцию поверх готового поля
func NewSimulation(cfg *config.Config, field *terrain.Field) (*Simulation, error) {
	weapons, err := NewWeaponTable(cfg.Weapons)
	if err != nil {
		return nil, err
	}

	pc := cfg.Physics
	integrator := physics.NewIntegrator(pc.Gravity, pc.Wind, pc.DepenetrationStep, pc.MaxDepenetrationSteps)
	integrator.GroundDrag = pc.GroundDrag

	return &Simulation{
		cfg:        cfg,
		Field:      field,
		Integrator: integrator,
		Scheduler:  turn.NewScheduler(cfg.Turn.Duration, cfg.Turn.DecisionInterval, cfg.Turn.FireFraction),
		Lifecycle:  NewProjectileLifecycle(field, integrator, weapons),
		Resolver:   NewExplosionResolver(),
		Weapons:    weapons,
		logger:     logging.GetSimulationLogger(),
	}, nil
}

// TickCount возвращает номер последнего выполненного тика
func (s *Simulation) TickCount() uint64 { return s.tick }

// AddActor создаёт персонажа в указанной точке (левый верхний угол тела).
// Точка вне мира или внутри ландшафта отклоняется.
func (s *Simulation) AddActor(pos vec.Vec2Float, ctrl turn.Controller) (*Actor, error) {
	ac := s.cfg.Actor
	bounds := physics.Rect{X: pos.X, Y: pos.Y, W: ac.Size, H: ac.Size}
	if !s.Field.InBounds(pos) || bounds.Right() > s.Field.Width() || bounds.Bottom() > s.Field.Height() {
		return nil, fmt.Errorf("%w: персонаж в (%.2f, %.2f)", ErrOutOfBounds, pos.X, pos.Y)
	}

	body := physics.NewBody(pos, ac.Size, ac.Size, ac.Weight)
	if _, err := s.Integrator.ResolveGroundContact(body, s.Field); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpawn, err)
	}

	a := &Actor{
		ID:     uuid.NewString(),
		Index:  len(s.Actors),
		Body:   body,
		Health: ac.MaxHealth,
		Weapon: Bazooka,
		Ammo:   newAmmo(s.Weapons),
	}
	s.Actors = append(s.Actors, a)
	s.controllers = append(s.controllers, ctrl)
	s.Scheduler.SetActorCount(len(s.Actors))
	s.syncActive()

	s.logger.Debug("Персонаж %s #%d создан в (%.1f, %.1f)", a.ID, a.Index, body.Position.X, body.Position.Y)
	return a, nil
}

// SpawnActors расставляет count персонажей равномерно по ширине мира.
// Персонаж появляется на высоте SpawnY либо на поверхности, если она выше.
func (s *Simulation) SpawnActors(count int, controllerFor func(i int) turn.Controller) error {
	if count <= 0 {
		return ErrNoActors
	}

	size := s.cfg.Actor.Size
	spacing := s.Field.Width() / float64(count)
	for i := 0; i < count; i++ {
		x := spacing*float64(i) + spacing/2 - size/2
		x = math.Max(0, math.Min(x, s.Field.Width()-size))

		y := math.Min(s.cfg.Actor.SpawnY, s.surfaceUnder(x, size)-size)
		if y < 0 {
			return fmt.Errorf("%w: нет места над поверхностью в x=%.1f", ErrInvalidSpawn, x)
		}

		var ctrl turn.Controller
		if controllerFor != nil {
			ctrl = controllerFor(i)
		}
		if _, err := s.AddActor(vec.Vec2Float{X: x, Y: y}, ctrl); err != nil {
			return err
		}
	}
	return nil
}

// AddCollectable кладёт предмет в указанную точку (левый верхний угол).
// Точка вне мира или внутри ландшафта отклоняется.
func (s *Simulation) AddCollectable(pos vec.Vec2Float, spec config.CollectableSpec) (*Collectable, error) {
	kind, err := ParseCollectableKind(spec.Kind)
	if err != nil {
		return nil, err
	}

	var weapon WeaponKind
	hasWeapon := spec.Weapon != ""
	if hasWeapon {
		if weapon, err = ParseWeaponKind(spec.Weapon); err != nil {
			return nil, err
		}
		if _, err := s.Weapons.Spec(weapon); err != nil {
			return nil, err
		}
	} else if kind == CollectWeapon {
		return nil, fmt.Errorf("%w: предмет-оружие без оружия", ErrUnknownWeapon)
	}

	size := s.cfg.Collectables.Size
	bounds := physics.Rect{X: pos.X, Y: pos.Y, W: size, H: size}
	if !s.Field.InBounds(pos) || bounds.Right() > s.Field.Width() || bounds.Bottom() > s.Field.Height() {
		return nil, fmt.Errorf("%w: предмет в (%.2f, %.2f)", ErrOutOfBounds, pos.X, pos.Y)
	}

	body := physics.NewBody(pos, size, size, 1)
	if _, err := s.Integrator.ResolveGroundContact(body, s.Field); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpawn, err)
	}

	c := newCollectable(kind, spec.Value, weapon, hasWeapon, body)
	s.Collectables = append(s.Collectables, c)
	s.logger.Debug("Предмет %s (%s) создан в (%.1f, %.1f)", c.ID, kind, body.Position.X, body.Position.Y)
	return c, nil
}

// SpawnCollectables раскладывает предметы из конфигурации
func (s *Simulation) SpawnCollectables(items []config.CollectableSpec) error {
	for i, item := range items {
		if _, err := s.AddCollectable(vec.Vec2Float{X: item.X, Y: item.Y}, item); err != nil {
			return fmt.Errorf("предмет %d: %w", i, err)
		}
	}
	return nil
}

// surfaceUnder возвращает самую высокую поверхность под телом шириной width
func (s *Simulation) surfaceUnder(x, width float64) float64 {
	cell := s.Field.CellSize()
	top := s.Field.Height()
	for col := int(math.Floor(x / cell)); float64(col)*cell < x+width; col++ {
		top = math.Min(top, s.Field.SurfaceY(col))
	}
	return top
}

// Alive сообщает, жив ли персонаж с индексом i
func (s *Simulation) Alive(i int) bool {
	return i >= 0 && i < len(s.Actors) && s.Actors[i].Alive()
}

// AliveCount возвращает число живых персонажей
func (s *Simulation) AliveCount() int {
	n := 0
	for _, a := range s.Actors {
		if a.Alive() {
			n++
		}
	}
	return n
}

// ActiveActor возвращает активного персонажа или nil
func (s *Simulation) ActiveActor() *Actor {
	i := s.Scheduler.Active()
	if i < 0 || i >= len(s.Actors) {
		return nil
	}
	return s.Actors[i]
}

// Tick выполняет один шаг симуляции в фиксированном порядке:
// решение активного персонажа, интеграция всех тел, столкновения, подбор предметов,
// подрывы, старение взрывов, уплотнение коллекций и выбывание персонажей.
// Ошибки выталкивания не прерывают тик и возвращаются после его завершения.
func (s *Simulation) Tick() (TickReport, error) {
	if len(s.Actors) == 0 {
		return TickReport{}, ErrNoActors
	}

	s.tick++
	dt := s.cfg.Physics.DT
	report := TickReport{Tick: s.tick}

	gate := s.Scheduler.Tick(s.Alive)
	report.Gate = gate
	if gate.TurnChanged {
		s.syncActive()
	}
	if gate.MayAct {
		s.decide(gate, &report)
	}

	// Интеграция всех тел до любых столкновений
	for _, a := range s.Actors {
		if a.Alive() {
			s.Integrator.Step(a.Body, dt)
		}
	}
	s.Lifecycle.Integrate(s.Projectiles, dt)
	for _, c := range s.Collectables {
		s.Integrator.Step(c.Body, dt)
	}

	var errs []error
	for _, a := range s.Actors {
		if !a.Alive() {
			continue
		}
		if _, err := s.Integrator.ResolveGroundContact(a.Body, s.Field); err != nil {
			s.logger.Warn("Персонаж %s: %v", a.ID, err)
			errs = append(errs, fmt.Errorf("персонаж %s: %w", a.ID, err))
		}
	}
	for _, c := range s.Collectables {
		if _, err := s.Integrator.ResolveGroundContact(c.Body, s.Field); err != nil {
			s.logger.Warn("Предмет %s: %v", c.ID, err)
		}
	}
	s.collect(&report)

	before := len(s.Projectiles)
	detonations := s.Lifecycle.Resolve(s.Projectiles)

	for _, e := range s.Explosions {
		e.Advance()
	}
	for _, d := range detonations {
		report.Detonations = append(report.Detonations, s.settle(d))
	}

	s.Projectiles = Compact(s.Projectiles)
	s.Explosions = compactExplosions(s.Explosions)
	s.Collectables = compactCollectables(s.Collectables)
	report.Removed = before - len(s.Projectiles) - len(detonations)

	for _, a := range s.Actors {
		if a.Alive() && a.ShouldDie() {
			a.Dead = true
			a.Active = false
			report.Deaths = append(report.Deaths, a.ID)
			s.logger.Info("Персонаж %s #%d выбыл (здоровье %d)", a.ID, a.Index, a.Health)
		}
	}

	return report, errors.Join(errs...)
}

// collect передаёт предметы живым персонажам, которых они касаются.
// При одновременном касании предмет достаётся персонажу с меньшим индексом.
func (s *Simulation) collect(report *TickReport) {
	for _, c := range s.Collectables {
		if c.collected {
			continue
		}
		for _, a := range s.Actors {
			if !a.Alive() || !a.Body.Bounds().Intersects(c.Body.Bounds()) {
				continue
			}
			p := c.apply(a, s.Weapons, s.cfg.Actor.MaxHealth)
			report.Pickups = append(report.Pickups, p)
			s.logger.Debug("Персонаж #%d подобрал %s (%d)", a.Index, c.Kind, p.Amount)
			break
		}
	}
}

// settle применяет событие подрыва: урон и отброс, затем разрушение ландшафта,
// затем визуальная запись о взрыве
func (s *Simulation) settle(d Detonation) DetonationReport {
	hits := s.Resolver.Apply(s.Actors, d)
	cleared := s.Field.Destroy(d.Center, d.Spec.BlastRadius)

	exp := NewExplosion(d.Center, d.Spec.BlastRadius, s.cfg.Explosion.DurationFrames, d.Weapon)
	s.Explosions = append(s.Explosions, exp)

	s.logger.Debug("Подрыв %s (%s) в (%.1f, %.1f): попаданий %d, ячеек %d",
		d.Weapon, d.Cause, d.Center.X, d.Center.Y, len(hits), cleared)

	return DetonationReport{
		Detonation:   d,
		Hits:         hits,
		CellsCleared: cleared,
		ExplosionID:  exp.ID,
	}
}

// decide запрашивает решение у источника активного персонажа и применяет его
func (s *Simulation) decide(gate turn.Gate, report *TickReport) {
	a := s.ActiveActor()
	if a == nil || !a.Alive() {
		return
	}
	ctrl := s.controllers[a.Index]
	if ctrl == nil {
		return
	}

	action := ctrl.Decide(a.View(), gate)
	report.Action = action

	if id, err := s.Apply(a, action, gate); err != nil {
		s.logger.Warn("Действие %s персонажа #%d отклонено: %v", action.Kind, a.Index, err)
	} else if id != "" {
		report.Fired = append(report.Fired, Shot{ProjectileID: id, Actor: a.Index, Weapon: a.Weapon, Angle: a.AimAngle})
	}
}

// Apply применяет действие к персонажу. Для выстрела возвращает ID снаряда.
func (s *Simulation) Apply(a *Actor, action turn.Action, gate turn.Gate) (string, error) {
	ac := s.cfg.Actor

	switch action.Kind {
	case turn.ActionMoveLeft:
		s.move(a, -ac.MoveStep)
	case turn.ActionMoveRight:
		s.move(a, ac.MoveStep)
	case turn.ActionJump:
		if a.Body.Grounded() {
			a.Body.Velocity.Y = ac.JumpVelocity
		}
	case turn.ActionAim:
		a.AimAngle = action.Angle
	case turn.ActionSelectWeapon:
		kind, err := ParseWeaponKind(action.Weapon)
		if err != nil {
			return "", err
		}
		a.Weapon = kind
	case turn.ActionFire:
		if !gate.MayFire {
			return "", nil
		}
		kind := a.Weapon
		if action.Weapon != "" {
			var err error
			if kind, err = ParseWeaponKind(action.Weapon); err != nil {
				return "", err
			}
		}
		if !a.HasAmmo(kind) {
			return "", fmt.Errorf("%w: %s", ErrNoAmmo, kind)
		}
		a.Weapon = kind
		p, err := s.Lifecycle.FireFrom(a, kind)
		if err != nil {
			return "", err
		}
		a.consumeAmmo(kind)
		s.Projectiles = append(s.Projectiles, p)
		s.Scheduler.MarkFired()
		s.logger.Debug("Персонаж #%d выстрелил: %s, угол %.2f", a.Index, a.Weapon, a.AimAngle)
		return p.ID, nil
	}
	return "", nil
}

// move сдвигает персонажа по горизонтали в пределах мира. Уступ высотой в одну
// ячейку преодолевается подъёмом; более высокая стена останавливает движение.
func (s *Simulation) move(a *Actor, dx float64) {
	b := a.Body
	x := math.Max(0, math.Min(b.Position.X+dx, s.Field.Width()-b.Width))

	target := physics.Rect{X: x, Y: b.Position.Y, W: b.Width, H: b.Height}
	if physics.CanOccupy(target, s.Field) {
		b.Position.X = x
		return
	}

	target.Y -= s.Field.CellSize()
	if target.Y >= 0 && physics.CanOccupy(target, s.Field) {
		b.Position.X = x
		b.Position.Y = target.Y
	}
}

// syncActive выставляет флаг Active по планировщику
func (s *Simulation) syncActive() {
	active := s.Scheduler.Active()
	for _, a := range s.Actors {
		a.Active = a.Index == active && a.Alive()
	}
}

// TargetsFor возвращает позиции живых противников персонажа index
func (s *Simulation) TargetsFor(index int) []vec.Vec2Float {
	var out []vec.Vec2Float
	for _, a := range s.Actors {
		if a.Index != index && a.Alive() {
			out = append(out, a.Body.Position)
		}
	}
	return out
}

func compactExplosions(explosions []*Explosion) []*Explosion {
	kept := explosions[:0]
	for _, e := range explosions {
		if !e.Expired() {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(explosions); i++ {
		explosions[i] = nil
	}
	return kept
}
