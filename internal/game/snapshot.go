package game

import "github.com/annel0/artillery/internal/vec"

// ActorState снимок персонажа для отрисовки
type ActorState struct {
	ID       string
	Index    int
	Position vec.Vec2Float
	Width    float64
	Height   float64
	Health   int
	Active   bool
	Dead     bool
	AimAngle float64
	Weapon   string
	Ammo     int // Боезапас текущего оружия
}

// ProjectileState снимок снаряда для отрисовки
type ProjectileState struct {
	ID       string
	Position vec.Vec2Float
	Size     float64
	Weapon   string
	Fuse     int
}

// ExplosionState снимок взрыва для отрисовки
type ExplosionState struct {
	ID            string
	Center        vec.Vec2Float
	CurrentRadius float64
	Radius        float64
	Frame         int
	Duration      int
}

// CollectableState снимок предмета для отрисовки
type CollectableState struct {
	ID       string
	Kind     string
	Position vec.Vec2Float
	Size     float64
	Value    int
}

// Snapshot копия состояния после тика. Изменение снимка не влияет на симуляцию.
// Ландшафт читается через Field.IsSolid.
type Snapshot struct {
	Tick         uint64
	ActiveIndex  int
	Phase        string
	TurnCounter  int
	TurnNumber   int
	Actors       []ActorState
	Projectiles  []ProjectileState
	Explosions   []ExplosionState
	Collectables []CollectableState
}

// Snapshot возвращает снимок текущего состояния
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:         s.tick,
		ActiveIndex:  s.Scheduler.Active(),
		Phase:        s.Scheduler.Phase().String(),
		TurnCounter:  s.Scheduler.Counter(),
		TurnNumber:   s.Scheduler.TurnNumber(),
		Actors:       make([]ActorState, 0, len(s.Actors)),
		Projectiles:  make([]ProjectileState, 0, len(s.Projectiles)),
		Explosions:   make([]ExplosionState, 0, len(s.Explosions)),
		Collectables: make([]CollectableState, 0, len(s.Collectables)),
	}

	for _, a := range s.Actors {
		snap.Actors = append(snap.Actors, ActorState{
			ID:       a.ID,
			Index:    a.Index,
			Position: a.Body.Position,
			Width:    a.Body.Width,
			Height:   a.Body.Height,
			Health:   a.Health,
			Active:   a.Active,
			Dead:     a.Dead,
			AimAngle: a.AimAngle,
			Weapon:   a.Weapon.String(),
			Ammo:     a.AmmoFor(a.Weapon),
		})
	}

	for _, p := range s.Projectiles {
		snap.Projectiles = append(snap.Projectiles, ProjectileState{
			ID:       p.ID,
			Position: p.Body.Position,
			Size:     p.Body.Width,
			Weapon:   p.Weapon.String(),
			Fuse:     p.Fuse,
		})
	}

	for _, e := range s.Explosions {
		snap.Explosions = append(snap.Explosions, ExplosionState{
			ID:            e.ID,
			Center:        e.Center,
			CurrentRadius: e.CurrentRadius(),
			Radius:        e.Radius,
			Frame:         e.Frame,
			Duration:      e.Duration,
		})
	}

	for _, c := range s.Collectables {
		snap.Collectables = append(snap.Collectables, CollectableState{
			ID:       c.ID,
			Kind:     c.Kind.String(),
			Position: c.Body.Position,
			Size:     c.Body.Width,
			Value:    c.Value,
		})
	}

	return snap
}
