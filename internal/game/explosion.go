package game

import (
	"github.com/annel0/artillery/internal/vec"
	"github.com/google/uuid"
)

// Explosion визуальная запись о взрыве. Урон и разрушение применяются один раз
// при создании; запись живёт Duration кадров и затем удаляется.
type Explosion struct {
	ID       string
	Center   vec.Vec2Float
	Radius   float64
	Frame    int
	Duration int
	Weapon   WeaponKind
}

// NewExplosion создаёт запись о взрыве
func NewExplosion(center vec.Vec2Float, radius float64, duration int, weapon WeaponKind) *Explosion {
	return &Explosion{
		ID:       uuid.NewString(),
		Center:   center,
		Radius:   radius,
		Duration: duration,
		Weapon:   weapon,
	}
}

// Advance продвигает анимацию на кадр
func (e *Explosion) Advance() {
	if e.Frame < e.Duration {
		e.Frame++
	}
}

// Expired сообщает, отыграл ли взрыв
func (e *Explosion) Expired() bool {
	return e.Frame >= e.Duration
}

// Progress доля проигранной анимации от 0 до 1
func (e *Explosion) Progress() float64 {
	if e.Duration <= 0 {
		return 1
	}
	return float64(e.Frame) / float64(e.Duration)
}

// CurrentRadius радиус для отрисовки: растёт до Radius к середине и затем спадает
func (e *Explosion) CurrentRadius() float64 {
	p := e.Progress()
	if p < 0.5 {
		return e.Radius * p * 2
	}
	return e.Radius * (1 - p) * 2
}
