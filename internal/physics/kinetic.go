package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmbedded возвращается, когда тело не удалось вытолкнуть из ландшафта
// за допустимое число шагов (тело появилось внутри твёрдой среды).
var ErrEmbedded = errors.New("тело застряло в ландшафте")

// Integrator продвигает физические тела во времени
type Integrator struct {
	Gravity               float64
	Wind                  float64
	DepenetrationStep     float64
	MaxDepenetrationSteps int
	GroundDrag            float64 // Доля горизонтальной скорости, теряемая при приземлении
}

// NewIntegrator создаёт интегратор с заданными гравитацией и ветром
func NewIntegrator(gravity, wind, step float64, maxSteps int) *Integrator {
	return &Integrator{
		Gravity:               gravity,
		Wind:                  wind,
		DepenetrationStep:     step,
		MaxDepenetrationSteps: maxSteps,
	}
}

// Step продвигает тело на dt полунеявным методом Эйлера:
// сначала скорость, затем позиция, поэтому гравитация ощущается в том же тике.
func (in *Integrator) Step(b *Body, dt float64) {
	if b.Gravity {
		b.Velocity.Y += in.Gravity * dt
	}
	if b.WindAffected && in.Wind != 0 {
		b.Velocity.X += in.Wind / b.effectiveWeight() * dt
	}

	b.Position.X += b.Velocity.X * dt
	b.Position.Y += b.Velocity.Y * dt
}

// ResolveGroundContact выталкивает тело вверх из ландшафта.
// Каждый шаг поднимает тело не больше чем на DepenetrationStep и не выше ближайшей
// границы ячейки, поэтому тело встаёт ровно на поверхность. После выхода из
// пересечения вертикальная скорость обнуляется, горизонтальная гасится на GroundDrag.
// Возвращает true, если тело было смещено. При превышении лимита шагов тело
// возвращается в исходную позицию и возвращается ErrEmbedded.
func (in *Integrator) ResolveGroundContact(b *Body, c Collider) (bool, error) {
	if !c.CheckCollision(b.Bounds()) {
		return false, nil
	}

	start := b.Position
	cell := c.CellSize()

	for i := 0; i < in.MaxDepenetrationSteps; i++ {
		bottom := b.Position.Y + b.Height
		// Ближайшая граница ячейки строго выше нижней грани тела
		boundary := (math.Ceil(bottom/cell) - 1) * cell

		if bottom-in.DepenetrationStep <= boundary {
			b.Position.Y = boundary - b.Height
		} else {
			b.Position.Y -= in.DepenetrationStep
		}

		if !c.CheckCollision(b.Bounds()) {
			b.Velocity.Y = 0
			b.Velocity.X *= 1 - in.GroundDrag
			return true, nil
		}
	}

	b.Position = start
	return false, fmt.Errorf("%w: позиция (%.2f, %.2f), шагов %d",
		ErrEmbedded, start.X, start.Y, in.MaxDepenetrationSteps)
}
