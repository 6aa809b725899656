package physics

import "github.com/annel0/artillery/internal/vec"

// Body физическое тело: общая форма для персонажей и снарядов.
// Position: левый верхний угол ограничивающего прямоугольника.
type Body struct {
	Position     vec.Vec2Float
	Velocity     vec.Vec2Float
	Width        float64
	Height       float64
	Gravity      bool    // Подвержено ли тело гравитации
	WindAffected bool    // Подвержено ли тело ветру
	Weight       float64 // Внешние силы делятся на вес
}

// NewBody создаёт тело с указанной позицией и размерами
func NewBody(pos vec.Vec2Float, width, height, weight float64) *Body {
	return &Body{
		Position: pos,
		Width:    width,
		Height:   height,
		Gravity:  true,
		Weight:   weight,
	}
}

// Bounds возвращает ограничивающий прямоугольник тела
func (b *Body) Bounds() Rect {
	return Rect{X: b.Position.X, Y: b.Position.Y, W: b.Width, H: b.Height}
}

// Center возвращает центр тела
func (b *Body) Center() vec.Vec2Float {
	return b.Bounds().Center()
}

// ApplyImpulse добавляет к скорости импульс, масштабированный весом тела
func (b *Body) ApplyImpulse(impulse vec.Vec2Float) {
	b.Velocity = b.Velocity.Add(impulse.Mul(1 / b.effectiveWeight()))
}

// Grounded сообщает, стоит ли тело на опоре (вертикальная скорость погашена)
func (b *Body) Grounded() bool {
	return b.Velocity.Y == 0
}

func (b *Body) effectiveWeight() float64 {
	if b.Weight <= 0 {
		return 1
	}
	return b.Weight
}
