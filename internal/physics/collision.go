package physics

import (
	"math"

	"github.com/annel0/artillery/internal/vec"
)

// Rect представляет осевой прямоугольник (AABB) в мировых координатах.
// X, Y: левый верхний угол; ось Y направлена вниз.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right возвращает правую границу прямоугольника
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom возвращает нижнюю границу прямоугольника
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center возвращает центр прямоугольника
func (r Rect) Center() vec.Vec2Float {
	return vec.Vec2Float{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Intersects проверяет строгое пересечение: касание граней пересечением не считается
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() &&
		o.X < r.Right() &&
		r.Y < o.Bottom() &&
		o.Y < r.Bottom()
}

// CellRange возвращает диапазон ячеек [min, max] сетки, которые пересекает прямоугольник.
// Диапазон не ограничивается размерами сетки: это делает вызывающая сторона.
func (r Rect) CellRange(cellSize float64) (min, max vec.Vec2) {
	min = vec.Vec2{
		X: int(math.Floor(r.X / cellSize)),
		Y: int(math.Floor(r.Y / cellSize)),
	}
	max = vec.Vec2{
		X: int(math.Ceil(r.Right()/cellSize)) - 1,
		Y: int(math.Ceil(r.Bottom()/cellSize)) - 1,
	}
	return min, max
}

// Collider отвечает на вопрос, пересекает ли прямоугольник твёрдую среду
type Collider interface {
	CheckCollision(r Rect) bool
	CellSize() float64
}

// CanOccupy проверяет, может ли тело занять указанный прямоугольник
func CanOccupy(r Rect, c Collider) bool {
	return !c.CheckCollision(r)
}
