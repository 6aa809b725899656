package vec

import "math"

// Vec2 представляет целочисленные координаты ячейки сетки ландшафта
type Vec2 struct {
	X, Y int
}

// CellOf возвращает ячейку, содержащую точку мира при заданном размере ячейки
func CellOf(p Vec2Float, cellSize float64) Vec2 {
	return Vec2{
		X: int(math.Floor(p.X / cellSize)),
		Y: int(math.Floor(p.Y / cellSize)),
	}
}

// Center возвращает мировые координаты центра ячейки
func (v Vec2) Center(cellSize float64) Vec2Float {
	return Vec2Float{
		X: float64(v.X)*cellSize + cellSize/2,
		Y: float64(v.Y)*cellSize + cellSize/2,
	}
}

// Clamp ограничивает координаты диапазоном [0, maxX) x [0, maxY)
func (v Vec2) Clamp(maxX, maxY int) Vec2 {
	return Vec2{X: clampInt(v.X, 0, maxX-1), Y: clampInt(v.Y, 0, maxY-1)}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
