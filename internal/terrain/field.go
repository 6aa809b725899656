package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/artillery/internal/physics"
	"github.com/annel0/artillery/internal/vec"
)

// ErrInvalidDimensions возвращается при неположительных размерах мира или ячейки
var ErrInvalidDimensions = errors.New("некорректные размеры ландшафта")

// HeightFunc возвращает мировую Y-координату поверхности для столбца сетки.
// Всё, что ниже поверхности, заполняется твёрдыми ячейками.
type HeightFunc func(col int) float64

// Field разрушаемое поле занятости. Ячейки переходят только из твёрдых в пустые.
type Field struct {
	width    float64
	height   float64
	cellSize float64
	cols     int
	rows     int
	cells    []bool // По столбцам: cells[col*rows+row]
	solid    int
}

// New создаёт поле и заполняет его по функции высоты
func New(width, height, cellSize float64, surface HeightFunc) (*Field, error) {
	if width <= 0 || height <= 0 || cellSize <= 0 {
		return nil, fmt.Errorf("%w: %gx%g, ячейка %g", ErrInvalidDimensions, width, height, cellSize)
	}

	cols := int(width / cellSize)
	rows := int(height / cellSize)
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("%w: ячейка %g больше мира %gx%g", ErrInvalidDimensions, cellSize, width, height)
	}

	f := &Field{
		width:    width,
		height:   height,
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([]bool, cols*rows),
	}

	for col := 0; col < cols; col++ {
		top := int(math.Floor(surface(col) / cellSize))
		if top < 0 {
			top = 0
		}
		for row := top; row < rows; row++ {
			f.cells[col*rows+row] = true
			f.solid++
		}
	}

	return f, nil
}

// Cols возвращает количество столбцов сетки
func (f *Field) Cols() int { return f.cols }

// Rows возвращает количество строк сетки
func (f *Field) Rows() int { return f.rows }

// CellSize возвращает размер ячейки в мировых единицах
func (f *Field) CellSize() float64 { return f.cellSize }

// Width возвращает ширину мира
func (f *Field) Width() float64 { return f.width }

// Height возвращает высоту мира
func (f *Field) Height() float64 { return f.height }

// SolidCount возвращает количество твёрдых ячеек
func (f *Field) SolidCount() int { return f.solid }

// IsSolid сообщает, занята ли ячейка. Ячейки за пределами сетки пусты.
func (f *Field) IsSolid(col, row int) bool {
	if col < 0 || col >= f.cols || row < 0 || row >= f.rows {
		return false
	}
	return f.cells[col*f.rows+row]
}

// InBounds проверяет, лежит ли точка внутри мира (границы включительно)
func (f *Field) InBounds(p vec.Vec2Float) bool {
	return p.X >= 0 && p.X <= f.width && p.Y >= 0 && p.Y <= f.height
}

// SurfaceY возвращает Y верхней твёрдой ячейки столбца либо высоту мира
func (f *Field) SurfaceY(col int) float64 {
	if col < 0 || col >= f.cols {
		return f.height
	}
	for row := 0; row < f.rows; row++ {
		if f.cells[col*f.rows+row] {
			return float64(row) * f.cellSize
		}
	}
	return f.height
}

// clampRange ограничивает диапазон ячеек размерами сетки.
// ok == false, если диапазон целиком вне сетки.
func (f *Field) clampRange(min, max vec.Vec2) (vec.Vec2, vec.Vec2, bool) {
	if max.X < 0 || max.Y < 0 || min.X >= f.cols || min.Y >= f.rows || min.X > max.X || min.Y > max.Y {
		return min, max, false
	}
	return min.Clamp(f.cols, f.rows), max.Clamp(f.cols, f.rows), true
}

// CheckCollision проверяет, перекрывает ли прямоугольник хотя бы одну твёрдую ячейку.
// Касание грани ячейки пересечением не считается.
func (f *Field) CheckCollision(r physics.Rect) bool {
	min, max, ok := f.clampRange(r.CellRange(f.cellSize))
	if !ok {
		return false
	}

	for col := min.X; col <= max.X; col++ {
		base := col * f.rows
		for row := min.Y; row <= max.Y; row++ {
			if f.cells[base+row] {
				return true
			}
		}
	}
	return false
}

// Destroy очищает ячейки, центры которых лежат строго ближе radius к center.
// Возвращает число очищенных ячеек; повторный вызов для той же области ничего не меняет.
func (f *Field) Destroy(center vec.Vec2Float, radius float64) int {
	if radius <= 0 {
		return 0
	}

	bounds := physics.Rect{X: center.X - radius, Y: center.Y - radius, W: 2 * radius, H: 2 * radius}
	min, max, ok := f.clampRange(bounds.CellRange(f.cellSize))
	if !ok {
		return 0
	}

	cleared := 0
	for col := min.X; col <= max.X; col++ {
		base := col * f.rows
		for row := min.Y; row <= max.Y; row++ {
			if !f.cells[base+row] {
				continue
			}
			c := vec.Vec2{X: col, Y: row}.Center(f.cellSize)
			if c.DistanceTo(center) < radius {
				f.cells[base+row] = false
				cleared++
			}
		}
	}

	f.solid -= cleared
	return cleared
}
