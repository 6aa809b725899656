package terrain

import (
	"testing"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/physics"
	"github.com/annel0/artillery/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlat(t *testing.T) *Field {
	t.Helper()
	f, err := New(800, 600, 10, Flat(500))
	require.NoError(t, err)
	return f
}

func snapshot(f *Field) []bool {
	out := make([]bool, len(f.cells))
	copy(out, f.cells)
	return out
}

func TestNewFillsBelowSurface(t *testing.T) {
	f := newFlat(t)

	assert.Equal(t, 80, f.Cols())
	assert.Equal(t, 60, f.Rows())
	assert.False(t, f.IsSolid(0, 49))
	assert.True(t, f.IsSolid(0, 50))
	assert.True(t, f.IsSolid(79, 59))
	assert.Equal(t, 80*10, f.SolidCount())
	assert.Equal(t, 500.0, f.SurfaceY(3))
	assert.False(t, f.IsSolid(-1, 55), "Ячейки вне сетки пусты")
	assert.False(t, f.IsSolid(80, 55))
}

func TestNewRejectsInvalidDimensions(t *testing.T) {
	_, err := New(0, 600, 10, Flat(500))
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = New(800, 600, 1000, Flat(500))
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestDestroyClearsExactlyCellsWithinRadius(t *testing.T) {
	cases := []struct {
		name   string
		center vec.Vec2Float
		radius float64
	}{
		{"центр на поверхности", vec.Vec2Float{X: 400, Y: 500}, 40},
		{"не выровненный центр", vec.Vec2Float{X: 123.4, Y: 537.9}, 27.5},
		{"у левого края", vec.Vec2Float{X: 3, Y: 580}, 35},
		{"у правого нижнего угла", vec.Vec2Float{X: 798, Y: 599}, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFlat(t)
			before := snapshot(f)

			cleared := f.Destroy(tc.center, tc.radius)

			expected := 0
			for col := 0; col < f.Cols(); col++ {
				for row := 0; row < f.Rows(); row++ {
					idx := col*f.Rows() + row
					inside := vec.Vec2{X: col, Y: row}.Center(10).DistanceTo(tc.center) < tc.radius
					if inside {
						assert.False(t, f.cells[idx], "Ячейка (%d,%d) внутри радиуса должна быть пустой", col, row)
						if before[idx] {
							expected++
						}
					} else {
						assert.Equal(t, before[idx], f.cells[idx], "Ячейка (%d,%d) вне радиуса не должна меняться", col, row)
					}
				}
			}
			assert.Equal(t, expected, cleared)
			assert.Greater(t, cleared, 0)

			after := snapshot(f)
			assert.Equal(t, 0, f.Destroy(tc.center, tc.radius), "Повторное разрушение ничего не очищает")
			assert.Equal(t, after, f.cells)
		})
	}
}

func TestDestroyOutOfGridIsNoop(t *testing.T) {
	f := newFlat(t)
	before := snapshot(f)

	assert.Equal(t, 0, f.Destroy(vec.Vec2Float{X: -500, Y: -500}, 40))
	assert.Equal(t, 0, f.Destroy(vec.Vec2Float{X: 5000, Y: 550}, 40))
	assert.Equal(t, 0, f.Destroy(vec.Vec2Float{X: 400, Y: 550}, 0))
	assert.Equal(t, before, f.cells)
}

func TestCheckCollision(t *testing.T) {
	f := newFlat(t)

	assert.False(t, f.CheckCollision(physics.Rect{X: 100, Y: 470, W: 30, H: 30}), "Касание поверхности не столкновение")
	assert.True(t, f.CheckCollision(physics.Rect{X: 100, Y: 470.2, W: 30, H: 30}))
	assert.False(t, f.CheckCollision(physics.Rect{X: -100, Y: -100, W: 30, H: 30}), "Прямоугольник вне сетки")
	assert.True(t, f.CheckCollision(physics.Rect{X: -20, Y: 590, W: 30, H: 30}), "Частично вне сетки: проверяется пересекающаяся часть")
}

func TestCheckCollisionAfterDestroy(t *testing.T) {
	f := newFlat(t)
	center := vec.Vec2Float{X: 400, Y: 520}
	f.Destroy(center, 40)

	// Квадрат, вписанный в разрушенный круг с запасом на половину ячейки
	assert.False(t, f.CheckCollision(physics.Rect{X: 385, Y: 505, W: 30, H: 30}))
	// Рядом с кратером земля осталась
	assert.True(t, f.CheckCollision(physics.Rect{X: 300, Y: 505, W: 10, H: 10}))
}

func TestGenerators(t *testing.T) {
	hills, err := HeightFuncFor(config.TerrainConfig{Kind: "hills", Amplitude: 100}, 600)
	require.NoError(t, err)
	assert.Equal(t, 300.0, hills(0))
	assert.NotEqual(t, hills(0), hills(10))

	cfg := config.TerrainConfig{Kind: "perlin", Seed: 5, Amplitude: 80, Scale: 0.05}
	p1, err := HeightFuncFor(cfg, 600)
	require.NoError(t, err)
	p2, err := HeightFuncFor(cfg, 600)
	require.NoError(t, err)
	for col := 0; col < 80; col++ {
		h := p1(col)
		assert.Equal(t, h, p2(col), "Одинаковый сид: одинаковый ландшафт")
		assert.InDelta(t, 300, h, 80)
	}

	_, err = HeightFuncFor(config.TerrainConfig{Kind: "lava"}, 600)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	f, err := FromConfig(config.Default().World)
	require.NoError(t, err)
	assert.Equal(t, 80, f.Cols())
	assert.Greater(t, f.SolidCount(), 0)
}
