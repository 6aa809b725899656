package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина, общие для всех генераторов ландшафта
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// NoiseSource детерминированный источник шума Перлина с фиксированным сидом
type NoiseSource struct {
	seed  int64
	noise *perlin.Perlin
}

// NewNoiseSource создаёт источник шума для указанного сида
func NewNoiseSource(seed int64) *NoiseSource {
	return &NoiseSource{
		seed:  seed,
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
	}
}

// Seed возвращает сид источника
func (n *NoiseSource) Seed() int64 {
	return n.seed
}

// Noise1D возвращает значение шума для координаты x (от 0 до 1)
func (n *NoiseSource) Noise1D(x float64) float64 {
	return normalize(n.noise.Noise1D(x))
}

// Noise2D возвращает значение шума для указанных координат (от 0 до 1)
func (n *NoiseSource) Noise2D(x, y float64) float64 {
	return normalize(n.noise.Noise2D(x, y))
}

// normalize переводит шум из диапазона [-1, 1] в [0, 1] с отсечением выбросов
func normalize(v float64) float64 {
	v = (v + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
