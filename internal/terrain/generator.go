package terrain

import (
	"fmt"
	"math"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/util"
)

// Flat возвращает функцию высоты ровного пола на уровне level
func Flat(level float64) HeightFunc {
	return func(int) float64 { return level }
}

// RollingHills возвращает синусоидальные холмы вокруг уровня level
func RollingHills(level, amplitude float64) HeightFunc {
	return func(col int) float64 {
		c := float64(col)
		return level + math.Trunc(math.Sin(c*0.1)*amplitude) + math.Trunc(math.Sin(c*0.05)*amplitude/2)
	}
}

// PerlinHills возвращает холмы по шуму Перлина: level ± amplitude
func PerlinHills(noise *util.NoiseSource, level, amplitude, scale float64) HeightFunc {
	return func(col int) float64 {
		n := noise.Noise1D(float64(col) * scale)
		return level + (n-0.5)*2*amplitude
	}
}

// HeightFuncFor строит функцию высоты по конфигурации ландшафта
func HeightFuncFor(tc config.TerrainConfig, worldHeight float64) (HeightFunc, error) {
	level := tc.Level
	if level <= 0 {
		level = worldHeight / 2
	}

	switch tc.Kind {
	case "flat":
		return Flat(level), nil
	case "hills", "":
		return RollingHills(level, tc.Amplitude), nil
	case "perlin":
		scale := tc.Scale
		if scale <= 0 {
			scale = 0.05
		}
		return PerlinHills(util.NewNoiseSource(tc.GetSeed()), level, tc.Amplitude, scale), nil
	default:
		return nil, fmt.Errorf("неизвестный вид ландшафта %q", tc.Kind)
	}
}

// FromConfig создаёт поле по конфигурации мира
func FromConfig(wc config.WorldConfig) (*Field, error) {
	surface, err := HeightFuncFor(wc.Terrain, wc.Height)
	if err != nil {
		return nil, err
	}
	return New(wc.Width, wc.Height, wc.CellSize, surface)
}
