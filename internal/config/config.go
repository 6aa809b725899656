package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации симуляции.
type Config struct {
	World        WorldConfig           `yaml:"world"`
	Physics      PhysicsConfig         `yaml:"physics"`
	Turn         TurnConfig            `yaml:"turn"`
	Actor        ActorConfig           `yaml:"actor"`
	Explosion    ExplosionConfig       `yaml:"explosion"`
	Weapons      map[string]WeaponSpec `yaml:"weapons"`
	Collectables CollectableConfig     `yaml:"collectables"`
	Runner       RunnerConfig          `yaml:"runner"`
	Log          LogConfig             `yaml:"log"`
}

type WorldConfig struct {
	Width    float64       `yaml:"width"`
	Height   float64       `yaml:"height"`
	CellSize float64       `yaml:"cell_size"`
	Terrain  TerrainConfig `yaml:"terrain"`
}

// TerrainConfig описывает начальную форму ландшафта.
// Kind: "flat", "hills" (синусоидальные холмы) или "perlin".
type TerrainConfig struct {
	Kind      string  `yaml:"kind"`
	Seed      int64   `yaml:"seed"`
	Level     float64 `yaml:"level"` // Базовая высота поверхности; 0: половина мира
	Amplitude float64 `yaml:"amplitude"`
	Scale     float64 `yaml:"scale"`
}

type PhysicsConfig struct {
	Gravity               float64 `yaml:"gravity"`
	Wind                  float64 `yaml:"wind"`
	DT                    float64 `yaml:"dt"`
	DepenetrationStep     float64 `yaml:"depenetration_step"`
	MaxDepenetrationSteps int     `yaml:"max_depenetration_steps"`
	GroundDrag            float64 `yaml:"ground_drag"`
}

type TurnConfig struct {
	Duration         int     `yaml:"duration_ticks"`
	DecisionInterval int     `yaml:"decision_interval_ticks"`
	FireFraction     float64 `yaml:"fire_fraction"`
}

type ActorConfig struct {
	Count        int     `yaml:"count"`
	Size         float64 `yaml:"size"`
	MaxHealth    int     `yaml:"max_health"`
	Weight       float64 `yaml:"weight"`
	MoveStep     float64 `yaml:"move_step"`
	JumpVelocity float64 `yaml:"jump_velocity"`
	SpawnY       float64 `yaml:"spawn_y"`
	Scripted     bool    `yaml:"scripted"`
	Seed         int64   `yaml:"seed"`
}

type ExplosionConfig struct {
	DurationFrames int `yaml:"duration_frames"`
}

// UnlimitedAmmo значение Ammo для оружия без ограничения боезапаса
const UnlimitedAmmo = -1

// WeaponSpec статические параметры одного вида оружия.
// InfluenceRadius == 0 означает радиус влияния, равный BlastRadius.
// FuseTicks == 0 означает подрыв при контакте.
// Ammo: начальный боезапас персонажа, UnlimitedAmmo без ограничения.
type WeaponSpec struct {
	Weight          float64 `yaml:"weight"`
	Size            float64 `yaml:"size"`
	Speed           float64 `yaml:"speed"`
	BlastRadius     float64 `yaml:"blast_radius"`
	InfluenceRadius float64 `yaml:"influence_radius"`
	BaseDamage      float64 `yaml:"base_damage"`
	KnockbackScale  float64 `yaml:"knockback_scale"`
	LiftBias        float64 `yaml:"lift_bias"`
	FuseTicks       int     `yaml:"fuse_ticks"`
	Ammo            int     `yaml:"ammo"`
}

// Influence возвращает эффективный радиус влияния взрыва
func (w WeaponSpec) Influence() float64 {
	if w.InfluenceRadius > 0 {
		return w.InfluenceRadius
	}
	return w.BlastRadius
}

// CollectableConfig предметы, лежащие на ландшафте
type CollectableConfig struct {
	Size  float64           `yaml:"size"`
	Items []CollectableSpec `yaml:"items"`
}

// CollectableSpec один предмет. Kind: "health", "ammo" или "weapon".
// Value: здоровье или число патронов; для "weapon" 0 означает начальный боезапас оружия.
// Weapon: оружие для "ammo" (пусто: текущее оружие подобравшего) и "weapon".
type CollectableSpec struct {
	Kind   string  `yaml:"kind"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Value  int     `yaml:"value"`
	Weapon string  `yaml:"weapon"`
}

type RunnerConfig struct {
	TickRate        int    `yaml:"tick_rate"`
	MaxTicks        int    `yaml:"max_ticks"`
	MetricsAddr     string `yaml:"metrics_addr"`
	EnableTracing   bool   `yaml:"enable_tracing"`
	EventBufferSize int    `yaml:"event_buffer_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию с константами исходной демо-версии игры
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:    800,
			Height:   600,
			CellSize: 10,
			Terrain: TerrainConfig{
				Kind:      "hills",
				Seed:      1,
				Amplitude: 100,
				Scale:     0.05,
			},
		},
		Physics: PhysicsConfig{
			Gravity:               0.2,
			Wind:                  0.03,
			DT:                    1,
			DepenetrationStep:     1,
			MaxDepenetrationSteps: 200,
			GroundDrag:            0.5,
		},
		Turn: TurnConfig{
			Duration:         180,
			DecisionInterval: 10,
			FireFraction:     1.0 / 3.0,
		},
		Actor: ActorConfig{
			Count:        4,
			Size:         30,
			MaxHealth:    100,
			Weight:       1,
			MoveStep:     2,
			JumpVelocity: -6,
			SpawnY:       100,
			Scripted:     true,
			Seed:         42,
		},
		Explosion: ExplosionConfig{DurationFrames: 30},
		Weapons:   DefaultWeapons(),
		Collectables: CollectableConfig{
			Size: 20,
			Items: []CollectableSpec{
				{Kind: "health", X: 190, Y: 0, Value: 25},
				{Kind: "ammo", X: 390, Y: 0, Value: 3, Weapon: "grenade"},
				{Kind: "weapon", X: 590, Y: 0, Weapon: "air_strike"},
			},
		},
		Runner: RunnerConfig{
			TickRate:        60,
			EventBufferSize: 256,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultWeapons таблица оружия по умолчанию
func DefaultWeapons() map[string]WeaponSpec {
	return map[string]WeaponSpec{
		"bazooka": {
			Weight: 0.5, Size: 8, Speed: 8,
			BlastRadius: 40, BaseDamage: 30, KnockbackScale: 5, LiftBias: -2,
			Ammo: UnlimitedAmmo,
		},
		"grenade": {
			Weight: 0.6, Size: 8, Speed: 7,
			BlastRadius: 50, BaseDamage: 45, KnockbackScale: 7, LiftBias: -2,
			FuseTicks: 180, Ammo: 10,
		},
		"shotgun": {
			Weight: 0.2, Size: 4, Speed: 14,
			BlastRadius: 15, BaseDamage: 20, KnockbackScale: 3, LiftBias: -1,
			Ammo: 10,
		},
		"air_strike": {
			Weight: 0.8, Size: 8, Speed: 6,
			BlastRadius: 30, InfluenceRadius: 45, BaseDamage: 25, KnockbackScale: 4, LiftBias: -2,
			Ammo: 0,
		},
		"baseball_bat": {
			Weight: 1, Size: 6, Speed: 4,
			BlastRadius: 10, InfluenceRadius: 30, BaseDamage: 15, KnockbackScale: 12, LiftBias: -3,
			FuseTicks: 2, Ammo: UnlimitedAmmo,
		},
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world: размеры должны быть положительными (%gx%g)", c.World.Width, c.World.Height))
	}
	if c.World.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("world: cell_size должен быть положительным (%g)", c.World.CellSize))
	}
	switch c.World.Terrain.Kind {
	case "flat", "hills", "perlin":
	default:
		errs = append(errs, fmt.Errorf("world.terrain: неизвестный вид %q", c.World.Terrain.Kind))
	}
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics: dt должен быть положительным (%g)", c.Physics.DT))
	}
	if c.Physics.DepenetrationStep <= 0 || c.Physics.MaxDepenetrationSteps <= 0 {
		errs = append(errs, errors.New("physics: шаг и лимит выталкивания должны быть положительными"))
	}
	if c.Physics.GroundDrag < 0 || c.Physics.GroundDrag > 1 {
		errs = append(errs, fmt.Errorf("physics: ground_drag вне [0,1] (%g)", c.Physics.GroundDrag))
	}
	if c.Turn.Duration <= 0 || c.Turn.DecisionInterval <= 0 {
		errs = append(errs, errors.New("turn: длительность хода и интервал решений должны быть положительными"))
	}
	if c.Turn.FireFraction < 0 || c.Turn.FireFraction > 1 {
		errs = append(errs, fmt.Errorf("turn: fire_fraction вне [0,1] (%g)", c.Turn.FireFraction))
	}
	if c.Actor.Size <= 0 || c.Actor.Weight <= 0 || c.Actor.MaxHealth <= 0 {
		errs = append(errs, errors.New("actor: размер, вес и здоровье должны быть положительными"))
	}
	if c.Explosion.DurationFrames <= 0 {
		errs = append(errs, errors.New("explosion: duration_frames должен быть положительным"))
	}
	if len(c.Weapons) == 0 {
		errs = append(errs, errors.New("weapons: таблица оружия пуста"))
	}
	for name, w := range c.Weapons {
		if w.Weight <= 0 || w.Size <= 0 || w.BlastRadius <= 0 {
			errs = append(errs, fmt.Errorf("weapons.%s: вес, размер и радиус должны быть положительными", name))
		}
		if w.FuseTicks < 0 {
			errs = append(errs, fmt.Errorf("weapons.%s: fuse_ticks не может быть отрицательным", name))
		}
		if w.Ammo < UnlimitedAmmo {
			errs = append(errs, fmt.Errorf("weapons.%s: ammo должен быть >= %d (%d)", name, UnlimitedAmmo, w.Ammo))
		}
	}
	if len(c.Collectables.Items) > 0 && c.Collectables.Size <= 0 {
		errs = append(errs, errors.New("collectables: size должен быть положительным"))
	}
	for i, item := range c.Collectables.Items {
		switch item.Kind {
		case "health", "ammo":
		case "weapon":
			if item.Weapon == "" {
				errs = append(errs, fmt.Errorf("collectables.items[%d]: не указано оружие", i))
			}
		default:
			errs = append(errs, fmt.Errorf("collectables.items[%d]: неизвестный вид %q", i, item.Kind))
		}
		if item.Weapon != "" {
			if _, ok := c.Weapons[item.Weapon]; !ok {
				errs = append(errs, fmt.Errorf("collectables.items[%d]: неизвестное оружие %q", i, item.Weapon))
			}
		}
		if item.Value < 0 {
			errs = append(errs, fmt.Errorf("collectables.items[%d]: value не может быть отрицательным", i))
		}
	}
	if c.Runner.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("runner: tick_rate должен быть положительным (%d)", c.Runner.TickRate))
	}
	return errors.Join(errs...)
}

// GetMetricsAddr возвращает адрес Prometheus с поддержкой fallback значений
func (r *RunnerConfig) GetMetricsAddr() string {
	if r.MetricsAddr != "" {
		return r.MetricsAddr
	}
	return os.Getenv("ARTILLERY_METRICS_ADDR")
}

// GetSeed возвращает сид ландшафта: config -> env -> значение по умолчанию
func (t *TerrainConfig) GetSeed() int64 {
	if t.Seed != 0 {
		return t.Seed
	}
	if envVal := os.Getenv("ARTILLERY_SEED"); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return seed
		}
	}
	return 1
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV ARTILLERY_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("ARTILLERY_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан: использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	if err := mergeWeapons(cfg, data); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация %s: %w", path, err)
	}

	return cfg, nil
}

// mergeWeapons накладывает описания оружия из YAML на значения по умолчанию.
// yaml.v3 декодирует элемент map в нулевую структуру, поэтому частичное
// описание известного оружия без этого шага теряет остальные поля.
func mergeWeapons(cfg *Config, data []byte) error {
	var raw struct {
		Weapons map[string]yaml.Node `yaml:"weapons"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Weapons) == 0 {
		return nil
	}

	defaults := DefaultWeapons()
	if cfg.Weapons == nil {
		cfg.Weapons = make(map[string]WeaponSpec, len(raw.Weapons))
	}
	for name, node := range raw.Weapons {
		spec := defaults[name]
		if err := node.Decode(&spec); err != nil {
			return fmt.Errorf("weapons.%s: %w", name, err)
		}
		cfg.Weapons[name] = spec
	}
	return nil
}
