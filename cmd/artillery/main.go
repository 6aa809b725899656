package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/eventbus"
	"github.com/annel0/artillery/internal/game"
	"github.com/annel0/artillery/internal/logging"
	"github.com/annel0/artillery/internal/metrics"
	"github.com/annel0/artillery/internal/observability"
	"github.com/annel0/artillery/internal/runner"
	"github.com/annel0/artillery/internal/terrain"
	"github.com/annel0/artillery/internal/turn"
)

// Поднятие прицела охотника над прямой линией на цель
const hunterLoft = 0.35

func main() {
	var (
		configPath = flag.String("config", "", "Путь к YAML-конфигурации (по умолчанию $ARTILLERY_CONFIG)")
		maxTicks   = flag.Int("ticks", -1, "Лимит тиков (переопределяет конфигурацию)")
		fast       = flag.Bool("fast", false, "Не ждать такта, тики идут подряд")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *maxTicks >= 0 {
		cfg.Runner.MaxTicks = *maxTicks
	}

	// Инициализируем систему логирования
	logging.SetLogDir(cfg.Log.Dir)
	if err := logging.InitDefaultLogger("artillery"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	level := logging.ParseLevel(cfg.Log.Level)
	logging.SetDefaultLevel(level)
	logging.GetLoggerManager().SetAllLevels(level)
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🎮 Запуск артиллерийской симуляции %.0fx%.0f, ландшафт %s",
		cfg.World.Width, cfg.World.Height, cfg.World.Terrain.Kind)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТРАССИРОВКА ===
	if cfg.Runner.EnableTracing {
		shutdown, err := observability.InitTelemetry(ctx, "artillery")
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	// === СИМУЛЯЦИЯ ===
	field, err := terrain.FromConfig(cfg.World)
	if err != nil {
		logging.Error("❌ Ошибка построения ландшафта: %v", err)
		os.Exit(1)
	}
	logging.Debug("Ландшафт %dx%d ячеек, твёрдых %d", field.Cols(), field.Rows(), field.SolidCount())

	sim, err := game.NewSimulation(cfg, field)
	if err != nil {
		logging.Error("❌ Ошибка создания симуляции: %v", err)
		os.Exit(1)
	}

	weapons := sim.Weapons.Names()
	if err := sim.SpawnActors(cfg.Actor.Count, func(i int) turn.Controller {
		seed := cfg.Actor.Seed + int64(i)
		if cfg.Actor.Scripted {
			return turn.NewScriptedController(seed, weapons...)
		}
		return turn.NewHunterController(seed, sim.TargetsFor, hunterLoft, weapons...)
	}); err != nil {
		logging.Error("❌ Ошибка расстановки персонажей: %v", err)
		os.Exit(1)
	}
	if err := sim.SpawnCollectables(cfg.Collectables.Items); err != nil {
		logging.Warn("⚠️ Предметы разложены не полностью: %v", err)
	}
	logging.Info("📦 Предметов на карте: %d", len(sim.Collectables))

	// === СОБЫТИЯ И МЕТРИКИ ===
	bus := eventbus.NewMemoryBus(cfg.Runner.EventBufferSize)
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(ctx, bus, logging.GetRunnerLogger()); err != nil {
		logging.Warn("Логирование событий недоступно: %v", err)
	}

	var simMetrics *metrics.SimMetrics
	if addr := cfg.Runner.GetMetricsAddr(); addr != "" {
		simMetrics = metrics.New()
		exporter, err := eventbus.NewMetricsExporter(bus, simMetrics.Registry)
		if err != nil {
			logging.Error("❌ Ошибка регистрации метрик шины: %v", err)
		} else {
			exporter.Start(time.Second)
			defer exporter.Stop()
		}
		go func() {
			if err := simMetrics.Serve(ctx, addr, 5*time.Second); err != nil {
				logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
			}
		}()
	}

	// === ЦИКЛ ===
	res, err := runner.New(sim, cfg.Runner, runner.Options{
		Source:  "artillery",
		Bus:     bus,
		Metrics: simMetrics,
		Unpaced: *fast,
	}).Run(ctx)
	if err != nil {
		logging.Error("❌ Симуляция прервана: %v", err)
	}

	logging.Info("🏁 Итог: %s, тиков %d, ходов %d, выстрелов %d, подрывов %d, подборов %d, выбыло %d",
		res.Reason, res.Ticks, res.Turns, res.Shots, res.Detonations, res.Pickups, res.Deaths)
	if res.Winner != "" {
		logging.Info("🏆 Победитель: %s", res.Winner)
	}
	for _, a := range sim.Actors {
		logging.Info("   #%d %s здоровье %d", a.Index, a.ID, a.Health)
	}
	logging.Info("👋 Симуляция завершена")
}
