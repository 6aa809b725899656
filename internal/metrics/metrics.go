package metrics

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/annel0/artillery/internal/game"
	"github.com/annel0/artillery/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"
)

const namespace = "artillery"

// SimMetrics Prometheus-метрики симуляции. Каждая метрика регистрируется
// в собственном регистре, чтобы несколько матчей и тесты не конфликтовали.
type SimMetrics struct {
	Registry *prometheus.Registry

	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	shots        *prometheus.CounterVec
	detonations  *prometheus.CounterVec
	pickups      *prometheus.CounterVec
	damage       prometheus.Counter
	cellsCleared prometheus.Counter
	deaths       prometheus.Counter
	removed      prometheus.Counter
	turns        prometheus.Counter

	projectiles    prometheus.Gauge
	explosions     prometheus.Gauge
	aliveActors    prometheus.Gauge
	solidCells     prometheus.Gauge
	collectables   prometheus.Gauge
	actorHealth    *prometheus.GaugeVec
	processCPU     prometheus.Gauge
	processRSS     prometheus.Gauge
	processThreads prometheus.Gauge

	proc *process.Process
}

// New создаёт набор метрик в новом регистре
func New() *SimMetrics {
	m := &SimMetrics{
		Registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ticks_total",
			Help: "Выполненные тики симуляции.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "tick_duration_seconds",
			Help:    "Длительность одного тика.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "shots_total",
			Help: "Выстрелы по видам оружия.",
		}, []string{"weapon"}),
		detonations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "detonations_total",
			Help: "Подрывы по видам оружия и причине.",
		}, []string{"weapon", "cause"}),
		pickups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "pickups_total",
			Help: "Подобранные предметы по виду.",
		}, []string{"kind"}),
		damage: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "damage_total",
			Help: "Суммарный нанесённый урон.",
		}),
		cellsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "terrain_cells_cleared_total",
			Help: "Разрушенные ячейки ландшафта.",
		}),
		deaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "actor_deaths_total",
			Help: "Выбывшие персонажи.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "projectiles_lost_total",
			Help: "Снаряды, покинувшие мир без взрыва.",
		}),
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "turns_total",
			Help: "Смены хода.",
		}),
		projectiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "projectiles_in_flight",
			Help: "Снаряды в полёте.",
		}),
		explosions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "explosions_active",
			Help: "Активные визуальные записи взрывов.",
		}),
		aliveActors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "actors_alive",
			Help: "Живые персонажи.",
		}),
		solidCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "terrain_solid_cells",
			Help: "Твёрдые ячейки ландшафта.",
		}),
		collectables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "collectables_on_field",
			Help: "Неподобранные предметы на ландшафте.",
		}),
		actorHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "actor_health",
			Help: "Здоровье персонажа по индексу.",
		}, []string{"actor"}),
		processCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "process", Name: "cpu_percent",
			Help: "Загрузка CPU процессом в процентах.",
		}),
		processRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "process", Name: "resident_memory_bytes",
			Help: "Резидентная память процесса.",
		}),
		processThreads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "process", Name: "os_threads",
			Help: "Число потоков ОС процесса.",
		}),
	}

	m.Registry.MustRegister(
		m.ticks, m.tickDuration, m.shots, m.detonations, m.pickups, m.damage, m.cellsCleared,
		m.deaths, m.removed, m.turns, m.projectiles, m.explosions, m.aliveActors,
		m.solidCells, m.collectables, m.actorHealth, m.processCPU, m.processRSS, m.processThreads,
	)
	return m
}

// ObserveTick учитывает итог тика и текущее состояние симуляции
func (m *SimMetrics) ObserveTick(report game.TickReport, sim *game.Simulation, took time.Duration) {
	m.ticks.Inc()
	m.tickDuration.Observe(took.Seconds())

	if report.Gate.TurnChanged {
		m.turns.Inc()
	}
	for _, shot := range report.Fired {
		m.shots.WithLabelValues(shot.Weapon.String()).Inc()
	}
	for _, d := range report.Detonations {
		m.detonations.WithLabelValues(d.Weapon.String(), d.Cause.String()).Inc()
		m.cellsCleared.Add(float64(d.CellsCleared))
		for _, h := range d.Hits {
			m.damage.Add(float64(h.Damage))
		}
	}
	for _, p := range report.Pickups {
		m.pickups.WithLabelValues(p.Kind.String()).Inc()
	}
	m.deaths.Add(float64(len(report.Deaths)))
	m.removed.Add(float64(report.Removed))

	if sim == nil {
		return
	}
	m.projectiles.Set(float64(len(sim.Projectiles)))
	m.explosions.Set(float64(len(sim.Explosions)))
	m.aliveActors.Set(float64(sim.AliveCount()))
	m.solidCells.Set(float64(sim.Field.SolidCount()))
	m.collectables.Set(float64(len(sim.Collectables)))
	for _, a := range sim.Actors {
		m.actorHealth.WithLabelValues(a.Label()).Set(float64(a.Health))
	}
}

// UpdateProcess обновляет метрики процесса через gopsutil
func (m *SimMetrics) UpdateProcess() error {
	if m.proc == nil {
		proc, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			return err
		}
		m.proc = proc
	}

	var errs []error
	if cpu, err := m.proc.CPUPercent(); err != nil {
		errs = append(errs, err)
	} else {
		m.processCPU.Set(cpu)
	}
	if mem, err := m.proc.MemoryInfo(); err != nil {
		errs = append(errs, err)
	} else {
		m.processRSS.Set(float64(mem.RSS))
	}
	if threads, err := m.proc.NumThreads(); err != nil {
		errs = append(errs, err)
	} else {
		m.processThreads.Set(float64(threads))
	}
	return errors.Join(errs...)
}

// Serve поднимает /metrics на addr и блокируется до отмены ctx.
// Метрики процесса обновляются раз в interval.
func (m *SimMetrics) Serve(ctx context.Context, addr string, interval time.Duration) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case <-ticker.C:
			if err := m.UpdateProcess(); err != nil {
				logging.Debug("Метрики процесса недоступны: %v", err)
			}
		}
	}
}
