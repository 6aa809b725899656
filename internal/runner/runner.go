package runner

import (
	"context"
	"errors"
	"time"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/eventbus"
	"github.com/annel0/artillery/internal/game"
	"github.com/annel0/artillery/internal/logging"
	"github.com/annel0/artillery/internal/metrics"
	"github.com/annel0/artillery/internal/observability"
	"github.com/annel0/artillery/internal/physics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StopReason причина остановки цикла
type StopReason int

const (
	StopCancelled StopReason = iota // Контекст отменён (выход из приложения)
	StopFinished                    // Остался один живой персонаж или ни одного
	StopMaxTicks                    // Достигнут лимит тиков
)

func (r StopReason) String() string {
	switch r {
	case StopFinished:
		return "finished"
	case StopMaxTicks:
		return "max_ticks"
	default:
		return "cancelled"
	}
}

// Result итог прогона
type Result struct {
	Ticks       uint64
	Turns       int
	Detonations int
	Shots       int
	Pickups     int
	Deaths      int
	Embedded    int // Тики с ошибкой выталкивания
	Alive       int
	Winner      string // ID последнего живого персонажа, если он один
	Reason      StopReason
}

// Options необязательные потребители итогов тика
type Options struct {
	Source  string              // Имя источника событий
	Bus     eventbus.EventBus   // Шина событий, nil: не публиковать
	Metrics *metrics.SimMetrics // Метрики, nil: не собирать
	Tracer  trace.Tracer        // Трассировщик, nil: глобальный
	Logger  *logging.Logger     // Логгер, nil: логгер раннера из менеджера
	Unpaced bool                // Не ждать такта, тики идут подряд
}

// Runner синхронный цикл с фиксированным тактом. Выход проверяется только
// между тиками, сам тик всегда выполняется целиком.
type Runner struct {
	sim  *game.Simulation
	cfg  config.RunnerConfig
	opts Options

	logger *logging.Logger
	tracer trace.Tracer

	turnSpan trace.Span
	result   Result
}

// New создаёт цикл для симуляции
func New(sim *game.Simulation, cfg config.RunnerConfig, opts Options) *Runner {
	if opts.Source == "" {
		opts.Source = "artillery"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetRunnerLogger()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = observability.Tracer()
	}
	return &Runner{sim: sim, cfg: cfg, opts: opts, logger: logger, tracer: tracer}
}

// Run крутит тики до отмены ctx, лимита тиков или конца матча
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if len(r.sim.Actors) == 0 {
		return r.result, game.ErrNoActors
	}

	r.startTurn(ctx)
	defer r.endTurn()

	rate := r.cfg.TickRate
	if rate <= 0 {
		rate = 60
	}
	var ticker *time.Ticker
	if !r.opts.Unpaced {
		ticker = time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()
	}

	r.logger.Info("▶️ Старт: персонажей %d, такт %d Гц, лимит тиков %d", len(r.sim.Actors), rate, r.cfg.MaxTicks)

	for {
		if reason, done := r.shouldStop(ctx); done {
			return r.finish(reason), nil
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return r.finish(StopCancelled), nil
			case <-ticker.C:
			}
		}

		if _, err := r.Step(ctx); err != nil && !errors.Is(err, physics.ErrEmbedded) {
			return r.finish(StopCancelled), err
		}
	}
}

// Step выполняет один тик и раздаёт его итог потребителям.
// Ошибка выталкивания возвращается, но не прерывает симуляцию.
func (r *Runner) Step(ctx context.Context) (game.TickReport, error) {
	started := time.Now()
	report, tickErr := r.sim.Tick()
	took := time.Since(started)

	if tickErr != nil {
		if !errors.Is(tickErr, physics.ErrEmbedded) {
			return report, tickErr
		}
		r.result.Embedded++
		r.logger.Warn("Тик %d: %v", report.Tick, tickErr)
		if r.turnSpan != nil {
			r.turnSpan.RecordError(tickErr)
			r.turnSpan.SetStatus(codes.Error, "embedded body")
		}
	}

	r.result.Ticks = report.Tick
	r.result.Shots += len(report.Fired)
	r.result.Detonations += len(report.Detonations)
	r.result.Pickups += len(report.Pickups)
	r.result.Deaths += len(report.Deaths)

	r.trace(report)
	if report.Gate.TurnChanged {
		r.result.Turns++
		r.endTurn()
		r.startTurn(ctx)
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveTick(report, r.sim, took)
	}
	r.publish(ctx, report)

	return report, tickErr
}

func (r *Runner) shouldStop(ctx context.Context) (StopReason, bool) {
	if ctx.Err() != nil {
		return StopCancelled, true
	}
	if r.sim.AliveCount() <= 1 {
		return StopFinished, true
	}
	if r.cfg.MaxTicks > 0 && r.sim.TickCount() >= uint64(r.cfg.MaxTicks) {
		return StopMaxTicks, true
	}
	return 0, false
}

func (r *Runner) finish(reason StopReason) Result {
	r.result.Reason = reason
	r.result.Ticks = r.sim.TickCount()
	r.result.Alive = r.sim.AliveCount()
	r.result.Winner = ""
	if r.result.Alive == 1 {
		for _, a := range r.sim.Actors {
			if a.Alive() {
				r.result.Winner = a.ID
			}
		}
	}
	r.logger.Info("⏹️ Остановка (%s): тиков %d, ходов %d, подрывов %d, живых %d",
		reason, r.result.Ticks, r.result.Turns, r.result.Detonations, r.result.Alive)
	return r.result
}

func (r *Runner) publish(ctx context.Context, report game.TickReport) {
	if r.opts.Bus == nil {
		return
	}
	events, err := eventbus.FromTickReport(r.opts.Source, report)
	if err != nil {
		r.logger.Error("Тик %d: не удалось собрать события: %v", report.Tick, err)
		return
	}
	for _, ev := range events {
		if err := r.opts.Bus.Publish(ctx, ev); err != nil {
			r.logger.Warn("Событие %s не опубликовано: %v", ev.EventType, err)
		}
	}
}

// startTurn открывает span хода активного персонажа
func (r *Runner) startTurn(ctx context.Context) {
	_, r.turnSpan = r.tracer.Start(ctx, "turn",
		trace.WithAttributes(
			attribute.Int("turn.number", r.sim.Scheduler.TurnNumber()),
			attribute.Int("turn.active", r.sim.Scheduler.Active()),
			attribute.Int64("turn.start_tick", int64(r.sim.TickCount())),
		),
	)
}

func (r *Runner) endTurn() {
	if r.turnSpan == nil {
		return
	}
	r.turnSpan.End()
	r.turnSpan = nil
}

// trace добавляет события тика в span текущего хода
func (r *Runner) trace(report game.TickReport) {
	if r.turnSpan == nil {
		return
	}
	for _, shot := range report.Fired {
		r.turnSpan.AddEvent("fire", trace.WithAttributes(
			attribute.String("weapon", shot.Weapon.String()),
			attribute.Float64("angle", shot.Angle),
			attribute.Int64("tick", int64(report.Tick)),
		))
	}
	for _, p := range report.Pickups {
		r.turnSpan.AddEvent("pickup", trace.WithAttributes(
			attribute.String("actor.id", p.ActorID),
			attribute.String("kind", p.Kind.String()),
			attribute.Int("amount", p.Amount),
		))
	}
	for _, d := range report.Detonations {
		r.turnSpan.AddEvent("detonation", trace.WithAttributes(
			attribute.String("weapon", d.Weapon.String()),
			attribute.String("cause", d.Cause.String()),
			attribute.Int("hits", len(d.Hits)),
			attribute.Int("cells_cleared", d.CellsCleared),
		))
	}
	for _, id := range report.Deaths {
		r.turnSpan.AddEvent("death", trace.WithAttributes(attribute.String("actor.id", id)))
	}
}
