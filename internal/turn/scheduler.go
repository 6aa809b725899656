package turn

import "github.com/annel0/artillery/internal/logging"

// Phase фаза конечного автомата хода
type Phase int

const (
	WaitingForAction Phase = iota
	ActorActing
	TurnTimeout
)

// String возвращает строковое представление фазы
func (p Phase) String() string {
	switch p {
	case WaitingForAction:
		return "waiting_for_action"
	case ActorActing:
		return "actor_acting"
	case TurnTimeout:
		return "turn_timeout"
	default:
		return "unknown"
	}
}

// Gate результат одного тика планировщика: чей ход и можно ли принимать решение
type Gate struct {
	Active      int   // Индекс активного персонажа, -1 если персонажей нет
	Phase       Phase // Фаза после тика
	Counter     int   // Счётчик тиков внутри хода
	Turn        int   // Порядковый номер хода, начиная с 0
	MayAct      bool  // Активному персонажу предоставлен слот действия
	MayFire     bool  // В этом слоте разрешён выстрел
	TurnChanged bool  // Ход перешёл к следующему персонажу
}

// Scheduler вращает активного персонажа и открывает слоты действий.
// Сам планировщик не решает, какое действие произойдёт.
type Scheduler struct {
	duration int // Длительность хода в тиках
	interval int // Период слотов действий
	fireAt   int // С какого тика хода разрешён выстрел

	actors  int
	active  int
	counter int
	turn    int
	fired   bool
	phase   Phase

	logger *logging.Logger
}

// NewScheduler создаёт планировщик. fireFraction: доля хода, после которой разрешён выстрел.
func NewScheduler(duration, interval int, fireFraction float64) *Scheduler {
	if duration <= 0 {
		duration = 1
	}
	if interval <= 0 {
		interval = 1
	}
	return &Scheduler{
		duration: duration,
		interval: interval,
		fireAt:   int(float64(duration) * fireFraction),
		phase:    WaitingForAction,
		logger:   logging.GetTurnLogger(),
	}
}

// SetLogger заменяет логгер планировщика
func (s *Scheduler) SetLogger(l *logging.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetActorCount задаёт количество персонажей в ротации
func (s *Scheduler) SetActorCount(n int) {
	s.actors = n
	if s.active >= n {
		s.active = 0
	}
}

// Active возвращает индекс активного персонажа
func (s *Scheduler) Active() int {
	if s.actors == 0 {
		return -1
	}
	return s.active
}

// Phase возвращает текущую фазу
func (s *Scheduler) Phase() Phase { return s.phase }

// Counter возвращает счётчик тиков текущего хода
func (s *Scheduler) Counter() int { return s.counter }

// TurnNumber возвращает номер текущего хода
func (s *Scheduler) TurnNumber() int { return s.turn }

// HasFired сообщает, был ли выстрел в текущем ходу
func (s *Scheduler) HasFired() bool { return s.fired }

// MarkFired отмечает выстрел; до конца хода стрелять больше нельзя
func (s *Scheduler) MarkFired() { s.fired = true }

// Tick продвигает счётчик на один тик. alive сообщает, жив ли персонаж;
// если активный персонаж выбыл, ход передаётся немедленно.
func (s *Scheduler) Tick(alive func(int) bool) Gate {
	if s.actors == 0 {
		return Gate{Active: -1, Phase: s.phase}
	}

	s.counter++

	if s.counter >= s.duration || (alive != nil && !alive(s.active)) {
		prev, counter := s.active, s.counter
		s.advance(alive)
		if counter >= s.duration {
			s.logger.Debug("Ход %d: время вышло, #%d -> #%d", s.turn, prev, s.active)
		} else {
			s.logger.Debug("Ход %d: персонаж #%d выбыл на тике %d, ход передан #%d", s.turn, prev, counter, s.active)
		}
		s.phase = TurnTimeout
		return s.gate(false, true)
	}

	if s.counter%s.interval == 0 {
		s.phase = ActorActing
		return s.gate(true, false)
	}

	s.phase = WaitingForAction
	return s.gate(false, false)
}

// advance передаёт ход следующему живому персонажу и сбрасывает флаги хода
func (s *Scheduler) advance(alive func(int) bool) {
	next := s.active
	for i := 0; i < s.actors; i++ {
		next = (next + 1) % s.actors
		if alive == nil || alive(next) {
			break
		}
	}
	s.active = next
	s.counter = 0
	s.fired = false
	s.turn++
}

func (s *Scheduler) gate(mayAct, changed bool) Gate {
	return Gate{
		Active:      s.active,
		Phase:       s.phase,
		Counter:     s.counter,
		Turn:        s.turn,
		MayAct:      mayAct,
		MayFire:     mayAct && !s.fired && s.counter >= s.fireAt,
		TurnChanged: changed,
	}
}
