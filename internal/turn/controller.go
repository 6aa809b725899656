package turn

import (
	"math"
	"math/rand"
	"sync"

	"github.com/annel0/artillery/internal/vec"
)

// ActionKind вид действия, предлагаемого источником решений
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionMoveLeft
	ActionMoveRight
	ActionJump
	ActionAim
	ActionFire
	ActionSelectWeapon
)

// String возвращает строковое представление действия
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionMoveLeft:
		return "move_left"
	case ActionMoveRight:
		return "move_right"
	case ActionJump:
		return "jump"
	case ActionAim:
		return "aim"
	case ActionFire:
		return "fire"
	case ActionSelectWeapon:
		return "select_weapon"
	default:
		return "unknown"
	}
}

// Action решение для активного персонажа
type Action struct {
	Kind   ActionKind
	Angle  float64 // Для ActionAim, радианы
	Weapon string  // Для ActionFire/ActionSelectWeapon; пусто: текущее оружие
}

// ActorView доступное источнику решений представление персонажа
type ActorView struct {
	Index    int
	ID       string
	Position vec.Vec2Float
	Velocity vec.Vec2Float
	Health   int
	AimAngle float64
	Weapon   string
	Ammo     map[string]int // Боезапас по имени оружия; -1 без ограничения
	Grounded bool
}

// CanFire сообщает, есть ли патроны у оружия. Без сведений о боезапасе стрелять можно.
func (v ActorView) CanFire(weapon string) bool {
	if v.Ammo == nil {
		return true
	}
	n, ok := v.Ammo[weapon]
	return ok && n != 0
}

// Controller источник решений: человек, скрипт или ИИ
type Controller interface {
	Decide(view ActorView, gate Gate) Action
}

// ControllerFunc позволяет использовать функцию как Controller
type ControllerFunc func(view ActorView, gate Gate) Action

// Decide вызывает функцию
func (f ControllerFunc) Decide(view ActorView, gate Gate) Action {
	return f(view, gate)
}

// ScriptedController случайно ходит, прыгает и стреляет, как демо-сценарий игры.
// Детерминирован при фиксированном сиде.
type ScriptedController struct {
	rng      *rand.Rand
	weapons  []string
	lastTurn int
}

// NewScriptedController создаёт скриптовый источник решений.
// weapons: список оружия для выстрелов; пустой список означает текущее оружие.
func NewScriptedController(seed int64, weapons ...string) *ScriptedController {
	return &ScriptedController{
		rng:      rand.New(rand.NewSource(seed)),
		weapons:  weapons,
		lastTurn: -1,
	}
}

// Decide в первом слоте хода выбирает новый прицел, затем стреляет при первой
// возможности, в остальных слотах случайно двигается или прыгает
func (c *ScriptedController) Decide(view ActorView, gate Gate) Action {
	if gate.Turn != c.lastTurn {
		c.lastTurn = gate.Turn
		return Action{Kind: ActionAim, Angle: float64(c.rng.Intn(628)) / 100.0}
	}

	if gate.MayFire {
		action := Action{Kind: ActionFire}
		var loaded []string
		for _, w := range c.weapons {
			if view.CanFire(w) {
				loaded = append(loaded, w)
			}
		}
		if len(loaded) > 0 {
			action.Weapon = loaded[c.rng.Intn(len(loaded))]
		}
		return action
	}

	switch c.rng.Intn(3) {
	case 0:
		return Action{Kind: ActionMoveLeft}
	case 1:
		return Action{Kind: ActionMoveRight}
	default:
		return Action{Kind: ActionJump}
	}
}

// InputController очередь действий, заполняемая внешним слоем ввода между тиками
type InputController struct {
	mu    sync.Mutex
	queue []Action
}

// NewInputController создаёт пустую очередь ввода
func NewInputController() *InputController {
	return &InputController{}
}

// Push добавляет действия в очередь
func (c *InputController) Push(actions ...Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, actions...)
}

// Pending возвращает количество ожидающих действий
func (c *InputController) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Decide извлекает следующее действие. Выстрел вне разрешённого слота остаётся в очереди.
func (c *InputController) Decide(_ ActorView, gate Gate) Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return Action{Kind: ActionNone}
	}

	next := c.queue[0]
	if next.Kind == ActionFire && !gate.MayFire {
		return Action{Kind: ActionNone}
	}

	c.queue = c.queue[1:]
	return next
}

// AngleTo возвращает угол прицела от from к to
func AngleTo(from, to vec.Vec2Float) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// TargetSource возвращает позиции возможных целей для персонажа index
type TargetSource func(index int) []vec.Vec2Float

// HunterController ведёт себя как скриптовый, но в начале хода целится
// в ближайшего противника с поправкой на баллистику
type HunterController struct {
	*ScriptedController
	targets TargetSource
	loft    float64
}

// NewHunterController создаёт ИИ-контроллер. loft: подъём прицела над прямой наводкой, радианы.
func NewHunterController(seed int64, targets TargetSource, loft float64, weapons ...string) *HunterController {
	return &HunterController{
		ScriptedController: NewScriptedController(seed, weapons...),
		targets:            targets,
		loft:               loft,
	}
}

// Decide целится в ближайшую цель в первом слоте хода
func (c *HunterController) Decide(view ActorView, gate Gate) Action {
	if gate.Turn != c.lastTurn && c.targets != nil {
		c.lastTurn = gate.Turn
		var nearest *vec.Vec2Float
		best := math.Inf(1)
		for _, p := range c.targets(view.Index) {
			if d := view.Position.DistanceTo(p); d < best {
				best = d
				p := p
				nearest = &p
			}
		}
		if nearest != nil {
			return Action{Kind: ActionAim, Angle: AngleTo(view.Position, *nearest) - c.loft}
		}
	}
	return c.ScriptedController.Decide(view, gate)
}
