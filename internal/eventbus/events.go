package eventbus

import (
	"encoding/json"
	"time"

	"github.com/annel0/artillery/internal/game"
	"github.com/google/uuid"
)

// Типы событий симуляции
const (
	TypeTurnChanged       = "turn_changed"
	TypeProjectileFired   = "projectile_fired"
	TypeCollectablePicked = "collectable_picked"
	TypeDetonation        = "detonation"
	TypeActorDied         = "actor_died"
)

// Приоритеты: смена хода и выбывание не должны теряться при переполнении
const (
	PriorityLow      = 1
	PriorityNormal   = 3
	PriorityHigh     = 7
	PriorityCritical = 9
)

// TurnChangedPayload смена активного персонажа
type TurnChangedPayload struct {
	Turn   int `json:"turn"`
	Active int `json:"active"`
}

// ProjectileFiredPayload выстрел активного персонажа
type ProjectileFiredPayload struct {
	ProjectileID string  `json:"projectile_id"`
	Actor        int     `json:"actor"`
	Weapon       string  `json:"weapon"`
	Angle        float64 `json:"angle"`
}

// CollectablePickedPayload подбор предмета; Amount == -1 означает безлимит
type CollectablePickedPayload struct {
	CollectableID string `json:"collectable_id"`
	ActorID       string `json:"actor_id"`
	Kind          string `json:"kind"`
	Weapon        string `json:"weapon,omitempty"`
	Amount        int    `json:"amount"`
}

// HitPayload попадание взрыва по персонажу
type HitPayload struct {
	ActorID  string  `json:"actor_id"`
	Damage   int     `json:"damage"`
	Distance float64 `json:"distance"`
}

// DetonationPayload подрыв снаряда
type DetonationPayload struct {
	ProjectileID string       `json:"projectile_id"`
	ExplosionID  string       `json:"explosion_id"`
	Weapon       string       `json:"weapon"`
	Cause        string       `json:"cause"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Radius       float64      `json:"radius"`
	CellsCleared int          `json:"cells_cleared"`
	Hits         []HitPayload `json:"hits,omitempty"`
}

// ActorDiedPayload выбывание персонажа
type ActorDiedPayload struct {
	ActorID string `json:"actor_id"`
}

// NewEnvelope упаковывает полезную нагрузку в конверт с новым UUID
func NewEnvelope(source, eventType string, tick uint64, priority int, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Tick:      tick,
		Priority:  priority,
		Payload:   data,
	}, nil
}

// Decode распаковывает полезную нагрузку конверта
func Decode[T any](ev *Envelope) (T, error) {
	var out T
	err := json.Unmarshal(ev.Payload, &out)
	return out, err
}

// FromTickReport превращает итог тика в упорядоченный список событий:
// смена хода, выстрелы, подборы предметов, подрывы, выбывания.
func FromTickReport(source string, r game.TickReport) ([]*Envelope, error) {
	var out []*Envelope
	add := func(eventType string, priority int, payload any) error {
		ev, err := NewEnvelope(source, eventType, r.Tick, priority, payload)
		if err != nil {
			return err
		}
		out = append(out, ev)
		return nil
	}

	if r.Gate.TurnChanged {
		if err := add(TypeTurnChanged, PriorityHigh, TurnChangedPayload{Turn: r.Gate.Turn, Active: r.Gate.Active}); err != nil {
			return nil, err
		}
	}

	for _, shot := range r.Fired {
		p := ProjectileFiredPayload{
			ProjectileID: shot.ProjectileID,
			Actor:        shot.Actor,
			Weapon:       shot.Weapon.String(),
			Angle:        shot.Angle,
		}
		if err := add(TypeProjectileFired, PriorityNormal, p); err != nil {
			return nil, err
		}
	}

	for _, pk := range r.Pickups {
		p := CollectablePickedPayload{
			CollectableID: pk.CollectableID,
			ActorID:       pk.ActorID,
			Kind:          pk.Kind.String(),
			Amount:        pk.Amount,
		}
		if pk.Kind != game.CollectHealth {
			p.Weapon = pk.Weapon.String()
		}
		if err := add(TypeCollectablePicked, PriorityLow, p); err != nil {
			return nil, err
		}
	}

	for _, d := range r.Detonations {
		p := DetonationPayload{
			ProjectileID: d.ProjectileID,
			ExplosionID:  d.ExplosionID,
			Weapon:       d.Weapon.String(),
			Cause:        d.Cause.String(),
			X:            d.Center.X,
			Y:            d.Center.Y,
			Radius:       d.Spec.BlastRadius,
			CellsCleared: d.CellsCleared,
		}
		for _, h := range d.Hits {
			p.Hits = append(p.Hits, HitPayload{ActorID: h.ActorID, Damage: h.Damage, Distance: h.Distance})
		}
		if err := add(TypeDetonation, PriorityNormal, p); err != nil {
			return nil, err
		}
	}

	for _, id := range r.Deaths {
		if err := add(TypeActorDied, PriorityCritical, ActorDiedPayload{ActorID: id}); err != nil {
			return nil, err
		}
	}

	return out, nil
}
