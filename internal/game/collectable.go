package game

import (
	"fmt"

	"github.com/annel0/artillery/internal/config"
	"github.com/annel0/artillery/internal/physics"
	"github.com/google/uuid"
)

// CollectableKind вид предмета на ландшафте
type CollectableKind int

const (
	CollectHealth CollectableKind = iota
	CollectAmmo
	CollectWeapon
)

var collectableNames = map[CollectableKind]string{
	CollectHealth: "health",
	CollectAmmo:   "ammo",
	CollectWeapon: "weapon",
}

func (k CollectableKind) String() string {
	if name, ok := collectableNames[k]; ok {
		return name
	}
	return fmt.Sprintf("collectable(%d)", int(k))
}

// ParseCollectableKind разбирает вид предмета из конфигурации
func ParseCollectableKind(name string) (CollectableKind, error) {
	for kind, n := range collectableNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCollectable, name)
}

// Collectable предмет, который персонаж подбирает касанием.
// Лежит на ландшафте под действием гравитации и падает в воронки.
type Collectable struct {
	ID        string
	Kind      CollectableKind
	Value     int
	Weapon    WeaponKind
	HasWeapon bool // Для CollectAmmo: false означает текущее оружие подобравшего
	Body      *physics.Body

	collected bool
}

// Collected сообщает, подобран ли предмет
func (c *Collectable) Collected() bool {
	return c.collected
}

// Pickup итог подбора предмета
type Pickup struct {
	CollectableID string
	ActorID       string
	ActorIndex    int
	Kind          CollectableKind
	Weapon        WeaponKind
	Amount        int // Фактически добавленное здоровье или патроны; UnlimitedAmmo для безлимита
}

// apply передаёт предмет персонажу
func (c *Collectable) apply(a *Actor, weapons WeaponTable, maxHealth int) Pickup {
	c.collected = true
	p := Pickup{CollectableID: c.ID, ActorID: a.ID, ActorIndex: a.Index, Kind: c.Kind}

	switch c.Kind {
	case CollectHealth:
		before := a.Health
		a.Health += c.Value
		if a.Health > maxHealth {
			a.Health = maxHealth
		}
		p.Amount = a.Health - before

	case CollectAmmo:
		kind := a.Weapon
		if c.HasWeapon {
			kind = c.Weapon
		}
		p.Weapon = kind
		if a.AmmoFor(kind) == config.UnlimitedAmmo {
			p.Amount = config.UnlimitedAmmo
			break
		}
		a.addAmmo(kind, c.Value)
		p.Amount = c.Value

	case CollectWeapon:
		// Без явного значения выдаётся начальный боезапас оружия, но не меньше выстрела
		amount := c.Value
		if amount == 0 {
			spec, _ := weapons.Spec(c.Weapon)
			amount = max(spec.Ammo, 1)
			if spec.Ammo == config.UnlimitedAmmo {
				amount = config.UnlimitedAmmo
			}
		}
		a.addAmmo(c.Weapon, amount)
		a.Weapon = c.Weapon
		p.Weapon = c.Weapon
		p.Amount = amount
		if a.AmmoFor(c.Weapon) == config.UnlimitedAmmo {
			p.Amount = config.UnlimitedAmmo
		}
	}
	return p
}

// compactCollectables удаляет подобранные предметы, сохраняя порядок
func compactCollectables(items []*Collectable) []*Collectable {
	kept := items[:0]
	for _, c := range items {
		if !c.collected {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(items); i++ {
		items[i] = nil
	}
	return kept
}

func newCollectable(kind CollectableKind, value int, weapon WeaponKind, hasWeapon bool, body *physics.Body) *Collectable {
	return &Collectable{
		ID:        uuid.NewString(),
		Kind:      kind,
		Value:     value,
		Weapon:    weapon,
		HasWeapon: hasWeapon,
		Body:      body,
	}
}
