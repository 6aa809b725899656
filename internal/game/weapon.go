package game

import (
	"fmt"
	"sort"

	"github.com/annel0/artillery/internal/config"
)

// WeaponKind вид оружия
type WeaponKind int

const (
	Bazooka WeaponKind = iota
	Grenade
	Shotgun
	AirStrike
	BaseballBat
)

var weaponNames = map[WeaponKind]string{
	Bazooka:     "bazooka",
	Grenade:     "grenade",
	Shotgun:     "shotgun",
	AirStrike:   "air_strike",
	BaseballBat: "baseball_bat",
}

// String возвращает имя оружия, как в конфигурации
func (k WeaponKind) String() string {
	if name, ok := weaponNames[k]; ok {
		return name
	}
	return fmt.Sprintf("weapon(%d)", int(k))
}

// ParseWeaponKind разбирает имя оружия
func ParseWeaponKind(name string) (WeaponKind, error) {
	for kind, n := range weaponNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeapon, name)
}

// WeaponTable статическая таблица параметров оружия
type WeaponTable map[WeaponKind]config.WeaponSpec

// NewWeaponTable строит таблицу из секции weapons конфигурации
func NewWeaponTable(specs map[string]config.WeaponSpec) (WeaponTable, error) {
	table := make(WeaponTable, len(specs))
	for name, spec := range specs {
		kind, err := ParseWeaponKind(name)
		if err != nil {
			return nil, err
		}
		table[kind] = spec
	}
	return table, nil
}

// Spec возвращает параметры оружия
func (t WeaponTable) Spec(kind WeaponKind) (config.WeaponSpec, error) {
	spec, ok := t[kind]
	if !ok {
		return config.WeaponSpec{}, fmt.Errorf("%w: %s", ErrUnknownWeapon, kind)
	}
	return spec, nil
}

// Names возвращает отсортированные имена доступного оружия
func (t WeaponTable) Names() []string {
	names := make([]string, 0, len(t))
	for kind := range t {
		names = append(names, kind.String())
	}
	sort.Strings(names)
	return names
}
