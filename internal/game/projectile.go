package game

import "github.com/annel0/artillery/internal/physics"

// FuseDisabled значение Fuse для снарядов, взрывающихся при контакте
const FuseDisabled = -1

// Projectile снаряд в полёте
type Projectile struct {
	ID     string
	Body   *physics.Body
	Weapon WeaponKind
	Fuse   int // Тиков до подрыва; FuseDisabled для контактных снарядов
	Owner  int // Индекс выстрелившего персонажа

	prevX   float64 // X до последнего шага интеграции
	removed bool
}

// FuseActive сообщает, взрывается ли снаряд по таймеру
func (p *Projectile) FuseActive() bool {
	return p.Fuse != FuseDisabled
}

// Removed сообщает, помечен ли снаряд на удаление в конце тика
func (p *Projectile) Removed() bool {
	return p.removed
}
