package game

import "errors"

var (
	// ErrOutOfBounds позиция создания вне мира
	ErrOutOfBounds = errors.New("позиция вне границ мира")
	// ErrUnknownWeapon вид оружия отсутствует в таблице
	ErrUnknownWeapon = errors.New("неизвестное оружие")
	// ErrNoActors симуляция запущена без персонажей
	ErrNoActors = errors.New("нет ни одного персонажа")
	// ErrInvalidSpawn персонаж не может появиться в указанной точке
	ErrInvalidSpawn = errors.New("недопустимая точка появления")
	// ErrNoAmmo у персонажа закончились патроны выбранного оружия
	ErrNoAmmo = errors.New("нет патронов")
	// ErrUnknownCollectable вид предмета не поддерживается
	ErrUnknownCollectable = errors.New("неизвестный вид предмета")
)
