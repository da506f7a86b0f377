// Package storage содержит общие для всех реализаций хранилищ ошибки.
package storage

import "errors"

var (
	// ErrNotFound возвращается, если запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey возвращается при нарушении ограничения уникальности.
	ErrDuplicateKey = errors.New("duplicate key")
)
