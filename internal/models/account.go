// Package models содержит доменные модели сервиса: учётную запись CRM
// и серверную сессию, привязывающую клиента к учётной записи.
package models

import "time"

// Account представляет зарегистрированного пользователя CRM.
type Account struct {
	ID           string    // Уникальный идентификатор, назначается при создании
	Name         string    // Отображаемое имя, владелец может его менять
	Email        string    // Нормализованный email, уникален среди всех учётных записей
	PasswordHash string    // bcrypt-хэш пароля
	CreatedAt    time.Time // Дата регистрации
	UpdatedAt    time.Time // Дата последнего изменения профиля
}
