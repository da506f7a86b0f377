package services

import "errors"

// Ошибки сервиса аутентификации. Вызывающая сторона различает их через errors.Is
// и сама решает, какой текст показать пользователю.
var (
	// ErrValidation — не заполнено обязательное поле или значение недопустимо.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail — учётная запись с таким email уже существует.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials — неверный email или пароль. Какой именно, не сообщается.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPersistence — хранилище недоступно или ответило неожиданной ошибкой.
	ErrPersistence = errors.New("storage unavailable")
	// ErrSession — токен сессии повреждён или истёк. Всегда трактуется как аноним.
	ErrSession = errors.New("invalid session")
	// ErrAccountNotFound — учётная запись не найдена.
	ErrAccountNotFound = errors.New("account not found")
)
