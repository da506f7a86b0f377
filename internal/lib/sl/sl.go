// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — единообразно называть поля структурированного лога.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil пишется пустая строка, чтобы логирование не паниковало.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// AccountID возвращает slog.Attr с идентификатором учётной записи.
// Email и пароль в лог не пишутся, учётная запись указывается только по id.
func AccountID(id string) slog.Attr {
	return slog.String("account_id", id)
}
