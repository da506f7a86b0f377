package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mycrm/internal/models"
	"github.com/magabrotheeeer/mycrm/internal/storage"
)

const accountColumns = `id, name, email, password_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// validID отсекает идентификаторы, которые не являются UUID: такие записи
// заведомо не существуют, а PostgreSQL ответил бы ошибкой синтаксиса.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// Insert сохраняет новую учётную запись и возвращает её с назначенным ID.
// Повторный email отклоняется ограничением accounts_email_key.
func (s *Storage) Insert(ctx context.Context, account models.Account) (*models.Account, error) {
	const op = "storage.Insert"

	query := `INSERT INTO accounts (name, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING ` + accountColumns
	created, err := scanAccount(s.DB.QueryRowContext(ctx, query,
		account.Name, account.Email, account.PasswordHash))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return created, nil
}

// FindByEmail возвращает учётную запись по email.
func (s *Storage) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.FindByEmail"

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE email = $1`
	account, err := scanAccount(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return account, nil
}

// FindByID возвращает учётную запись по ID.
func (s *Storage) FindByID(ctx context.Context, id string) (*models.Account, error) {
	const op = "storage.FindByID"
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE id = $1`
	account, err := scanAccount(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return account, nil
}

// UpdateName меняет отображаемое имя учётной записи.
func (s *Storage) UpdateName(ctx context.Context, id, name string) (*models.Account, error) {
	const op = "storage.UpdateName"
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	query := `UPDATE accounts
			  SET name = $1, updated_at = now()
			  WHERE id = $2
			  RETURNING ` + accountColumns
	account, err := scanAccount(s.DB.QueryRowContext(ctx, query, name, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return account, nil
}

// Delete удаляет учётную запись. Сессии в Redis остаются и при следующем
// обращении разрешаются как анонимные.
func (s *Storage) Delete(ctx context.Context, id string) error {
	const op = "storage.Delete"
	if !validID(id) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, classify(sql.ErrNoRows))
	}
	return nil
}
