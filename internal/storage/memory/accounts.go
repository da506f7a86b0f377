// Package memory реализует хранилище учётных записей в памяти процесса.
//
// Используется в локальном окружении без PostgreSQL и в тестах. Уникальность
// email проверяется и фиксируется под одной блокировкой, поэтому параллельные
// регистрации с одним адресом не проходят обе.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mycrm/internal/models"
	"github.com/magabrotheeeer/mycrm/internal/storage"
)

// AccountStore хранит учётные записи в map с индексом по email.
type AccountStore struct {
	mu      sync.RWMutex
	byID    map[string]models.Account
	byEmail map[string]string
	now     func() time.Time
}

// NewAccountStore создаёт пустое хранилище.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:    make(map[string]models.Account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// Insert сохраняет новую учётную запись и назначает ей ID.
func (s *AccountStore) Insert(ctx context.Context, account models.Account) (*models.Account, error) {
	const op = "storage.memory.Insert"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[account.Email]; exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrDuplicateKey)
	}
	now := s.now().UTC()
	account.ID = uuid.NewString()
	account.CreatedAt = now
	account.UpdatedAt = now
	s.byID[account.ID] = account
	s.byEmail[account.Email] = account.ID
	return &account, nil
}

// FindByEmail возвращает учётную запись по email.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.memory.FindByEmail"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	account := s.byID[id]
	return &account, nil
}

// FindByID возвращает учётную запись по ID.
func (s *AccountStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	const op = "storage.memory.FindByID"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return &account, nil
}

// UpdateName меняет отображаемое имя учётной записи.
func (s *AccountStore) UpdateName(ctx context.Context, id, name string) (*models.Account, error) {
	const op = "storage.memory.UpdateName"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	account.Name = name
	account.UpdatedAt = s.now().UTC()
	s.byID[id] = account
	return &account, nil
}

// Delete удаляет учётную запись. Живые сессии при этом не трогаются.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	const op = "storage.memory.Delete"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	delete(s.byEmail, account.Email)
	delete(s.byID, id)
	return nil
}
