// Package password реализует хеширование и проверку паролей на основе bcrypt.
//
// Hasher ограничивает число одновременных bcrypt-операций, чтобы всплеск
// логинов не занимал все ядра и не тормозил остальные запросы.
package password

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxLength — максимальная длина пароля в байтах, которую принимает bcrypt.
const MaxLength = 72

// ErrTooLong возвращается для паролей длиннее MaxLength байт.
var ErrTooLong = errors.New("password is longer than 72 bytes")

// Hasher создаёт и проверяет bcrypt-хэши с заданной стоимостью.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher создаёт Hasher. Некорректная стоимость заменяется на bcrypt.DefaultCost,
// maxConcurrent < 1 трактуется как 1.
func NewHasher(cost, maxConcurrent int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Hasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash возвращает bcrypt-хэш пароля. Соль генерируется заново при каждом вызове,
// поэтому два хэша одного и того же пароля различаются.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	const op = "password.Hash"
	if len(plain) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сравнивает пароль с хэшем за постоянное время.
//
// Несовпадение не является ошибкой: возвращается (false, nil).
// Ошибка означает повреждённый хэш или отменённый контекст.
func (h *Hasher) Verify(ctx context.Context, plain, hashed string) (bool, error) {
	const op = "password.Verify"
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}
