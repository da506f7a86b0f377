// Package cache реализует хранилище сессий поверх Redis.
//
// Сессия лежит под ключом session:<sha256 токена> в виде JSON и истекает
// средствами Redis. Сам токен в хранилище не попадает.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/mycrm/internal/config"
	"github.com/magabrotheeeer/mycrm/internal/lib/token"
	"github.com/magabrotheeeer/mycrm/internal/models"
)

const sessionPrefix = "session:"

// ErrInvalidTTL возвращается при попытке сохранить сессию без срока жизни.
var ErrInvalidTTL = errors.New("session ttl must be positive")

// Cache оборачивает клиент Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.PasswordRedis,
		DB:           cfg.DB,
		Username:     cfg.UserRedis,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Ping проверяет доступность Redis.
func (c *Cache) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx).Err()
}

// Close закрывает клиент Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}

// Get читает JSON по ключу в result. Отсутствие ключа — (false, nil).
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет value в JSON со сроком жизни expiration.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = c.Db.Set(ctx, key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ. Отсутствующий ключ ошибкой не считается.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	const op = "cache.Invalidate"
	if err := c.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func sessionKey(tok string) string {
	return sessionPrefix + token.Fingerprint(tok)
}

// PutSession сохраняет сессию под токеном tok на время ttl.
func (c *Cache) PutSession(ctx context.Context, tok string, session models.Session, ttl time.Duration) error {
	const op = "cache.PutSession"
	if ttl <= 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidTTL)
	}
	if err := c.Set(ctx, sessionKey(tok), session, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSession возвращает сессию по токену. Неизвестный или истёкший токен — (nil, false, nil).
func (c *Cache) GetSession(ctx context.Context, tok string) (*models.Session, bool, error) {
	const op = "cache.GetSession"
	var session models.Session
	found, err := c.Get(ctx, sessionKey(tok), &session)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, false, nil
	}
	session.Token = tok
	return &session, true, nil
}

// DeleteSession удаляет сессию. Повторное удаление безопасно.
func (c *Cache) DeleteSession(ctx context.Context, tok string) error {
	const op = "cache.DeleteSession"
	if err := c.Invalidate(ctx, sessionKey(tok)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
