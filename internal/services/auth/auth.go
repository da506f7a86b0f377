// Package services содержит логику аутентификации CRM: регистрацию, вход,
// выход и разрешение сессии в учётную запись.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/mycrm/internal/lib/password"
	"github.com/magabrotheeeer/mycrm/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mycrm/internal/lib/sl"
	"github.com/magabrotheeeer/mycrm/internal/lib/token"
	"github.com/magabrotheeeer/mycrm/internal/metrics"
	"github.com/magabrotheeeer/mycrm/internal/models"
	"github.com/magabrotheeeer/mycrm/internal/storage"
)

// AccountStore описывает контракт хранилища учётных записей.
type AccountStore interface {
	// Insert сохраняет учётную запись; занятый email — storage.ErrDuplicateKey.
	Insert(ctx context.Context, account models.Account) (*models.Account, error)
	// FindByEmail возвращает учётную запись или storage.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// FindByID возвращает учётную запись или storage.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Account, error)
	// UpdateName меняет имя или возвращает storage.ErrNotFound.
	UpdateName(ctx context.Context, id, name string) (*models.Account, error)
}

// SessionStore описывает контракт хранилища сессий.
type SessionStore interface {
	PutSession(ctx context.Context, tok string, session models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, tok string) (*models.Session, bool, error)
	DeleteSession(ctx context.Context, tok string) error
}

// PasswordHasher описывает одностороннее хеширование паролей с солью.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, hashed string) (bool, error)
}

// EventPublisher публикует события учётных записей.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event rabbitmq.AccountRegistered) error
}

// Settings — настраиваемые параметры сервиса.
type Settings struct {
	SessionTTL   time.Duration // Время жизни сессии
	StoreTimeout time.Duration // Таймаут одного обращения к хранилищу
}

// AuthService отвечает за регистрацию, вход, выход и разрешение сессий.
type AuthService struct {
	log      *slog.Logger
	accounts AccountStore
	sessions SessionStore
	hasher   PasswordHasher
	events   EventPublisher
	metrics  *metrics.Metrics
	settings Settings

	newToken func() (string, error)
	now      func() time.Time

	// dummyHash проверяется при входе с неизвестным email, чтобы время ответа
	// не выдавало существование учётной записи.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService создает новый экземпляр AuthService. events и m могут быть nil.
func NewAuthService(
	log *slog.Logger,
	accounts AccountStore,
	sessions SessionStore,
	hasher PasswordHasher,
	events EventPublisher,
	m *metrics.Metrics,
	settings Settings,
) *AuthService {
	if events == nil {
		events = rabbitmq.NopPublisher{}
	}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 24 * time.Hour
	}
	if settings.StoreTimeout <= 0 {
		settings.StoreTimeout = 3 * time.Second
	}
	return &AuthService{
		log:      log,
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		events:   events,
		metrics:  m,
		settings: settings,
		newToken: token.New,
		now:      time.Now,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится и ищется.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт учётную запись и сразу открывает для неё сессию.
//
// Уникальность email проверяет хранилище в момент вставки, отдельного
// чтения перед вставкой нет.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (*models.Session, *models.Account, error) {
	const op = "services.auth.Register"
	log := s.log.With(slog.String("op", op))

	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if err := validateRegistration(name, email, rawPassword); err != nil {
		s.metrics.AuthOperation("register", metrics.ResultInvalid)
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	started := s.now()
	hashed, err := s.hasher.Hash(ctx, rawPassword)
	s.metrics.ObserveHash("hash", started)
	if err != nil {
		s.metrics.AuthOperation("register", metrics.ResultError)
		log.Error("failed to hash password", sl.Err(err))
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.settings.StoreTimeout)
	account, err := s.accounts.Insert(storeCtx, models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	})
	cancel()
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.metrics.AuthOperation("register", metrics.ResultDuplicate)
			return nil, nil, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		}
		s.metrics.AuthOperation("register", metrics.ResultError)
		log.Error("failed to insert account", sl.Err(err))
		return nil, nil, fmt.Errorf("%s: %w", op, ErrPersistence)
	}

	session, err := s.openSession(ctx, account.ID)
	if err != nil {
		s.metrics.AuthOperation("register", metrics.ResultError)
		log.Error("account created but session was not stored",
			sl.AccountID(account.ID), sl.Err(err))
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.events.PublishAccountRegistered(ctx, rabbitmq.AccountRegistered{
		AccountID:    account.ID,
		Name:         account.Name,
		Email:        account.Email,
		RegisteredAt: account.CreatedAt,
	}); err != nil {
		log.Warn("failed to publish account registered event",
			sl.AccountID(account.ID), sl.Err(err))
	}

	s.metrics.AuthOperation("register", metrics.ResultSuccess)
	log.Info("account registered", sl.AccountID(account.ID))
	return session, account, nil
}

// Login проверяет email и пароль и открывает новую сессию.
// Ранее выданные сессии учётной записи остаются действительными.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.Session, error) {
	const op = "services.auth.Login"
	log := s.log.With(slog.String("op", op))

	email = NormalizeEmail(email)

	storeCtx, cancel := context.WithTimeout(ctx, s.settings.StoreTimeout)
	account, lookupErr := s.accounts.FindByEmail(storeCtx, email)
	cancel()

	targetHash := ""
	switch {
	case lookupErr == nil:
		targetHash = account.PasswordHash
	case errors.Is(lookupErr, storage.ErrNotFound):
		targetHash = s.getDummyHash(ctx)
	default:
		s.metrics.AuthOperation("login", metrics.ResultError)
		log.Error("failed to find account", sl.Err(lookupErr))
		return nil, fmt.Errorf("%s: %w", op, ErrPersistence)
	}

	started := s.now()
	valid, verifyErr := s.hasher.Verify(ctx, rawPassword, targetHash)
	s.metrics.ObserveHash("verify", started)
	if verifyErr != nil {
		if ctx.Err() != nil {
			s.metrics.AuthOperation("login", metrics.ResultError)
			return nil, fmt.Errorf("%s: %w", op, verifyErr)
		}
		// повреждённый хэш для клиента неотличим от неверного пароля
		if lookupErr == nil {
			log.Error("stored password hash is unusable",
				sl.AccountID(account.ID), sl.Err(verifyErr))
		}
		s.metrics.AuthOperation("login", metrics.ResultInvalidCredentials)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if lookupErr != nil || !valid {
		s.metrics.AuthOperation("login", metrics.ResultInvalidCredentials)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	session, err := s.openSession(ctx, account.ID)
	if err != nil {
		s.metrics.AuthOperation("login", metrics.ResultError)
		log.Error("failed to store session", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.AuthOperation("login", metrics.ResultSuccess)
	log.Info("login success", sl.AccountID(account.ID))
	return session, nil
}

// Logout удаляет сессию. Повторный выход и пустой токен ошибкой не считаются.
func (s *AuthService) Logout(ctx context.Context, tok string) error {
	const op = "services.auth.Logout"
	if tok == "" {
		return nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()
	if err := s.sessions.DeleteSession(storeCtx, tok); err != nil {
		s.metrics.AuthOperation("logout", metrics.ResultError)
		s.log.Error("failed to delete session", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, ErrPersistence)
	}
	s.metrics.AuthOperation("logout", metrics.ResultSuccess)
	return nil
}

// ResolveIdentity возвращает учётную запись, к которой привязан токен.
//
// Неизвестный токен и сессия удалённой учётной записи дают (nil, nil):
// вызывающий считает клиента анонимом. Делает не больше одного обращения
// к хранилищу сессий и одного к хранилищу учётных записей.
func (s *AuthService) ResolveIdentity(ctx context.Context, tok string) (*models.Account, error) {
	const op = "services.auth.ResolveIdentity"
	if tok == "" {
		return nil, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.settings.StoreTimeout)
	session, found, err := s.sessions.GetSession(storeCtx, tok)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	if !found {
		return nil, nil
	}

	storeCtx, cancel = context.WithTimeout(ctx, s.settings.StoreTimeout)
	account, err := s.accounts.FindByID(storeCtx, session.AccountID)
	cancel()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	s.metrics.IdentityResolved()
	return account, nil
}

// UpdateName меняет отображаемое имя учётной записи.
func (s *AuthService) UpdateName(ctx context.Context, accountID, name string) (*models.Account, error) {
	const op = "services.auth.UpdateName"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w: name is required", op, ErrValidation)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()
	account, err := s.accounts.UpdateName(storeCtx, accountID, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	if err != nil {
		s.log.Error("failed to update account name", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrPersistence)
	}
	return account, nil
}

// openSession создаёт токен и сохраняет сессию для accountID.
func (s *AuthService) openSession(ctx context.Context, accountID string) (*models.Session, error) {
	tok, err := s.newToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	session := models.Session{
		Token:     tok,
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.settings.SessionTTL),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()
	if err := s.sessions.PutSession(storeCtx, tok, session, s.settings.SessionTTL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return &session, nil
}

func (s *AuthService) getDummyHash(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		seed, err := token.New()
		if err != nil {
			seed = "dummy-password"
		}
		hashed, err := s.hasher.Hash(context.WithoutCancel(ctx), seed)
		if err != nil {
			s.log.Warn("failed to prepare dummy hash", sl.Err(err))
			return
		}
		s.dummyHash = hashed
	})
	return s.dummyHash
}

func validateRegistration(name, email, rawPassword string) error {
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if rawPassword == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required fields missing: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if len(rawPassword) > password.MaxLength {
		return fmt.Errorf("%w: password is too long", ErrValidation)
	}
	return nil
}
