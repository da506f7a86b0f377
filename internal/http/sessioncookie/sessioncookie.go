// Package sessioncookie читает и записывает сессионную cookie.
//
// Значение cookie — подписанный конверт с токеном сессии, см. пакет jwt.
package sessioncookie

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/mycrm/internal/lib/jwt"
	"github.com/magabrotheeeer/mycrm/internal/models"
	services "github.com/magabrotheeeer/mycrm/internal/services/auth"
)

// DefaultName — имя cookie, если в конфиге пусто.
const DefaultName = "mycrm.sid"

// ErrNoCookie возвращается Read, если cookie в запросе нет.
var ErrNoCookie = errors.New("session cookie not present")

// Manager управляет сессионной cookie.
type Manager struct {
	maker  jwt.Maker
	name   string
	secure bool
	now    func() time.Time
}

// New создаёт Manager. secure включает флаг Secure для HTTPS-развёртываний.
func New(maker jwt.Maker, name string, secure bool) *Manager {
	if name == "" {
		name = DefaultName
	}
	return &Manager{
		maker:  maker,
		name:   name,
		secure: secure,
		now:    time.Now,
	}
}

// Name возвращает имя cookie.
func (m *Manager) Name() string {
	return m.name
}

// Set подписывает токен сессии и записывает cookie в ответ.
// Срок жизни cookie совпадает со сроком жизни сессии.
func (m *Manager) Set(w http.ResponseWriter, session *models.Session) error {
	const op = "sessioncookie.Set"
	value, err := m.maker.GenerateToken(session.Token, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	maxAge := int(session.ExpiresAt.Sub(m.now()).Seconds())
	if maxAge <= 0 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		Expires:  session.ExpiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear удаляет cookie на стороне клиента.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read возвращает токен сессии из cookie запроса.
// Отсутствие cookie — ErrNoCookie, поддельная или просроченная — services.ErrSession.
func (m *Manager) Read(r *http.Request) (string, error) {
	const op = "sessioncookie.Read"
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return "", ErrNoCookie
	}
	claims, err := m.maker.ParseToken(c.Value)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, services.ErrSession, err)
	}
	return claims.SessionToken(), nil
}
