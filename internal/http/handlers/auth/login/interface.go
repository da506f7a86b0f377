package login

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/mycrm/internal/models"
)

// Service описывает вход по email и паролю.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
}

// CookieWriter записывает сессионную cookie в ответ.
type CookieWriter interface {
	Set(w http.ResponseWriter, session *models.Session) error
}
