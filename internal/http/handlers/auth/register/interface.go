package register

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/mycrm/internal/models"
)

// Service описывает регистрацию учётной записи.
type Service interface {
	Register(ctx context.Context, name, email, password string) (*models.Session, *models.Account, error)
}

// CookieWriter записывает сессионную cookie в ответ.
type CookieWriter interface {
	Set(w http.ResponseWriter, session *models.Session) error
}
