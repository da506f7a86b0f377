package logout

import (
	"context"
	"net/http"
)

// Service описывает завершение сессии.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// CookieManager читает и удаляет сессионную cookie.
type CookieManager interface {
	Read(r *http.Request) (string, error)
	Clear(w http.ResponseWriter)
}
