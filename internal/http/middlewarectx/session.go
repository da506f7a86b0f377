// Package middlewarectx содержит HTTP middleware для разрешения сессии
// и ограничения частоты запросов.
//
// SessionMiddleware читает сессионную cookie, разрешает её в учётную запись
// и кладёт учётную запись в контекст запроса. Любая ошибка на этом пути
// означает анонимный запрос. RequireAuth отвечает 401, если учётной записи
// в контексте нет.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mycrm/internal/http/response"
	"github.com/magabrotheeeer/mycrm/internal/http/sessioncookie"
	"github.com/magabrotheeeer/mycrm/internal/lib/sl"
	"github.com/magabrotheeeer/mycrm/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// AccountKey — ключ для учётной записи в контексте
	AccountKey Key = "account"
	// SessionTokenKey — ключ для токена сессии в контексте
	SessionTokenKey Key = "session_token"
)

// IdentityResolver описывает разрешение токена сессии в учётную запись.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*models.Account, error)
}

// CookieReader достаёт токен сессии из запроса.
type CookieReader interface {
	Read(r *http.Request) (string, error)
}

// SessionMiddleware возвращает middleware, который разрешает сессионную cookie.
func SessionMiddleware(log *slog.Logger, cookies CookieReader, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tok, err := cookies.Read(r)
			if err != nil {
				if !errors.Is(err, sessioncookie.ErrNoCookie) {
					log.Warn("rejected session cookie", sl.Err(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), SessionTokenKey, tok)
			account, err := resolver.ResolveIdentity(ctx, tok)
			if err != nil {
				log.Error("failed to resolve session, continuing as anonymous", sl.Err(err))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if account != nil {
				ctx = context.WithValue(ctx, AccountKey, account)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth пропускает только запросы с разрешённой учётной записью.
func RequireAuth(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AccountFromContext(r.Context()) == nil {
				log.Info("unauthenticated request",
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccountFromContext возвращает учётную запись текущего запроса или nil.
func AccountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(AccountKey).(*models.Account)
	return account
}

// SessionTokenFromContext возвращает токен сессии из cookie, если он прошёл проверку подписи.
func SessionTokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(SessionTokenKey).(string)
	return tok
}
