// Package logout реализует HTTP-обработчик выхода.
//
// Выход всегда завершается успешно для клиента: cookie очищается, даже если
// её не было или хранилище сессий недоступно.
package logout

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mycrm/internal/http/response"
	"github.com/magabrotheeeer/mycrm/internal/http/sessioncookie"
	"github.com/magabrotheeeer/mycrm/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы на выход.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies CookieManager
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cookies CookieManager) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cookies: cookies,
	}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Завершает текущую сессию и очищает cookie. Повторный выход не является ошибкой.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия завершена"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tok, err := h.cookies.Read(r)
	switch {
	case err == nil:
		if err := h.service.Logout(r.Context(), tok); err != nil {
			log.Error("failed to delete session", sl.Err(err))
		}
	case !errors.Is(err, sessioncookie.ErrNoCookie):
		log.Info("ignoring invalid session cookie", sl.Err(err))
	}

	h.cookies.Clear(w)
	log.Info("logged out")
	render.JSON(w, r, response.OK())
}
