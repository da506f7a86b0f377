// Package rename реализует HTTP-обработчик смены имени текущей учётной записи.
package rename

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mycrm/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/mycrm/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mycrm/internal/http/response"
	"github.com/magabrotheeeer/mycrm/internal/lib/sl"
	services "github.com/magabrotheeeer/mycrm/internal/services/auth"
)

// Request — новое имя.
type Request struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Handler обрабатывает смену имени.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена имени
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body Request true "Новое имя"
// @Success 200 {object} response.Response{data=me.Profile}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет действующей сессии"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /me [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.rename"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	account := middlewarectx.AccountFromContext(r.Context())
	if account == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated, err := h.service.UpdateName(r.Context(), account.ID, req.Name)
	switch {
	case errors.Is(err, services.ErrValidation):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field Name is a required field"))
		return
	case errors.Is(err, services.ErrAccountNotFound):
		log.Info("account disappeared", sl.AccountID(account.ID))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	case err != nil:
		log.Error("failed to update name", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update profile"))
		return
	}

	log.Info("name updated", sl.AccountID(updated.ID))
	render.JSON(w, r, response.OKWithData(me.NewProfile(updated)))
}
