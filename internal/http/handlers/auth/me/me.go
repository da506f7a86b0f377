// Package me реализует HTTP-обработчик профиля текущей учётной записи.
package me

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mycrm/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mycrm/internal/http/response"
	"github.com/magabrotheeeer/mycrm/internal/models"
)

// Profile — публичное представление учётной записи.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProfile строит Profile без хэша пароля.
func NewProfile(account *models.Account) Profile {
	return Profile{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
}

// Handler отдаёт профиль учётной записи из контекста запроса.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущая учётная запись
// @Tags Account
// @Produce  json
// @Success 200 {object} response.Response{data=Profile}
// @Failure 401 {object} response.ErrorResponse "Нет действующей сессии"
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	account := middlewarectx.AccountFromContext(r.Context())
	if account == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}
	render.JSON(w, r, response.OKWithData(NewProfile(account)))
}
