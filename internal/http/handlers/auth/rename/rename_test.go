package rename

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mycrm/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mycrm/internal/models"
	services "github.com/magabrotheeeer/mycrm/internal/services/auth"
)

// Мок сервиса с методом UpdateName
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) UpdateName(ctx context.Context, accountID, name string) (*models.Account, error) {
	args := m.Called(ctx, accountID, name)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRenameHandler_ServeHTTP(t *testing.T) {
	current := &models.Account{ID: "acc-1", Name: "Ada", Email: "ada@x.com"}

	tests := []struct {
		name           string
		account        *models.Account
		body           string
		callService    bool
		serviceName    string
		mockAccount    *models.Account
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "success",
			account:        current,
			body:           `{"name":"Ada Lovelace"}`,
			callService:    true,
			serviceName:    "Ada Lovelace",
			mockAccount:    &models.Account{ID: "acc-1", Name: "Ada Lovelace", Email: "ada@x.com"},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "anonymous",
			body:           `{"name":"Ada"}`,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "authentication required",
		},
		{
			name:           "invalid json",
			account:        current,
			body:           `{`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing name",
			account:        current,
			body:           `{}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Name is a required field",
		},
		{
			name:           "blank name rejected by service",
			account:        current,
			body:           `{"name":"   "}`,
			callService:    true,
			serviceName:    "   ",
			mockErr:        services.ErrValidation,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Name is a required field",
		},
		{
			name:           "account deleted",
			account:        current,
			body:           `{"name":"Ada"}`,
			callService:    true,
			serviceName:    "Ada",
			mockErr:        services.ErrAccountNotFound,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "authentication required",
		},
		{
			name:           "store failure",
			account:        current,
			body:           `{"name":"Ada"}`,
			callService:    true,
			serviceName:    "Ada",
			mockErr:        errors.Join(services.ErrPersistence, errors.New("db down")),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to update profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)
			if tt.callService {
				serviceMock.On("UpdateName", mock.Anything, "acc-1", tt.serviceName).
					Return(tt.mockAccount, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPatch, "/me", bytes.NewBufferString(tt.body))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.account != nil {
				ctx = context.WithValue(ctx, middlewarectx.AccountKey, tt.account)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req.WithContext(ctx))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data := got["data"].(map[string]any)
				assert.Equal(t, "Ada Lovelace", data["name"])
			}
			serviceMock.AssertExpectations(t)
		})
	}
}
