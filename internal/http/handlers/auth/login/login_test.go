package login

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
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mycrm/internal/models"
	services "github.com/magabrotheeeer/mycrm/internal/services/auth"
)

// Мок сервиса с методом Login
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*models.Session, error) {
	args := m.Called(ctx, email, password)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

// Мок для записи cookie
type CookieWriterMock struct {
	mock.Mock
}

func (m *CookieWriterMock) Set(w http.ResponseWriter, session *models.Session) error {
	args := m.Called(w, session)
	if args.Error(0) == nil {
		http.SetCookie(w, &http.Cookie{Name: "mycrm.sid", Value: "signed-" + session.Token})
	}
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	session := &models.Session{
		Token:     "tok",
		AccountID: "acc-1",
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	validBody := Request{Email: "ada@x.com", Password: "s3cret!"}

	tests := []struct {
		name           string
		requestBody    any
		mockSession    *models.Session
		mockErr        error
		callService    bool
		cookieErr      error
		callCookie     bool
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "valid login",
			requestBody:    validBody,
			mockSession:    session,
			callService:    true,
			callCookie:     true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Email: "ada@x.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Password is a required field",
		},
		{
			name:           "invalid credentials",
			requestBody:    validBody,
			mockErr:        services.ErrInvalidCredentials,
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "invalid email or password",
		},
		{
			name:           "persistence error",
			requestBody:    validBody,
			mockErr:        services.ErrPersistence,
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "failed to log in",
		},
		{
			name:           "cookie error",
			requestBody:    validBody,
			mockSession:    session,
			callService:    true,
			cookieErr:      errors.New("sign error"),
			callCookie:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "failed to log in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			cookieMock := new(CookieWriterMock)
			handler := New(newNoopLogger(), serviceMock, cookieMock)

			if tt.callService {
				body := tt.requestBody.(Request)
				serviceMock.On("Login", mock.Anything, body.Email, body.Password).
					Return(tt.mockSession, tt.mockErr).Once()
			}
			if tt.callCookie {
				cookieMock.On("Set", mock.Anything, tt.mockSession).Return(tt.cookieErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
				assert.Empty(t, rec.Header().Get("Set-Cookie"))
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "acc-1", data["account_id"])
				assert.Equal(t, "2030-01-01T00:00:00Z", data["expires_at"])
				assert.NotContains(t, data, "token")
				assert.Contains(t, rec.Header().Get("Set-Cookie"), "mycrm.sid=signed-tok")
			}

			serviceMock.AssertExpectations(t)
			cookieMock.AssertExpectations(t)
		})
	}
}
