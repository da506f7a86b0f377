package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func ok(context.Context) error { return nil }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		checkers   map[string]Checker
		wantCode   int
		wantStatus string
		wantDeps   map[string]any
	}{
		{
			name:       "no dependencies",
			checkers:   nil,
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantDeps:   map[string]any{},
		},
		{
			name: "all healthy",
			checkers: map[string]Checker{
				"postgres": CheckerFunc(ok),
				"redis":    CheckerFunc(ok),
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantDeps:   map[string]any{"postgres": "ok", "redis": "ok"},
		},
		{
			name: "redis down",
			checkers: map[string]Checker{
				"postgres": CheckerFunc(ok),
				"redis": CheckerFunc(func(context.Context) error {
					return errors.New("connection refused")
				}),
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
			wantDeps:   map[string]any{"postgres": "ok", "redis": "unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(newNoopLogger(), tt.checkers).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			data := got["data"].(map[string]any)
			assert.Equal(t, tt.wantStatus, data["status"])
			assert.Equal(t, tt.wantDeps, data["dependencies"])
		})
	}
}
