package mycrm

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/mycrm/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/mycrm/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/mycrm/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/mycrm/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/mycrm/internal/http/handlers/auth/rename"
	"github.com/magabrotheeeer/mycrm/internal/http/handlers/health"
	"github.com/magabrotheeeer/mycrm/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mycrm/internal/http/sessioncookie"
	services "github.com/magabrotheeeer/mycrm/internal/services/auth"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	authService *services.AuthService,
	cookies *sessioncookie.Manager,
	limiter *rate.Limiter,
	registry *prometheus.Registry,
	checkers map[string]health.Checker,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.SessionMiddleware(logger, cookies, authService))

		// Открытые конечные точки с ограничением частоты
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Post("/register", register.New(logger, authService, cookies).ServeHTTP)
			r.Post("/login", login.New(logger, authService, cookies).ServeHTTP)
		})
		r.Post("/logout", logout.New(logger, authService, cookies).ServeHTTP)

		// Группа с обязательной сессией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(logger))
			r.Get("/me", me.New(logger).ServeHTTP)
			r.Patch("/me", rename.New(logger, authService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, checkers).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
