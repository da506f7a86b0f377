// Package mycrm собирает HTTP-приложение CRM из конфига.
package mycrm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/mycrm/internal/cache"
	"github.com/magabrotheeeer/mycrm/internal/config"
	"github.com/magabrotheeeer/mycrm/internal/http/handlers/health"
	"github.com/magabrotheeeer/mycrm/internal/http/sessioncookie"
	"github.com/magabrotheeeer/mycrm/internal/lib/jwt"
	"github.com/magabrotheeeer/mycrm/internal/lib/password"
	"github.com/magabrotheeeer/mycrm/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mycrm/internal/lib/sl"
	"github.com/magabrotheeeer/mycrm/internal/metrics"
	"github.com/magabrotheeeer/mycrm/internal/migrations"
	services "github.com/magabrotheeeer/mycrm/internal/services/auth"
	"github.com/magabrotheeeer/mycrm/internal/storage/memory"
	"github.com/magabrotheeeer/mycrm/internal/storage/repository"
)

const cookieIssuer = "mycrm"

// App — HTTP-сервер со всеми зависимостями.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []io.Closer
}

// New подключает хранилища, брокер и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.mycrm.New"
	app := &App{logger: logger}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkers := make(map[string]health.Checker)

	var accounts services.AccountStore
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		db, err := repository.New(ctx, cfg.StorageConnectionString)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, db)
		if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		checkers["postgres"] = health.CheckerFunc(db.CheckDatabaseReady)
		accounts = db
	default:
		logger.Warn("accounts are kept in memory and will be lost on restart")
		accounts = memory.NewAccountStore()
	}

	sessions, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.closers = append(app.closers, sessions)
	checkers["redis"] = sessions

	var events services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.Retries, cfg.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, conn)
		ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetAccountQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = rabbitmq.NewPublisher(ch, cfg.Exchange)
	} else {
		logger.Info("rabbitmq url is empty, account events are not published")
	}

	authService := services.NewAuthService(
		logger,
		accounts,
		sessions,
		password.NewHasher(cfg.Cost, cfg.MaxConcurrent),
		events,
		metrics.New(registry),
		services.Settings{
			SessionTTL:   cfg.SessionTTL,
			StoreTimeout: cfg.StoreTimeout,
		},
	)

	cookies := sessioncookie.New(jwt.NewJWTMaker(cfg.SessionSecret, cookieIssuer), cfg.CookieName, cfg.SecureCookie)
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, cookies, limiter, registry, checkers)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает ресурсы в обратном порядке открытия.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
