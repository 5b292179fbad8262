// Package contacts собирает HTTP API: хранилище, кэш, токены, брокер почты,
// хранилище аватаров, ограничитель частоты запросов и маршруты.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/contacts-api/internal/cache"
	"github.com/magabrotheeeer/contacts-api/internal/config"
	"github.com/magabrotheeeer/contacts-api/internal/lib/jwt"
	"github.com/magabrotheeeer/contacts-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/contacts-api/internal/lib/ratelimit"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/metrics"
	"github.com/magabrotheeeer/contacts-api/internal/migrations"
	authservice "github.com/magabrotheeeer/contacts-api/internal/services/auth"
	avatarservice "github.com/magabrotheeeer/contacts-api/internal/services/avatar"
	contactservice "github.com/magabrotheeeer/contacts-api/internal/services/contacts"
	notifyservice "github.com/magabrotheeeer/contacts-api/internal/services/notify"
	"github.com/magabrotheeeer/contacts-api/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API контактов.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New поднимает зависимости и собирает роутер. При ошибке уже открытые
// ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.contacts.New"
	a := &App{logger: logger}

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect storage: %w", op, err)
	}
	a.db = db
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: failed to apply migrations: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: cache not initialized: %w", op, err)
	}
	a.cache = cacheRedis

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}
	a.conn = conn
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.MailQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}
	a.ch = ch

	tokens, err := jwt.NewMaker(cfg.JWTSecretKey, cfg.Algorithm, jwt.TTLs{
		Access:       cfg.AccessTokenTTL,
		Refresh:      cfg.RefreshTokenTTL,
		Confirmation: cfg.ConfirmTokenTTL,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	limiter, err := newLimiter(cfg.RateLimit, cacheRedis)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s3Client, err := avatarservice.NewS3Client(ctx, cfg.AvatarStorage)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: failed to init avatar storage: %w", op, err)
	}

	authService := authservice.NewAuthService(db, tokens, cacheRedis, notifyservice.NewDispatcher(ch),
		logger, cfg.UserCacheTTL, cfg.PublicBaseURL)
	contactService := contactservice.NewContactService(db)
	avatarService := avatarservice.NewAvatarService(s3Client, db, authService, cfg.AvatarStorage)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:        logger,
		Auth:          authService,
		Contacts:      contactService,
		Avatars:       avatarService,
		Health:        db,
		Limiter:       limiter,
		Metrics:       metrics.New(reg),
		MetricsView:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RateLimit:     cfg.MaxRequests,
		RateWindow:    cfg.Window,
		MaxAvatarSize: cfg.MaxAvatarSize,
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

func newLimiter(cfg config.RateLimit, c *cache.Cache) (ratelimit.Limiter, error) {
	switch cfg.Backend {
	case "redis":
		return ratelimit.NewRedisLimiter(c.Client()), nil
	case "memory":
		return ratelimit.NewMemoryLimiter(cfg.MemoryMaxKeys)
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер.
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
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
