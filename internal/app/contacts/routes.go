package contacts

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/auth/confirm"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/auth/requestemail"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/contacts/birthdays"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/contacts/create"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/contacts/list"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/contacts/read"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/contacts/remove"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/contacts/search"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/contacts/update"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/health"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/users/avatar"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/users/me"
	"github.com/magabrotheeeer/contacts-api/internal/http/handlers/welcome"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/lib/ratelimit"
	"github.com/magabrotheeeer/contacts-api/internal/metrics"
	authservice "github.com/magabrotheeeer/contacts-api/internal/services/auth"
	avatarservice "github.com/magabrotheeeer/contacts-api/internal/services/avatar"
	contactservice "github.com/magabrotheeeer/contacts-api/internal/services/contacts"
)

// Deps зависимости, из которых собираются обработчики.
type Deps struct {
	Logger        *slog.Logger
	Auth          *authservice.AuthService
	Contacts      *contactservice.ContactService
	Avatars       *avatarservice.AvatarService
	Health        health.Checker
	Limiter       ratelimit.Limiter
	Metrics       *metrics.Metrics
	MetricsView   http.Handler
	RateLimit     int
	RateWindow    time.Duration
	MaxAvatarSize int64
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Observe(d.Metrics),
	)

	limited := func(name string) func(http.Handler) http.Handler {
		rule := ratelimit.Rule{Name: name, Limit: d.RateLimit, Window: d.RateWindow}
		return middlewarectx.RateLimitMiddleware(d.Limiter, rule, d.Metrics, logger)
	}

	r.Get("/", welcome.New().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthchecker", health.New(logger, d.Health).ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", signup.New(logger, d.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, d.Auth).ServeHTTP)
			r.Get("/refresh_token", refresh.New(logger, d.Auth).ServeHTTP)
			r.Get("/confirmed_email/{token}", confirm.New(logger, d.Auth).ServeHTTP)
			r.Post("/request_email", requestemail.New(logger, d.Auth).ServeHTTP)

			r.With(middlewarectx.JWTMiddleware(d.Auth, logger)).
				Post("/logout", logout.New(logger, d.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))

			r.Get("/users/me", me.New(logger).ServeHTTP)
			r.Patch("/users/avatar", avatar.New(logger, d.Avatars, d.MaxAvatarSize).ServeHTTP)

			r.Route("/contacts", func(r chi.Router) {
				r.With(limited("contacts_all")).Get("/all", list.New(logger, d.Contacts).ServeHTTP)
				r.With(limited("contacts_create")).Post("/create", create.New(logger, d.Contacts).ServeHTTP)
				r.With(limited("contacts_update")).Put("/update/{contact_id}", update.New(logger, d.Contacts).ServeHTTP)
				r.With(limited("contacts_delete")).Delete("/delete/{contact_id}", remove.New(logger, d.Contacts).ServeHTTP)
				r.With(limited("contacts_search")).Get("/search/{fragment}", search.New(logger, d.Contacts).ServeHTTP)
				r.With(limited("contacts_bday")).Get("/bday", birthdays.New(logger, d.Contacts).ServeHTTP)
				r.With(limited("contacts_read")).Get("/{contact_id}", read.New(logger, d.Contacts).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", d.MetricsView)
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
