package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/ratelimit"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/metrics"
)

// RateLimitMiddleware ограничивает маршрут правилом rule. Ключ это пользователь
// из контекста, а для анонимных запросов IP клиента. Ошибка хранилища лимитов
// не блокирует запрос.
func RateLimitMiddleware(limiter ratelimit.Limiter, rule ratelimit.Rule, m *metrics.Metrics, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientIP(r)
			if user, ok := UserFromContext(r.Context()); ok {
				key = "user:" + user.ID
			}

			d, err := limiter.Allow(r.Context(), key, rule)
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request",
					slog.String("route", rule.Name),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				if m != nil {
					m.RateLimitedTotal.WithLabelValues(rule.Name).Inc()
				}
				log.Info("too many requests", slog.String("route", rule.Name), slog.String("key", key))
				w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.ErrorWithCode("too many requests", apperr.CodeTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
