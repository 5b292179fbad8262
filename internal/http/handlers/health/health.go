// Package health проверяет, что API может выполнять запросы к базе данных.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/storage/repository"
)

// Checker выполняет пробный запрос к базе.
type Checker interface {
	CheckConnection(ctx context.Context) error
}

// Handler обрабатывает GET /api/healthchecker.
type Handler struct {
	log     *slog.Logger
	checker Checker
}

// New создает новый Handler.
func New(log *slog.Logger, checker Checker) *Handler {
	return &Handler{
		log:     log,
		checker: checker,
	}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "База данных настроена неверно или недоступна"
// @Router /healthchecker [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.checker.CheckConnection(r.Context()); err != nil {
		code, msg := apperr.CodeDatabaseUnavailable, "Error connecting to the database"
		if errors.Is(err, repository.ErrNoRows) {
			code, msg = apperr.CodeDatabaseMisconfigured, "Database is not configured correctly"
		}
		log.Error("health check failed", slog.String("code", code), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ErrorWithCode(msg, code))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Welcome to Contacts API!",
	}))
}
