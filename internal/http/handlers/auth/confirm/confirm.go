// Package confirm реализует HTTP-обработчик подтверждения почты по ссылке из письма.
package confirm

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
)

// Service описывает подтверждение почты.
type Service interface {
	ConfirmEmail(ctx context.Context, token string) error
}

// Handler обрабатывает GET /auth/confirmed_email/{token}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтверждение почты
// @Tags Auth
// @Produce  json
// @Param token path string true "Токен из письма"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка проверки"
// @Failure 401 {object} response.ErrorResponse "Токен недействителен"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /auth/confirmed_email/{token} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.confirm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := chi.URLParam(r, "token")
	if err := h.service.ConfirmEmail(r.Context(), token); err != nil {
		log.Info("email confirmation failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Email confirmed",
	}))
}
