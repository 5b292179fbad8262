// Package refresh реализует HTTP-обработчик обмена refresh-токена на новую пару.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Service описывает ротацию refresh-токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// Handler обрабатывает GET /auth/refresh_token.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновление токенов
// @Description Принимает refresh-токен в заголовке Authorization и выдает новую пару.
// @Description Повторное предъявление уже замененного токена завершает сессию.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.TokenPair
// @Failure 401 {object} response.ErrorResponse "Токен недействителен"
// @Router /auth/refresh_token [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, ok := middlewarectx.BearerToken(r)
	if !ok {
		log.Info("missing refresh token")
		response.RenderError(w, r, apperr.ErrCredentialsInvalid)
		return
	}

	pair, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		if apperr.IsUnauthorized(err) {
			log.Info("refresh rejected", sl.Err(err))
		} else {
			log.Error("refresh failed", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, pair)
}
