// Package logout реализует HTTP-обработчик выхода: сохранённый refresh-токен
// стирается, после чего access-токены пользователя перестают приниматься.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Service описывает завершение сессии.
type Service interface {
	Logout(ctx context.Context, user *models.User) error
}

// Handler обрабатывает POST /auth/logout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Auth
// @Security BearerAuth
// @Success 204 "Сессия завершена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.RenderError(w, r, apperr.ErrCredentialsInvalid)
		return
	}

	if err := h.service.Logout(r.Context(), user); err != nil {
		log.Error("logout failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("user logged out", slog.String("user_id", user.ID))
	w.WriteHeader(http.StatusNoContent)
}
