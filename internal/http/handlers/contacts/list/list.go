// Package list возвращает все контакты текущего пользователя.
package list

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

// Handler обрабатывает GET /contacts/all.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает получение списка контактов.
type Service interface {
	List(ctx context.Context, userID string) ([]models.Contact, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Все контакты
// @Tags Contacts
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /contacts/all [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contacts.list"

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

	contacts, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to list contacts", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Debug("contacts listed", slog.Int("count", len(contacts)))
	render.JSON(w, r, response.StatusOKWithData(contacts))
}
