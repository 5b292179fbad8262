// Package remove реализует HTTP-обработчик удаления контакта.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Handler обрабатывает DELETE /contacts/delete/{contact_id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление контакта.
type Service interface {
	Remove(ctx context.Context, userID string, id int64) (*models.Contact, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить контакт
// @Tags Contacts
// @Security BearerAuth
// @Param contact_id path int true "ID контакта"
// @Success 204 "Контакт удален"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Контакт не найден"
// @Router /contacts/delete/{contact_id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contacts.remove"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "contact_id"), 10, 64)
	if err != nil || id < 1 {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ErrorWithCode("contact_id must be a positive integer", apperr.CodeValidation))
		return
	}

	if _, err := h.service.Remove(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("contact not found", slog.Int64("id", id))
		} else {
			log.Error("failed to remove contact", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	log.Info("contact removed", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}
