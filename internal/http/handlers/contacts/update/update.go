// Package update реализует HTTP-обработчик полной замены данных контакта.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Handler обрабатывает PUT /contacts/update/{contact_id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает обновление контакта. Возвращает обновлённую запись.
type Service interface {
	Update(ctx context.Context, userID string, id int64, p models.ContactPatch) (*models.Contact, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить контакт
// @Tags Contacts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param contact_id path int true "ID контакта"
// @Param request body models.ContactInput true "Новые данные контакта"
// @Success 200 {object} response.Response "Обновленный контакт"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Контакт не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /contacts/update/{contact_id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contacts.update"
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
		log.Info("invalid contact id", slog.String("contact_id", chi.URLParam(r, "contact_id")))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ErrorWithCode("contact_id must be a positive integer", apperr.CodeValidation))
		return
	}

	var req models.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ErrorWithCode("field Birthday must be a date in format 2006-01-02", apperr.CodeValidation))
		return
	}

	contact, err := h.service.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("contact not found", slog.Int64("id", id))
		} else {
			log.Error("failed to update contact", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	log.Info("contact updated", slog.Int64("id", id))
	render.JSON(w, r, response.StatusOKWithData(contact))
}
