// Package read реализует HTTP-обработчик для получения контакта по ID.
//
// Чужой контакт неотличим от отсутствующего: в обоих случаях 404.
package read

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

// Handler обрабатывает запросы на получение контакта по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики контактов
}

// Service описывает интерфейс бизнес-логики чтения контакта.
type Service interface {
	Get(ctx context.Context, userID string, id int64) (*models.Contact, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить контакт
// @Tags Contacts
// @Produce  json
// @Security BearerAuth
// @Param contact_id path int true "ID контакта"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Контакт не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректный ID"
// @Router /contacts/{contact_id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contacts.read"

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
		log.Info("failed to decode id from url", slog.String("contact_id", chi.URLParam(r, "contact_id")))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ErrorWithCode("contact_id must be a positive integer", apperr.CodeValidation))
		return
	}

	res, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("contact not found", slog.Int64("id", id))
		} else {
			log.Error("failed to read contact", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
