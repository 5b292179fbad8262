// Package create реализует HTTP-обработчик для создания нового контакта пользователя.
//
// Handler принимает JSON с данными контакта, валидирует их, берёт пользователя из контекста,
// вызывает сервис и возвращает созданную запись со статусом 201.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Handler управляет HTTP-запросами на создание контактов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики контактов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания контакта.
type Service interface {
	Create(ctx context.Context, userID string, p models.ContactPatch) (*models.Contact, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать контакт
// @Description Создает новый контакт текущего пользователя.
// @Tags Contacts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ContactInput true "Данные контакта"
// @Success 201 {object} response.Response "Созданный контакт"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /contacts/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contacts.create"
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

	var req models.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		log.Info("invalid birthday", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ErrorWithCode("field Birthday must be a date in format 2006-01-02", apperr.CodeValidation))
		return
	}

	contact, err := h.service.Create(r.Context(), user.ID, patch)
	if err != nil {
		log.Error("failed to create contact", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("contact created", slog.Int64("id", contact.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(contact))
}
