// Package search реализует поиск по подстроке в имени, фамилии или email контактов.
package search

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Допустимая длина фрагмента в символах.
const (
	MinFragment = 2
	MaxFragment = 20
)

// Handler обрабатывает GET /contacts/search/{fragment}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает поиск. Пустой результат возвращается как apperr.ErrNotFound.
type Service interface {
	Search(ctx context.Context, userID, fragment string) ([]models.Contact, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск контактов
// @Description Регистронезависимый поиск подстроки в имени, фамилии или email.
// @Tags Contacts
// @Produce  json
// @Security BearerAuth
// @Param fragment path string true "Фрагмент, от 2 до 20 символов"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Ничего не найдено"
// @Failure 422 {object} response.ErrorResponse "Недопустимая длина фрагмента"
// @Router /contacts/search/{fragment} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contacts.search"

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

	fragment := chi.URLParam(r, "fragment")
	if n := utf8.RuneCountInString(fragment); n < MinFragment || n > MaxFragment {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ErrorWithCode("fragment must be 2 to 20 characters long", apperr.CodeValidation))
		return
	}

	contacts, err := h.service.Search(r.Context(), user.ID, fragment)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Error("search failed", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(contacts))
}
