// Package birthdays возвращает контакты, у которых день рождения в ближайшие семь дней.
package birthdays

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Handler обрабатывает GET /contacts/bday.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает выборку ближайших дней рождения.
type Service interface {
	Birthdays(ctx context.Context, userID string, now time.Time) ([]models.Contact, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, now: time.Now}
}

// ServeHTTP godoc
// @Summary Ближайшие дни рождения
// @Tags Contacts
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /contacts/bday [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contacts.birthdays"

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

	contacts, err := h.service.Birthdays(r.Context(), user.ID, h.now())
	if err != nil {
		log.Error("failed to select birthdays", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(contacts))
}
