// Package login реализует HTTP-обработчик входа.
//
// Принимает JSON {"email","password"} или форму OAuth2 password flow
// (username содержит email) и возвращает пару токенов.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Request учётные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service описывает вход пользователя.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
}

// Handler обрабатывает POST /auth/login.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
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
// @Summary Вход
// @Description Проверяет учетные данные и возвращает access и refresh токены.
// @Tags Auth
// @Accept  json
// @Accept  x-www-form-urlencoded
// @Produce  json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} models.TokenPair
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Неверный email, пароль или почта не подтверждена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, err := decode(r)
	if err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperr.IsUnauthorized(err) {
			log.Info("login rejected", sl.Err(err))
		} else {
			log.Error("login failed", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	log.Info("user logged in")
	render.JSON(w, r, pair)
}

func decode(r *http.Request) (Request, error) {
	var req Request
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	req.Email = strings.TrimSpace(req.Email)
	return req, nil
}
