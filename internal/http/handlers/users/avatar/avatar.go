// Package avatar реализует HTTP-обработчик загрузки аватара.
//
// Файл приходит в multipart-поле file. Тип содержимого берётся из заголовка части,
// а если он не задан, определяется по первым байтам файла.
package avatar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/http/response"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

const (
	formField    = "file"
	maxMemory    = 8 << 20
	sniffLen     = 512
	formOverhead = 1 << 20
)

// Service описывает обновление аватара.
type Service interface {
	Update(ctx context.Context, user *models.User, filename, contentType string, body io.Reader, size int64) (*models.User, error)
}

// Handler обрабатывает PATCH /users/avatar.
type Handler struct {
	log     *slog.Logger
	service Service
	maxSize int64
}

// New создает новый Handler. maxSize ограничивает размер файла.
func New(log *slog.Logger, service Service, maxSize int64) *Handler {
	return &Handler{log: log, service: service, maxSize: maxSize}
}

// ServeHTTP godoc
// @Summary Обновить аватар
// @Tags Users
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param file formData file true "Изображение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Файл не является изображением или слишком велик"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /users/avatar [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.avatar"

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

	if h.maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+formOverhead)
	}
	file, header, err := r.FormFile(formField)
	if err != nil {
		log.Info("failed to read uploaded file", sl.Err(err))
		var tooLarge *http.MaxBytesError
		msg := "field file is required"
		if errors.As(err, &tooLarge) {
			msg = "file too large"
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorWithCode(msg, apperr.CodeVerificationError))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	contentType, err := detectContentType(file, header)
	if err != nil {
		log.Error("failed to read uploaded file", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), user, header.Filename, contentType, file, header.Size)
	if err != nil {
		if errors.Is(err, apperr.ErrVerificationError) {
			log.Info("avatar rejected", sl.Err(err))
		} else {
			log.Error("failed to update avatar", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	log.Info("avatar updated", slog.String("user_id", updated.ID))
	render.JSON(w, r, response.StatusOKWithData(updated))
}

func detectContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct, nil
	}
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
