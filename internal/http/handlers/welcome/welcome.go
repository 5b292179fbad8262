// Package welcome отвечает на корневой запрос.
package welcome

import (
	"net/http"

	"github.com/go-chi/render"
)

// Handler обрабатывает GET /.
type Handler struct{}

// New создает новый Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Приветствие
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"message": "Hello"})
}
