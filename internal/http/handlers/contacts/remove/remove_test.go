package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, userID string, id int64) (*models.Contact, error) {
	args := m.Called(ctx, userID, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRemoveHandler(t *testing.T) {
	user := &models.User{ID: "u-1"}
	router := func(svc Service) http.Handler {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(middlewarectx.WithUser(r.Context(), user)))
			})
		})
		r.Delete("/api/contacts/delete/{contact_id}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP)
		return r
	}

	t.Run("removed", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Remove", mock.Anything, "u-1", int64(9)).Return(&models.Contact{ID: 9}, nil).Once()
		w := httptest.NewRecorder()
		router(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/contacts/delete/9", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Remove", mock.Anything, "u-1", int64(10)).Return(nil, apperr.ErrNotFound).Once()
		w := httptest.NewRecorder()
		router(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/contacts/delete/10", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad id", func(t *testing.T) {
		svc := new(MockService)
		w := httptest.NewRecorder()
		router(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/contacts/delete/x", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
