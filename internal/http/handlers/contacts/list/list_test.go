package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID string) ([]models.Contact, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]models.Contact)
	return res, args.Error(1)
}

func TestListHandler(t *testing.T) {
	user := &models.User{ID: "u-1"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	serve := func(svc Service) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/contacts/all", nil)
		req = req.WithContext(middlewarectx.WithUser(req.Context(), user))
		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, req)
		return w
	}

	t.Run("lists contacts", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, "u-1").Return([]models.Contact{{ID: 1}, {ID: 2}}, nil).Once()

		w := serve(svc)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []models.Contact `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 2)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, "u-1").Return([]models.Contact{}, nil).Once()

		w := serve(svc)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, "u-1").Return(nil, errors.New("db down")).Once()

		w := serve(svc)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
