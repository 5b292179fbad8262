package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	pair, _ := args.Get(0).(*models.TokenPair)
	return pair, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func jsonRequest(body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	pair := models.NewTokenPair("access", "refresh")

	tests := []struct {
		name           string
		req            *http.Request
		setupMock      func(*ServiceMock)
		wantStatusCode int
		wantCode       string
	}{
		{
			name: "json login",
			req:  jsonRequest(Request{Email: "alice@example.com", Password: "secret123"}),
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "alice@example.com", "secret123").Return(pair, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "oauth2 form login",
			req: func() *http.Request {
				form := url.Values{"username": {"alice@example.com"}, "password": {"secret123"}}
				req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return req
			}(),
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "alice@example.com", "secret123").Return(pair, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing password",
			req:            jsonRequest(Request{Email: "alice@example.com"}),
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantCode:       apperr.CodeValidation,
		},
		{
			name: "unknown email",
			req:  jsonRequest(Request{Email: "email", Password: "secret123"}),
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "email", "secret123").Return(nil, apperr.ErrInvalidEmail).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantCode:       apperr.CodeInvalidEmail,
		},
		{
			name: "not confirmed",
			req:  jsonRequest(Request{Email: "alice@example.com", Password: "secret123"}),
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "alice@example.com", "secret123").Return(nil, apperr.ErrEmailNotConfirmed).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantCode:       apperr.CodeEmailNotConfirmed,
		},
		{
			name: "wrong password",
			req:  jsonRequest(Request{Email: "alice@example.com", Password: "password"}),
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "alice@example.com", "password").Return(nil, apperr.ErrInvalidPassword).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantCode:       apperr.CodeInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, tt.req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, resp["code"])
			} else {
				assert.Equal(t, "bearer", resp["token_type"])
				assert.Equal(t, "access", resp["access_token"])
				assert.Equal(t, "refresh", resp["refresh_token"])
			}
			svc.AssertExpectations(t)
		})
	}
}
