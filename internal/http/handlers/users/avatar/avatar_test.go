package avatar

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Update(ctx context.Context, user *models.User, filename, contentType string, body io.Reader, size int64) (*models.User, error) {
	args := m.Called(ctx, user, filename, contentType, body, size)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// pngHeader сигнатура PNG, по которой DetectContentType узнаёт image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func uploadRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAvatarHandler(t *testing.T) {
	user := &models.User{ID: "u-1", Email: "alice@example.com"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		setupMock  func(*ServiceMock)
		wantStatus int
	}{
		{
			name: "uploads with sniffed type",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "me.png", "", pngHeader)
			},
			setupMock: func(m *ServiceMock) {
				m.On("Update", mock.Anything, user, "me.png", "image/png", mock.Anything, int64(len(pngHeader))).
					Return(&models.User{ID: "u-1", Avatar: "http://s3/avatars/u-1/x.png"}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "rejects non image",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "notes.txt", "text/plain", []byte("hello"))
			},
			setupMock: func(m *ServiceMock) {
				m.On("Update", mock.Anything, user, "notes.txt", "text/plain", mock.Anything, int64(5)).
					Return(nil, apperr.ErrVerificationError).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing file field",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "picture", "me.png", "image/png", pngHeader)
			},
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := tt.req(t)
			req = req.WithContext(middlewarectx.WithUser(req.Context(), user))
			rec := httptest.NewRecorder()
			New(logger, svc, 1<<20).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
