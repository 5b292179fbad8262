package services

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/contacts-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/contacts-api/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) Sender() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// expectDelivery настраивает полный успешный SMTP-диалог и сохраняет тело письма.
func expectDelivery(t *MockTransport, rcpt string, written *string) {
	mockClient := new(MockSMTPClient)
	mockWriter := new(MockSMTPWriter)

	t.On("Sender").Return("sender@example.com")
	t.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", "sender@example.com").Return(nil).Once()
	mockClient.On("Rcpt", rcpt).Return(nil).Once()
	mockClient.On("Data").Return(mockWriter, nil).Once()
	mockWriter.On("Write", mock.AnythingOfType("[]uint8")).
		Run(func(args mock.Arguments) {
			if written != nil {
				*written = string(args.Get(0).([]byte))
			}
		}).
		Return(100, nil).Once()
	mockWriter.On("Close").Return(nil).Once()
	mockClient.On("Quit").Return(nil).Once()
	mockClient.On("Close").Return(nil).Once()
}

func TestSenderService_HandleConfirmation(t *testing.T) {
	var written string
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success - send confirmation email",
			body: []byte(`{"email":"test@example.com","username":"testuser","link":"http://localhost:8080/api/auth/confirmed_email/abc"}`),
			setupMocks: func(t *MockTransport) {
				expectDelivery(t, "test@example.com", &written)
			},
			expectedError: false,
		},
		{
			name: "invalid JSON",
			body: []byte(`invalid json`),
			setupMocks: func(_ *MockTransport) {
				// No transport calls expected for invalid JSON
			},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
		},
		{
			name: "SMTP connection error",
			body: []byte(`{"email":"test@example.com","username":"testuser","link":"x"}`),
			setupMocks: func(t *MockTransport) {
				t.On("Sender").Return("sender@example.com")
				t.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)

			tt.setupMocks(transport)

			err := service.HandleConfirmation(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
				assert.Contains(t, written, "http://localhost:8080/api/auth/confirmed_email/abc")
				assert.Contains(t, written, "To: test@example.com")
			}

			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_HandleBirthdays(t *testing.T) {
	var written string
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success - send birthday digest",
			body: []byte(`{"email":"owner@example.com","username":"owner","contacts":[{"id":1,"name":"Ann","surname":"Lee","email":"ann@example.com","phone":"+100","birthday":"1990-03-15","additionally":""}]}`),
			setupMocks: func(t *MockTransport) {
				expectDelivery(t, "owner@example.com", &written)
			},
			expectedError: false,
		},
		{
			name: "empty digest is skipped",
			body: []byte(`{"email":"owner@example.com","username":"owner","contacts":[]}`),
			setupMocks: func(_ *MockTransport) {
			},
			expectedError: false,
		},
		{
			name: "invalid JSON",
			body: []byte(`{`),
			setupMocks: func(_ *MockTransport) {
			},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
		},
		{
			name: "RCPT error",
			body: []byte(`{"email":"owner@example.com","username":"owner","contacts":[{"id":1,"name":"Ann","birthday":"1990-03-15"}]}`),
			setupMocks: func(t *MockTransport) {
				mockClient := new(MockSMTPClient)
				t.On("Sender").Return("sender@example.com")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "sender@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "owner@example.com").Return(errors.New("mailbox unavailable")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			expectedError: true,
			errorMessage:  "mailbox unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			written = ""
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)

			tt.setupMocks(transport)

			err := service.HandleBirthdays(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
			}
			if tt.name == "success - send birthday digest" {
				assert.Contains(t, written, "Ann Lee, 15.03")
			}

			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_MalformedIsPermanent(t *testing.T) {
	service := NewSenderService(newNoopLogger(), new(MockTransport))

	err := service.HandleConfirmation([]byte(`{`))
	assert.ErrorIs(t, err, rabbitmq.ErrMalformed)

	err = service.HandleBirthdays([]byte(`[]`))
	assert.ErrorIs(t, err, rabbitmq.ErrMalformed)
}
