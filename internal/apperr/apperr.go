// Package apperr описывает доменные ошибки сервиса и их отображение в HTTP-ответы.
package apperr

import (
	"errors"
	"net/http"
)

// Доменные ошибки. Сервисы возвращают их (возможно, обёрнутыми через %w),
// обработчики превращают их в ответ через Describe.
var (
	ErrAlreadyExists      = errors.New("account already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrTokenInvalid       = errors.New("could not validate credentials")
	ErrTokenExpired       = errors.New("token has expired")
	ErrInvalidScope       = errors.New("invalid scope for token")
	ErrTokenMismatch      = errors.New("invalid refresh token")
	ErrCredentialsInvalid = errors.New("could not validate credentials")
	ErrNotFound           = errors.New("not found")
	ErrVerificationError  = errors.New("verification error")
)

// Коды ошибок в теле ответа.
const (
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeInvalidEmail          = "INVALID_EMAIL"
	CodeInvalidPassword       = "INVALID_PASSWORD"
	CodeEmailNotConfirmed     = "EMAIL_NOT_CONFIRMED"
	CodeTokenInvalid          = "TOKEN_INVALID"
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodeInvalidScope          = "INVALID_SCOPE"
	CodeTokenMismatch         = "TOKEN_MISMATCH"
	CodeCredentialsInvalid    = "CREDENTIALS_INVALID"
	CodeNotFound              = "NOT_FOUND"
	CodeVerificationError     = "VERIFICATION_ERROR"
	CodeValidation            = "VALIDATION_ERROR"
	CodeTooManyRequests       = "TOO_MANY_REQUESTS"
	CodeDatabaseMisconfigured = "DATABASE_MISCONFIGURED"
	CodeDatabaseUnavailable   = "DATABASE_UNAVAILABLE"
	CodeInternal              = "INTERNAL_ERROR"
)

type mapping struct {
	err    error
	status int
	code   string
}

// Порядок важен: ErrTokenInvalid и ErrCredentialsInvalid имеют одинаковый текст,
// сравнение идёт по идентичности через errors.Is.
var mappings = []mapping{
	{ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists},
	{ErrInvalidEmail, http.StatusUnauthorized, CodeInvalidEmail},
	{ErrInvalidPassword, http.StatusUnauthorized, CodeInvalidPassword},
	{ErrEmailNotConfirmed, http.StatusUnauthorized, CodeEmailNotConfirmed},
	{ErrTokenInvalid, http.StatusUnauthorized, CodeTokenInvalid},
	{ErrTokenExpired, http.StatusUnauthorized, CodeTokenExpired},
	{ErrInvalidScope, http.StatusUnauthorized, CodeInvalidScope},
	{ErrTokenMismatch, http.StatusUnauthorized, CodeTokenMismatch},
	{ErrCredentialsInvalid, http.StatusUnauthorized, CodeCredentialsInvalid},
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrVerificationError, http.StatusBadRequest, CodeVerificationError},
}

// Describe возвращает HTTP-статус, код и текст для ошибки.
// Неизвестные ошибки превращаются в 500 без раскрытия внутреннего текста.
func Describe(err error) (status int, code string, message string) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.err.Error()
		}
	}
	return http.StatusInternalServerError, CodeInternal, "internal error"
}

// IsUnauthorized сообщает, относится ли ошибка к семейству 401.
func IsUnauthorized(err error) bool {
	status, _, _ := Describe(err)
	return status == http.StatusUnauthorized
}
