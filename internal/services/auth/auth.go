// Package services содержит логику регистрации, входа, обновления токенов
// и подтверждения почты. Текущий пользователь определяется по access-токену
// через кэш с откатом в базу данных.
package services

import (
	"context"
	"crypto/md5" //nolint:gosec // gravatar адресует аватары md5-хэшем почты
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/lib/jwt"
	"github.com/magabrotheeeer/contacts-api/internal/lib/password"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// ConfirmPath путь подтверждения почты, к которому дописывается токен.
const ConfirmPath = "/api/auth/confirmed_email/"

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByEmail возвращает nil, nil для неизвестного email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error
	RotateRefreshToken(ctx context.Context, userID, old, next string) (bool, error)
	ConfirmEmail(ctx context.Context, email string) error
}

// TokenMaker выпускает и проверяет токены.
type TokenMaker interface {
	IssueAccess(subject string) (string, error)
	IssueRefresh(subject string) (string, error)
	IssueConfirmation(subject string) (string, error)
	Decode(token string, expected jwt.Scope) (string, error)
}

// Cache кэш пользователей по email.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Mailer отправляет письмо со ссылкой подтверждения.
type Mailer interface {
	SendConfirmation(ctx context.Context, msg models.ConfirmationMessage) error
}

// AuthService отвечает за учётные записи и сессии.
type AuthService struct {
	users    UserRepository
	tokens   TokenMaker
	cache    Cache
	mailer   Mailer
	log      *slog.Logger
	cacheTTL time.Duration
	baseURL  string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, tokens TokenMaker, cache Cache, mailer Mailer,
	log *slog.Logger, cacheTTL time.Duration, baseURL string) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		cache:    cache,
		mailer:   mailer,
		log:      log,
		cacheTTL: cacheTTL,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// UserCacheKey ключ кэша для пользователя с данным email.
func UserCacheKey(email string) string {
	return "user:" + strings.ToLower(email)
}

// GravatarURL ссылка на аватар по умолчанию для email.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) //nolint:gosec
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}

// Signup создаёт неподтверждённую учётную запись и отправляет письмо подтверждения.
// Сбой отправки письма только логируется: пользователь уже создан.
func (s *AuthService) Signup(ctx context.Context, username, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.Signup"

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrAlreadyExists)
	}

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Avatar:       GravatarURL(email),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.sendConfirmation(ctx, user)
	return user, nil
}

// RequestConfirmation повторно отправляет письмо подтверждения.
// Для неизвестных и уже подтверждённых адресов ничего не делает.
func (s *AuthService) RequestConfirmation(ctx context.Context, email string) error {
	const op = "services.auth.RequestConfirmation"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user == nil || user.Confirmed {
		return nil
	}
	s.sendConfirmation(ctx, user)
	return nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *models.User) {
	log := s.log.With(sl.Op("services.auth.sendConfirmation"), slog.String("user_id", user.ID))

	token, err := s.tokens.IssueConfirmation(user.Email)
	if err != nil {
		log.Error("failed to issue confirmation token", sl.Err(err))
		return
	}
	msg := models.ConfirmationMessage{
		Email:    user.Email,
		Username: user.Username,
		Link:     s.baseURL + ConfirmPath + token,
	}
	if err := s.mailer.SendConfirmation(ctx, msg); err != nil {
		log.Warn("failed to dispatch confirmation email", sl.Err(err))
		return
	}
	log.Debug("confirmation email dispatched")
}

// Login проверяет учётные данные и выдаёт новую пару токенов.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.TokenPair, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidEmail)
	}
	if !user.Confirmed {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrEmailNotConfirmed)
	}
	if !password.Verify(rawPassword, user.PasswordHash) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidPassword)
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.RefreshToken = &pair.RefreshToken
	s.remember(ctx, user)
	return pair, nil
}

// Refresh меняет refresh-токен на новую пару. Предъявление уже заменённого
// токена считается компрометацией: сохранённый токен стирается, нужен повторный вход.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "services.auth.Refresh"

	email, err := s.tokens.Decode(refreshToken, jwt.ScopeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrCredentialsInvalid)
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rotated, err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !rotated {
		s.log.Warn("superseded refresh token presented, revoking session",
			sl.Op(op), slog.String("user_id", user.ID))
		if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.forget(ctx, user.Email)
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrTokenMismatch)
	}

	user.RefreshToken = &pair.RefreshToken
	s.remember(ctx, user)
	return pair, nil
}

// CurrentUser определяет владельца access-токена. Пользователь без активной
// сессии (после выхода или отзыва) не проходит проверку.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "services.auth.CurrentUser"

	email, err := s.tokens.Decode(accessToken, jwt.ScopeAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cached models.CachedUser
	found, err := s.cache.Get(ctx, UserCacheKey(email), &cached)
	if err != nil {
		s.log.Warn("user cache unavailable, falling back to database", sl.Op(op), sl.Err(err))
	}
	if found && cached.RefreshToken != nil {
		return cached.User(), nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil || user.RefreshToken == nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrCredentialsInvalid)
	}

	s.remember(ctx, user)
	return user, nil
}

// ConfirmEmail подтверждает почту по токену. Повторное подтверждение не ошибка.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	const op = "services.auth.ConfirmEmail"

	email, err := s.tokens.Decode(token, jwt.ScopeConfirmation)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if user.Confirmed {
		return nil
	}
	if err := s.users.ConfirmEmail(ctx, user.Email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.forget(ctx, user.Email)
	return nil
}

// Logout стирает сохранённый refresh-токен и запись пользователя в кэше.
func (s *AuthService) Logout(ctx context.Context, user *models.User) error {
	const op = "services.auth.Logout"

	if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.forget(ctx, user.Email)
	return nil
}

// Forget сбрасывает кэш пользователя, например после смены аватара.
func (s *AuthService) Forget(ctx context.Context, email string) {
	s.forget(ctx, email)
}

func (s *AuthService) issuePair(email string) (*models.TokenPair, error) {
	access, err := s.tokens.IssueAccess(email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(email)
	if err != nil {
		return nil, err
	}
	return models.NewTokenPair(access, refresh), nil
}

func (s *AuthService) remember(ctx context.Context, user *models.User) {
	if err := s.cache.Set(ctx, UserCacheKey(user.Email), user.ToCache(), s.cacheTTL); err != nil {
		s.log.Warn("failed to cache user", slog.String("user_id", user.ID), sl.Err(err))
	}
}

func (s *AuthService) forget(ctx context.Context, email string) {
	if err := s.cache.Invalidate(ctx, UserCacheKey(email)); err != nil {
		s.log.Warn("failed to invalidate cached user", sl.Err(err))
	}
}
