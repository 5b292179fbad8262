package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

const userColumns = `id, username, email, password_hash, confirmed, avatar, refresh_token, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u       models.User
		avatar  sql.NullString
		refresh sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Confirmed, &avatar, &refresh, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Avatar = avatar.String
	if refresh.Valid {
		token := refresh.String
		u.RefreshToken = &token
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его с серверными полями.
// Повтор email без учёта регистра даёт apperr.ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO users (username, email, password_hash, avatar)
			  VALUES ($1, $2, $3, NULLIF($4, ''))
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Avatar))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUserByEmail ищет пользователя по email без учёта регистра.
// Если пользователя нет, возвращает nil, nil.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateRefreshToken записывает refresh-токен пользователя, nil очищает его.
func (s *Storage) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	const op = "storage.UpdateRefreshToken"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token = $1 WHERE id = $2`, token, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RotateRefreshToken атомарно заменяет old на next, только если сейчас сохранён old.
// Возвращает false, если сохранённый токен уже другой.
func (s *Storage) RotateRefreshToken(ctx context.Context, userID, old, next string) (bool, error) {
	const op = "storage.RotateRefreshToken"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token = $1 WHERE id = $2 AND refresh_token = $3`,
		next, userID, old)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// ConfirmEmail отмечает почту подтверждённой. Повторный вызов ничего не меняет.
func (s *Storage) ConfirmEmail(ctx context.Context, email string) error {
	const op = "storage.ConfirmEmail"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE users SET confirmed = TRUE WHERE LOWER(email) = LOWER($1)`, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateAvatar сохраняет ссылку на аватар и возвращает обновлённого пользователя.
// Если пользователя нет, возвращает nil, nil.
func (s *Storage) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	const op = "storage.UpdateAvatar"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE users SET avatar = $1 WHERE LOWER(email) = LOWER($2) RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, url, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListConfirmedUsers возвращает всех пользователей с подтверждённой почтой.
func (s *Storage) ListConfirmedUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListConfirmedUsers"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE confirmed ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
