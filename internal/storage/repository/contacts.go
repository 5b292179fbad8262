package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/contacts-api/internal/models"
)

const contactColumns = `id, name, surname, email, phone, birthday, additionally, user_id, created_at`

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Surname, &c.Email, &c.Phone,
		&c.Birthday, &c.Additionally, &c.UserID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContact сохраняет контакт владельца userID.
func (s *Storage) CreateContact(ctx context.Context, userID string, p models.ContactPatch) (*models.Contact, error) {
	const op = "storage.CreateContact"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO contacts (name, surname, email, phone, birthday, additionally, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + contactColumns
	c, err := scanContact(s.DB.QueryRowContext(ctx, query,
		p.Name, p.Surname, p.Email, p.Phone, p.Birthday, p.Additionally, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// GetContact возвращает контакт владельца. Чужой или отсутствующий контакт: nil, nil.
func (s *Storage) GetContact(ctx context.Context, userID string, id int64) (*models.Contact, error) {
	const op = "storage.GetContact"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`
	c, err := scanContact(s.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListContacts возвращает все контакты владельца в порядке создания.
func (s *Storage) ListContacts(ctx context.Context, userID string) ([]models.Contact, error) {
	const op = "storage.ListContacts"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateContact заменяет поля контакта и возвращает обновлённое значение.
// Чужой или отсутствующий контакт: nil, nil.
func (s *Storage) UpdateContact(ctx context.Context, userID string, id int64, p models.ContactPatch) (*models.Contact, error) {
	const op = "storage.UpdateContact"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE contacts
			  SET name = $1, surname = $2, email = $3, phone = $4, birthday = $5, additionally = $6
			  WHERE id = $7 AND user_id = $8
			  RETURNING ` + contactColumns
	c, err := scanContact(s.DB.QueryRowContext(ctx, query,
		p.Name, p.Surname, p.Email, p.Phone, p.Birthday, p.Additionally, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// RemoveContact удаляет контакт владельца и возвращает удалённое значение.
// Чужой или отсутствующий контакт: nil, nil.
func (s *Storage) RemoveContact(ctx context.Context, userID string, id int64) (*models.Contact, error) {
	const op = "storage.RemoveContact"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `DELETE FROM contacts WHERE id = $1 AND user_id = $2 RETURNING ` + contactColumns
	c, err := scanContact(s.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
