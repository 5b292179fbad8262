package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

const testUserID = "550e8400-e29b-41d4-a716-446655440000"

var (
	userCols    = []string{"id", "username", "email", "password_hash", "confirmed", "avatar", "refresh_token", "created_at"}
	contactCols = []string{"id", "name", "surname", "email", "phone", "birthday", "additionally", "user_id", "created_at"}
	createdAt   = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewWithDB(db), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestStorage_CheckConnection(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m sqlmock.Sqlmock)
		wantErr error
		anyErr  bool
	}{
		{
			name: "ok",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(q("SELECT 1")).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
			},
		},
		{
			name: "no rows",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(q("SELECT 1")).WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
			},
			wantErr: ErrNoRows,
		},
		{
			name: "connection failed",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(q("SELECT 1")).WillReturnError(errors.New("connection refused"))
			},
			anyErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)
			tt.setup(mock)

			err := s.CheckConnection(context.Background())
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrNoRows)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestStorage_CreateUser(t *testing.T) {
	user := models.User{Username: "alice", Email: "Alice@Example.com", PasswordHash: "hash", Avatar: "https://gravatar"}

	t.Run("success", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("INSERT INTO users")).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.Avatar).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(testUserID, "alice", "Alice@Example.com", "hash", false, "https://gravatar", nil, createdAt))

		got, err := s.CreateUser(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, testUserID, got.ID)
		assert.False(t, got.Confirmed)
		assert.Nil(t, got.RefreshToken)
		assert.Equal(t, "https://gravatar", got.Avatar)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"})

		got, err := s.CreateUser(context.Background(), user)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s, _ := newMockStorage(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.CreateUser(ctx, user)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStorage_GetUserByEmail(t *testing.T) {
	t.Run("found with refresh token", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("WHERE LOWER(email) = LOWER($1)")).
			WithArgs("ALICE@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(testUserID, "alice", "alice@example.com", "hash", true, nil, "refresh", createdAt))

		got, err := s.GetUserByEmail(context.Background(), "ALICE@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.RefreshToken)
		assert.Equal(t, "refresh", *got.RefreshToken)
		assert.Empty(t, got.Avatar)
	})

	t.Run("absent", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("FROM users")).WillReturnError(sql.ErrNoRows)

		got, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("db error", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("FROM users")).WillReturnError(errors.New("boom"))

		_, err := s.GetUserByEmail(context.Background(), "x@example.com")
		assert.Error(t, err)
	})
}

func TestStorage_RotateRefreshToken(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"stored token matched", 1, true},
		{"stored token superseded", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)
			mock.ExpectExec(q("UPDATE users SET refresh_token = $1 WHERE id = $2 AND refresh_token = $3")).
				WithArgs("new", testUserID, "old").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := s.RotateRefreshToken(context.Background(), testUserID, "old", "new")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestStorage_UpdateRefreshToken_Clear(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(q("UPDATE users SET refresh_token = $1 WHERE id = $2")).
		WithArgs(nil, testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateRefreshToken(context.Background(), testUserID, nil))
}

func TestStorage_ConfirmEmail(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(q("UPDATE users SET confirmed = TRUE")).
		WithArgs("alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.ConfirmEmail(context.Background(), "alice@example.com"))
}

func TestStorage_UpdateAvatar_Absent(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(q("UPDATE users SET avatar = $1")).WillReturnError(sql.ErrNoRows)

	got, err := s.UpdateAvatar(context.Background(), "ghost@example.com", "https://cdn/x.png")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStorage_ListConfirmedUsers(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(q("WHERE confirmed")).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(testUserID, "alice", "alice@example.com", "hash", true, nil, nil, createdAt).
			AddRow("660e8400-e29b-41d4-a716-446655440000", "bob", "bob@example.com", "hash", true, nil, "r", createdAt))

	got, err := s.ListConfirmedUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func contactRow(id int64, name string) []driver.Value {
	return []driver.Value{id, name, "Doe", name + "@example.com", "+380501234567",
		time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), "", testUserID, createdAt}
}

func TestStorage_CreateContact(t *testing.T) {
	s, mock := newMockStorage(t)
	patch := models.ContactPatch{Name: "John", Surname: "Doe", Email: "john@example.com",
		Phone: "+380501234567", Birthday: models.NewDate(1990, time.May, 1)}

	mock.ExpectQuery(q("INSERT INTO contacts")).
		WithArgs("John", "Doe", "john@example.com", "+380501234567", "1990-05-01", "", testUserID).
		WillReturnRows(sqlmock.NewRows(contactCols).AddRow(contactRow(1, "John")...))

	got, err := s.CreateContact(context.Background(), testUserID, patch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "1990-05-01", got.Birthday.String())
	assert.Equal(t, testUserID, got.UserID)
}

func TestStorage_GetContact(t *testing.T) {
	t.Run("owned", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("WHERE id = $1 AND user_id = $2")).
			WithArgs(int64(7), testUserID).
			WillReturnRows(sqlmock.NewRows(contactCols).AddRow(contactRow(7, "Jane")...))

		got, err := s.GetContact(context.Background(), testUserID, 7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Jane", got.Name)
	})

	t.Run("foreign or absent", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("WHERE id = $1 AND user_id = $2")).WillReturnError(sql.ErrNoRows)

		got, err := s.GetContact(context.Background(), testUserID, 7)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStorage_ListContacts(t *testing.T) {
	t.Run("several", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("FROM contacts WHERE user_id = $1 ORDER BY id")).
			WithArgs(testUserID).
			WillReturnRows(sqlmock.NewRows(contactCols).
				AddRow(contactRow(1, "A")...).
				AddRow(contactRow(2, "B")...))

		got, err := s.ListContacts(context.Background(), testUserID)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("empty is not nil", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("FROM contacts")).WillReturnRows(sqlmock.NewRows(contactCols))

		got, err := s.ListContacts(context.Background(), testUserID)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestStorage_UpdateContact(t *testing.T) {
	patch := models.ContactPatch{Name: "New", Surname: "Doe", Email: "new@example.com",
		Phone: "1", Birthday: models.NewDate(1991, time.June, 2)}

	t.Run("returns updated value", func(t *testing.T) {
		s, mock := newMockStorage(t)
		row := contactRow(3, "New")
		mock.ExpectQuery(q("UPDATE contacts")).
			WithArgs("New", "Doe", "new@example.com", "1", "1991-06-02", "", int64(3), testUserID).
			WillReturnRows(sqlmock.NewRows(contactCols).AddRow(row...))

		got, err := s.UpdateContact(context.Background(), testUserID, 3, patch)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "New", got.Name)
	})

	t.Run("absent", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("UPDATE contacts")).WillReturnError(sql.ErrNoRows)

		got, err := s.UpdateContact(context.Background(), testUserID, 3, patch)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStorage_RemoveContact(t *testing.T) {
	t.Run("removed", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("DELETE FROM contacts WHERE id = $1 AND user_id = $2")).
			WithArgs(int64(4), testUserID).
			WillReturnRows(sqlmock.NewRows(contactCols).AddRow(contactRow(4, "Gone")...))

		got, err := s.RemoveContact(context.Background(), testUserID, 4)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(4), got.ID)
	})

	t.Run("absent", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(q("DELETE FROM contacts")).WillReturnError(sql.ErrNoRows)

		got, err := s.RemoveContact(context.Background(), testUserID, 4)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}
