package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contacts-api/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) ListConfirmedUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

type MockBirthdays struct{ mock.Mock }

func (m *MockBirthdays) Birthdays(ctx context.Context, userID string, now time.Time) ([]models.Contact, error) {
	args := m.Called(ctx, userID, now)
	list, _ := args.Get(0).([]models.Contact)
	return list, args.Error(1)
}

type MockDigestSender struct{ mock.Mock }

func (m *MockDigestSender) SendBirthdayDigest(ctx context.Context, digest models.BirthdayDigest) error {
	return m.Called(ctx, digest).Error(0)
}

func TestJob_Run(t *testing.T) {
	now := time.Date(2024, time.December, 28, 8, 0, 0, 0, time.UTC)
	alice := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	bob := &models.User{ID: "u2", Username: "bob", Email: "bob@example.com"}
	carol := &models.User{ID: "u3", Username: "carol", Email: "carol@example.com"}
	upcoming := []models.Contact{{ID: 7, Name: "Ivan", Surname: "Petrov"}}

	users := new(MockUsers)
	users.On("ListConfirmedUsers", mock.Anything).Return([]*models.User{alice, bob, carol}, nil)

	contacts := new(MockBirthdays)
	contacts.On("Birthdays", mock.Anything, "u1", now).Return(upcoming, nil)
	contacts.On("Birthdays", mock.Anything, "u2", now).Return([]models.Contact{}, nil)
	contacts.On("Birthdays", mock.Anything, "u3", now).Return(nil, errors.New("db down"))

	sender := new(MockDigestSender)
	sender.On("SendBirthdayDigest", mock.Anything, models.BirthdayDigest{
		Email:    alice.Email,
		Username: alice.Username,
		Contacts: upcoming,
	}).Return(nil)

	job := NewJob(users, contacts, sender, newNoopLogger())
	job.now = func() time.Time { return now }

	sent, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	users.AssertExpectations(t)
	contacts.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "SendBirthdayDigest", 1)
}

func TestJob_Run_PublishFailureContinues(t *testing.T) {
	a := &models.User{ID: "a", Email: "a@example.com"}
	b := &models.User{ID: "b", Email: "b@example.com"}
	upcoming := []models.Contact{{ID: 1}}

	users := new(MockUsers)
	users.On("ListConfirmedUsers", mock.Anything).Return([]*models.User{a, b}, nil)
	contacts := new(MockBirthdays)
	contacts.On("Birthdays", mock.Anything, mock.Anything, mock.Anything).Return(upcoming, nil)
	sender := new(MockDigestSender)
	sender.On("SendBirthdayDigest", mock.Anything, mock.MatchedBy(func(d models.BirthdayDigest) bool {
		return d.Email == a.Email
	})).Return(errors.New("channel closed"))
	sender.On("SendBirthdayDigest", mock.Anything, mock.MatchedBy(func(d models.BirthdayDigest) bool {
		return d.Email == b.Email
	})).Return(nil)

	sent, err := NewJob(users, contacts, sender, newNoopLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestJob_Run_ListError(t *testing.T) {
	users := new(MockUsers)
	users.On("ListConfirmedUsers", mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewJob(users, new(MockBirthdays), new(MockDigestSender), newNoopLogger()).Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestJob_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	users := new(MockUsers)
	users.On("ListConfirmedUsers", mock.Anything).Return([]*models.User{{ID: "a"}}, nil)

	_, err := NewJob(users, new(MockBirthdays), new(MockDigestSender), newNoopLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApp_Schedule(t *testing.T) {
	a := &App{cron: cron.New(), logger: newNoopLogger()}

	require.NoError(t, a.schedule(context.Background(), "0 8 * * *"))
	assert.Len(t, a.cron.Entries(), 1)

	assert.Error(t, a.schedule(context.Background(), "every morning"))
}
