package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// UserLister отдаёт пользователей, которым положена рассылка.
type UserLister interface {
	ListConfirmedUsers(ctx context.Context) ([]*models.User, error)
}

// BirthdayFinder считает окно дней рождения для владельца.
type BirthdayFinder interface {
	Birthdays(ctx context.Context, userID string, now time.Time) ([]models.Contact, error)
}

// DigestSender публикует напоминание.
type DigestSender interface {
	SendBirthdayDigest(ctx context.Context, digest models.BirthdayDigest) error
}

// Job один проход рассылки напоминаний о днях рождения.
type Job struct {
	users    UserLister
	contacts BirthdayFinder
	sender   DigestSender
	log      *slog.Logger
	now      func() time.Time
}

// NewJob создает новый Job.
func NewJob(users UserLister, contacts BirthdayFinder, sender DigestSender, log *slog.Logger) *Job {
	return &Job{
		users:    users,
		contacts: contacts,
		sender:   sender,
		log:      log,
		now:      time.Now,
	}
}

// Run публикует дайджест каждому подтверждённому пользователю с непустым окном.
// Ошибка по одному пользователю не прерывает проход. Возвращает число
// отправленных дайджестов.
func (j *Job) Run(ctx context.Context) (int, error) {
	const op = "app.notifier.Job.Run"
	log := j.log.With(sl.Op(op))

	users, err := j.users.ListConfirmedUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := j.now()
	sent := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return sent, fmt.Errorf("%s: %w", op, err)
		}
		upcoming, err := j.contacts.Birthdays(ctx, u.ID, now)
		if err != nil {
			log.Error("failed to compute birthdays", slog.String("user_id", u.ID), sl.Err(err))
			continue
		}
		if len(upcoming) == 0 {
			continue
		}
		digest := models.BirthdayDigest{Email: u.Email, Username: u.Username, Contacts: upcoming}
		if err := j.sender.SendBirthdayDigest(ctx, digest); err != nil {
			log.Error("failed to publish digest", slog.String("user_id", u.ID), sl.Err(err))
			continue
		}
		sent++
	}

	log.Info("birthday digests published", slog.Int("users", len(users)), slog.Int("sent", sent))
	return sent, nil
}
