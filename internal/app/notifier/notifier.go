// Package notifier по расписанию cron рассылает владельцам напоминания
// о ближайших днях рождения их контактов.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/contacts-api/internal/config"
	"github.com/magabrotheeeer/contacts-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	contactservice "github.com/magabrotheeeer/contacts-api/internal/services/contacts"
	notifyservice "github.com/magabrotheeeer/contacts-api/internal/services/notify"
	"github.com/magabrotheeeer/contacts-api/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	cron   *cron.Cron
	job    *Job
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.notifier.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect storage: %w", op, err)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		closeResources(db, nil, nil, logger)
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.MailQueues())
	if err != nil {
		closeResources(db, nil, conn, logger)
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	job := NewJob(db, contactservice.NewContactService(db), notifyservice.NewDispatcher(ch), logger)
	a := &App{
		cron:   cron.New(),
		job:    job,
		db:     db,
		conn:   conn,
		ch:     ch,
		logger: logger,
	}
	if err := a.schedule(ctx, cfg.Schedule); err != nil {
		closeResources(db, ch, conn, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (a *App) schedule(ctx context.Context, spec string) error {
	_, err := a.cron.AddFunc(spec, func() {
		if _, err := a.job.Run(ctx); err != nil {
			a.logger.Error("birthday notifier run failed", sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Run запускает планировщик и ждёт отмены ctx. Начатый проход успевает завершиться.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("birthday notifier started", slog.Int("jobs", len(a.cron.Entries())))
	a.cron.Start()

	<-ctx.Done()
	a.logger.Info("shutting down birthday notifier")

	<-a.cron.Stop().Done()
	closeResources(a.db, a.ch, a.conn, a.logger)
	return nil
}

func closeResources(db *repository.Storage, ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
