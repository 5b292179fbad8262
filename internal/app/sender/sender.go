// Package sender читает почтовые очереди RabbitMQ и доставляет письма через SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/contacts-api/internal/config"
	"github.com/magabrotheeeer/contacts-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/contacts-api/internal/services/sender"
)

// App потребитель почтовых очередей.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к брокеру и объявляет почтовые очереди.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.MailQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(logger, transport),
		logger:        logger,
	}, nil
}

// Run обрабатывает обе очереди до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rabbitmq.ConsumerMessage(gctx, a.ch, rabbitmq.QueueConfirmation, a.senderService.HandleConfirmation, a.logger)
	})
	g.Go(func() error {
		return rabbitmq.ConsumerMessage(gctx, a.ch, rabbitmq.QueueBirthdays, a.senderService.HandleBirthdays, a.logger)
	})

	err := g.Wait()
	if err != nil {
		a.logger.Error("consumer stopped with error", sl.Err(err))
	}
	a.logger.Info("sender service shutting down gracefully")

	if closeErr := a.ch.Close(); closeErr != nil {
		a.logger.Error("failed to close channel", sl.Err(closeErr))
	}
	if closeErr := a.conn.Close(); closeErr != nil {
		a.logger.Error("failed to close connection", sl.Err(closeErr))
	}
	return err
}
