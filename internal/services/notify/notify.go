// Package services публикует почтовые уведомления в RabbitMQ.
// Письма отправляет отдельный процесс mail-sender.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/magabrotheeeer/contacts-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// Dispatcher публикует письма в exchange почты.
// amqp.Channel нельзя использовать из нескольких горутин, поэтому публикация под мьютексом.
type Dispatcher struct {
	mu sync.Mutex
	ch rabbitmq.Publisher
}

// NewDispatcher создает новый экземпляр Dispatcher.
func NewDispatcher(ch rabbitmq.Publisher) *Dispatcher {
	return &Dispatcher{ch: ch}
}

// SendConfirmation ставит в очередь письмо подтверждения почты.
func (d *Dispatcher) SendConfirmation(ctx context.Context, msg models.ConfirmationMessage) error {
	const op = "services.notify.SendConfirmation"
	if err := d.publish(ctx, rabbitmq.RoutingConfirmation, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendBirthdayDigest ставит в очередь напоминание о днях рождения.
func (d *Dispatcher) SendBirthdayDigest(ctx context.Context, digest models.BirthdayDigest) error {
	const op = "services.notify.SendBirthdayDigest"
	if err := d.publish(ctx, rabbitmq.RoutingBirthdays, digest); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, routingKey string, message any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return rabbitmq.PublishMessage(d.ch, rabbitmq.ExchangeMail, routingKey, message)
}
