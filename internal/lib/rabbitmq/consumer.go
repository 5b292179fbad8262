package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
)

const maxInFlight = 10

// ErrMalformed помечает сообщение, которое нельзя обработать повторно.
// Такое сообщение отбрасывается, а не возвращается в очередь.
var ErrMalformed = errors.New("malformed message")

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь,
// кроме ошибок, обёрнутых вокруг ErrMalformed.
type Handler func(body []byte) error

// ConsumerMessage читает очередь queueName до отмены ctx или закрытия канала.
// Одновременно обрабатывается не больше maxInFlight сообщений.
// Возврат происходит после завершения всех начатых обработчиков.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler Handler, log *slog.Logger) error {
	const op = "rabbitmq.ConsumerMessage"
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	Dispatch(ctx, deliveries, handler, log.With(sl.Op(op), slog.String("queue", queueName)))
	return nil
}

// Dispatch раздаёт доставки обработчику с ограничением параллелизма.
func Dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler, log *slog.Logger) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxInFlight)
	defer wg.Wait()

	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					wg.Done()
				}()
				settle(d.Body, d.Acknowledger, d.DeliveryTag, handler, log)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

func settle(body []byte, ack amqp.Acknowledger, tag uint64, handler Handler, log *slog.Logger) {
	if ack == nil {
		_ = handler(body)
		return
	}
	if err := handler(body); err != nil {
		if errors.Is(err, ErrMalformed) {
			log.Error("dropping malformed message", sl.Err(err))
			if rejErr := ack.Reject(tag, false); rejErr != nil {
				log.Error("failed to reject message", sl.Err(rejErr))
			}
			return
		}
		log.Warn("message handling failed, requeueing", sl.Err(err))
		if nackErr := ack.Nack(tag, false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := ack.Ack(tag, false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
