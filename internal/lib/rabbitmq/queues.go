package rabbitmq

// ExchangeMail exchange для почтовых уведомлений.
const ExchangeMail = "mail"

// Ключи маршрутизации и очереди почтовых уведомлений.
const (
	RoutingConfirmation = "confirmation"
	RoutingBirthdays    = "birthdays"

	QueueConfirmation = "mail.confirmation"
	QueueBirthdays    = "mail.birthdays"
)

// QueueConfig описывает очередь и её привязку к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// MailQueues очереди, которые объявляют и издатель, и потребитель.
func MailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueConfirmation, RoutingKey: RoutingConfirmation},
		{QueueName: QueueBirthdays, RoutingKey: RoutingBirthdays},
	}
}
