// Package services отправляет письма, полученные из очередей почты.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/contacts-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/contacts-api/internal/lib/sl"
	"github.com/magabrotheeeer/contacts-api/internal/lib/smtp"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// SenderService превращает сообщения очередей в письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// HandleConfirmation отправляет письмо со ссылкой подтверждения почты.
func (s *SenderService) HandleConfirmation(body []byte) error {
	const op = "services.sender.HandleConfirmation"
	var message models.ConfirmationMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w: %w", op, rabbitmq.ErrMalformed, err)
	}

	subject := "Подтверждение почты"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nДля подтверждения адреса перейдите по ссылке:\n%s\n\nЕсли вы не регистрировались, просто проигнорируйте это письмо.",
		message.Username, message.Link)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// HandleBirthdays отправляет напоминание о ближайших днях рождения.
// Пустая подборка подтверждается без отправки письма.
func (s *SenderService) HandleBirthdays(body []byte) error {
	const op = "services.sender.HandleBirthdays"
	var digest models.BirthdayDigest
	if err := json.Unmarshal(body, &digest); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w: %w", op, rabbitmq.ErrMalformed, err)
	}
	if len(digest.Contacts) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Здравствуйте, %s!\n\nНа этой неделе день рождения у ваших контактов:\n", digest.Username)
	for _, c := range digest.Contacts {
		fmt.Fprintf(&b, "  %s %s, %s (%s, %s)\n", c.Name, c.Surname, c.Birthday.Format("02.01"), c.Phone, c.Email)
	}

	return s.sendEmail([]string{digest.Email}, "Ближайшие дни рождения", b.String())
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
