// Package services содержит операции над контактами пользователя.
// Все операции выполняются от имени владельца: чужие контакты не видны.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// ContactRepository описывает контракт хранилища контактов.
// Отсутствующий или чужой контакт возвращается как nil без ошибки.
type ContactRepository interface {
	CreateContact(ctx context.Context, userID string, p models.ContactPatch) (*models.Contact, error)
	GetContact(ctx context.Context, userID string, id int64) (*models.Contact, error)
	ListContacts(ctx context.Context, userID string) ([]models.Contact, error)
	UpdateContact(ctx context.Context, userID string, id int64, p models.ContactPatch) (*models.Contact, error)
	RemoveContact(ctx context.Context, userID string, id int64) (*models.Contact, error)
}

// ContactService реализует CRUD и запросы по контактам.
type ContactService struct {
	repo ContactRepository
}

// NewContactService создает новый экземпляр ContactService.
func NewContactService(repo ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

// Create сохраняет новый контакт владельца.
func (s *ContactService) Create(ctx context.Context, userID string, p models.ContactPatch) (*models.Contact, error) {
	const op = "services.contacts.Create"
	c, err := s.repo.CreateContact(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Get возвращает контакт владельца или apperr.ErrNotFound.
func (s *ContactService) Get(ctx context.Context, userID string, id int64) (*models.Contact, error) {
	const op = "services.contacts.Get"
	c, err := s.repo.GetContact(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return c, nil
}

// List возвращает все контакты владельца.
func (s *ContactService) List(ctx context.Context, userID string) ([]models.Contact, error) {
	const op = "services.contacts.List"
	list, err := s.repo.ListContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update заменяет поля контакта и возвращает обновлённое значение.
func (s *ContactService) Update(ctx context.Context, userID string, id int64, p models.ContactPatch) (*models.Contact, error) {
	const op = "services.contacts.Update"
	c, err := s.repo.UpdateContact(ctx, userID, id, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return c, nil
}

// Remove удаляет контакт и возвращает удалённое значение.
func (s *ContactService) Remove(ctx context.Context, userID string, id int64) (*models.Contact, error) {
	const op = "services.contacts.Remove"
	c, err := s.repo.RemoveContact(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return c, nil
}

// Birthdays возвращает контакты владельца с днём рождения в ближайшую неделю.
func (s *ContactService) Birthdays(ctx context.Context, userID string, now time.Time) ([]models.Contact, error) {
	const op = "services.contacts.Birthdays"
	list, err := s.repo.ListContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return BirthdayWindow(list, now), nil
}

// Search ищет контакты владельца по фрагменту. Пустой результат даёт apperr.ErrNotFound.
func (s *ContactService) Search(ctx context.Context, userID, fragment string) ([]models.Contact, error) {
	const op = "services.contacts.Search"
	list, err := s.repo.ListContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	found := Search(fragment, list)
	if len(found) == 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return found, nil
}
