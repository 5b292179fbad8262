package models

import (
	"fmt"
	"strings"
	"time"
)

// Contact запись адресной книги, принадлежащая одному пользователю.
type Contact struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Birthday     Date      `json:"birthday"`
	Additionally string    `json:"additionally"`
	UserID       string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContactPatch набор значений для создания или полной замены контакта.
type ContactPatch struct {
	Name         string
	Surname      string
	Email        string
	Phone        string
	Birthday     Date
	Additionally string
}

// ContactInput используется для приёма данных из JSON-запроса,
// дата рождения приходит строкой в формате 2006-01-02.
type ContactInput struct {
	Name         string `json:"name" validate:"required,max=50"`
	Surname      string `json:"surname" validate:"required,max=50"`
	Email        string `json:"email" validate:"required,email,max=50"`
	Phone        string `json:"phone" validate:"required,max=50"`
	Birthday     string `json:"birthday" validate:"required"`
	Additionally string `json:"additionally" validate:"max=300"`
}

// ToPatch разбирает дату и нормализует строки.
func (in ContactInput) ToPatch() (ContactPatch, error) {
	const op = "models.ContactInput.ToPatch"
	bday, err := ParseDate(strings.TrimSpace(in.Birthday))
	if err != nil {
		return ContactPatch{}, fmt.Errorf("%s: %w", op, err)
	}
	return ContactPatch{
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Birthday:     bday,
		Additionally: in.Additionally,
	}, nil
}
