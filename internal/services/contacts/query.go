package services

import (
	"strings"
	"time"

	"github.com/magabrotheeeer/contacts-api/internal/models"
)

const (
	windowBefore = -24 * time.Hour
	windowAfter  = 7 * 24 * time.Hour
)

// BirthdayWindow отбирает контакты, чей день рождения, перенесённый на год ref,
// отстоит от ref строго больше чем на -1 день и строго меньше чем на 7 дней.
// Порядок входа сохраняется. Если в этом году день рождения уже прошёл больше
// суток назад, берётся проекция на следующий год, чтобы окно переходило через
// границу года. 29 февраля в невисокосном году считается 28 февраля.
func BirthdayWindow(contacts []models.Contact, ref time.Time) []models.Contact {
	result := make([]models.Contact, 0)
	for _, c := range contacts {
		delta := birthdayIn(c.Birthday, ref.Year(), ref.Location()).Sub(ref)
		if delta <= windowBefore {
			delta = birthdayIn(c.Birthday, ref.Year()+1, ref.Location()).Sub(ref)
		}
		if delta > windowBefore && delta < windowAfter {
			result = append(result, c)
		}
	}
	return result
}

func birthdayIn(bday models.Date, year int, loc *time.Location) time.Time {
	month, day := bday.Month(), bday.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Search возвращает контакты, у которых имя, фамилия или email содержат fragment
// без учёта регистра. Каждый контакт попадает в результат не больше одного раза,
// порядок совпадает с порядком входа.
func Search(fragment string, contacts []models.Contact) []models.Contact {
	needle := strings.ToLower(fragment)
	result := make([]models.Contact, 0)
	seen := make(map[int64]struct{}, len(contacts))
	for _, c := range contacts {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		if containsFold(c.Name, needle) || containsFold(c.Surname, needle) || containsFold(c.Email, needle) {
			seen[c.ID] = struct{}{}
			result = append(result, c)
		}
	}
	return result
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
