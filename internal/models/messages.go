package models

// ConfirmationMessage письмо со ссылкой подтверждения почты.
type ConfirmationMessage struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Link     string `json:"link"`
}

// BirthdayDigest напоминание владельцу о ближайших днях рождения его контактов.
type BirthdayDigest struct {
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Contacts []Contact `json:"contacts"`
}
