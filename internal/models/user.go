// Package models содержит доменные структуры сервиса: пользователя, контакт,
// пару токенов и сообщения для очереди почтовых уведомлений.
package models

import "time"

// TokenTypeBearer тип токена, возвращаемый клиенту вместе с парой.
const TokenTypeBearer = "bearer"

// User представляет зарегистрированного пользователя.
// Хэш пароля и refresh-токен никогда не сериализуются в ответ.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Confirmed    bool      `json:"confirmed"`
	Avatar       string    `json:"avatar,omitempty"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CachedUser зеркалит User для кэша, где нужен и refresh-токен.
// Хэш пароля в кэш не попадает.
type CachedUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Confirmed    bool      `json:"confirmed"`
	Avatar       string    `json:"avatar,omitempty"`
	RefreshToken *string   `json:"refresh_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToCache возвращает представление пользователя для записи в кэш.
func (u *User) ToCache() CachedUser {
	return CachedUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Confirmed:    u.Confirmed,
		Avatar:       u.Avatar,
		RefreshToken: u.RefreshToken,
		CreatedAt:    u.CreatedAt,
	}
}

// User восстанавливает пользователя из кэшированного представления.
// PasswordHash остаётся пустым.
func (c CachedUser) User() *User {
	return &User{
		ID:           c.ID,
		Username:     c.Username,
		Email:        c.Email,
		Confirmed:    c.Confirmed,
		Avatar:       c.Avatar,
		RefreshToken: c.RefreshToken,
		CreatedAt:    c.CreatedAt,
	}
}

// TokenPair пара токенов, выдаваемая при входе и обновлении.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// NewTokenPair собирает пару с типом bearer.
func NewTokenPair(access, refresh string) *TokenPair {
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: TokenTypeBearer}
}
