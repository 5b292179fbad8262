// Package jwt выпускает и разбирает подписанные токены с областью действия (scope).
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Scope назначение токена. Токен одного назначения не принимается вместо другого.
type Scope string

// Области действия токенов.
const (
	ScopeAccess       Scope = "access_token"
	ScopeRefresh      Scope = "refresh_token"
	ScopeConfirmation Scope = "email_token"
)

// Claims полезная нагрузка токена: email владельца в sub и scope.
type Claims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}
