package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccountKind - тип аккаунта, определяет какой баланс используется
type AccountKind string

const (
	AccountNormal        AccountKind = "normal"
	AccountDemoAffiliate AccountKind = "demo-affiliate"
	AccountAdmin         AccountKind = "admin"
)

// BalanceKind - дорожка баланса (реальные или демо деньги)
type BalanceKind string

const (
	BalanceReal BalanceKind = "real"
	BalanceDemo BalanceKind = "demo"
)

// BalanceKind возвращает единственный авторитетный баланс для этого типа аккаунта
func (k AccountKind) BalanceKind() BalanceKind {
	if k == AccountDemoAffiliate {
		return BalanceDemo
	}
	return BalanceReal
}

type User struct {
	ID               int64
	Kind             AccountKind
	Balance          Money // Реальный баланс
	DemoBalance      Money // Демо баланс
	FirstDepositMade bool
	Active           bool
	CreatedAt        time.Time
}

// BalanceOf возвращает баланс нужной дорожки
func (u *User) BalanceOf(kind BalanceKind) Money {
	if kind == BalanceDemo {
		return u.DemoBalance
	}
	return u.Balance
}

type UserClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid,omitempty"`
}
