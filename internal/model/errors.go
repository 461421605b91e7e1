package model

import "errors"

// Ошибки валидации (до любых изменений)
var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrCaseNotFound    = errors.New("case not found")
	ErrCaseInactive    = errors.New("case inactive")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserInactive    = errors.New("user inactive")
)

// Ошибки ресурсов
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCoolingOff        = errors.New("purchases paused: cooling-off period")
)

// Ошибки конфигурации каталога
var (
	ErrEmptyCatalog = errors.New("case has no drawable prizes")
)

// Ошибки проведения
var (
	ErrSettlementFailed = errors.New("settlement failed")
	ErrPurchaseNotFound = errors.New("purchase not found")
)
