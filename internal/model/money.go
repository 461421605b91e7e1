package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money - денежная сумма в минимальных единицах (сентаво).
// Все расчёты ledger ведутся в целых числах, decimal нужен только на границе (конфиг, JSON).
type Money int64

const centsExp = 2

// ParseMoney разбирает сумму в реалах ("10.50") в сентаво.
// Более двух знаков после запятой - ошибка, округлять деньги молча нельзя.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	cents := d.Shift(centsExp)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("parse money %q: more than %d decimal places", s, centsExp)
	}
	return Money(cents.IntPart()), nil
}

// MustMoney - ParseMoney для констант и тестов
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal возвращает сумму в реалах
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -centsExp)
}

// String форматирует сумму как "10.50"
func (m Money) String() string {
	return m.Decimal().StringFixed(centsExp)
}

// Mul умножает сумму на целое (цена × количество)
func (m Money) Mul(n int) Money {
	return m * Money(n)
}

// MinMoney возвращает меньшую из сумм
func MinMoney(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}
