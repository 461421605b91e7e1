package model

import (
	"math"

	"github.com/google/uuid"
)

// LedgerEntry - одно движение баланса и строка журнала к нему
type LedgerEntry struct {
	UserID        int64
	Kind          BalanceKind
	Amount        Money // Всегда неотрицательная, знак задаёт Debit/Credit
	Type          TransactionType
	CorrelationID uuid.UUID
	SessionID     *string
	CaseID        *int64
	PrizeID       *int64
}

// BalanceChange - снимок баланса до и после движения
type BalanceChange struct {
	TransactionID int64
	Before        Money
	After         Money
}

// UnlimitedHeadroom - банкролл не ограничивает выплату (демо дорожка)
const UnlimitedHeadroom = Money(math.MaxInt64)

// DrawParams - ограничения одного розыгрыша
type DrawParams struct {
	CasePrice Money
	TargetRTP float64
	MaxPrize  Money // Кап стратегии
	Headroom  Money // Запас банкролла
}

// Limit - действующий кап: меньший из капа стратегии и банкролла
func (p DrawParams) Limit() Money {
	return MinMoney(p.MaxPrize, p.Headroom)
}

// BalanceDrift - расхождение сохранённого баланса с суммой журнала
type BalanceDrift struct {
	UserID      int64
	BalanceKind BalanceKind
	Stored      Money
	Ledger      Money
}

type ReconcileReport struct {
	UsersChecked int
	Drifts       []BalanceDrift
}
