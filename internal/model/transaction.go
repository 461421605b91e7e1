package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxCaseOpen   TransactionType = "case_open"
	TxPrize      TransactionType = "prize"
	TxCommission TransactionType = "commission"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
)

// Transaction - строка журнала, пишется в момент изменения баланса.
// BalanceAfter - BalanceBefore == Value
type Transaction struct {
	ID            int64
	UserID        int64
	SessionID     *string
	CorrelationID uuid.UUID
	Type          TransactionType
	BalanceKind   BalanceKind
	Value         Money // Со знаком: списание отрицательное
	Status        TransactionStatus
	BalanceBefore Money
	BalanceAfter  Money
	CaseID        *int64
	PrizeID       *int64
	CreatedAt     time.Time
}

// LedgerSum - сумма завершённых транзакций пользователя по дорожке баланса
type LedgerSum struct {
	UserID      int64
	BalanceKind BalanceKind
	Sum         Money
}
