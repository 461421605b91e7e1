package model

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseRequest struct {
	UserID    int64
	CaseID    int64
	Quantity  int
	SessionID *string
}

// PurchaseState - состояние покупки
type PurchaseState string

const (
	StateValidating PurchaseState = "validating"
	StateDrawing    PurchaseState = "drawing"
	StateSettling   PurchaseState = "settling"
	StateAudited    PurchaseState = "audited"
	StateRejected   PurchaseState = "rejected"
)

type BoxOutcome struct {
	Index        int           `json:"index"`
	PrizeID      int64         `json:"prize_id"`
	PrizeName    string        `json:"prize_name"`
	Value        Money         `json:"value"`
	Category     PrizeCategory `json:"category"`
	Illustrative bool          `json:"illustrative"`
	Strategy     string        `json:"strategy"`
	TargetRTP    float64       `json:"target_rtp"`
}

type PurchaseResult struct {
	CorrelationID uuid.UUID
	Boxes         []BoxOutcome
	TotalCost     Money
	TotalWon      Money
	BalanceBefore Money
	FinalBalance  Money
	BalanceKind   BalanceKind
}

type AuditCase struct {
	CaseID   int64  `json:"case_id"`
	Name     string `json:"name"`
	Price    Money  `json:"price"`
	Quantity int    `json:"quantity"`
}

const AuditCompleted = "completed"

// PurchaseAudit - одна строка на покупку, пишется в той же транзакции что и движения баланса
type PurchaseAudit struct {
	CorrelationID uuid.UUID
	UserID        int64
	SessionID     *string
	Cases         []AuditCase
	TotalPrice    Money
	TotalWon      Money
	BoxCount      int
	BalanceBefore Money
	BalanceAfter  Money
	AccountKind   AccountKind
	Boxes         []BoxOutcome
	Status        string
	CreatedAt     time.Time
}

// PurchaseReceipt - аудит покупки вместе со связанными транзакциями
type PurchaseReceipt struct {
	Audit        PurchaseAudit
	Transactions []Transaction
}

// PayoutStats - наблюдаемая выплата по кейсу в скользящем окне
type PayoutStats struct {
	CaseID      int64
	TotalBoxes  int
	TotalCost   Money
	TotalWon    Money
	WindowRTP   float64
	TargetRTP   float64
	Alert       bool   // Окно отклонилось от цели сильнее критического порога
	AlertReason string
}
