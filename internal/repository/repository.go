package repository

import (
	"casebox_backend/internal/model"
	"context"
	"time"

	"github.com/google/uuid"
)

type UserRepository interface {
	// GetUserForUpdate блокирует строку пользователя до конца транзакции
	GetUserForUpdate(ctx context.Context, id int64) (*model.User, error)
	// AddBalance атомарно меняет баланс дорожки на delta и возвращает новый баланс.
	// Если баланс ушёл бы в минус - model.ErrInsufficientFunds
	AddBalance(ctx context.Context, id int64, kind model.BalanceKind, delta model.Money) (model.Money, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type CatalogRepository interface {
	GetCase(ctx context.Context, id int64) (*model.Case, error)
	// GetActiveSortablePrizes возвращает призы с active = true AND sortable = true
	GetActiveSortablePrizes(ctx context.Context, caseID int64) ([]model.Prize, error)
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	ListByCorrelation(ctx context.Context, correlationID uuid.UUID) ([]model.Transaction, error)
	// GetBehaviorHistory агрегирует покупки пользователя для классификатора
	GetBehaviorHistory(ctx context.Context, userID int64, since time.Time) (*model.BehaviorHistory, error)
	SumCompletedByUser(ctx context.Context) ([]model.LedgerSum, error)
}

type AuditRepository interface {
	CreateAudit(ctx context.Context, audit *model.PurchaseAudit) error
	GetAudit(ctx context.Context, correlationID uuid.UUID) (*model.PurchaseAudit, error)
}

type TreasuryRepository interface {
	// BankrollHeadroom - сколько платформа может выплатить одним призом
	// (чистые депозиты минус обязательства перед игроками)
	BankrollHeadroom(ctx context.Context) (model.Money, error)
}

type PayoutStatsRepository interface {
	Record(caseID int64, cost, won model.Money, targetRTP float64)
	Snapshot(caseID int64) model.PayoutStats
}
