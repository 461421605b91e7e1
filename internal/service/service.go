package service

import (
	"casebox_backend/internal/model"
	"context"
	"time"

	"github.com/google/uuid"
)

type CatalogService interface {
	GetCase(ctx context.Context, id int64) (*model.Case, error)
	GetActiveSortablePrizes(ctx context.Context, caseID int64) ([]model.Prize, error)
}

type LedgerService interface {
	Debit(ctx context.Context, entry model.LedgerEntry) (model.BalanceChange, error)
	Credit(ctx context.Context, entry model.LedgerEntry) (model.BalanceChange, error)
}

type ClassifierService interface {
	Classify(history model.BehaviorHistory, now time.Time) model.BehaviorProfile
}

type PolicyService interface {
	SelectStrategy(profile model.BehaviorProfile, casePrice model.Money) model.Strategy
}

type DrawService interface {
	Pick(prizes []model.Prize, params model.DrawParams) (model.Prize, error)
}

type PurchaseService interface {
	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error)
	GetReceipt(ctx context.Context, userID int64, correlationID uuid.UUID) (*model.PurchaseReceipt, error)
}

type ReconcileService interface {
	Run(ctx context.Context) (*model.ReconcileReport, error)
}
