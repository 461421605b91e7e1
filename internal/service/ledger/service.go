package ledger

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/service"
	"context"
	"errors"
	"fmt"
)

var errNegativeAmount = errors.New("ledger amount must not be negative")

type serv struct {
	userRepo repository.UserRepository
	txRepo   repository.TransactionRepository
}

// NewLedgerService - движения баланса с записью в журнал.
// Атомарность пары списание/начисление обеспечивает вызывающий (txManager.Do)
func NewLedgerService(userRepo repository.UserRepository, txRepo repository.TransactionRepository) service.LedgerService {
	return &serv{
		userRepo: userRepo,
		txRepo:   txRepo,
	}
}

// Debit списывает сумму с дорожки баланса. model.ErrInsufficientFunds, если денег не хватает
func (s *serv) Debit(ctx context.Context, entry model.LedgerEntry) (model.BalanceChange, error) {
	if entry.Amount < 0 {
		return model.BalanceChange{}, errNegativeAmount
	}
	return s.apply(ctx, entry, -entry.Amount)
}

// Credit начисляет сумму, ноль допустим (проигрышная коробка)
func (s *serv) Credit(ctx context.Context, entry model.LedgerEntry) (model.BalanceChange, error) {
	if entry.Amount < 0 {
		return model.BalanceChange{}, errNegativeAmount
	}
	return s.apply(ctx, entry, entry.Amount)
}

func (s *serv) apply(ctx context.Context, entry model.LedgerEntry, delta model.Money) (model.BalanceChange, error) {
	after, err := s.userRepo.AddBalance(ctx, entry.UserID, entry.Kind, delta)
	if err != nil {
		return model.BalanceChange{}, err
	}

	tx := &model.Transaction{
		UserID:        entry.UserID,
		SessionID:     entry.SessionID,
		CorrelationID: entry.CorrelationID,
		Type:          entry.Type,
		BalanceKind:   entry.Kind,
		Value:         delta,
		Status:        model.TxCompleted,
		BalanceBefore: after - delta,
		BalanceAfter:  after,
		CaseID:        entry.CaseID,
		PrizeID:       entry.PrizeID,
	}
	if err := s.txRepo.CreateTransaction(ctx, tx); err != nil {
		return model.BalanceChange{}, fmt.Errorf("write %s transaction: %w", entry.Type, err)
	}

	return model.BalanceChange{
		TransactionID: tx.ID,
		Before:        tx.BalanceBefore,
		After:         tx.BalanceAfter,
	}, nil
}
