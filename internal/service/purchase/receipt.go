package purchase

import (
	"casebox_backend/internal/model"
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetReceipt - аудит покупки и её транзакции. Чужая покупка неотличима от несуществующей
func (s *serv) GetReceipt(ctx context.Context, userID int64, correlationID uuid.UUID) (*model.PurchaseReceipt, error) {
	audit, err := s.auditRepo.GetAudit(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	if audit.UserID != userID {
		return nil, model.ErrPurchaseNotFound
	}

	txs, err := s.txRepo.ListByCorrelation(ctx, correlationID)
	if err != nil {
		return nil, fmt.Errorf("list purchase transactions: %w", err)
	}

	return &model.PurchaseReceipt{
		Audit:        *audit,
		Transactions: txs,
	}, nil
}
