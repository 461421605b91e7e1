package converter

import (
	"casebox_backend/internal/api/dto/purchase"
	"casebox_backend/internal/model"
)

func ToPurchaseRequest(userID, caseID int64, sessionID *string, req purchase.PurchaseRequest) model.PurchaseRequest {
	return model.PurchaseRequest{
		UserID:    userID,
		CaseID:    caseID,
		Quantity:  req.Quantity,
		SessionID: sessionID,
	}
}

func ToPurchaseResponse(res model.PurchaseResult) purchase.PurchaseResponse {
	return purchase.PurchaseResponse{
		CorrelationID: res.CorrelationID.String(),
		Boxes:         toBoxes(res.Boxes),
		TotalCost:     res.TotalCost.String(),
		TotalWon:      res.TotalWon.String(),
		BalanceBefore: res.BalanceBefore.String(),
		Balance:       res.FinalBalance.String(),
		BalanceKind:   string(res.BalanceKind),
	}
}

func ToReceiptResponse(r model.PurchaseReceipt) purchase.ReceiptResponse {
	a := r.Audit
	txs := make([]purchase.TransactionResponse, len(r.Transactions))
	for i, tx := range r.Transactions {
		txs[i] = purchase.TransactionResponse{
			ID:            tx.ID,
			Type:          string(tx.Type),
			BalanceKind:   string(tx.BalanceKind),
			Value:         tx.Value.String(),
			Status:        string(tx.Status),
			BalanceBefore: tx.BalanceBefore.String(),
			BalanceAfter:  tx.BalanceAfter.String(),
			PrizeID:       tx.PrizeID,
			CreatedAt:     tx.CreatedAt,
		}
	}

	return purchase.ReceiptResponse{
		CorrelationID: a.CorrelationID.String(),
		Status:        a.Status,
		AccountKind:   string(a.AccountKind),
		BoxCount:      a.BoxCount,
		TotalPrice:    a.TotalPrice.String(),
		TotalWon:      a.TotalWon.String(),
		BalanceBefore: a.BalanceBefore.String(),
		BalanceAfter:  a.BalanceAfter.String(),
		Boxes:         toBoxes(a.Boxes),
		Transactions:  txs,
		CreatedAt:     a.CreatedAt,
	}
}

func toBoxes(boxes []model.BoxOutcome) []purchase.BoxResponse {
	result := make([]purchase.BoxResponse, len(boxes))
	for i, b := range boxes {
		result[i] = purchase.BoxResponse{
			Index:        b.Index,
			PrizeID:      b.PrizeID,
			PrizeName:    b.PrizeName,
			Value:        b.Value.String(),
			Category:     string(b.Category),
			Illustrative: b.Illustrative,
			Strategy:     b.Strategy,
			TargetRTP:    b.TargetRTP,
		}
	}
	return result
}
