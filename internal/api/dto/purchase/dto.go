package purchase

import "time"

// Денежные поля - строки в реалах ("10.50")

type PurchaseRequest struct {
	Quantity int `json:"quantity"` // Количество коробок (1..max_quantity)
}

type BoxResponse struct {
	Index        int     `json:"index"`
	PrizeID      int64   `json:"prize_id"`
	PrizeName    string  `json:"prize_name"`
	Value        string  `json:"value"`
	Category     string  `json:"category"`
	Illustrative bool    `json:"illustrative"`
	Strategy     string  `json:"strategy"`
	TargetRTP    float64 `json:"target_rtp"` // Опубликованный RTP, одинаков для всех
}

type PurchaseResponse struct {
	CorrelationID string        `json:"correlation_id"`
	Boxes         []BoxResponse `json:"boxes"`
	TotalCost     string        `json:"total_cost"`
	TotalWon      string        `json:"total_won"`
	BalanceBefore string        `json:"balance_before"`
	Balance       string        `json:"balance"` // Баланс после покупки
	BalanceKind   string        `json:"balance_kind"`
}

type TransactionResponse struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	BalanceKind   string    `json:"balance_kind"`
	Value         string    `json:"value"`
	Status        string    `json:"status"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	PrizeID       *int64    `json:"prize_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReceiptResponse struct {
	CorrelationID string                `json:"correlation_id"`
	Status        string                `json:"status"`
	AccountKind   string                `json:"account_kind"`
	BoxCount      int                   `json:"box_count"`
	TotalPrice    string                `json:"total_price"`
	TotalWon      string                `json:"total_won"`
	BalanceBefore string                `json:"balance_before"`
	BalanceAfter  string                `json:"balance_after"`
	Boxes         []BoxResponse         `json:"boxes"`
	Transactions  []TransactionResponse `json:"transactions"`
	CreatedAt     time.Time             `json:"created_at"`
}
