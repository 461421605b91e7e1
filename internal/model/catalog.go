package model

type Case struct {
	ID     int64
	Name   string
	Price  Money
	Active bool
}

type PrizeCategory string

const (
	PrizeCash         PrizeCategory = "cash"
	PrizeProduct      PrizeCategory = "product"
	PrizeIllustrative PrizeCategory = "illustrative"
)

type Prize struct {
	ID          int64
	CaseID      int64
	Name        string
	Value       Money
	Probability float64 // Вес приза, нормализуется движком розыгрыша
	Category    PrizeCategory
	Sortable    bool // Только sortable призы могут быть реальным исходом розыгрыша
	Active      bool
}

// Drawable - приз может быть исходом розыгрыша.
// Флаг sortable авторитетен, по стоимости он не выводится.
func (p Prize) Drawable() bool {
	return p.Active && p.Sortable && p.Category != PrizeIllustrative
}
