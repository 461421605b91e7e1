package treasury_repo

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Чистые депозиты реальной дорожки минус всё, что платформа должна игрокам прямо сейчас.
// Демо деньги обязательствами не являются
const headroomQuery = `
	SELECT
		(SELECT COALESCE(SUM(value), 0)
		   FROM transactions
		  WHERE status = 'completed'
		    AND balance_kind = 'real'
		    AND type IN ('deposit', 'withdrawal'))
		-
		(SELECT COALESCE(SUM(balance), 0) FROM users)
`

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewTreasuryRepository(dbc *pgxpool.Pool, getter *trmpgx.CtxGetter) repository.TreasuryRepository {
	return &repo{
		dbc:    dbc,
		getter: getter,
	}
}

// BankrollHeadroom - максимальная разовая выплата, которую платформа может покрыть.
// Может быть отрицательной, тогда движок розыгрыша отдаст самый дешёвый приз
func (r *repo) BankrollHeadroom(ctx context.Context) (model.Money, error) {
	var headroom int64
	err := r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, headroomQuery).Scan(&headroom)
	if err != nil {
		return 0, err
	}
	return model.Money(headroom), nil
}
