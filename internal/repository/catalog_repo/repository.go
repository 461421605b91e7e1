package catalog_repo

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/repository/pgutil"
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	casesTable  = "cases"
	prizesTable = "prizes"

	colID          = "id"
	colName        = "name"
	colPrice       = "price"
	colActive      = "active"
	colCaseID      = "case_id"
	colValue       = "value"
	colProbability = "probability"
	colCategory    = "category"
	colSortable    = "sortable"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewCatalogRepository(dbc *pgxpool.Pool, getter *trmpgx.CtxGetter) repository.CatalogRepository {
	return &repo{
		dbc:    dbc,
		getter: getter,
	}
}

// GetCase - кейс по ID, model.ErrCaseNotFound если его нет
func (r *repo) GetCase(ctx context.Context, id int64) (*model.Case, error) {
	query := pgutil.Builder.Select(colID, colName, colPrice, colActive).
		From(casesTable).
		Where(sq.Eq{colID: id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var (
		c     model.Case
		price int64
	)
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&c.ID, &c.Name, &price, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCaseNotFound
		}
		return nil, err
	}

	c.Price = model.Money(price)
	return &c, nil
}

// GetActiveSortablePrizes - призы кейса, которые могут быть исходом розыгрыша.
// Иллюстративные призы сюда не попадают: у них sortable = false (CHECK в схеме)
func (r *repo) GetActiveSortablePrizes(ctx context.Context, caseID int64) ([]model.Prize, error) {
	query := pgutil.Builder.Select(colID, colCaseID, colName, colValue, colProbability, colCategory, colSortable, colActive).
		From(prizesTable).
		Where(sq.Eq{colCaseID: caseID, colActive: true, colSortable: true}).
		OrderBy(colValue, colID)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prizes []model.Prize
	for rows.Next() {
		var (
			p        model.Prize
			value    int64
			category string
		)
		if err := rows.Scan(&p.ID, &p.CaseID, &p.Name, &value, &p.Probability, &category, &p.Sortable, &p.Active); err != nil {
			return nil, err
		}
		p.Value = model.Money(value)
		p.Category = model.PrizeCategory(category)
		prizes = append(prizes, p)
	}

	return prizes, rows.Err()
}
