package audit_repo

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/repository/pgutil"
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table            = "purchase_audits"
	colCorrelationID = "correlation_id"
	colUserID        = "user_id"
	colSessionID     = "session_id"
	colCases         = "cases"
	colTotalPrice    = "total_price"
	colTotalWon      = "total_won"
	colBoxCount      = "box_count"
	colBalanceBefore = "balance_before"
	colBalanceAfter  = "balance_after"
	colAccountKind   = "account_kind"
	colBoxes         = "boxes"
	colStatus        = "status"
	colCreatedAt     = "created_at"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewAuditRepository(dbc *pgxpool.Pool, getter *trmpgx.CtxGetter) repository.AuditRepository {
	return &repo{
		dbc:    dbc,
		getter: getter,
	}
}

// CreateAudit - append-only запись о покупке. Кейсы и коробки хранятся как jsonb
func (r *repo) CreateAudit(ctx context.Context, audit *model.PurchaseAudit) error {
	casesJSON, err := json.Marshal(audit.Cases)
	if err != nil {
		return err
	}
	boxesJSON, err := json.Marshal(audit.Boxes)
	if err != nil {
		return err
	}

	// Формируем запрос
	query := pgutil.Builder.Insert(table).
		Columns(colCorrelationID, colUserID, colSessionID, colCases, colTotalPrice, colTotalWon, colBoxCount,
			colBalanceBefore, colBalanceAfter, colAccountKind, colBoxes, colStatus).
		Values(audit.CorrelationID, audit.UserID, audit.SessionID, casesJSON, int64(audit.TotalPrice),
			int64(audit.TotalWon), audit.BoxCount, int64(audit.BalanceBefore), int64(audit.BalanceAfter),
			string(audit.AccountKind), boxesJSON, audit.Status).
		Suffix("RETURNING " + colCreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&audit.CreatedAt)
}

// GetAudit - аудит покупки по correlation id
func (r *repo) GetAudit(ctx context.Context, correlationID uuid.UUID) (*model.PurchaseAudit, error) {
	query := pgutil.Builder.Select(colCorrelationID, colUserID, colSessionID, colCases, colTotalPrice, colTotalWon,
		colBoxCount, colBalanceBefore, colBalanceAfter, colAccountKind, colBoxes, colStatus, colCreatedAt).
		From(table).
		Where(sq.Eq{colCorrelationID: correlationID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var (
		audit                model.PurchaseAudit
		casesJSON, boxesJSON []byte
		totalPrice, totalWon int64
		before, after        int64
		kind                 string
	)
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(
		&audit.CorrelationID, &audit.UserID, &audit.SessionID, &casesJSON, &totalPrice, &totalWon,
		&audit.BoxCount, &before, &after, &kind, &boxesJSON, &audit.Status, &audit.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPurchaseNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(casesJSON, &audit.Cases); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(boxesJSON, &audit.Boxes); err != nil {
		return nil, err
	}

	audit.TotalPrice = model.Money(totalPrice)
	audit.TotalWon = model.Money(totalWon)
	audit.BalanceBefore = model.Money(before)
	audit.BalanceAfter = model.Money(after)
	audit.AccountKind = model.AccountKind(kind)
	return &audit, nil
}
