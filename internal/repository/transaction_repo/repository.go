package transaction_repo

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/repository/pgutil"
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table            = "transactions"
	colID            = "id"
	colUserID        = "user_id"
	colSessionID     = "session_id"
	colCorrelationID = "correlation_id"
	colType          = "type"
	colBalanceKind   = "balance_kind"
	colValue         = "value"
	colStatus        = "status"
	colBalanceBefore = "balance_before"
	colBalanceAfter  = "balance_after"
	colCaseID        = "case_id"
	colPrizeID       = "prize_id"
	colCreatedAt     = "created_at"
)

var allColumns = []string{
	colID, colUserID, colSessionID, colCorrelationID, colType, colBalanceKind, colValue,
	colStatus, colBalanceBefore, colBalanceAfter, colCaseID, colPrizeID, colCreatedAt,
}

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewTransactionRepository(dbc *pgxpool.Pool, getter *trmpgx.CtxGetter) repository.TransactionRepository {
	return &repo{
		dbc:    dbc,
		getter: getter,
	}
}

// CreateTransaction - пишет строку журнала, заполняет ID и CreatedAt
func (r *repo) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	// Формируем запрос
	query := pgutil.Builder.Insert(table).
		Columns(colUserID, colSessionID, colCorrelationID, colType, colBalanceKind, colValue,
			colStatus, colBalanceBefore, colBalanceAfter, colCaseID, colPrizeID).
		Values(tx.UserID, tx.SessionID, pgutil.NullUUID(tx.CorrelationID), string(tx.Type), string(tx.BalanceKind),
			int64(tx.Value), string(tx.Status), int64(tx.BalanceBefore), int64(tx.BalanceAfter), tx.CaseID, tx.PrizeID).
		Suffix("RETURNING " + colID + ", " + colCreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&tx.ID, &tx.CreatedAt)
}

// ListByCorrelation - все транзакции одной покупки в порядке записи
func (r *repo) ListByCorrelation(ctx context.Context, correlationID uuid.UUID) ([]model.Transaction, error) {
	query := pgutil.Builder.Select(allColumns...).
		From(table).
		Where(sq.Eq{colCorrelationID: correlationID}).
		OrderBy(colID)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}

	return txs, rows.Err()
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var (
		tx                   model.Transaction
		correlationID        *uuid.UUID
		txType, kind, status string
		value, before, after int64
	)
	err := row.Scan(&tx.ID, &tx.UserID, &tx.SessionID, &correlationID, &txType, &kind, &value,
		&status, &before, &after, &tx.CaseID, &tx.PrizeID, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}

	if correlationID != nil {
		tx.CorrelationID = *correlationID
	}
	tx.Type = model.TransactionType(txType)
	tx.BalanceKind = model.BalanceKind(kind)
	tx.Status = model.TransactionStatus(status)
	tx.Value = model.Money(value)
	tx.BalanceBefore = model.Money(before)
	tx.BalanceAfter = model.Money(after)
	return &tx, nil
}

// GetBehaviorHistory - агрегаты по покупкам пользователя.
// Одна покупка (correlation_id) - один раунд: стоимость из case_open, выигрыш из prize
func (r *repo) GetBehaviorHistory(ctx context.Context, userID int64, since time.Time) (*model.BehaviorHistory, error) {
	tr := r.getter.DefaultTrOrDB(ctx, r.dbc)
	history := &model.BehaviorHistory{}

	// Дата регистрации
	err := tr.QueryRow(ctx, "SELECT created_at FROM users WHERE id = $1", userID).Scan(&history.AccountCreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get account age: %w", err)
	}

	// Агрегаты за всё время
	lifetime := pgutil.Builder.Select(
		"COUNT(*) FILTER (WHERE type = 'prize')",
		"COALESCE(SUM(-value) FILTER (WHERE type = 'case_open'), 0)",
		"COALESCE(SUM(value) FILTER (WHERE type = 'prize'), 0)",
	).
		From(table).
		Where(sq.Eq{colUserID: userID, colStatus: string(model.TxCompleted)})

	sqlStr, args, err := lifetime.ToSql()
	if err != nil {
		return nil, err
	}

	var spent, won int64
	if err := tr.QueryRow(ctx, sqlStr, args...).Scan(&history.LifetimeGames, &spent, &won); err != nil {
		return nil, fmt.Errorf("get lifetime totals: %w", err)
	}
	history.LifetimeSpent = model.Money(spent)
	history.LifetimeWon = model.Money(won)

	// Раунды в окне
	recent := pgutil.Builder.Select(
		colCorrelationID,
		"MIN(created_at)",
		"COALESCE(SUM(-value) FILTER (WHERE type = 'case_open'), 0)",
		"COALESCE(SUM(value) FILTER (WHERE type = 'prize'), 0)",
	).
		From(table).
		Where(sq.Eq{
			colUserID: userID,
			colStatus: string(model.TxCompleted),
			colType:   []string{string(model.TxCaseOpen), string(model.TxPrize)},
		}).
		Where(sq.GtOrEq{colCreatedAt: since}).
		Where(sq.NotEq{colCorrelationID: nil}).
		GroupBy(colCorrelationID).
		OrderBy("MIN(created_at)")

	sqlStr, args, err = recent.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tr.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("get recent rounds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			round      model.Round
			cost, gain int64
		)
		if err := rows.Scan(&round.CorrelationID, &round.At, &cost, &gain); err != nil {
			return nil, err
		}
		round.Cost = model.Money(cost)
		round.Won = model.Money(gain)
		history.Recent = append(history.Recent, round)
	}

	return history, rows.Err()
}

// SumCompletedByUser - сумма завершённых транзакций по пользователю и дорожке
func (r *repo) SumCompletedByUser(ctx context.Context) ([]model.LedgerSum, error) {
	query := pgutil.Builder.Select(colUserID, colBalanceKind, "COALESCE(SUM(value), 0)").
		From(table).
		Where(sq.Eq{colStatus: string(model.TxCompleted)}).
		GroupBy(colUserID, colBalanceKind).
		OrderBy(colUserID, colBalanceKind)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []model.LedgerSum
	for rows.Next() {
		var (
			s    model.LedgerSum
			kind string
			sum  int64
		)
		if err := rows.Scan(&s.UserID, &kind, &sum); err != nil {
			return nil, err
		}
		s.BalanceKind = model.BalanceKind(kind)
		s.Sum = model.Money(sum)
		sums = append(sums, s)
	}

	return sums, rows.Err()
}
