package user_repo

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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table           = "users"
	colID           = "id"
	colKind         = "kind"
	colBalance      = "balance"
	colDemoBalance  = "demo_balance"
	colFirstDeposit = "first_deposit_made"
	colActive       = "active"
	colCreatedAt    = "created_at"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewUserRepository(dbc *pgxpool.Pool, getter *trmpgx.CtxGetter) repository.UserRepository {
	return &repo{
		dbc:    dbc,
		getter: getter,
	}
}

// balanceColumn - колонка баланса для дорожки. Других колонок баланса нет,
// поэтому демо покупка физически не может задеть реальный баланс
func balanceColumn(kind model.BalanceKind) string {
	if kind == model.BalanceDemo {
		return colDemoBalance
	}
	return colBalance
}

// GetUserForUpdate - читает пользователя с блокировкой строки (SELECT ... FOR UPDATE).
// Вне транзакции блокировка бессмысленна, поэтому вызывать только внутри txManager.Do
func (r *repo) GetUserForUpdate(ctx context.Context, id int64) (*model.User, error) {
	// Формируем запрос
	query := pgutil.Builder.Select(colID, colKind, colBalance, colDemoBalance, colFirstDeposit, colActive, colCreatedAt).
		From(table).
		Where(sq.Eq{colID: id}).
		Suffix("FOR UPDATE")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var (
		user        model.User
		kind        string
		balance     int64
		demoBalance int64
		createdAt   time.Time
	)
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).
		Scan(&user.ID, &kind, &balance, &demoBalance, &user.FirstDepositMade, &user.Active, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	user.Kind = model.AccountKind(kind)
	user.Balance = model.Money(balance)
	user.DemoBalance = model.Money(demoBalance)
	user.CreatedAt = createdAt
	return &user, nil
}

// AddBalance - меняет баланс дорожки одним UPDATE с проверкой на неотрицательность.
// Возвращает баланс после изменения
func (r *repo) AddBalance(ctx context.Context, id int64, kind model.BalanceKind, delta model.Money) (model.Money, error) {
	col := balanceColumn(kind)

	// Формируем запрос
	query := pgutil.Builder.Update(table).
		Set(col, sq.Expr(col+" + ?", int64(delta))).
		Where(sq.Eq{colID: id}).
		Where(sq.Expr(col+" + ? >= 0", int64(delta))).
		Suffix("RETURNING " + col)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tr := r.getter.DefaultTrOrDB(ctx, r.dbc)

	var after int64
	err = tr.QueryRow(ctx, sqlStr, args...).Scan(&after)
	if err == nil {
		return model.Money(after), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// Ни одна строка не обновилась: либо пользователя нет, либо не хватает денег
	var exists bool
	err = tr.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE "+colID+" = $1)", id).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return 0, model.ErrUserNotFound
	}
	return 0, model.ErrInsufficientFunds
}

// ListUsers - все пользователи с балансами, для сверки
func (r *repo) ListUsers(ctx context.Context) ([]model.User, error) {
	query := pgutil.Builder.Select(colID, colKind, colBalance, colDemoBalance, colFirstDeposit, colActive, colCreatedAt).
		From(table).
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

	var users []model.User
	for rows.Next() {
		var (
			u           model.User
			kind        string
			balance     int64
			demoBalance int64
		)
		if err := rows.Scan(&u.ID, &kind, &balance, &demoBalance, &u.FirstDepositMade, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Kind = model.AccountKind(kind)
		u.Balance = model.Money(balance)
		u.DemoBalance = model.Money(demoBalance)
		users = append(users, u)
	}

	return users, rows.Err()
}
