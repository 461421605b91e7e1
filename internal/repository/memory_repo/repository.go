package memory_repo

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

type userRepo struct{ s *Store }

func NewUserRepository(s *Store) repository.UserRepository { return &userRepo{s: s} }

func (r *userRepo) GetUserForUpdate(ctx context.Context, id int64) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) AddBalance(ctx context.Context, id int64, kind model.BalanceKind, delta model.Money) (model.Money, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	after := u.BalanceOf(kind) + delta
	if after < 0 {
		return 0, model.ErrInsufficientFunds
	}
	if kind == model.BalanceDemo {
		u.DemoBalance = after
	} else {
		u.Balance = after
	}
	r.s.users[id] = u
	return after, nil
}

func (r *userRepo) ListUsers(_ context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type catalogRepo struct{ s *Store }

func NewCatalogRepository(s *Store) repository.CatalogRepository { return &catalogRepo{s: s} }

func (r *catalogRepo) GetCase(_ context.Context, id int64) (*model.Case, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.cases[id]
	if !ok {
		return nil, model.ErrCaseNotFound
	}
	return &c, nil
}

func (r *catalogRepo) GetActiveSortablePrizes(_ context.Context, caseID int64) ([]model.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var prizes []model.Prize
	for _, p := range r.s.prizes {
		if p.CaseID == caseID && p.Active && p.Sortable {
			prizes = append(prizes, p)
		}
	}
	sort.SliceStable(prizes, func(i, j int) bool {
		if prizes[i].Value != prizes[j].Value {
			return prizes[i].Value < prizes[j].Value
		}
		return prizes[i].ID < prizes[j].ID
	})
	return prizes, nil
}

type transactionRepo struct{ s *Store }

func NewTransactionRepository(s *Store) repository.TransactionRepository {
	return &transactionRepo{s: s}
}

func (r *transactionRepo) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.txHook != nil {
		if err := r.s.txHook(tx); err != nil {
			return err
		}
	}
	stored := r.s.appendLocked(*tx)
	tx.ID = stored.ID
	tx.CreatedAt = stored.CreatedAt
	return nil
}

func (r *transactionRepo) ListByCorrelation(_ context.Context, correlationID uuid.UUID) ([]model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var txs []model.Transaction
	for _, tx := range r.s.txs {
		if tx.CorrelationID == correlationID {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

func (r *transactionRepo) GetBehaviorHistory(_ context.Context, userID int64, since time.Time) (*model.BehaviorHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	history := &model.BehaviorHistory{AccountCreatedAt: u.CreatedAt}

	rounds := make(map[uuid.UUID]*model.Round)
	var order []uuid.UUID
	for _, tx := range r.s.txs {
		if tx.UserID != userID || tx.Status != model.TxCompleted {
			continue
		}
		switch tx.Type {
		case model.TxCaseOpen:
			history.LifetimeSpent -= tx.Value
		case model.TxPrize:
			history.LifetimeGames++
			history.LifetimeWon += tx.Value
		default:
			continue
		}

		if tx.CorrelationID == uuid.Nil || tx.CreatedAt.Before(since) {
			continue
		}
		round, ok := rounds[tx.CorrelationID]
		if !ok {
			round = &model.Round{CorrelationID: tx.CorrelationID, At: tx.CreatedAt}
			rounds[tx.CorrelationID] = round
			order = append(order, tx.CorrelationID)
		}
		if tx.CreatedAt.Before(round.At) {
			round.At = tx.CreatedAt
		}
		if tx.Type == model.TxCaseOpen {
			round.Cost -= tx.Value
		} else {
			round.Won += tx.Value
		}
	}

	for _, id := range order {
		history.Recent = append(history.Recent, *rounds[id])
	}
	sort.SliceStable(history.Recent, func(i, j int) bool {
		return history.Recent[i].At.Before(history.Recent[j].At)
	})
	return history, nil
}

func (r *transactionRepo) SumCompletedByUser(_ context.Context) ([]model.LedgerSum, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type key struct {
		user int64
		kind model.BalanceKind
	}
	sums := make(map[key]model.Money)
	for _, tx := range r.s.txs {
		if tx.Status == model.TxCompleted {
			sums[key{tx.UserID, tx.BalanceKind}] += tx.Value
		}
	}

	res := make([]model.LedgerSum, 0, len(sums))
	for k, sum := range sums {
		res = append(res, model.LedgerSum{UserID: k.user, BalanceKind: k.kind, Sum: sum})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].UserID != res[j].UserID {
			return res[i].UserID < res[j].UserID
		}
		return res[i].BalanceKind < res[j].BalanceKind
	})
	return res, nil
}

type auditRepo struct{ s *Store }

func NewAuditRepository(s *Store) repository.AuditRepository { return &auditRepo{s: s} }

func (r *auditRepo) CreateAudit(ctx context.Context, audit *model.PurchaseAudit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	audit.CreatedAt = r.s.now()
	r.s.audits[audit.CorrelationID] = *audit
	return nil
}

func (r *auditRepo) GetAudit(_ context.Context, correlationID uuid.UUID) (*model.PurchaseAudit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.audits[correlationID]
	if !ok {
		return nil, model.ErrPurchaseNotFound
	}
	return &a, nil
}

type treasuryRepo struct{ s *Store }

func NewTreasuryRepository(s *Store) repository.TreasuryRepository { return &treasuryRepo{s: s} }

// BankrollHeadroom - та же формула, что и в postgres: чистые реальные депозиты минус реальные балансы
func (r *treasuryRepo) BankrollHeadroom(_ context.Context) (model.Money, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var headroom model.Money
	for _, tx := range r.s.txs {
		if tx.Status != model.TxCompleted || tx.BalanceKind != model.BalanceReal {
			continue
		}
		if tx.Type == model.TxDeposit || tx.Type == model.TxWithdrawal {
			headroom += tx.Value
		}
	}
	for _, u := range r.s.users {
		headroom -= u.Balance
	}
	return headroom, nil
}
