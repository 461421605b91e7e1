package purchase

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository/audit_repo"
	"casebox_backend/internal/repository/catalog_repo"
	"casebox_backend/internal/repository/payout_stats_repo"
	"casebox_backend/internal/repository/transaction_repo"
	"casebox_backend/internal/repository/treasury_repo"
	"casebox_backend/internal/repository/user_repo"
	"casebox_backend/internal/service/catalog"
	"casebox_backend/internal/service/classifier"
	"casebox_backend/internal/service/draw"
	"casebox_backend/internal/service/ledger"
	"casebox_backend/internal/service/policy"
	"casebox_backend/internal/service/reconcile"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// newPgPool поднимает отдельную схему с миграциями. Без PG_DSN тест пропускается
func newPgPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN is not set")
	}
	ctx := context.Background()

	schema := "casebox_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	admin, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(admin.Close)
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		if _, err := admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema: %v", err)
		}
	})

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	poolCfg.ConnConfig.RuntimeParams["search_path"] = schema
	poolCfg.MaxConns = 8

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	migration, err := os.ReadFile("../../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(migration)); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func TestPostgres_ConcurrentPurchasesLockTheUserRow(t *testing.T) {
	pool := newPgPool(t)
	ctx := context.Background()

	const (
		affordable = 20
		attempts   = 40
	)
	deposit := price.Mul(affordable)

	var caseID, userID int64
	err := pool.QueryRow(ctx, `INSERT INTO cases (name, price) VALUES ('Zero', $1) RETURNING id`, int64(price)).Scan(&caseID)
	if err != nil {
		t.Fatalf("seed case: %v", err)
	}
	_, err = pool.Exec(ctx, `INSERT INTO prizes (case_id, name, value, probability, category) VALUES ($1, 'Nada', 0, 1, 'cash')`, caseID)
	if err != nil {
		t.Fatalf("seed prize: %v", err)
	}
	err = pool.QueryRow(ctx, `INSERT INTO users (balance, first_deposit_made, created_at) VALUES ($1, TRUE, $2) RETURNING id`,
		int64(deposit), time.Now().AddDate(-1, 0, 0)).Scan(&userID)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	_, err = pool.Exec(ctx, `INSERT INTO transactions (user_id, type, balance_kind, value, status, balance_before, balance_after)
		VALUES ($1, 'deposit', 'real', $2, 'completed', 0, $2)`, userID, int64(deposit))
	if err != nil {
		t.Fatalf("seed deposit: %v", err)
	}

	txManager, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		t.Fatalf("tx manager: %v", err)
	}
	getter := trmpgx.DefaultCtxGetter
	cfg := testEngineConfig(t, defaultOpts())

	userRepo := user_repo.NewUserRepository(pool, getter)
	txRepo := transaction_repo.NewTransactionRepository(pool, getter)
	svc := NewPurchaseService(Deps{
		TxManager:     txManager,
		UserRepo:      userRepo,
		TxRepo:        txRepo,
		AuditRepo:     audit_repo.NewAuditRepository(pool, getter),
		TreasuryRepo:  treasury_repo.NewTreasuryRepository(pool, getter),
		StatsRepo:     payout_stats_repo.NewPayoutStatsRepository(cfg.WindowSize(), cfg.CriticalDeviation()),
		Catalog:       catalog.NewCatalogService(catalog_repo.NewCatalogRepository(pool, getter)),
		Ledger:        ledger.NewLedgerService(userRepo, txRepo),
		Classifier:    classifier.NewClassifierService(cfg),
		Policy:        policy.NewPolicyService(cfg),
		Draw:          draw.NewDrawService(nil),
		ClassifierCfg: cfg,
		PurchaseCfg:   cfg,
	})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		other     []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, model.PurchaseRequest{UserID: userID, CaseID: caseID, Quantity: 1})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, model.ErrInsufficientFunds):
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if successes != affordable {
		t.Errorf("successes = %d, want %d", successes, affordable)
	}

	var balance, opens, audits int64
	if err := pool.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if balance != 0 {
		t.Errorf("final balance = %d, want 0", balance)
	}
	query := fmt.Sprintf(`SELECT
		(SELECT count(*) FROM transactions WHERE user_id = %d AND type = 'case_open'),
		(SELECT count(*) FROM purchase_audits WHERE user_id = %d)`, userID, userID)
	if err := pool.QueryRow(ctx, query).Scan(&opens, &audits); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if opens != affordable || audits != affordable {
		t.Errorf("case_open rows = %d, audits = %d, want %d", opens, audits, affordable)
	}

	report, err := reconcile.NewReconcileService(txManager, userRepo, txRepo).Run(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report.Drifts) != 0 {
		t.Errorf("drifts = %+v", report.Drifts)
	}
}
