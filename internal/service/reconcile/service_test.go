package reconcile

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/repository/memory_repo"
	"casebox_backend/internal/service/ledger"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRun(t *testing.T) {
	store := memory_repo.NewStore()
	store.AddUser(model.User{ID: 1, Kind: model.AccountNormal, Active: true})
	store.AddUser(model.User{ID: 2, Kind: model.AccountDemoAffiliate, Active: true})
	store.Deposit(1, model.BalanceReal, 5000)
	store.Deposit(2, model.BalanceDemo, 3000)

	userRepo := memory_repo.NewUserRepository(store)
	txRepo := memory_repo.NewTransactionRepository(store)
	l := ledger.NewLedgerService(userRepo, txRepo)
	ctx := context.Background()

	corr := uuid.New()
	if _, err := l.Debit(ctx, model.LedgerEntry{UserID: 1, Kind: model.BalanceReal, Amount: 1000, Type: model.TxCaseOpen, CorrelationID: corr}); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if _, err := l.Credit(ctx, model.LedgerEntry{UserID: 1, Kind: model.BalanceReal, Amount: 400, Type: model.TxPrize, CorrelationID: corr}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	s := NewReconcileService(memory_repo.NewManager(store), userRepo, txRepo)

	report, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.UsersChecked != 2 || len(report.Drifts) != 0 {
		t.Fatalf("clean ledger: %+v", report)
	}

	// Баланс изменён в обход журнала
	store.SetStoredBalance(2, model.BalanceDemo, 9999)

	report, err = s.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Drifts) != 1 {
		t.Fatalf("drifts = %+v", report.Drifts)
	}
	want := model.BalanceDrift{UserID: 2, BalanceKind: model.BalanceDemo, Stored: 9999, Ledger: 3000}
	if report.Drifts[0] != want {
		t.Errorf("drift = %+v, want %+v", report.Drifts[0], want)
	}

	// Сверка ничего не чинит
	if u, _ := store.User(2); u.DemoBalance != 9999 {
		t.Errorf("reconcile modified the balance: %d", u.DemoBalance)
	}
}

// racingUserRepo запускает покупку между чтением журнала и чтением балансов
type racingUserRepo struct {
	repository.UserRepository
	race func()
}

func (r *racingUserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	if r.race != nil {
		r.race()
		r.race = nil
	}
	return r.UserRepository.ListUsers(ctx)
}

func TestRun_ConcurrentPurchaseIsNotDrift(t *testing.T) {
	store := memory_repo.NewStore()
	store.AddUser(model.User{ID: 1, Kind: model.AccountNormal, Active: true})
	store.Deposit(1, model.BalanceReal, 5000)

	txManager := memory_repo.NewManager(store)
	userRepo := memory_repo.NewUserRepository(store)
	txRepo := memory_repo.NewTransactionRepository(store)
	l := ledger.NewLedgerService(userRepo, txRepo)

	done := make(chan error, 1)
	purchase := func() {
		go func() {
			done <- txManager.Do(context.Background(), func(ctx context.Context) error {
				_, err := l.Debit(ctx, model.LedgerEntry{UserID: 1, Kind: model.BalanceReal, Amount: 1000, Type: model.TxCaseOpen, CorrelationID: uuid.New()})
				return err
			})
		}()
		// Даём покупке шанс закоммититься, если снимка нет
		select {
		case err := <-done:
			done <- err
		case <-time.After(50 * time.Millisecond):
		}
	}

	racing := &racingUserRepo{UserRepository: userRepo, race: purchase}
	s := NewReconcileService(txManager, racing, txRepo)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Drifts) != 0 {
		t.Fatalf("drifts = %+v", report.Drifts)
	}

	if err := <-done; err != nil {
		t.Fatalf("purchase: %v", err)
	}
	report, err = s.Run(context.Background())
	if err != nil {
		t.Fatalf("run after purchase: %v", err)
	}
	if len(report.Drifts) != 0 {
		t.Fatalf("drifts after purchase = %+v", report.Drifts)
	}
	if u, _ := store.User(1); u.Balance != 4000 {
		t.Errorf("balance = %d, want 4000", u.Balance)
	}
}
