package ledger

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository/memory_repo"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newTestLedger(t *testing.T) (*memory_repo.Store, *serv) {
	t.Helper()
	store := memory_repo.NewStore()
	store.AddUser(model.User{ID: 1, Kind: model.AccountNormal, Active: true})
	store.Deposit(1, model.BalanceReal, 1000)
	store.Deposit(1, model.BalanceDemo, 5000)

	s := NewLedgerService(memory_repo.NewUserRepository(store), memory_repo.NewTransactionRepository(store)).(*serv)
	return store, s
}

func TestDebitCredit(t *testing.T) {
	store, s := newTestLedger(t)
	ctx := context.Background()
	corr := uuid.New()

	debit, err := s.Debit(ctx, model.LedgerEntry{UserID: 1, Kind: model.BalanceReal, Amount: 300, Type: model.TxCaseOpen, CorrelationID: corr})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if debit.Before != 1000 || debit.After != 700 {
		t.Errorf("debit snapshot = %+v", debit)
	}

	credit, err := s.Credit(ctx, model.LedgerEntry{UserID: 1, Kind: model.BalanceReal, Amount: 0, Type: model.TxPrize, CorrelationID: corr})
	if err != nil {
		t.Fatalf("zero credit: %v", err)
	}
	if credit.Before != 700 || credit.After != 700 {
		t.Errorf("credit snapshot = %+v", credit)
	}

	u, _ := store.User(1)
	if u.Balance != 700 || u.DemoBalance != 5000 {
		t.Errorf("balances real/demo = %d/%d", u.Balance, u.DemoBalance)
	}

	// Каждая строка журнала: after - before == value
	for _, tx := range store.Transactions() {
		if tx.BalanceAfter-tx.BalanceBefore != tx.Value {
			t.Errorf("tx %d: %d - %d != %d", tx.ID, tx.BalanceAfter, tx.BalanceBefore, tx.Value)
		}
	}
}

func TestDebit_InsufficientFunds(t *testing.T) {
	store, s := newTestLedger(t)
	before := len(store.Transactions())

	_, err := s.Debit(context.Background(), model.LedgerEntry{UserID: 1, Kind: model.BalanceReal, Amount: 1001, Type: model.TxCaseOpen})
	if !errors.Is(err, model.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := len(store.Transactions()); got != before {
		t.Errorf("transactions written on failed debit: %d -> %d", before, got)
	}
	if u, _ := store.User(1); u.Balance != 1000 {
		t.Errorf("balance = %d", u.Balance)
	}
}

func TestDemoTrackIsolated(t *testing.T) {
	store, s := newTestLedger(t)

	if _, err := s.Debit(context.Background(), model.LedgerEntry{UserID: 1, Kind: model.BalanceDemo, Amount: 5000, Type: model.TxCaseOpen}); err != nil {
		t.Fatalf("demo debit: %v", err)
	}
	u, _ := store.User(1)
	if u.Balance != 1000 || u.DemoBalance != 0 {
		t.Errorf("balances real/demo = %d/%d", u.Balance, u.DemoBalance)
	}
}

func TestNegativeAmount(t *testing.T) {
	_, s := newTestLedger(t)
	for _, op := range []func(context.Context, model.LedgerEntry) (model.BalanceChange, error){s.Debit, s.Credit} {
		if _, err := op(context.Background(), model.LedgerEntry{UserID: 1, Kind: model.BalanceReal, Amount: -1}); err == nil {
			t.Error("negative amount accepted")
		}
	}
}

func TestUnknownUser(t *testing.T) {
	_, s := newTestLedger(t)
	_, err := s.Credit(context.Background(), model.LedgerEntry{UserID: 42, Kind: model.BalanceReal, Amount: 10, Type: model.TxPrize})
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
