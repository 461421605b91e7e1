// Package memory_repo - хранилище в памяти с той же семантикой, что и postgres репозитории.
// Используется в тестах сервисов и для локального запуска без базы
package memory_repo

import (
	"casebox_backend/internal/model"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HouseUserID - владелец стартового капитала платформы, в users не хранится
const HouseUserID int64 = 0

// Store - общее состояние всех репозиториев в памяти
type Store struct {
	mu sync.Mutex

	users    map[int64]model.User
	cases    map[int64]model.Case
	prizes   []model.Prize
	txs      []model.Transaction
	audits   map[uuid.UUID]model.PurchaseAudit
	nextTxID int64

	txHook func(tx *model.Transaction) error
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:  make(map[int64]model.User),
		cases:  make(map[int64]model.Case),
		audits: make(map[uuid.UUID]model.PurchaseAudit),
		now:    time.Now,
	}
}

// snapshot - состояние для отката транзакции
type snapshot struct {
	users    map[int64]model.User
	txs      []model.Transaction
	audits   map[uuid.UUID]model.PurchaseAudit
	nextTxID int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		users:    make(map[int64]model.User, len(s.users)),
		txs:      make([]model.Transaction, len(s.txs)),
		audits:   make(map[uuid.UUID]model.PurchaseAudit, len(s.audits)),
		nextTxID: s.nextTxID,
	}
	for id, u := range s.users {
		snap.users[id] = u
	}
	copy(snap.txs, s.txs)
	for id, a := range s.audits {
		snap.audits[id] = a
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.txs = snap.txs
	s.audits = snap.audits
	s.nextTxID = snap.nextTxID
}

// SetClock подменяет часы, по которым ставится created_at
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetTransactionHook вызывается перед записью каждой транзакции.
// Ошибка хука прерывает запись (имитация сбоя базы)
func (s *Store) SetTransactionHook(hook func(tx *model.Transaction) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txHook = hook
}

// AddUser добавляет пользователя как есть, без записи в журнал
func (s *Store) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
}

func (s *Store) AddCase(c model.Case) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = c
}

func (s *Store) AddPrize(p model.Prize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prizes = append(s.prizes, p)
}

// Deposit пополняет дорожку пользователя с записью deposit в журнал
func (s *Store) Deposit(userID int64, kind model.BalanceKind, amount model.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	before := u.BalanceOf(kind)
	if kind == model.BalanceDemo {
		u.DemoBalance += amount
	} else {
		u.Balance += amount
		u.FirstDepositMade = true
	}
	s.users[userID] = u

	s.appendLocked(model.Transaction{
		UserID:        userID,
		Type:          model.TxDeposit,
		BalanceKind:   kind,
		Value:         amount,
		Status:        model.TxCompleted,
		BalanceBefore: before,
		BalanceAfter:  before + amount,
	})
}

// SeedHouseFunds - стартовый капитал платформы, увеличивает запас банкролла
func (s *Store) SeedHouseFunds(amount model.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(model.Transaction{
		UserID:        HouseUserID,
		Type:          model.TxDeposit,
		BalanceKind:   model.BalanceReal,
		Value:         amount,
		Status:        model.TxCompleted,
		BalanceBefore: 0,
		BalanceAfter:  amount,
	})
}

// SetStoredBalance меняет баланс в обход журнала (для проверки сверки)
func (s *Store) SetStoredBalance(userID int64, kind model.BalanceKind, amount model.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	if kind == model.BalanceDemo {
		u.DemoBalance = amount
	} else {
		u.Balance = amount
	}
	s.users[userID] = u
}

// User - копия пользователя
func (s *Store) User(id int64) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// Transactions - копия журнала
func (s *Store) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := make([]model.Transaction, len(s.txs))
	copy(txs, s.txs)
	return txs
}

// Audits - количество строк аудита
func (s *Store) Audits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audits)
}

func (s *Store) appendLocked(tx model.Transaction) model.Transaction {
	s.nextTxID++
	tx.ID = s.nextTxID
	tx.CreatedAt = s.now()
	s.txs = append(s.txs, tx)
	return tx
}
