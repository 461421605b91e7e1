package memory_repo

import (
	"context"
	"sync"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type txKey struct{}

// Manager - trm.Manager поверх Store.
// Единицы работы выполняются по одной (аналог блокировки строки), при ошибке состояние откатывается
type Manager struct {
	store *Store
	mu    sync.Mutex
}

func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// Вложенный вызов выполняется в уже открытой транзакции
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.store.snapshot()
	err := fn(context.WithValue(ctx, txKey{}, struct{}{}))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

func (m *Manager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}
