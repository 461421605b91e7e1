package reconcile

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/service"
	"context"
	"fmt"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/settings"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// Журнал и балансы читаются из одного снимка, иначе покупка,
// закоммиченная между запросами, выглядит как расхождение
var snapshotSettings = trmpgx.MustSettings(settings.Must(), trmpgx.WithTxOptions(pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}))

type serv struct {
	txManager trm.Manager
	userRepo  repository.UserRepository
	txRepo    repository.TransactionRepository
}

// NewReconcileService - сверка сохранённых балансов с журналом транзакций.
// Только чтение и лог, балансы никогда не правятся автоматически
func NewReconcileService(
	txManager trm.Manager,
	userRepo repository.UserRepository,
	txRepo repository.TransactionRepository,
) service.ReconcileService {
	return &serv{
		txManager: txManager,
		userRepo:  userRepo,
		txRepo:    txRepo,
	}
}

func (s *serv) Run(ctx context.Context) (*model.ReconcileReport, error) {
	var (
		sums  []model.LedgerSum
		users []model.User
	)
	err := s.txManager.DoWithSettings(ctx, snapshotSettings, func(ctx context.Context) error {
		var err error
		sums, err = s.txRepo.SumCompletedByUser(ctx)
		if err != nil {
			return fmt.Errorf("sum ledger: %w", err)
		}
		users, err = s.userRepo.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	type key struct {
		user int64
		kind model.BalanceKind
	}
	ledger := make(map[key]model.Money, len(sums))
	for _, sum := range sums {
		ledger[key{sum.UserID, sum.BalanceKind}] = sum.Sum
	}

	report := &model.ReconcileReport{UsersChecked: len(users)}
	for _, u := range users {
		for _, kind := range []model.BalanceKind{model.BalanceReal, model.BalanceDemo} {
			stored := u.BalanceOf(kind)
			fromLedger := ledger[key{u.ID, kind}]
			if stored == fromLedger {
				continue
			}

			drift := model.BalanceDrift{
				UserID:      u.ID,
				BalanceKind: kind,
				Stored:      stored,
				Ledger:      fromLedger,
			}
			report.Drifts = append(report.Drifts, drift)
			log.WithFields(log.Fields{
				"user_id":      u.ID,
				"balance_kind": kind,
				"stored":       stored.String(),
				"ledger":       fromLedger.String(),
			}).Error("balance drift")
		}
	}

	log.WithFields(log.Fields{
		"users":  report.UsersChecked,
		"drifts": len(report.Drifts),
	}).Info("reconciliation finished")
	return report, nil
}
