package purchase

import (
	"casebox_backend/internal/config"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/service"
	"time"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type serv struct {
	txManager trm.Manager

	userRepo     repository.UserRepository
	txRepo       repository.TransactionRepository
	auditRepo    repository.AuditRepository
	treasuryRepo repository.TreasuryRepository
	statsRepo    repository.PayoutStatsRepository

	catalog    service.CatalogService
	ledger     service.LedgerService
	classifier service.ClassifierService
	policy     service.PolicyService
	draw       service.DrawService

	historyWindow time.Duration
	cfg           config.PurchaseConfig
	now           func() time.Time
}

// Deps - зависимости оркестратора покупки
type Deps struct {
	TxManager trm.Manager

	UserRepo     repository.UserRepository
	TxRepo       repository.TransactionRepository
	AuditRepo    repository.AuditRepository
	TreasuryRepo repository.TreasuryRepository
	StatsRepo    repository.PayoutStatsRepository

	Catalog    service.CatalogService
	Ledger     service.LedgerService
	Classifier service.ClassifierService
	Policy     service.PolicyService
	Draw       service.DrawService

	ClassifierCfg config.ClassifierConfig
	PurchaseCfg   config.PurchaseConfig

	// Now - часы классификатора, по умолчанию time.Now
	Now func() time.Time
}

func NewPurchaseService(d Deps) service.PurchaseService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &serv{
		txManager:     d.TxManager,
		userRepo:      d.UserRepo,
		txRepo:        d.TxRepo,
		auditRepo:     d.AuditRepo,
		treasuryRepo:  d.TreasuryRepo,
		statsRepo:     d.StatsRepo,
		catalog:       d.Catalog,
		ledger:        d.Ledger,
		classifier:    d.Classifier,
		policy:        d.Policy,
		draw:          d.Draw,
		historyWindow: d.ClassifierCfg.HistoryWindow(),
		cfg:           d.PurchaseCfg,
		now:           now,
	}
}
