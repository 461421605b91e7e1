package app

import (
	purchaseAPI "casebox_backend/internal/api/purchase"
	"casebox_backend/internal/config"
	"casebox_backend/internal/config/env"
	"casebox_backend/internal/jobs"
	"casebox_backend/internal/middleware"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/repository/audit_repo"
	"casebox_backend/internal/repository/catalog_repo"
	"casebox_backend/internal/repository/payout_stats_repo"
	"casebox_backend/internal/repository/transaction_repo"
	"casebox_backend/internal/repository/treasury_repo"
	"casebox_backend/internal/repository/user_repo"
	"casebox_backend/internal/service"
	"casebox_backend/internal/service/catalog"
	"casebox_backend/internal/service/classifier"
	"casebox_backend/internal/service/draw"
	"casebox_backend/internal/service/ledger"
	"casebox_backend/internal/service/policy"
	"casebox_backend/internal/service/purchase"
	"casebox_backend/internal/service/reconcile"
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

const engineConfigPath = "config.yaml"

type ServiceProvider struct {
	//TXManager
	txManager trm.Manager
	getter    *trmpgx.CtxGetter

	// Database
	pgConfig config.PGConfig
	dbClient *pgxpool.Pool

	// Configs
	engineCfg *env.EngineConfig
	httpCfg   config.HTTPConfig
	jwtCfg    config.JWTConfig
	logCfg    config.LogConfig

	// Repositories
	userRepo        repository.UserRepository
	catalogRepo     repository.CatalogRepository
	transactionRepo repository.TransactionRepository
	auditRepo       repository.AuditRepository
	treasuryRepo    repository.TreasuryRepository
	payoutStatsRepo repository.PayoutStatsRepository

	// Engine
	catalogServ    service.CatalogService
	ledgerServ     service.LedgerService
	classifierServ service.ClassifierService
	policyServ     service.PolicyService
	drawServ       service.DrawService
	purchaseServ   service.PurchaseService
	reconcileServ  service.ReconcileService

	purchaseHand *purchaseAPI.Handler
	scheduler    *jobs.Scheduler

	router chi.Router
}

func newServiceProvider() *ServiceProvider {
	return &ServiceProvider{}
}

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		poolCfg, err := pgxpool.ParseConfig(sp.PgConfig().DSN())
		if err != nil {
			panic("failed to parse database dsn: " + err.Error())
		}
		poolCfg.MaxConns = sp.PgConfig().MaxConns()

		dbc, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping db: " + err.Error())
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}

		sp.txManager = m
	}

	return sp.txManager
}

// CtxGetter достаёт из контекста транзакцию, открытую TXManager
func (sp *ServiceProvider) CtxGetter() *trmpgx.CtxGetter {
	if sp.getter == nil {
		sp.getter = trmpgx.DefaultCtxGetter
	}
	return sp.getter
}

func (sp *ServiceProvider) EngineCfg() *env.EngineConfig {
	if sp.engineCfg == nil {
		cfg, err := env.NewEngineConfigFromYAML(engineConfigPath)
		if err != nil {
			panic("failed to get engine config: " + err.Error())
		}
		sp.engineCfg = cfg
	}
	return sp.engineCfg
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}

	return sp.httpCfg
}

func (sp *ServiceProvider) JWTCfg() config.JWTConfig {
	if sp.jwtCfg == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtCfg = cfg
	}
	return sp.jwtCfg
}

func (sp *ServiceProvider) LogCfg() config.LogConfig {
	if sp.logCfg == nil {
		cfg, err := env.NewLogConfig()
		if err != nil {
			panic("failed to get log config: " + err.Error())
		}
		sp.logCfg = cfg
	}
	return sp.logCfg
}

func (sp *ServiceProvider) UserRepo(ctx context.Context) repository.UserRepository {
	if sp.userRepo == nil {
		sp.userRepo = user_repo.NewUserRepository(sp.DBClient(ctx), sp.CtxGetter())
	}
	return sp.userRepo
}

func (sp *ServiceProvider) CatalogRepo(ctx context.Context) repository.CatalogRepository {
	if sp.catalogRepo == nil {
		sp.catalogRepo = catalog_repo.NewCatalogRepository(sp.DBClient(ctx), sp.CtxGetter())
	}
	return sp.catalogRepo
}

func (sp *ServiceProvider) TransactionRepo(ctx context.Context) repository.TransactionRepository {
	if sp.transactionRepo == nil {
		sp.transactionRepo = transaction_repo.NewTransactionRepository(sp.DBClient(ctx), sp.CtxGetter())
	}
	return sp.transactionRepo
}

func (sp *ServiceProvider) AuditRepo(ctx context.Context) repository.AuditRepository {
	if sp.auditRepo == nil {
		sp.auditRepo = audit_repo.NewAuditRepository(sp.DBClient(ctx), sp.CtxGetter())
	}
	return sp.auditRepo
}

func (sp *ServiceProvider) TreasuryRepo(ctx context.Context) repository.TreasuryRepository {
	if sp.treasuryRepo == nil {
		sp.treasuryRepo = treasury_repo.NewTreasuryRepository(sp.DBClient(ctx), sp.CtxGetter())
	}
	return sp.treasuryRepo
}

func (sp *ServiceProvider) PayoutStatsRepo() repository.PayoutStatsRepository {
	if sp.payoutStatsRepo == nil {
		cfg := sp.EngineCfg()
		sp.payoutStatsRepo = payout_stats_repo.NewPayoutStatsRepository(cfg.WindowSize(), cfg.CriticalDeviation())
	}
	return sp.payoutStatsRepo
}

func (sp *ServiceProvider) CatalogService(ctx context.Context) service.CatalogService {
	if sp.catalogServ == nil {
		sp.catalogServ = catalog.NewCatalogService(sp.CatalogRepo(ctx))
	}
	return sp.catalogServ
}

func (sp *ServiceProvider) LedgerService(ctx context.Context) service.LedgerService {
	if sp.ledgerServ == nil {
		sp.ledgerServ = ledger.NewLedgerService(sp.UserRepo(ctx), sp.TransactionRepo(ctx))
	}
	return sp.ledgerServ
}

func (sp *ServiceProvider) ClassifierService() service.ClassifierService {
	if sp.classifierServ == nil {
		sp.classifierServ = classifier.NewClassifierService(sp.EngineCfg())
	}
	return sp.classifierServ
}

func (sp *ServiceProvider) PolicyService() service.PolicyService {
	if sp.policyServ == nil {
		sp.policyServ = policy.NewPolicyService(sp.EngineCfg())
	}
	return sp.policyServ
}

func (sp *ServiceProvider) DrawService() service.DrawService {
	if sp.drawServ == nil {
		sp.drawServ = draw.NewDrawService(nil)
	}
	return sp.drawServ
}

func (sp *ServiceProvider) PurchaseService(ctx context.Context) service.PurchaseService {
	if sp.purchaseServ == nil {
		sp.purchaseServ = purchase.NewPurchaseService(purchase.Deps{
			TxManager:     sp.TXManager(ctx),
			UserRepo:      sp.UserRepo(ctx),
			TxRepo:        sp.TransactionRepo(ctx),
			AuditRepo:     sp.AuditRepo(ctx),
			TreasuryRepo:  sp.TreasuryRepo(ctx),
			StatsRepo:     sp.PayoutStatsRepo(),
			Catalog:       sp.CatalogService(ctx),
			Ledger:        sp.LedgerService(ctx),
			Classifier:    sp.ClassifierService(),
			Policy:        sp.PolicyService(),
			Draw:          sp.DrawService(),
			ClassifierCfg: sp.EngineCfg(),
			PurchaseCfg:   sp.EngineCfg(),
		})
	}
	return sp.purchaseServ
}

func (sp *ServiceProvider) ReconcileService(ctx context.Context) service.ReconcileService {
	if sp.reconcileServ == nil {
		sp.reconcileServ = reconcile.NewReconcileService(sp.TXManager(ctx), sp.UserRepo(ctx), sp.TransactionRepo(ctx))
	}
	return sp.reconcileServ
}

func (sp *ServiceProvider) PurchaseHandler(ctx context.Context) *purchaseAPI.Handler {
	if sp.purchaseHand == nil {
		sp.purchaseHand = purchaseAPI.NewHandler(purchaseAPI.HandlerDeps{
			Serv: sp.PurchaseService(ctx),
		})
	}
	return sp.purchaseHand
}

func (sp *ServiceProvider) Scheduler(ctx context.Context) *jobs.Scheduler {
	if sp.scheduler == nil {
		sp.scheduler = jobs.NewScheduler(sp.ReconcileService(ctx), sp.EngineCfg().Schedule())
	}
	return sp.scheduler
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		r := chi.NewRouter()

		// CORS middleware
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           60 * 15,
		}))

		// Purchase endpoints
		purchaseHandler := sp.PurchaseHandler(ctx)
		r.Group(func(rr chi.Router) {
			rr.Use(middleware.Auth(sp.JWTCfg().AccessTokenSecretKey()))
			rr.Post("/cases/{caseID}/purchase", purchaseHandler.Purchase)
			rr.Get("/purchases/{correlationID}", purchaseHandler.Receipt)
		})

		sp.router = r
	}

	return sp.router
}
