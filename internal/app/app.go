package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"occasion-ledger/internal/config"
	"occasion-ledger/internal/db"
	ledgerdomain "occasion-ledger/internal/domain/ledger"
	userdomain "occasion-ledger/internal/domain/user"
	"occasion-ledger/internal/events"
	"occasion-ledger/internal/metrics"
	"occasion-ledger/internal/repository/inmemory"
	ledgerrepo "occasion-ledger/internal/repository/postgres/ledger"
	userrepo "occasion-ledger/internal/repository/postgres/user"
	"occasion-ledger/internal/transport/httpserver"
	"occasion-ledger/internal/transport/httpserver/handler"
	"occasion-ledger/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	publisher  *events.Publisher
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	application := &App{cfg: cfg}

	var (
		ledgerRepo ledgerdomain.Repository
		userRepo   userdomain.Repository
	)
	switch cfg.StorageBackend {
	case config.StorageBackendMemory:
		log.Warn("app: using in-memory storage, data is lost on restart")
		users := inmemory.NewUserRepository()
		userRepo = users
		ledgerRepo = inmemory.NewLedgerRepository(users)
	default:
		log.Info("app: initializing database")
		dbConn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		application.db = dbConn

		if cfg.DB.AutoMigrate {
			log.Info("app: running migrations")
			if err := db.Migrate(cfg.DB.GetDSN(), log); err != nil {
				application.Close()
				return nil, err
			}
		}
		userRepo = userrepo.NewPostgres(dbConn)
		ledgerRepo = ledgerrepo.NewPostgres(dbConn)
	}

	appMetrics := metrics.New()

	users := userdomain.NewService(userRepo).
		WithCache(inmemory.NewUsernameCache(), cfg.Users.UsernameCacheTTL)
	ledger := ledgerdomain.NewService(ledgerRepo, users).
		WithRecorder(appMetrics)

	if cfg.AMQP.URL != "" {
		log.Info("app: connecting to amqp")
		publisher, err := events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, log)
		if err != nil {
			application.Close()
			return nil, fmt.Errorf("init amqp publisher: %w", err)
		}
		application.publisher = publisher
		ledger.WithEvents(publisher, log)
	} else {
		ledger.WithEvents(nil, log)
	}

	log.Info("app: initializing router")
	handlers := handler.New(users, ledger, log)
	router := httpserver.NewRouter(cfg.HTTP, handlers, appMetrics)

	log.Info("app: initializing http server")
	application.httpServer = httpserver.New(cfg, router)

	return application, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) ShutdownTimeout() time.Duration {
	return a.cfg.HTTP.ShutdownTimeout
}

func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp: %w", err))
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
