// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "currency-wallet/internal/api"
	"currency-wallet/internal/api/handler"
	"currency-wallet/internal/config"
	"currency-wallet/internal/rates"
	"currency-wallet/internal/repository"
	"currency-wallet/internal/repository/postgres"
	"currency-wallet/internal/service"
	"currency-wallet/internal/util"
	"currency-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository   repository.UserRepository
	LedgerRepository repository.LedgerRepository
	RateRepository   repository.RateRepository

	// Rate source
	RateSource rates.Source

	// Services
	WalletService service.WalletService
	RateService   service.RateService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	util.InitLogger()
	app.Logger = util.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.LedgerRepository = postgres.NewLedgerRepository(app.DB)
	app.RateRepository = postgres.NewRateRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	app.RateSource = rates.NewBOIClient(
		app.Config.Rates.BaseURL,
		app.Config.Rates.Timeout,
		app.Config.Rates.LookbackDays,
	)

	app.WalletService = service.NewWalletService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.LedgerRepository,
		app.RateSource,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.RateService = service.NewRateService(app.DB, app.RateRepository, app.RateSource, app.Logger)
	app.Logger.Info("Services initialized.")

	walletHandler := handler.NewWalletHandler(app.WalletService, app.Logger)
	ratesHandler := handler.NewRatesHandler(app.RateService, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, ratesHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
