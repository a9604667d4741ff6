package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/advance"
	advancepg "github.com/rmacedo/prestacao-viagens/internal/advance/postgres"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
	authpg "github.com/rmacedo/prestacao-viagens/internal/auth/postgres"
	"github.com/rmacedo/prestacao-viagens/internal/department"
	departmentpg "github.com/rmacedo/prestacao-viagens/internal/department/postgres"
	"github.com/rmacedo/prestacao-viagens/internal/expense"
	expensepg "github.com/rmacedo/prestacao-viagens/internal/expense/postgres"
	"github.com/rmacedo/prestacao-viagens/internal/transport"
	"github.com/rmacedo/prestacao-viagens/internal/transport/rest"
	"github.com/rmacedo/prestacao-viagens/internal/trip"
	trippg "github.com/rmacedo/prestacao-viagens/internal/trip/postgres"
	"github.com/rmacedo/prestacao-viagens/internal/user"
	userpg "github.com/rmacedo/prestacao-viagens/internal/user/postgres"
	"github.com/rmacedo/prestacao-viagens/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

// balanceSource joins the advance and expense totals behind the user
// balance calculation.
type balanceSource struct {
	advances *advancepg.AdvanceRepository
	expenses *expensepg.ExpenseRepository
}

func (b balanceSource) SumAdvancesByUser(userID int64) (int64, error) {
	return b.advances.SumByUser(userID)
}

func (b balanceSource) SumExpensesByUser(userID int64) (int64, error) {
	return b.expenses.SumByUser(userID)
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Env, config.Logging.Level)
	lg := logger.L()

	if err := validateOpenAPISpec("api/openapi.yml"); err != nil {
		lg.Warn("openapi spec validation failed", "error", err)
	}

	sqlDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	authRepo := authpg.NewRepository(gormDB)
	userRepo := userpg.NewUserRepository(gormDB)
	departmentRepo := departmentpg.NewDepartmentRepository(gormDB)
	tripRepo := trippg.NewTripRepository(gormDB)
	advanceRepo := advancepg.NewAdvanceRepository(gormDB)
	expenseRepo := expensepg.NewExpenseRepository(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	departmentService := department.NewService(departmentRepo, lg)
	userService := user.NewService(
		userRepo,
		balanceSource{advances: advanceRepo, expenses: expenseRepo},
		tripRepo,
		authService,
		lg,
	)
	tripService := trip.NewService(tripRepo, lg)
	advanceService := advance.NewService(advanceRepo, lg)
	expenseService := expense.NewService(expenseRepo, userRepo, lg)

	base := transport.NewBaseHandler(lg)
	handlers := rest.Handlers{
		Auth:       auth.NewHandler(authService),
		User:       user.NewHandler(base, userService),
		Department: department.NewHandler(base, departmentService),
		Trip:       trip.NewHandler(base, tripService),
		Advance:    advance.NewHandler(base, advanceService),
		Expense:    expense.NewHandler(base, expenseService),
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       sqlDB,
		Router:   chi.NewRouter(),
		Handlers: handlers,
	}, nil
}

// validateOpenAPISpec loads and validates the published contract so drift
// shows up at startup instead of in a client.
func validateOpenAPISpec(path string) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("spec is invalid: %w", err)
	}
	return nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
