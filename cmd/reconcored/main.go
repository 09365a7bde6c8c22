package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/finbook/reconcore/internal/apperrors"
	"github.com/finbook/reconcore/internal/core/services"
	"github.com/finbook/reconcore/internal/platform/config"
	"github.com/finbook/reconcore/internal/platform/logging"
	"github.com/finbook/reconcore/internal/repositories/database/pgsql"
	"github.com/finbook/reconcore/pkg/database"
)

// reconcored connects to the ledger database, applies pending migrations and
// runs an integrity sweep (accounting equation plus consistency scan) for
// every user ID passed on the command line.
func main() {
	logger := logging.New()
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := logging.WithLogger(context.Background(), logger)

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations"); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Database migrations applied.")

	repos := pgsql.NewRepositoryContainer(dbPool)
	svcs := services.NewServiceContainer(services.ContainerDeps{
		AccountRepo: repos.Account,
		JournalRepo: repos.Journal,
		AtomicRepo:  repos.Reconciliation,
		MatchRepo:   repos.Reconciliation,
		CheckRepo:   repos.Consistency,
	}, cfg.Matching)

	userIDs := os.Args[1:]
	if len(userIDs) == 0 {
		logger.Info("No user IDs given, nothing to sweep.")
		return
	}

	failed := false
	for _, userID := range userIDs {
		if err := sweepUser(ctx, svcs, userID); err != nil {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func sweepUser(ctx context.Context, svcs *services.ServiceContainer, userID string) error {
	logger := logging.FromCtx(ctx).With(slog.String("user_id", userID))

	if err := svcs.Accounting.VerifyAccountingEquation(ctx, userID); err != nil {
		var integrityErr *apperrors.IntegrityError
		if errors.As(err, &integrityErr) {
			logger.Error("Accounting equation violated",
				slog.String("currency", integrityErr.CurrencyCode),
				slog.String("residual", integrityErr.Residual.String()))
		} else {
			logger.Error("Equation verification failed", slog.String("error", err.Error()))
		}
		return err
	}
	logger.Info("Accounting equation holds.")

	report, err := svcs.Consistency.ScanUser(ctx, userID)
	if err != nil {
		logger.Error("Consistency scan failed", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Consistency scan complete",
		slog.Int("findings", len(report.Findings)),
		slog.Int("anomaly_skips", len(report.AnomalySkips)))
	return nil
}
