package repositories

import (
	"context"

	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account scoped to its owning user.
	FindAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing
	// accounts surface as apperrors.ErrNotFound.
	FindAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountsByIDsForUpdate retrieves and row-locks accounts within an
	// open database transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// ListAccountsByUser retrieves all accounts owned by a user.
	ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account inactive without removing it.
	DeactivateAccount(ctx context.Context, userID string, accountID string, updatedBy string) error

	// DeleteAccount removes an account. Fails with apperrors.ErrConstraint
	// when the account is a system account or still owns journal lines.
	DeleteAccount(ctx context.Context, userID string, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
