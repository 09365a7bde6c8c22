package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbook/reconcore/internal/apperrors"
	"github.com/finbook/reconcore/internal/core/domain"
	portsrepo "github.com/finbook/reconcore/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, user_id, name, account_type, currency_code, description, is_system, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.UserID,
		&acc.Name,
		&acc.AccountType,
		&acc.CurrencyCode,
		&acc.Description,
		&acc.IsSystem,
		&acc.IsActive,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	return acc, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.UserID,
		account.Name,
		account.AccountType,
		account.CurrencyCode,
		account.Description,
		account.IsSystem,
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
		}
		return apperrors.NewAppError(500, "failed to insert account "+account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves one account scoped to its owning user.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 AND user_id = $2;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, apperrors.NewAppError(500, "failed to find account "+accountID, err)
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID. Any missing
// account makes the whole lookup fail with ErrNotFound.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) AND user_id = $2;`
	rows, err := r.Pool.Query(ctx, query, accountIDs, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account", err)
		}
		accounts[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read accounts", err)
	}

	for _, id := range accountIDs {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accounts, nil
}

// FindAccountsByIDsForUpdate retrieves and row-locks accounts within an open
// database transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock accounts", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked account", err)
		}
		accounts[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read locked accounts", err)
	}

	for _, id := range accountIDs {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accounts, nil
}

// ListAccountsByUser retrieves all accounts owned by a user.
func (r *PgxAccountRepository) ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY account_id;`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// DeactivateAccount marks an account inactive without removing it.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, userID string, accountID string, updatedBy string) error {
	query := `
		UPDATE accounts SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1 AND user_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, accountID, userID, time.Now(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate account "+accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}

// DeleteAccount removes an account. System accounts and accounts that still
// own journal lines are protected: the former by an explicit guard, the
// latter by the RESTRICT foreign key from transactions.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, userID string, accountID string) error {
	query := `DELETE FROM accounts WHERE account_id = $1 AND user_id = $2 AND is_system = FALSE;`
	tag, err := r.Pool.Exec(ctx, query, accountID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return &apperrors.ConstraintViolationError{
				Op:     "delete account",
				Detail: fmt.Sprintf("account %s still has journal lines", accountID),
			}
		}
		return apperrors.NewAppError(500, "failed to delete account "+accountID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or a protected system account; disambiguate.
		var isSystem bool
		err := r.Pool.QueryRow(ctx, `SELECT is_system FROM accounts WHERE account_id = $1 AND user_id = $2;`, accountID, userID).Scan(&isSystem)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if err != nil {
			return apperrors.NewAppError(500, "failed to inspect account "+accountID, err)
		}
		return &apperrors.ConstraintViolationError{
			Op:     "delete account",
			Detail: fmt.Sprintf("account %s is a protected system account", accountID),
		}
	}
	return nil
}
