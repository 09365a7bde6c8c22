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

// PgxReconciliationRepository persists atomic transactions, bank statement
// transactions and reconciliation matches.
type PgxReconciliationRepository struct {
	BaseRepository
}

// newPgxReconciliationRepository creates a new repository for reconciliation data.
func newPgxReconciliationRepository(pool *pgxpool.Pool) *PgxReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AtomicTransactionReader = (*PgxReconciliationRepository)(nil)
var _ portsrepo.BankTransactionReader = (*PgxReconciliationRepository)(nil)
var _ portsrepo.MatchRepositoryFacade = (*PgxReconciliationRepository)(nil)

const atomicColumns = `atomic_transaction_id, user_id, account_id, amount, currency_code, transaction_date, description, created_at, created_by, last_updated_at, last_updated_by`

func scanAtomic(rows pgx.Rows) (domain.AtomicTransaction, error) {
	var t domain.AtomicTransaction
	err := rows.Scan(
		&t.AtomicTransactionID,
		&t.UserID,
		&t.AccountID,
		&t.Amount,
		&t.CurrencyCode,
		&t.TransactionDate,
		&t.Description,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	return t, err
}

// ListUnmatchedByAccount retrieves the candidate pool for a matching run:
// atomic transactions of one account and currency not yet consumed by a
// confirmed match.
func (r *PgxReconciliationRepository) ListUnmatchedByAccount(ctx context.Context, userID string, accountID string, currencyCode string) ([]domain.AtomicTransaction, error) {
	query := `
		SELECT ` + atomicColumns + `
		FROM atomic_transactions a
		WHERE a.user_id = $1 AND a.account_id = $2 AND a.currency_code = $3
		  AND NOT EXISTS (
		      SELECT 1 FROM reconciliation_matches m
		      WHERE m.target_kind = $4 AND m.target_id = a.atomic_transaction_id AND m.status = $5
		  )
		ORDER BY a.transaction_date, a.atomic_transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID, accountID, currencyCode, domain.TargetAtomicTransaction, domain.MatchConfirmed)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query candidate pool", err)
	}
	defer rows.Close()
	return collectAtomic(rows)
}

// ListByUser retrieves every atomic transaction of a user.
func (r *PgxReconciliationRepository) ListByUser(ctx context.Context, userID string) ([]domain.AtomicTransaction, error) {
	query := `SELECT ` + atomicColumns + ` FROM atomic_transactions a WHERE a.user_id = $1 ORDER BY a.transaction_date, a.atomic_transaction_id;`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query atomic transactions", err)
	}
	defer rows.Close()
	return collectAtomic(rows)
}

func collectAtomic(rows pgx.Rows) ([]domain.AtomicTransaction, error) {
	var transactions []domain.AtomicTransaction
	for rows.Next() {
		txn, err := scanAtomic(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan atomic transaction", err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// ListByStatement retrieves the bank transactions of one statement in
// statement order.
func (r *PgxReconciliationRepository) ListByStatement(ctx context.Context, userID string, statementID string) ([]domain.BankStatementTransaction, error) {
	query := `
		SELECT bank_transaction_id, statement_id, user_id, account_id, amount, currency_code,
		       transaction_date, running_balance, description,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM bank_statement_transactions
		WHERE user_id = $1 AND statement_id = $2
		ORDER BY transaction_date, bank_transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID, statementID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bank transactions", err)
	}
	defer rows.Close()

	var transactions []domain.BankStatementTransaction
	for rows.Next() {
		var t domain.BankStatementTransaction
		err := rows.Scan(
			&t.BankTransactionID,
			&t.StatementID,
			&t.UserID,
			&t.AccountID,
			&t.Amount,
			&t.CurrencyCode,
			&t.TransactionDate,
			&t.RunningBalance,
			&t.Description,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bank transaction", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

const matchColumns = `match_id, user_id, bank_transaction_id, target_kind, target_id, score, confidence, method, status, split_group_id, created_at, created_by, last_updated_at, last_updated_by`

func scanMatch(row pgx.Row) (domain.ReconciliationMatch, error) {
	var m domain.ReconciliationMatch
	err := row.Scan(
		&m.MatchID,
		&m.UserID,
		&m.BankTransactionID,
		&m.Target.Kind,
		&m.Target.ID,
		&m.Score,
		&m.Confidence,
		&m.Method,
		&m.Status,
		&m.SplitGroupID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveCandidates persists a batch of candidate matches.
func (r *PgxReconciliationRepository) SaveCandidates(ctx context.Context, matches []domain.ReconciliationMatch) error {
	if len(matches) == 0 {
		return nil
	}
	query := `
		INSERT INTO reconciliation_matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	batch := &pgx.Batch{}
	for _, m := range matches {
		if m.Target.IsZero() {
			return fmt.Errorf("%w: match %s has no target", apperrors.ErrValidation, m.MatchID)
		}
		batch.Queue(query,
			m.MatchID,
			m.UserID,
			m.BankTransactionID,
			m.Target.Kind,
			m.Target.ID,
			m.Score,
			m.Confidence,
			m.Method,
			m.Status,
			m.SplitGroupID,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	if err := r.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert candidate matches", err)
	}
	return nil
}

// FindMatchByID retrieves one match scoped to its owning user.
func (r *PgxReconciliationRepository) FindMatchByID(ctx context.Context, userID string, matchID string) (*domain.ReconciliationMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM reconciliation_matches WHERE match_id = $1 AND user_id = $2;`
	m, err := scanMatch(r.Pool.QueryRow(ctx, query, matchID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %s", apperrors.ErrNotFound, matchID)
		}
		return nil, apperrors.NewAppError(500, "failed to find match "+matchID, err)
	}
	return &m, nil
}

// ListMatchesByStatement retrieves matches for every bank transaction of a statement.
func (r *PgxReconciliationRepository) ListMatchesByStatement(ctx context.Context, userID string, statementID string) ([]domain.ReconciliationMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM reconciliation_matches m
		WHERE m.user_id = $1 AND m.bank_transaction_id IN (
		    SELECT bank_transaction_id FROM bank_statement_transactions WHERE statement_id = $2
		)
		ORDER BY m.match_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID, statementID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query matches", err)
	}
	defer rows.Close()

	var matches []domain.ReconciliationMatch
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan match", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ConfirmMatch promotes a candidate to CONFIRMED.
//
// Serialization: the account of the matched bank transaction is locked with
// a transaction-scoped advisory lock, so two concurrent confirmations
// touching the same account run one after the other. The partial unique
// index on confirmed atomic targets is the correctness backstop: even if a
// second writer slips through, exactly one confirmation survives and the
// loser gets a constraint violation with nothing mutated.
func (r *PgxReconciliationRepository) ConfirmMatch(ctx context.Context, userID string, matchID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var accountID string
	var status domain.MatchStatus
	lookupQuery := `
		SELECT b.account_id, m.status
		FROM reconciliation_matches m
		JOIN bank_statement_transactions b ON b.bank_transaction_id = m.bank_transaction_id
		WHERE m.match_id = $1 AND m.user_id = $2
		FOR UPDATE OF m;
	`
	if err := tx.QueryRow(ctx, lookupQuery, matchID, userID).Scan(&accountID, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: match %s", apperrors.ErrNotFound, matchID)
		}
		return apperrors.NewAppError(500, "failed to load match "+matchID, err)
	}
	if status == domain.MatchConfirmed {
		return nil // idempotent re-confirmation
	}
	if status == domain.MatchDiscarded {
		return &apperrors.ConstraintViolationError{
			Op:     "confirm match",
			Detail: fmt.Sprintf("match %s was discarded", matchID),
		}
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, accountID); err != nil {
		return apperrors.NewAppError(500, "failed to take account lock for "+accountID, err)
	}

	updateQuery := `
		UPDATE reconciliation_matches
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE match_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, matchID, domain.MatchConfirmed, time.Now(), userID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on confirmed target
			return &apperrors.ConstraintViolationError{
				Op:     "confirm match",
				Detail: "atomic transaction already consumed by another confirmed match",
			}
		}
		return apperrors.NewAppError(500, "failed to confirm match "+matchID, err)
	}
	if err := r.Commit(ctx, tx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &apperrors.ConstraintViolationError{
				Op:     "confirm match",
				Detail: "atomic transaction already consumed by another confirmed match",
			}
		}
		return err
	}
	return nil
}

// DiscardMatch marks a candidate DISCARDED.
func (r *PgxReconciliationRepository) DiscardMatch(ctx context.Context, userID string, matchID string) error {
	query := `
		UPDATE reconciliation_matches
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE match_id = $1 AND user_id = $2 AND status = $6;
	`
	tag, err := r.Pool.Exec(ctx, query, matchID, userID, domain.MatchDiscarded, time.Now(), userID, domain.MatchCandidate)
	if err != nil {
		return apperrors.NewAppError(500, "failed to discard match "+matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: candidate match %s", apperrors.ErrNotFound, matchID)
	}
	return nil
}
