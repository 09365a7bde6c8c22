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
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJournalRepository struct {
	BaseRepository
	accounts portsrepo.AccountReader
}

// newPgxJournalRepository creates a new repository for journal and line data.
// The account reader supplies the row locks taken while writing lines.
func newPgxJournalRepository(pool *pgxpool.Pool, accounts portsrepo.AccountReader) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}, accounts: accounts}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const journalColumns = `journal_id, user_id, journal_date, memo, source, status, original_journal_id, reversing_journal_id, created_at, created_by, last_updated_at, last_updated_by`

const transactionColumns = `transaction_id, journal_id, account_id, amount, transaction_type, currency_code, notes, created_at, created_by, last_updated_at, last_updated_by`

const insertJournalQuery = `
	INSERT INTO journals (` + journalColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`

const insertTransactionQuery = `
	INSERT INTO transactions (` + transactionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`

func scanJournal(row pgx.Row) (domain.Journal, error) {
	var j domain.Journal
	err := row.Scan(
		&j.JournalID,
		&j.UserID,
		&j.JournalDate,
		&j.Memo,
		&j.Source,
		&j.Status,
		&j.OriginalJournalID,
		&j.ReversingJournalID,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	return j, err
}

func scanTransaction(rows pgx.Rows) (domain.Transaction, error) {
	var t domain.Transaction
	err := rows.Scan(
		&t.TransactionID,
		&t.JournalID,
		&t.AccountID,
		&t.Amount,
		&t.TransactionType,
		&t.CurrencyCode,
		&t.Notes,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	return t, err
}

// insertJournalTx writes one journal and all of its lines inside tx.
func insertJournalTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, transactions []domain.Transaction) error {
	_, err := tx.Exec(ctx, insertJournalQuery,
		journal.JournalID,
		journal.UserID,
		journal.JournalDate,
		journal.Memo,
		journal.Source,
		journal.Status,
		journal.OriginalJournalID,
		journal.ReversingJournalID,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal "+journal.JournalID, err)
	}

	batch := &pgx.Batch{}
	for _, txn := range transactions {
		batch.Queue(insertTransactionQuery,
			txn.TransactionID,
			txn.JournalID,
			txn.AccountID,
			txn.Amount,
			txn.TransactionType,
			txn.CurrencyCode,
			txn.Notes,
			txn.CreatedAt,
			txn.CreatedBy,
			txn.LastUpdatedAt,
			txn.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for journal "+journal.JournalID, err)
	}
	return nil
}

// lineAccountIDs collects the distinct accounts a set of lines touches.
func lineAccountIDs(transactions []domain.Transaction) []string {
	seen := make(map[string]bool, len(transactions))
	ids := make([]string, 0, len(transactions))
	for _, txn := range transactions {
		if !seen[txn.AccountID] {
			seen[txn.AccountID] = true
			ids = append(ids, txn.AccountID)
		}
	}
	return ids
}

// SaveJournal persists a journal together with all of its lines atomically:
// either everything is stored or nothing is. The referenced accounts are
// row-locked for the duration of the insert, so concurrent postings to the
// same accounts serialize and a mid-flight account deletion cannot slip in.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // no-op after a successful commit

	if _, err := r.accounts.FindAccountsByIDsForUpdate(ctx, tx, lineAccountIDs(transactions)); err != nil {
		return err
	}
	if err := insertJournalTx(ctx, tx, journal, transactions); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveReversal persists a reversing journal with its lines and marks the
// original VOIDED in the same database transaction.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, reversing domain.Journal, transactions []domain.Transaction, originalJournalID string, updatedByUserID string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := r.accounts.FindAccountsByIDsForUpdate(ctx, tx, lineAccountIDs(transactions)); err != nil {
		return err
	}
	if err := insertJournalTx(ctx, tx, reversing, transactions); err != nil {
		return err
	}

	updateQuery := `
		UPDATE journals
		SET status = $2, reversing_journal_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE journal_id = $1 AND status = $6;
	`
	tag, err := tx.Exec(ctx, updateQuery, originalJournalID, domain.Voided, reversing.JournalID, updatedAt, updatedByUserID, domain.Posted)
	if err != nil {
		return apperrors.NewAppError(500, "failed to void journal "+originalJournalID, err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the race against a concurrent void; nothing was persisted.
		return &apperrors.ConstraintViolationError{
			Op:     "void journal",
			Detail: fmt.Sprintf("journal %s is not in POSTED state", originalJournalID),
		}
	}
	return r.Commit(ctx, tx)
}

// FindJournalByID retrieves a journal scoped to its owning user.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, userID string, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1 AND user_id = $2;`
	j, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, journalID)
		}
		return nil, apperrors.NewAppError(500, "failed to find journal "+journalID, err)
	}
	return &j, nil
}

// FindTransactionsByJournalID retrieves all lines of a single journal.
func (r *PgxJournalRepository) FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE journal_id = $1 ORDER BY transaction_id;`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines of journal "+journalID, err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line", err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// ListEffectiveTransactionsByUser retrieves every balance-affecting line of
// the user together with the account type of each touched account. Voided
// journals stay in; their posted reversals cancel them. Only drafts are out.
func (r *PgxJournalRepository) ListEffectiveTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, map[string]domain.AccountType, error) {
	query := `
		SELECT t.transaction_id, t.journal_id, t.account_id, t.amount, t.transaction_type, t.currency_code, t.notes,
		       t.created_at, t.created_by, t.last_updated_at, t.last_updated_by, a.account_type
		FROM transactions t
		JOIN journals j ON j.journal_id = t.journal_id
		JOIN accounts a ON a.account_id = t.account_id
		WHERE j.user_id = $1 AND j.status <> $2
		ORDER BY t.transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID, domain.Draft)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query posted lines", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	accountTypes := make(map[string]domain.AccountType)
	for rows.Next() {
		var t domain.Transaction
		var accountType domain.AccountType
		err := rows.Scan(
			&t.TransactionID,
			&t.JournalID,
			&t.AccountID,
			&t.Amount,
			&t.TransactionType,
			&t.CurrencyCode,
			&t.Notes,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
			&accountType,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan posted line", err)
		}
		transactions = append(transactions, t)
		accountTypes[t.AccountID] = accountType
	}
	return transactions, accountTypes, rows.Err()
}

// ListEffectiveTransactionsByAccount retrieves the balance-affecting lines
// (everything except drafts) of one account up to and including asOf (all
// lines when asOf is nil).
func (r *PgxJournalRepository) ListEffectiveTransactionsByAccount(ctx context.Context, userID string, accountID string, asOf *time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.journal_id, t.account_id, t.amount, t.transaction_type, t.currency_code, t.notes,
		       t.created_at, t.created_by, t.last_updated_at, t.last_updated_by
		FROM transactions t
		JOIN journals j ON j.journal_id = t.journal_id
		WHERE j.user_id = $1 AND t.account_id = $2 AND j.status <> $3
		  AND ($4::timestamptz IS NULL OR j.journal_date <= $4)
		ORDER BY j.journal_date, t.transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID, accountID, domain.Draft, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines of account "+accountID, err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account line", err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// UpdateJournalStatusAndLinks updates the status and reversal linkage of a journal.
func (r *PgxJournalRepository) UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.JournalStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE journals
		SET status = $2, reversing_journal_id = $3, original_journal_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE journal_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, journalID, status, reversingJournalID, originalJournalID, updatedAt, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal "+journalID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, journalID)
	}
	return nil
}
