package repositories

import (
	"context"
	"time"

	"github.com/finbook/reconcore/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a specific journal scoped to its owning user.
	FindJournalByID(ctx context.Context, userID string, journalID string) (*domain.Journal, error)

	// FindTransactionsByJournalID retrieves all lines of a single journal.
	FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error)

	// ListEffectiveTransactionsByUser retrieves every balance-affecting line
	// of the user, joined with its account type. POSTED and VOIDED journals
	// are both included: a voided journal stays in and is cancelled by its
	// posted reversal. Only DRAFT lines are excluded. Feeds the accounting
	// equation check.
	ListEffectiveTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, map[string]domain.AccountType, error)

	// ListEffectiveTransactionsByAccount retrieves the balance-affecting
	// lines (POSTED and VOIDED journals, never DRAFT) of one account up to
	// and including asOf (all when asOf is nil).
	ListEffectiveTransactionsByAccount(ctx context.Context, userID string, accountID string, asOf *time.Time) ([]domain.Transaction, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournal persists a journal together with all of its lines
	// atomically: either everything is stored or nothing is.
	SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction) error

	// UpdateJournalStatusAndLinks updates the status and reversal linkage
	// (original/reversing IDs) of a journal.
	UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.JournalStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error

	// SaveReversal persists a reversing journal with its lines and marks the
	// original VOIDED in one database transaction.
	SaveReversal(ctx context.Context, reversing domain.Journal, transactions []domain.Transaction, originalJournalID string, updatedByUserID string, updatedAt time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
