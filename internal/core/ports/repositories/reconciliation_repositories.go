package repositories

import (
	"context"

	"github.com/finbook/reconcore/internal/core/domain"
)

// AtomicTransactionReader defines read operations for atomic transactions
type AtomicTransactionReader interface {
	// ListUnmatchedByAccount retrieves the atomic transactions of one
	// account and currency that are not yet part of a confirmed match: the
	// candidate pool for a matching run.
	ListUnmatchedByAccount(ctx context.Context, userID string, accountID string, currencyCode string) ([]domain.AtomicTransaction, error)

	// ListByUser retrieves every atomic transaction of a user, across all
	// accounts. Feeds the consistency scans.
	ListByUser(ctx context.Context, userID string) ([]domain.AtomicTransaction, error)
}

// BankTransactionReader defines read operations for bank statement transactions
type BankTransactionReader interface {
	// ListByStatement retrieves the bank transactions of one statement in
	// statement order.
	ListByStatement(ctx context.Context, userID string, statementID string) ([]domain.BankStatementTransaction, error)
}

// MatchReader defines read operations for reconciliation matches
type MatchReader interface {
	// FindMatchByID retrieves a specific match scoped to its owning user.
	FindMatchByID(ctx context.Context, userID string, matchID string) (*domain.ReconciliationMatch, error)

	// ListMatchesByStatement retrieves matches for every bank transaction of
	// a statement.
	ListMatchesByStatement(ctx context.Context, userID string, statementID string) ([]domain.ReconciliationMatch, error)
}

// MatchWriter defines write operations for reconciliation matches
type MatchWriter interface {
	// SaveCandidates persists a batch of candidate matches.
	SaveCandidates(ctx context.Context, matches []domain.ReconciliationMatch) error

	// ConfirmMatch promotes a candidate to CONFIRMED under a per-account
	// serialization guarantee. Returns apperrors.ErrConstraint when the
	// targeted atomic transaction is already consumed by another confirmed
	// match.
	ConfirmMatch(ctx context.Context, userID string, matchID string) error

	// DiscardMatch marks a candidate DISCARDED.
	DiscardMatch(ctx context.Context, userID string, matchID string) error
}

// MatchRepositoryFacade combines all match-related repository interfaces
type MatchRepositoryFacade interface {
	MatchReader
	MatchWriter
}

// ConsistencyCheckWriter defines write operations for consistency findings
type ConsistencyCheckWriter interface {
	// SaveChecks persists a batch of findings.
	SaveChecks(ctx context.Context, checks []domain.ConsistencyCheck) error

	// ResolveCheck records a human or automated resolution.
	ResolveCheck(ctx context.Context, userID string, checkID string, status domain.CheckStatus, note string, resolvedBy string) error
}

// ConsistencyCheckReader defines read operations for consistency findings
type ConsistencyCheckReader interface {
	// ListPendingByUser retrieves one page of unresolved findings for review,
	// ordered by detection time. nextToken is the cursor returned by the
	// previous page, empty for the first page. Returns an empty cursor when
	// no further pages exist.
	ListPendingByUser(ctx context.Context, userID string, limit int, nextToken string) ([]domain.ConsistencyCheck, string, error)
}

// ConsistencyCheckRepositoryFacade combines the consistency check interfaces
type ConsistencyCheckRepositoryFacade interface {
	ConsistencyCheckReader
	ConsistencyCheckWriter
}
