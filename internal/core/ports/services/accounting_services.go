package services

import (
	"context"
	"time"

	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/finbook/reconcore/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountingSvcFacade exposes the double-entry posting operations.
type AccountingSvcFacade interface {
	// PostJournal validates and persists a balanced journal atomically. On
	// imbalance the caller receives a BalanceViolationError naming the
	// offending currency and signed delta; nothing is persisted.
	PostJournal(ctx context.Context, userID string, req dto.CreateJournalRequest) (*domain.Journal, error)

	// PostDraftJournal promotes a DRAFT journal to POSTED after
	// re-validating its balance.
	PostDraftJournal(ctx context.Context, userID string, journalID string) (*domain.Journal, error)

	// VoidJournal marks a posted journal VOIDED and posts the automatically
	// generated reversing journal with every line's direction flipped.
	VoidJournal(ctx context.Context, userID string, journalID string) (*domain.Journal, error)

	// CalculateAccountBalance sums signed line amounts for one account up to
	// and including asOf (all lines when asOf is nil). Zero for an account
	// with no lines.
	CalculateAccountBalance(ctx context.Context, userID string, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// VerifyAccountingEquation recomputes the accounting equation across all
	// of the user's posted journals and returns an IntegrityError if any
	// currency carries a non-zero residual. Never auto-corrects.
	VerifyAccountingEquation(ctx context.Context, userID string) error
}

// AccountSvcFacade exposes account lifecycle operations.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, userID string, req dto.CreateAccountRequest) (*domain.Account, error)
	GetAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error)
	GetAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error)
	DeactivateAccount(ctx context.Context, userID string, accountID string) error

	// DeleteAccount removes an account; fails with apperrors.ErrConstraint
	// for system accounts and accounts with posted journal lines.
	DeleteAccount(ctx context.Context, userID string, accountID string) error
}
