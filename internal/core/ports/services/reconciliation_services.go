package services

import (
	"context"

	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/finbook/reconcore/internal/dto"
)

// MatchingSvcFacade exposes the bank-statement matching operations.
type MatchingSvcFacade interface {
	// ExecuteMatching scores one statement batch against the account's
	// candidate pool. Pure over its inputs: no global state is read or
	// mutated and the result is deterministic for fixed inputs and config.
	ExecuteMatching(ctx context.Context, batch dto.AccountMatchingBatch, cfg domain.MatchingConfig, router domain.RouterConfig) (*dto.MatchingResult, error)

	// ExecuteMatchingAll fans independent account batches out to a worker
	// pool. Results are returned in input order.
	ExecuteMatchingAll(ctx context.Context, batches []dto.AccountMatchingBatch, cfg domain.MatchingConfig, router domain.RouterConfig) ([]dto.MatchingResult, error)

	// PersistCandidates stores the scored candidates of a matching run for
	// the review surface. Confirmation happens separately.
	PersistCandidates(ctx context.Context, result dto.MatchingResult) error

	// ConfirmMatch promotes a candidate match to CONFIRMED through the
	// persistent store; the one operation requiring per-account
	// serialization.
	ConfirmMatch(ctx context.Context, userID string, matchID string) error
}

// ConsistencySvcFacade exposes the post-hoc consistency scans.
type ConsistencySvcFacade interface {
	// ScanUser runs the duplicate, transfer-pair and anomaly scans over the
	// user's transactions and persists the findings. Ledger state is never
	// mutated.
	ScanUser(ctx context.Context, userID string) (*dto.ConsistencyScanReport, error)
}
