package dto

import "github.com/finbook/reconcore/internal/core/domain"

// AccountMatchingBatch is the unit of work for one matching run: the ordered
// bank transactions of a statement plus the unmatched candidate pool of the
// same account and currency. Batches for different accounts are independent
// and may be processed concurrently.
type AccountMatchingBatch struct {
	UserID           string
	AccountID        string
	StatementID      string
	BankTransactions []domain.BankStatementTransaction
	CandidatePool    []domain.AtomicTransaction
}

// MatchingSummary carries the band counters of one matching run.
type MatchingSummary struct {
	BankTransactions int `json:"bankTransactions"`
	Proposed         int `json:"proposed"`
	AutoConfirmed    int `json:"autoConfirmed"`
	NeedsReview      int `json:"needsReview"`
	// Rejected counts winners that landed in the reject band and were
	// therefore suppressed, not proposed.
	Rejected    int `json:"rejected"`
	Unmatched   int `json:"unmatched"`
	SplitGroups int `json:"splitGroups"`
}

// MatchingResult is the output of one matching run.
type MatchingResult struct {
	AccountID   string                       `json:"accountID"`
	StatementID string                       `json:"statementID"`
	Candidates  []domain.ReconciliationMatch `json:"candidates"`
	Summary     MatchingSummary              `json:"summary"`
}

// ConsistencyScanReport is the output of one consistency scan.
type ConsistencyScanReport struct {
	Findings []domain.ConsistencyCheck `json:"findings"`
	// AnomalySkips lists accounts whose anomaly scan was skipped for lack
	// of history, with the insufficient-data detail.
	AnomalySkips map[string]string `json:"anomalySkips,omitempty"`
}
