package domain

// MatchTargetKind discriminates what a reconciliation match points at on the
// ledger side.
type MatchTargetKind string

const (
	TargetAtomicTransaction MatchTargetKind = "ATOMIC_TRANSACTION"
	TargetJournal           MatchTargetKind = "JOURNAL"
)

// MatchTarget identifies the ledger-side counterpart of a match: exactly one
// of an atomic transaction or a journal entry. Construct through
// AtomicTarget or JournalTarget so the "one of, never neither" invariant
// holds by construction.
type MatchTarget struct {
	Kind MatchTargetKind `json:"kind"`
	ID   string          `json:"id"`
}

// AtomicTarget builds a target pointing at an atomic transaction.
func AtomicTarget(atomicTransactionID string) MatchTarget {
	return MatchTarget{Kind: TargetAtomicTransaction, ID: atomicTransactionID}
}

// JournalTarget builds a target pointing at a journal entry.
func JournalTarget(journalID string) MatchTarget {
	return MatchTarget{Kind: TargetJournal, ID: journalID}
}

// IsZero reports whether the target was never set.
func (t MatchTarget) IsZero() bool {
	return t.Kind == "" || t.ID == ""
}

// MatchMethod records how a match was produced.
type MatchMethod string

const (
	MethodExact  MatchMethod = "EXACT"
	MethodFuzzy  MatchMethod = "FUZZY"
	MethodManual MatchMethod = "MANUAL"
)

// MatchStatus is the lifecycle state of a reconciliation match.
type MatchStatus string

const (
	MatchCandidate MatchStatus = "CANDIDATE"
	MatchConfirmed MatchStatus = "CONFIRMED"
	MatchDiscarded MatchStatus = "DISCARDED"
)

// ConfidenceLevel is the discrete band assigned to a match score.
type ConfidenceLevel string

const (
	ConfidenceAutoConfirm ConfidenceLevel = "AUTO_CONFIRM"
	ConfidenceNeedsReview ConfidenceLevel = "NEEDS_REVIEW"
	ConfidenceReject      ConfidenceLevel = "REJECT"
)

// ReconciliationMatch links one bank statement transaction to a ledger-side
// target with a score and confidence band. An atomic transaction may appear
// in at most one confirmed match.
type ReconciliationMatch struct {
	MatchID           string          `json:"matchID"` // Primary Key (e.g., UUID)
	UserID            string          `json:"userID"`
	BankTransactionID string          `json:"bankTransactionID"` // FK -> BankStatementTransaction
	Target            MatchTarget     `json:"target"`
	Score             float64         `json:"score"` // Normalized to [0, 1]
	Confidence        ConfidenceLevel `json:"confidence"`
	Method            MatchMethod     `json:"method"`
	Status            MatchStatus     `json:"status"`
	SplitGroupID      string          `json:"splitGroupID"` // Non-empty when part of a one-to-many split match
	AuditFields
}
