package domain

import "time"

// CheckType classifies a consistency finding.
type CheckType string

const (
	CheckDuplicate    CheckType = "DUPLICATE"
	CheckTransferPair CheckType = "TRANSFER_PAIR"
	CheckAnomaly      CheckType = "ANOMALY"
)

// CheckSeverity grades how urgent a finding is for review.
type CheckSeverity string

const (
	SeverityLow    CheckSeverity = "LOW"
	SeverityMedium CheckSeverity = "MEDIUM"
	SeverityHigh   CheckSeverity = "HIGH"
)

// CheckStatus is the review state of a finding.
type CheckStatus string

const (
	CheckPending  CheckStatus = "PENDING"
	CheckApproved CheckStatus = "APPROVED"
	CheckRejected CheckStatus = "REJECTED"
	CheckFlagged  CheckStatus = "FLAGGED"
)

// ConsistencyCheck is one finding produced by the consistency scanner. The
// scanner never mutates ledger state; findings wait for an explicit human or
// automated resolution.
type ConsistencyCheck struct {
	CheckID        string        `json:"checkID"` // Primary Key (e.g., UUID)
	UserID         string        `json:"userID"`
	CheckType      CheckType     `json:"checkType"`
	TransactionIDs []string      `json:"transactionIDs"` // One or more implicated transactions
	Severity       CheckSeverity `json:"severity"`
	Status         CheckStatus   `json:"status"`
	Detail         string        `json:"detail"`         // Human-readable explanation
	ResolutionNote string        `json:"resolutionNote"` // Nullable, set on resolution
	DetectedAt     time.Time     `json:"detectedAt"`
	AuditFields
}
