package domain

import "time"

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft  JournalStatus = "DRAFT"
	Posted JournalStatus = "POSTED"
	Voided JournalStatus = "VOIDED"
)

// JournalSource records which subsystem originated a journal entry.
type JournalSource string

const (
	SourceManual         JournalSource = "MANUAL"
	SourceImport         JournalSource = "IMPORT"
	SourceReconciliation JournalSource = "RECONCILIATION"
	SourceFXRevaluation  JournalSource = "FX_REVALUATION"
)

// Journal represents a single, balanced financial event composed of multiple
// transaction lines. A voided journal is never removed; it is superseded by a
// reversing journal linked through ReversingJournalID.
type Journal struct {
	JournalID          string        `json:"journalID"`   // Primary Key (e.g., UUID)
	UserID             string        `json:"userID"`      // Owning user (Not Null)
	JournalDate        time.Time     `json:"journalDate"` // Date the event occurred
	Memo               string        `json:"memo"`        // Nullable user description
	Source             JournalSource `json:"source"`      // Originating subsystem
	Status             JournalStatus `json:"status"`      // DRAFT, POSTED or VOIDED
	OriginalJournalID  *string       `json:"originalJournalID"`  // Set on a reversing journal
	ReversingJournalID *string       `json:"reversingJournalID"` // Set on a voided journal
	AuditFields
}
