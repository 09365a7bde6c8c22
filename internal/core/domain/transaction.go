package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a journal line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Opposite returns the reversing direction for a line.
func (t TransactionType) Opposite() TransactionType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// Transaction represents a single line item within a Journal, affecting one
// account. Amount is always strictly positive; TransactionType encodes the
// sign.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`   // Primary Key (e.g., UUID)
	JournalID       string          `json:"journalID"`       // FK -> Journal.journalID (Not Null)
	AccountID       string          `json:"accountID"`       // FK -> Account.accountID (Not Null)
	Amount          decimal.Decimal `json:"amount"`          // Positive value, 2 fractional digits
	TransactionType TransactionType `json:"transactionType"` // DEBIT or CREDIT (Not Null)
	CurrencyCode    string          `json:"currencyCode"`    // ISO 4217 code (Not Null)
	Notes           string          `json:"notes"`           // Nullable
	AuditFields
}

// AtomicTransaction is a single internally-recorded movement of value on one
// account: the "our side" candidate when reconciling against a bank
// statement.
type AtomicTransaction struct {
	AtomicTransactionID string          `json:"atomicTransactionID"` // Primary Key (e.g., UUID)
	UserID              string          `json:"userID"`              // Owning user (Not Null)
	AccountID           string          `json:"accountID"`           // FK -> Account.accountID (Not Null)
	Amount              decimal.Decimal `json:"amount"`              // Signed; negative for outflows
	CurrencyCode        string          `json:"currencyCode"`
	TransactionDate     time.Time       `json:"transactionDate"`
	Description         string          `json:"description"` // Nullable
	AuditFields
}
