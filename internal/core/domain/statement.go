package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatementTransaction is one line item parsed from an externally
// supplied bank statement by the extraction pipeline. This core only consumes
// it; the statement parsing logic lives outside.
type BankStatementTransaction struct {
	BankTransactionID string          `json:"bankTransactionID"` // Primary Key (e.g., UUID)
	StatementID       string          `json:"statementID"`       // Owning statement (Not Null)
	UserID            string          `json:"userID"`            // Owning user (Not Null)
	AccountID         string          `json:"accountID"`         // Ledger account the statement belongs to
	Amount            decimal.Decimal `json:"amount"`            // Signed; negative for outflows
	CurrencyCode      string          `json:"currencyCode"`
	TransactionDate   time.Time       `json:"transactionDate"`
	RunningBalance    *decimal.Decimal `json:"runningBalance"` // Balance after this txn, when the statement carries one
	Description       string          `json:"description"`    // Free-text as printed on the statement
	AuditFields
}
