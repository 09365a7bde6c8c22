package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsDebitNormal reports whether the account type carries a debit normal
// balance, i.e. debits increase it.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account represents a financial account within the ledger.
type Account struct {
	AccountID    string      `json:"accountID"`    // Primary Key (e.g., UUID)
	UserID       string      `json:"userID"`       // Owning user (Not Null); no cross-user references
	Name         string      `json:"name"`         // User-defined name
	AccountType  AccountType `json:"accountType"`  // ASSET, LIABILITY, etc.
	CurrencyCode string      `json:"currencyCode"` // ISO 4217 code (Not Null)
	Description  string      `json:"description"`  // Nullable user description
	IsSystem     bool        `json:"isSystem"`     // System accounts are protected from deletion
	IsActive     bool        `json:"isActive"`     // Soft delete or status flag
	AuditFields
}
