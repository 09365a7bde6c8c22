package dto

import (
	"time"

	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines one line of a journal to be posted.
type CreateTransactionRequest struct {
	AccountID       string                 `json:"accountID" validate:"required"`
	Amount          decimal.Decimal        `json:"amount" validate:"required"`
	TransactionType domain.TransactionType `json:"transactionType" validate:"required,oneof=DEBIT CREDIT"`
	CurrencyCode    string                 `json:"currencyCode" validate:"required,len=3"`
	Notes           string                 `json:"notes" validate:"max=255"`
}

// CreateJournalRequest defines the data needed to post a journal entry.
type CreateJournalRequest struct {
	JournalDate  time.Time                  `json:"journalDate" validate:"required"`
	Memo         string                     `json:"memo" validate:"max=255"`
	Source       domain.JournalSource       `json:"source" validate:"required,oneof=MANUAL IMPORT RECONCILIATION FX_REVALUATION"`
	AsDraft      bool                       `json:"asDraft"` // Persist as DRAFT instead of POSTED
	Transactions []CreateTransactionRequest `json:"transactions" validate:"required,min=2,dive"`
}
