package dto

import "github.com/finbook/reconcore/internal/core/domain"

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name         string             `json:"name" validate:"required,max=100"`
	AccountType  domain.AccountType `json:"accountType" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode string             `json:"currencyCode" validate:"required,len=3"`
	Description  string             `json:"description" validate:"max=255"`
	IsSystem     bool               `json:"isSystem"`
}
