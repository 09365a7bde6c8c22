package accounting

import (
	"fmt"

	"github.com/finbook/reconcore/internal/apperrors"
	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to a line amount based on
// account type and transaction type.
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func CalculateSignedAmount(txn domain.Transaction, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := txn.Amount
	isDebit := txn.TransactionType == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, txn.AccountID)
	}
	return signedAmount, nil
}

// ValidateJournalBalance checks that for every currency appearing in the
// lines, the debit subtotal equals the credit subtotal exactly (no rounding
// tolerance). It returns the signed imbalance per currency (debits minus
// credits) for every currency that fails, or nil when the journal balances.
//
// Pure function: used both for pre-flight checks and inside the posting path.
func ValidateJournalBalance(transactions []domain.Transaction) (map[string]decimal.Decimal, error) {
	if len(transactions) < 2 {
		return nil, fmt.Errorf("%w: journal must have at least two transaction lines", apperrors.ErrValidation)
	}

	perCurrency := make(map[string]decimal.Decimal)

	for _, txn := range transactions {
		if txn.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: transaction amount must be positive for transaction ID %s", apperrors.ErrValidation, txn.TransactionID)
		}
		if txn.CurrencyCode == "" {
			return nil, fmt.Errorf("%w: transaction %s has no currency code", apperrors.ErrValidation, txn.TransactionID)
		}

		delta := txn.Amount
		if txn.TransactionType == domain.Credit {
			delta = delta.Neg()
		}
		perCurrency[txn.CurrencyCode] = perCurrency[txn.CurrencyCode].Add(delta)
	}

	imbalances := make(map[string]decimal.Decimal)
	for code, sum := range perCurrency {
		if !sum.IsZero() {
			imbalances[code] = sum
		}
	}
	if len(imbalances) > 0 {
		return imbalances, nil
	}
	return nil, nil
}

// DistinctAccountCount returns the number of distinct accounts touched by
// the lines. A journal must affect at least two.
func DistinctAccountCount(transactions []domain.Transaction) int {
	seen := make(map[string]struct{}, len(transactions))
	for _, txn := range transactions {
		seen[txn.AccountID] = struct{}{}
	}
	return len(seen)
}
