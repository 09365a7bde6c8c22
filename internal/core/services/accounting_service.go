package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finbook/reconcore/internal/apperrors"
	"github.com/finbook/reconcore/internal/core/domain"
	portsrepo "github.com/finbook/reconcore/internal/core/ports/repositories"
	portssvc "github.com/finbook/reconcore/internal/core/ports/services"
	"github.com/finbook/reconcore/internal/dto"
	"github.com/finbook/reconcore/internal/platform/logging"
	"github.com/finbook/reconcore/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrJournalMinAccounts = errors.New("journal must affect at least two different accounts")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrCurrencyMismatch   = errors.New("account currency does not match transaction currency")
	ErrAlreadyVoided      = errors.New("journal is already voided")
	ErrNotPosted          = errors.New("journal must be posted to be voided")
	ErrNotDraft           = errors.New("journal must be a draft to be posted")
)

// accountingService provides the double-entry posting operations.
type accountingService struct {
	accountSvc  portssvc.AccountSvcFacade
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewAccountingService creates a new AccountingService.
func NewAccountingService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.AccountingSvcFacade {
	return &accountingService{
		accountSvc:  accountSvc,
		journalRepo: journalRepo,
	}
}

var _ portssvc.AccountingSvcFacade = (*accountingService)(nil)

// ValidateJournalBalance is the pure pre-flight form of the balance check:
// it reports the signed imbalance per currency without touching any store.
// The same check runs inside PostJournal.
func ValidateJournalBalance(lines []dto.CreateTransactionRequest) (map[string]decimal.Decimal, error) {
	return accounting.ValidateJournalBalance(linesToDomain(lines, "", "", time.Time{}))
}

// linesToDomain converts request lines into domain transactions. Amounts are
// quantized to 2 fractional digits at this boundary.
func linesToDomain(lines []dto.CreateTransactionRequest, journalID string, userID string, now time.Time) []domain.Transaction {
	transactions := make([]domain.Transaction, len(lines))
	for i, line := range lines {
		transactions[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       journalID,
			AccountID:       line.AccountID,
			Amount:          line.Amount.Round(2),
			TransactionType: line.TransactionType,
			CurrencyCode:    line.CurrencyCode,
			Notes:           line.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	return transactions
}

// balanceViolation picks the deterministically first offending currency so
// identical bad input always reports the same error.
func balanceViolation(imbalances map[string]decimal.Decimal) error {
	codes := make([]string, 0, len(imbalances))
	for code := range imbalances {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return &apperrors.BalanceViolationError{
		CurrencyCode: codes[0],
		Delta:        imbalances[codes[0]],
	}
}

// PostJournal validates and persists a balanced journal. Either the journal
// and all of its lines are stored, or nothing is.
func (s *accountingService) PostJournal(ctx context.Context, userID string, req dto.CreateJournalRequest) (*domain.Journal, error) {
	logger := logging.FromCtx(ctx)

	now := time.Now()
	journalID := uuid.NewString()
	transactions := linesToDomain(req.Transactions, journalID, userID, now)

	imbalances, err := accounting.ValidateJournalBalance(transactions)
	if err != nil {
		return nil, err
	}
	if imbalances != nil {
		return nil, balanceViolation(imbalances)
	}
	if accounting.DistinctAccountCount(transactions) < 2 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrJournalMinAccounts)
	}

	accountIDs := make([]string, 0, len(transactions))
	for _, txn := range transactions {
		accountIDs = append(accountIDs, txn.AccountID)
	}
	accountsMap, err := s.accountSvc.GetAccountsByIDs(ctx, userID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts for journal: %w", err)
	}
	for _, txn := range transactions {
		acc, ok := accountsMap[txn.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, txn.AccountID)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s", ErrAccountInactive, txn.AccountID)
		}
		if acc.CurrencyCode != txn.CurrencyCode {
			return nil, fmt.Errorf("%w: account %s is %s, line is %s",
				ErrCurrencyMismatch, txn.AccountID, acc.CurrencyCode, txn.CurrencyCode)
		}
	}

	status := domain.Posted
	if req.AsDraft {
		status = domain.Draft
	}
	journal := domain.Journal{
		JournalID:   journalID,
		UserID:      userID,
		JournalDate: req.JournalDate,
		Memo:        req.Memo,
		Source:      req.Source,
		Status:      status,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.journalRepo.SaveJournal(ctx, journal, transactions); err != nil {
		logger.Error("Failed to save journal", "journalID", journalID, "error", err)
		return nil, err
	}

	logger.Info("Journal posted", "journalID", journalID, "status", string(status), "lines", len(transactions))
	return &journal, nil
}

// PostDraftJournal promotes a DRAFT journal to POSTED after re-validating
// its lines against the current state of the accounts.
func (s *accountingService) PostDraftJournal(ctx context.Context, userID string, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, userID, journalID)
	if err != nil {
		return nil, err
	}
	if journal.Status != domain.Draft {
		return nil, fmt.Errorf("%w: journal %s is %s", ErrNotDraft, journalID, journal.Status)
	}

	transactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	imbalances, err := accounting.ValidateJournalBalance(transactions)
	if err != nil {
		return nil, err
	}
	if imbalances != nil {
		return nil, balanceViolation(imbalances)
	}

	now := time.Now()
	if err := s.journalRepo.UpdateJournalStatusAndLinks(ctx, journalID, domain.Posted, nil, nil, userID, now); err != nil {
		return nil, err
	}
	journal.Status = domain.Posted
	journal.LastUpdatedAt = now
	journal.LastUpdatedBy = userID
	return journal, nil
}

// VoidJournal marks a posted journal VOIDED and posts the automatically
// generated reversing journal: every line's direction flipped, identical
// amounts and accounts. The voided journal is never physically removed.
func (s *accountingService) VoidJournal(ctx context.Context, userID string, journalID string) (*domain.Journal, error) {
	logger := logging.FromCtx(ctx)

	original, err := s.journalRepo.FindJournalByID(ctx, userID, journalID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.Voided {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyVoided, journalID)
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: journal %s is %s", ErrNotPosted, journalID, original.Status)
	}

	originalTransactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reversingID := uuid.NewString()
	reversing := domain.Journal{
		JournalID:         reversingID,
		UserID:            userID,
		JournalDate:       original.JournalDate,
		Memo:              fmt.Sprintf("Reversal of: %s", original.Memo),
		Source:            original.Source,
		Status:            domain.Posted,
		OriginalJournalID: &original.JournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	reversingTransactions := make([]domain.Transaction, len(originalTransactions))
	for i, origTx := range originalTransactions {
		reversingTransactions[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       reversingID,
			AccountID:       origTx.AccountID,
			Amount:          origTx.Amount,
			TransactionType: origTx.TransactionType.Opposite(),
			CurrencyCode:    origTx.CurrencyCode,
			Notes:           origTx.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	if err := s.journalRepo.SaveReversal(ctx, reversing, reversingTransactions, original.JournalID, userID, now); err != nil {
		logger.Error("Failed to save reversing journal", "journalID", journalID, "error", err)
		return nil, err
	}

	logger.Info("Journal voided", "journalID", journalID, "reversingJournalID", reversingID)
	return &reversing, nil
}

// CalculateAccountBalance sums the signed line amounts of one account up to
// and including asOf. An account with no lines balances to zero.
func (s *accountingService) CalculateAccountBalance(ctx context.Context, userID string, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := s.accountSvc.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	transactions, err := s.journalRepo.ListEffectiveTransactionsByAccount(ctx, userID, accountID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, txn := range transactions {
		signed, err := accounting.CalculateSignedAmount(txn, account.AccountType)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(signed)
	}
	return balance, nil
}

// VerifyAccountingEquation recomputes assets + expenses minus liabilities,
// equity and revenue per currency over every balance-affecting line of the
// user and requires an exact zero. A non-zero residual is a hard integrity
// fault: it is surfaced, logged, and never corrected here.
func (s *accountingService) VerifyAccountingEquation(ctx context.Context, userID string) error {
	logger := logging.FromCtx(ctx)

	transactions, accountTypes, err := s.journalRepo.ListEffectiveTransactionsByUser(ctx, userID)
	if err != nil {
		return err
	}

	residuals := make(map[string]decimal.Decimal)
	for _, txn := range transactions {
		accountType, ok := accountTypes[txn.AccountID]
		if !ok {
			return fmt.Errorf("%w: account type missing for account %s", apperrors.ErrIntegrity, txn.AccountID)
		}
		signed, err := accounting.CalculateSignedAmount(txn, accountType)
		if err != nil {
			return err
		}
		// The equation subtracts credit-normal balances: assets + expenses
		// minus liabilities, equity and revenue.
		if !accountType.IsDebitNormal() {
			signed = signed.Neg()
		}
		residuals[txn.CurrencyCode] = residuals[txn.CurrencyCode].Add(signed)
	}

	codes := make([]string, 0, len(residuals))
	for code := range residuals {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if !residuals[code].IsZero() {
			fault := &apperrors.IntegrityError{
				UserID:       userID,
				CurrencyCode: code,
				Residual:     residuals[code],
			}
			logger.Error("Accounting equation violated",
				"userID", userID, "currency", code, "residual", residuals[code].StringFixed(2))
			return fault
		}
	}
	return nil
}
