package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finbook/reconcore/internal/core/domain"
	portsrepo "github.com/finbook/reconcore/internal/core/ports/repositories"
	portssvc "github.com/finbook/reconcore/internal/core/ports/services"
	"github.com/finbook/reconcore/internal/dto"
	"github.com/finbook/reconcore/internal/platform/logging"
	"github.com/go-playground/validator/v10"
)

// validate checks request DTOs against their struct tags.
var validate = validator.New()

// accountService provides account lifecycle operations.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account for the user.
func (s *accountService) CreateAccount(ctx context.Context, userID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := logging.FromCtx(ctx)

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid account request: %w", err)
	}

	now := time.Now()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		AccountType:  req.AccountType,
		CurrencyCode: req.CurrencyCode,
		Description:  req.Description,
		IsSystem:     req.IsSystem,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", "accountID", account.AccountID, "error", err)
		return nil, err
	}
	return &account, nil
}

// GetAccountByID retrieves one account scoped to its owning user.
func (s *accountService) GetAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, userID, accountID)
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, userID, accountIDs)
}

// DeactivateAccount marks an account inactive without removing it.
func (s *accountService) DeactivateAccount(ctx context.Context, userID string, accountID string) error {
	return s.accountRepo.DeactivateAccount(ctx, userID, accountID, userID)
}

// DeleteAccount removes an account. The repository rejects the delete with
// apperrors.ErrConstraint when the account is a system account or still owns
// journal lines; nothing is mutated in that case.
func (s *accountService) DeleteAccount(ctx context.Context, userID string, accountID string) error {
	logger := logging.FromCtx(ctx)

	if err := s.accountRepo.DeleteAccount(ctx, userID, accountID); err != nil {
		logger.Warn("Account delete rejected", "accountID", accountID, "error", err)
		return err
	}
	logger.Info("Account deleted", "accountID", accountID)
	return nil
}
