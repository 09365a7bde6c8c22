package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/finbook/reconcore/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockAtomicTransactionRepository is a mock type for the AtomicTransactionReader interface
type MockAtomicTransactionRepository struct {
	mock.Mock
}

func (m *MockAtomicTransactionRepository) ListUnmatchedByAccount(ctx context.Context, userID string, accountID string, currencyCode string) ([]domain.AtomicTransaction, error) {
	args := m.Called(ctx, userID, accountID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AtomicTransaction), args.Error(1)
}

func (m *MockAtomicTransactionRepository) ListByUser(ctx context.Context, userID string) ([]domain.AtomicTransaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AtomicTransaction), args.Error(1)
}

// MockConsistencyCheckRepository is a mock type for the ConsistencyCheckRepositoryFacade interface
type MockConsistencyCheckRepository struct {
	mock.Mock
}

func (m *MockConsistencyCheckRepository) SaveChecks(ctx context.Context, checks []domain.ConsistencyCheck) error {
	args := m.Called(ctx, checks)
	return args.Error(0)
}

func (m *MockConsistencyCheckRepository) ResolveCheck(ctx context.Context, userID string, checkID string, status domain.CheckStatus, note string, resolvedBy string) error {
	args := m.Called(ctx, userID, checkID, status, note, resolvedBy)
	return args.Error(0)
}

func (m *MockConsistencyCheckRepository) ListPendingByUser(ctx context.Context, userID string, limit int, nextToken string) ([]domain.ConsistencyCheck, string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.ConsistencyCheck), args.String(1), args.Error(2)
}

// --- Test Suite Setup ---

type ConsistencyServiceTestSuite struct {
	suite.Suite
	mockAtomicRepo *MockAtomicTransactionRepository
	mockCheckRepo  *MockConsistencyCheckRepository
	service        *services.ServiceContainer
	userID         string
}

func (suite *ConsistencyServiceTestSuite) SetupTest() {
	suite.mockAtomicRepo = new(MockAtomicTransactionRepository)
	suite.mockCheckRepo = new(MockConsistencyCheckRepository)
	suite.service = services.NewServiceContainer(services.ContainerDeps{
		AtomicRepo: suite.mockAtomicRepo,
		CheckRepo:  suite.mockCheckRepo,
	}, domain.DefaultMatchingConfig()) // 3-day window
	suite.userID = uuid.NewString()
}

var scanBaseDate = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func scanTxn(id string, accountID string, amount string, date time.Time) domain.AtomicTransaction {
	return domain.AtomicTransaction{
		AtomicTransactionID: id,
		AccountID:           accountID,
		Amount:              decimal.RequireFromString(amount),
		CurrencyCode:        "USD",
		TransactionDate:     date,
		Description:         "txn " + id,
	}
}

func findingsOfType(findings []domain.ConsistencyCheck, checkType domain.CheckType) []domain.ConsistencyCheck {
	var out []domain.ConsistencyCheck
	for _, f := range findings {
		if f.CheckType == checkType {
			out = append(out, f)
		}
	}
	return out
}

// --- Test Cases ---

func (suite *ConsistencyServiceTestSuite) TestScanUser_SameDayDuplicateIsHighSeverity() {
	ctx := context.Background()
	txns := []domain.AtomicTransaction{
		scanTxn("atm-1", "acc-1", "-45.00", scanBaseDate),
		scanTxn("atm-2", "acc-1", "-45.00", scanBaseDate),
	}
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()
	suite.mockCheckRepo.On("SaveChecks", ctx, mock.Anything).Return(nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	duplicates := findingsOfType(report.Findings, domain.CheckDuplicate)
	suite.Require().Len(duplicates, 1)
	suite.Equal(domain.SeverityHigh, duplicates[0].Severity)
	suite.Equal(domain.CheckPending, duplicates[0].Status)
	suite.ElementsMatch([]string{"atm-1", "atm-2"}, duplicates[0].TransactionIDs)
	suite.mockCheckRepo.AssertExpectations(suite.T())
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_NearDayDuplicateIsMediumSeverity() {
	ctx := context.Background()
	txns := []domain.AtomicTransaction{
		scanTxn("atm-1", "acc-1", "-45.00", scanBaseDate),
		scanTxn("atm-2", "acc-1", "-45.00", scanBaseDate.AddDate(0, 0, 2)),
	}
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()
	suite.mockCheckRepo.On("SaveChecks", ctx, mock.Anything).Return(nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	duplicates := findingsOfType(report.Findings, domain.CheckDuplicate)
	suite.Require().Len(duplicates, 1)
	suite.Equal(domain.SeverityMedium, duplicates[0].Severity)
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_DistantRepeatIsNotADuplicate() {
	ctx := context.Background()
	// Identical rent payments a month apart: normal recurring spend.
	txns := []domain.AtomicTransaction{
		scanTxn("atm-1", "acc-1", "-1200.00", scanBaseDate),
		scanTxn("atm-2", "acc-1", "-1200.00", scanBaseDate.AddDate(0, 1, 0)),
	}
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(report.Findings)
	suite.mockCheckRepo.AssertNotCalled(suite.T(), "SaveChecks", mock.Anything, mock.Anything)
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_TransferPair() {
	ctx := context.Background()
	txns := []domain.AtomicTransaction{
		scanTxn("atm-1", "acc-checking", "-500.00", scanBaseDate),
		scanTxn("atm-2", "acc-savings", "500.00", scanBaseDate.AddDate(0, 0, 1)),
	}
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()
	suite.mockCheckRepo.On("SaveChecks", ctx, mock.Anything).Return(nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	pairs := findingsOfType(report.Findings, domain.CheckTransferPair)
	suite.Require().Len(pairs, 1)
	suite.Equal(domain.SeverityMedium, pairs[0].Severity)
	suite.ElementsMatch([]string{"atm-1", "atm-2"}, pairs[0].TransactionIDs)
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_TransferPairConsumedOnce() {
	ctx := context.Background()
	// Three legs: -500 can pair with only one of the two +500 entries.
	txns := []domain.AtomicTransaction{
		scanTxn("atm-1", "acc-checking", "-500.00", scanBaseDate),
		scanTxn("atm-2", "acc-savings", "500.00", scanBaseDate),
		scanTxn("atm-3", "acc-brokerage", "500.00", scanBaseDate),
	}
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()
	suite.mockCheckRepo.On("SaveChecks", ctx, mock.Anything).Return(nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	pairs := findingsOfType(report.Findings, domain.CheckTransferPair)
	suite.Require().Len(pairs, 1)
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_SameAccountOppositeAmountsAreNotATransfer() {
	ctx := context.Background()
	txns := []domain.AtomicTransaction{
		scanTxn("atm-1", "acc-1", "-75.00", scanBaseDate),
		scanTxn("atm-2", "acc-1", "75.00", scanBaseDate),
	}
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(findingsOfType(report.Findings, domain.CheckTransferPair))
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_AnomalyDetection() {
	ctx := context.Background()
	// Ten steady 100.00 charges spaced outside the duplicate window, then a
	// 1000.00 outlier.
	var txns []domain.AtomicTransaction
	for i := 0; i < 10; i++ {
		txns = append(txns, scanTxn(fmt.Sprintf("atm-%02d", i), "acc-1", "-100.00", scanBaseDate.AddDate(0, 0, i*10)))
	}
	txns = append(txns, scanTxn("atm-out", "acc-1", "-1000.00", scanBaseDate.AddDate(0, 0, 110)))

	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()
	suite.mockCheckRepo.On("SaveChecks", ctx, mock.Anything).Return(nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	anomalies := findingsOfType(report.Findings, domain.CheckAnomaly)
	suite.Require().Len(anomalies, 1)
	suite.Equal([]string{"atm-out"}, anomalies[0].TransactionIDs)
	suite.Empty(findingsOfType(report.Findings, domain.CheckDuplicate),
		"steady charges spaced apart must not read as duplicates")
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_InsufficientHistorySkipsAnomalyScan() {
	ctx := context.Background()
	txns := []domain.AtomicTransaction{
		scanTxn("atm-1", "acc-sparse", "-10.00", scanBaseDate),
		scanTxn("atm-2", "acc-sparse", "-9000.00", scanBaseDate.AddDate(0, 0, 30)),
	}
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(findingsOfType(report.Findings, domain.CheckAnomaly),
		"two data points are not a distribution")
	suite.Require().Contains(report.AnomalySkips, "acc-sparse")
	suite.Contains(report.AnomalySkips["acc-sparse"], "insufficient data")
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_UniformHistoryHasNoOutliers() {
	ctx := context.Background()
	var txns []domain.AtomicTransaction
	for i := 0; i < 12; i++ {
		txns = append(txns, scanTxn(fmt.Sprintf("atm-%02d", i), "acc-1", "-100.00", scanBaseDate.AddDate(0, 0, i*10)))
	}
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(report.Findings)
	suite.Nil(report.AnomalySkips)
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_EmptyLedger() {
	ctx := context.Background()
	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return([]domain.AtomicTransaction{}, nil).Once()

	report, err := suite.service.Consistency.ScanUser(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(report.Findings)
	suite.mockCheckRepo.AssertNotCalled(suite.T(), "SaveChecks", mock.Anything, mock.Anything)
}

func (suite *ConsistencyServiceTestSuite) TestScanUser_Deterministic() {
	ctx := context.Background()
	txns := []domain.AtomicTransaction{
		scanTxn("atm-1", "acc-checking", "-500.00", scanBaseDate),
		scanTxn("atm-2", "acc-savings", "500.00", scanBaseDate),
		scanTxn("atm-3", "acc-checking", "-45.00", scanBaseDate),
		scanTxn("atm-4", "acc-checking", "-45.00", scanBaseDate),
	}
	shuffled := []domain.AtomicTransaction{txns[3], txns[1], txns[0], txns[2]}

	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(txns, nil).Once()
	suite.mockCheckRepo.On("SaveChecks", ctx, mock.Anything).Return(nil).Twice()

	first, err := suite.service.Consistency.ScanUser(ctx, suite.userID)
	suite.Require().NoError(err)

	suite.mockAtomicRepo.On("ListByUser", ctx, suite.userID).Return(shuffled, nil).Once()
	second, err := suite.service.Consistency.ScanUser(ctx, suite.userID)
	suite.Require().NoError(err)

	normalize := func(findings []domain.ConsistencyCheck) [][2]interface{} {
		out := make([][2]interface{}, len(findings))
		for i, f := range findings {
			out[i] = [2]interface{}{f.CheckType, fmt.Sprint(f.TransactionIDs)}
		}
		return out
	}
	suite.Equal(normalize(first.Findings), normalize(second.Findings))
}

func TestConsistencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConsistencyServiceTestSuite))
}
