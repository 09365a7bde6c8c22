package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finbook/reconcore/internal/apperrors"
	"github.com/finbook/reconcore/internal/core/domain"
	portsrepo "github.com/finbook/reconcore/internal/core/ports/repositories"
	portssvc "github.com/finbook/reconcore/internal/core/ports/services"
	"github.com/finbook/reconcore/internal/dto"
	"github.com/finbook/reconcore/internal/platform/logging"
)

// anomalyMinSamples is the smallest per-account history the outlier scan
// will draw a distribution from.
const anomalyMinSamples = 10

// anomalyZThreshold flags amounts this many standard deviations away from
// the account's historical mean.
const anomalyZThreshold = 3.0

// consistencyService scans confirmed transactions for duplicates, unlinked
// transfer pairs and statistical outliers. Findings are persisted for
// explicit review; the scanner never mutates ledger state.
type consistencyService struct {
	atomicRepo portsrepo.AtomicTransactionReader
	checkRepo  portsrepo.ConsistencyCheckRepositoryFacade
	windowDays int
}

// NewConsistencyService creates a new ConsistencyService. The date window is
// shared with the matching configuration so both subsystems agree on what
// "around the same time" means.
func NewConsistencyService(atomicRepo portsrepo.AtomicTransactionReader, checkRepo portsrepo.ConsistencyCheckRepositoryFacade, cfg domain.MatchingConfig) portssvc.ConsistencySvcFacade {
	return &consistencyService{
		atomicRepo: atomicRepo,
		checkRepo:  checkRepo,
		windowDays: cfg.DateWindowDays,
	}
}

var _ portssvc.ConsistencySvcFacade = (*consistencyService)(nil)

// ScanUser runs all three scans over the user's atomic transactions and
// persists the findings.
func (s *consistencyService) ScanUser(ctx context.Context, userID string) (*dto.ConsistencyScanReport, error) {
	logger := logging.FromCtx(ctx)

	transactions, err := s.atomicRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Deterministic scan order regardless of store iteration order.
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].TransactionDate.Equal(transactions[j].TransactionDate) {
			return transactions[i].TransactionDate.Before(transactions[j].TransactionDate)
		}
		return transactions[i].AtomicTransactionID < transactions[j].AtomicTransactionID
	})

	now := time.Now()
	report := &dto.ConsistencyScanReport{AnomalySkips: make(map[string]string)}

	report.Findings = append(report.Findings, s.findDuplicates(userID, transactions, now)...)
	report.Findings = append(report.Findings, s.findTransferPairs(userID, transactions, now)...)
	report.Findings = append(report.Findings, s.findAnomalies(userID, transactions, now, report.AnomalySkips)...)

	if len(report.AnomalySkips) == 0 {
		report.AnomalySkips = nil
	}

	if len(report.Findings) > 0 {
		if err := s.checkRepo.SaveChecks(ctx, report.Findings); err != nil {
			return nil, err
		}
	}

	logger.Info("Consistency scan complete",
		"userID", userID, "transactions", len(transactions), "findings", len(report.Findings))
	return report, nil
}

// findDuplicates flags pairs in the same account with identical amount and
// currency whose dates fall within the window. Same-day duplicates are high
// severity; near-day ones medium.
func (s *consistencyService) findDuplicates(userID string, transactions []domain.AtomicTransaction, now time.Time) []domain.ConsistencyCheck {
	byAccount := groupByAccount(transactions)

	var findings []domain.ConsistencyCheck
	for _, accountID := range sortedKeys(byAccount) {
		group := byAccount[accountID]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				dist := daysBetween(a.TransactionDate, b.TransactionDate)
				if dist > s.windowDays {
					break // group is date-sorted; later entries are farther away
				}
				if !a.Amount.Equal(b.Amount) || a.CurrencyCode != b.CurrencyCode {
					continue
				}
				severity := domain.SeverityMedium
				if dist == 0 {
					severity = domain.SeverityHigh
				}
				findings = append(findings, s.newCheck(userID, domain.CheckDuplicate, severity, now,
					[]string{a.AtomicTransactionID, b.AtomicTransactionID},
					fmt.Sprintf("identical %s %s transactions %d day(s) apart in account %s",
						a.Amount.StringFixed(2), a.CurrencyCode, dist, accountID)))
			}
		}
	}
	return findings
}

// findTransferPairs flags equal-and-opposite amounts across two different
// accounts of the same user within the window: likely an internal transfer
// that was never linked.
func (s *consistencyService) findTransferPairs(userID string, transactions []domain.AtomicTransaction, now time.Time) []domain.ConsistencyCheck {
	var findings []domain.ConsistencyCheck
	paired := make(map[string]bool)

	for i := 0; i < len(transactions); i++ {
		a := transactions[i]
		if paired[a.AtomicTransactionID] {
			continue
		}
		for j := i + 1; j < len(transactions); j++ {
			b := transactions[j]
			if daysBetween(a.TransactionDate, b.TransactionDate) > s.windowDays {
				break // input is date-sorted
			}
			if paired[b.AtomicTransactionID] || a.AccountID == b.AccountID || a.CurrencyCode != b.CurrencyCode {
				continue
			}
			if !a.Amount.Add(b.Amount).IsZero() {
				continue
			}
			paired[a.AtomicTransactionID] = true
			paired[b.AtomicTransactionID] = true
			findings = append(findings, s.newCheck(userID, domain.CheckTransferPair, domain.SeverityMedium, now,
				[]string{a.AtomicTransactionID, b.AtomicTransactionID},
				fmt.Sprintf("unlinked transfer candidate: %s %s between accounts %s and %s",
					a.Amount.Abs().StringFixed(2), a.CurrencyCode, a.AccountID, b.AccountID)))
			break
		}
	}
	return findings
}

// findAnomalies flags amounts far outside an account's historical
// distribution. Accounts with too little history are skipped and reported
// as such rather than guessed at.
func (s *consistencyService) findAnomalies(userID string, transactions []domain.AtomicTransaction, now time.Time, skips map[string]string) []domain.ConsistencyCheck {
	byAccount := groupByAccount(transactions)

	var findings []domain.ConsistencyCheck
	for _, accountID := range sortedKeys(byAccount) {
		group := byAccount[accountID]
		if len(group) < anomalyMinSamples {
			skips[accountID] = (&apperrors.InsufficientDataError{Need: anomalyMinSamples, Got: len(group)}).Error()
			continue
		}

		mean, stddev := amountStats(group)
		if stddev == 0 {
			continue // all amounts identical, nothing can be an outlier
		}
		for _, txn := range group {
			amount, _ := txn.Amount.Abs().Float64()
			z := math.Abs(amount-mean) / stddev
			if z < anomalyZThreshold {
				continue
			}
			severity := domain.SeverityMedium
			if z >= 2*anomalyZThreshold {
				severity = domain.SeverityHigh
			}
			findings = append(findings, s.newCheck(userID, domain.CheckAnomaly, severity, now,
				[]string{txn.AtomicTransactionID},
				fmt.Sprintf("amount %s %s deviates %.1f standard deviations from account %s history",
					txn.Amount.StringFixed(2), txn.CurrencyCode, z, accountID)))
		}
	}
	return findings
}

func (s *consistencyService) newCheck(userID string, checkType domain.CheckType, severity domain.CheckSeverity, now time.Time, transactionIDs []string, detail string) domain.ConsistencyCheck {
	return domain.ConsistencyCheck{
		CheckID:        uuid.NewString(),
		UserID:         userID,
		CheckType:      checkType,
		TransactionIDs: transactionIDs,
		Severity:       severity,
		Status:         domain.CheckPending,
		Detail:         detail,
		DetectedAt:     now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

// groupByAccount buckets transactions per account, preserving the caller's
// date order within each bucket.
func groupByAccount(transactions []domain.AtomicTransaction) map[string][]domain.AtomicTransaction {
	byAccount := make(map[string][]domain.AtomicTransaction)
	for _, txn := range transactions {
		byAccount[txn.AccountID] = append(byAccount[txn.AccountID], txn)
	}
	return byAccount
}

func sortedKeys(m map[string][]domain.AtomicTransaction) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// amountStats computes mean and standard deviation of absolute amounts.
func amountStats(transactions []domain.AtomicTransaction) (mean float64, stddev float64) {
	n := float64(len(transactions))
	sum := 0.0
	for _, txn := range transactions {
		v, _ := txn.Amount.Abs().Float64()
		sum += v
	}
	mean = sum / n

	variance := 0.0
	for _, txn := range transactions {
		v, _ := txn.Amount.Abs().Float64()
		variance += (v - mean) * (v - mean)
	}
	variance /= n
	stddev = math.Sqrt(variance)
	return mean, stddev
}
