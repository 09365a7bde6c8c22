package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finbook/reconcore/internal/core/domain"
	portsrepo "github.com/finbook/reconcore/internal/core/ports/repositories"
	portssvc "github.com/finbook/reconcore/internal/core/ports/services"
	"github.com/finbook/reconcore/internal/dto"
	"github.com/finbook/reconcore/internal/platform/logging"
	"github.com/finbook/reconcore/internal/utils/textsim"
	"github.com/shopspring/decimal"
)

// maxSplitCandidates bounds the subset search for split transactions; a
// window with more unconsumed candidates than this skips split detection
// for that bank txn rather than risking the batch time budget.
const maxSplitCandidates = 12

// matchingService scores bank statement transactions against the ledger's
// atomic transactions. The scoring itself is pure; only candidate
// persistence and confirmation touch the store.
type matchingService struct {
	matchRepo portsrepo.MatchRepositoryFacade
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(matchRepo portsrepo.MatchRepositoryFacade) portssvc.MatchingSvcFacade {
	return &matchingService{matchRepo: matchRepo}
}

var _ portssvc.MatchingSvcFacade = (*matchingService)(nil)

// scoredCandidate pairs one pool entry with its score for one bank txn.
type scoredCandidate struct {
	atomic  domain.AtomicTransaction
	score   float64
	exact   bool
	dayDist int
}

// ExecuteMatching runs one statement batch against its candidate pool.
//
// Matching is sequential over bank txns because proposed matches shrink the
// pool, but nothing outside the batch is read or written: the function is
// deterministic for fixed inputs and config, and idempotent as long as no
// confirmations are persisted in between.
//
// Cancellation is cooperative between bank txns; on cancellation the partial
// result is returned together with ctx.Err(), already-scored candidates stay
// valid and unprocessed bank txns can simply be re-run.
func (s *matchingService) ExecuteMatching(ctx context.Context, batch dto.AccountMatchingBatch, cfg domain.MatchingConfig, router domain.RouterConfig) (*dto.MatchingResult, error) {
	result := &dto.MatchingResult{
		AccountID:   batch.AccountID,
		StatementID: batch.StatementID,
		Summary:     dto.MatchingSummary{BankTransactions: len(batch.BankTransactions)},
	}

	// Work on a sorted copy of the pool; the caller's slice is never
	// reordered or mutated.
	pool := make([]domain.AtomicTransaction, len(batch.CandidatePool))
	copy(pool, batch.CandidatePool)
	sort.Slice(pool, func(i, j int) bool {
		if !pool[i].TransactionDate.Equal(pool[j].TransactionDate) {
			return pool[i].TransactionDate.Before(pool[j].TransactionDate)
		}
		return pool[i].AtomicTransactionID < pool[j].AtomicTransactionID
	})

	consumed := make(map[string]bool)
	now := time.Now()

	// Running-balance chain: reconstructable only while consecutive bank
	// txns carry a balance.
	var prevBalance *decimal.Decimal

	for _, bankTxn := range batch.BankTransactions {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		balanceScore := runningBalanceScore(prevBalance, bankTxn)
		if bankTxn.RunningBalance != nil {
			rb := *bankTxn.RunningBalance
			prevBalance = &rb
		} else {
			prevBalance = nil
		}

		candidates := s.scoreCandidates(bankTxn, pool, consumed, balanceScore, cfg)
		if len(candidates) == 0 {
			if splits := s.detectSplit(bankTxn, pool, consumed, balanceScore, cfg, router, batch.UserID, now); len(splits) > 0 {
				result.Candidates = append(result.Candidates, splits...)
				result.Summary.Proposed += len(splits)
				result.Summary.NeedsReview += len(splits)
				result.Summary.SplitGroups++
			} else {
				result.Summary.Unmatched++
			}
			continue
		}

		winner := candidates[0]
		confidence := RouteByThreshold(winner.score, router)
		// Near-equal runner-up: ambiguity is never an error, but it caps
		// the confidence band so a human reviews the tie.
		if len(candidates) > 1 && confidence == domain.ConfidenceAutoConfirm {
			if winner.score-candidates[1].score < cfg.AmbiguityMargin {
				confidence = domain.ConfidenceNeedsReview
			}
		}

		// A winner in the reject band is never proposed. Reachable only when
		// MinScore is configured below RejectThreshold; the atomic txn stays
		// available for later bank txns.
		if confidence == domain.ConfidenceReject {
			result.Summary.Rejected++
			continue
		}

		method := domain.MethodFuzzy
		if winner.exact && winner.dayDist == 0 {
			method = domain.MethodExact
		}

		result.Candidates = append(result.Candidates, domain.ReconciliationMatch{
			MatchID:           uuid.NewString(),
			UserID:            batch.UserID,
			BankTransactionID: bankTxn.BankTransactionID,
			Target:            domain.AtomicTarget(winner.atomic.AtomicTransactionID),
			Score:             winner.score,
			Confidence:        confidence,
			Method:            method,
			Status:            domain.MatchCandidate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     batch.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: batch.UserID,
			},
		})
		result.Summary.Proposed++

		if confidence == domain.ConfidenceAutoConfirm {
			result.Summary.AutoConfirmed++
		} else {
			result.Summary.NeedsReview++
		}

		// One-to-one discipline within the batch: every proposal consumes
		// its atomic transaction.
		consumed[winner.atomic.AtomicTransactionID] = true
	}

	return result, nil
}

// scoreCandidates evaluates the pool slice inside the date window and
// returns proposals sorted by the deterministic tie-break: score descending,
// then closer date, then lower identifier.
func (s *matchingService) scoreCandidates(bankTxn domain.BankStatementTransaction, pool []domain.AtomicTransaction, consumed map[string]bool, balanceScore float64, cfg domain.MatchingConfig) []scoredCandidate {
	lo, hi := windowBounds(pool, bankTxn.TransactionDate, cfg.DateWindowDays)

	var candidates []scoredCandidate
	for i := lo; i < hi; i++ {
		atomic := pool[i]
		if consumed[atomic.AtomicTransactionID] || atomic.CurrencyCode != bankTxn.CurrencyCode {
			continue
		}

		diff := atomic.Amount.Sub(bankTxn.Amount).Abs()
		if diff.GreaterThan(cfg.AmountTolerance) {
			continue
		}
		exact := diff.IsZero()
		amountScore := 0.8
		if exact {
			amountScore = 1.0
		}

		dayDist := daysBetween(bankTxn.TransactionDate, atomic.TransactionDate)
		dateScore := dateProximity(dayDist, cfg.DateWindowDays)
		descScore := descriptionScore(bankTxn.Description, atomic.Description)

		score := combine(cfg.Weights, amountScore, dateScore, descScore, balanceScore)
		if score < cfg.MinScore {
			continue
		}
		candidates = append(candidates, scoredCandidate{
			atomic:  atomic,
			score:   score,
			exact:   exact,
			dayDist: dayDist,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].dayDist != candidates[j].dayDist {
			return candidates[i].dayDist < candidates[j].dayDist
		}
		return candidates[i].atomic.AtomicTransactionID < candidates[j].atomic.AtomicTransactionID
	})
	return candidates
}

// detectSplit looks for a small set of atomic transactions that together
// account for one bank txn (a payment recorded as several ledger legs).
// Split matches are always flagged for review, never auto-confirmed.
func (s *matchingService) detectSplit(bankTxn domain.BankStatementTransaction, pool []domain.AtomicTransaction, consumed map[string]bool, balanceScore float64, cfg domain.MatchingConfig, router domain.RouterConfig, userID string, now time.Time) []domain.ReconciliationMatch {
	lo, hi := windowBounds(pool, bankTxn.TransactionDate, cfg.DateWindowDays)

	var eligible []domain.AtomicTransaction
	for i := lo; i < hi; i++ {
		atomic := pool[i]
		if consumed[atomic.AtomicTransactionID] || atomic.CurrencyCode != bankTxn.CurrencyCode {
			continue
		}
		// Legs of a split carry the same sign as the statement line.
		if atomic.Amount.Sign() != bankTxn.Amount.Sign() {
			continue
		}
		eligible = append(eligible, atomic)
	}
	if len(eligible) < 2 || len(eligible) > maxSplitCandidates {
		return nil
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].AtomicTransactionID < eligible[j].AtomicTransactionID
	})

	group := findSubsetSum(eligible, bankTxn.Amount, cfg.AmountTolerance)
	if group == nil {
		return nil
	}

	// Score the group as a whole: the summed amount signal plus the worst
	// date distance and the best description overlap among the legs.
	worstDist := 0
	bestDesc := 0.0
	for _, atomic := range group {
		if d := daysBetween(bankTxn.TransactionDate, atomic.TransactionDate); d > worstDist {
			worstDist = d
		}
		if sim := descriptionScore(bankTxn.Description, atomic.Description); sim > bestDesc {
			bestDesc = sim
		}
	}
	score := combine(cfg.Weights, 0.8, dateProximity(worstDist, cfg.DateWindowDays), bestDesc, balanceScore)
	if score < cfg.MinScore {
		return nil
	}
	confidence := RouteByThreshold(score, router)
	if confidence == domain.ConfidenceAutoConfirm {
		confidence = domain.ConfidenceNeedsReview
	}
	if confidence == domain.ConfidenceReject {
		return nil
	}

	// One deterministic group id per bank txn keeps re-runs comparable.
	splitGroupID := "split-" + bankTxn.BankTransactionID

	matches := make([]domain.ReconciliationMatch, len(group))
	for i, atomic := range group {
		matches[i] = domain.ReconciliationMatch{
			MatchID:           uuid.NewString(),
			UserID:            userID,
			BankTransactionID: bankTxn.BankTransactionID,
			Target:            domain.AtomicTarget(atomic.AtomicTransactionID),
			Score:             score,
			Confidence:        confidence,
			Method:            domain.MethodFuzzy,
			Status:            domain.MatchCandidate,
			SplitGroupID:      splitGroupID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		consumed[atomic.AtomicTransactionID] = true
	}
	return matches
}

// findSubsetSum searches pairs then triples for a subset matching the
// target within tolerance. First hit in identifier order wins, keeping the
// search deterministic.
func findSubsetSum(eligible []domain.AtomicTransaction, target decimal.Decimal, tolerance decimal.Decimal) []domain.AtomicTransaction {
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			sum := eligible[i].Amount.Add(eligible[j].Amount)
			if sum.Sub(target).Abs().LessThanOrEqual(tolerance) {
				return []domain.AtomicTransaction{eligible[i], eligible[j]}
			}
		}
	}
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			for k := j + 1; k < len(eligible); k++ {
				sum := eligible[i].Amount.Add(eligible[j].Amount).Add(eligible[k].Amount)
				if sum.Sub(target).Abs().LessThanOrEqual(tolerance) {
					return []domain.AtomicTransaction{eligible[i], eligible[j], eligible[k]}
				}
			}
		}
	}
	return nil
}

// ExecuteMatchingAll fans independent account batches out to a bounded
// worker pool. Workers share only the read-only configuration; each batch
// owns its pool slice, so no synchronization beyond the result slots is
// needed.
func (s *matchingService) ExecuteMatchingAll(ctx context.Context, batches []dto.AccountMatchingBatch, cfg domain.MatchingConfig, router domain.RouterConfig) ([]dto.MatchingResult, error) {
	logger := logging.FromCtx(ctx)

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(batches) {
		workers = len(batches)
	}

	results := make([]dto.MatchingResult, len(batches))
	jobs := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := s.ExecuteMatching(ctx, batches[i], cfg, router)
				if res != nil {
					results[i] = *res
				}
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}

	for i := range batches {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		logger.Warn("Matching fan-out finished with error", "batches", len(batches), "error", firstErr)
		return results, firstErr
	}
	return results, nil
}

// PersistCandidates stores the scored candidates of one matching run.
func (s *matchingService) PersistCandidates(ctx context.Context, result dto.MatchingResult) error {
	if len(result.Candidates) == 0 {
		return nil
	}
	return s.matchRepo.SaveCandidates(ctx, result.Candidates)
}

// ConfirmMatch promotes one candidate to CONFIRMED. The repository holds the
// per-account serialization guarantee; two concurrent confirmations of the
// same atomic transaction leave exactly one winner.
func (s *matchingService) ConfirmMatch(ctx context.Context, userID string, matchID string) error {
	return s.matchRepo.ConfirmMatch(ctx, userID, matchID)
}

// combine folds the per-signal scores into one, normalized by the weight
// sum so only weight ratios matter.
func combine(w domain.SignalWeights, amount, date, desc, balance float64) float64 {
	total := w.Amount + w.Date + w.Description + w.RunningBalance
	if total == 0 {
		return 0
	}
	score := (w.Amount*amount + w.Date*date + w.Description*desc + w.RunningBalance*balance) / total
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// descriptionScore compares the two descriptions when both carry tokens. A
// side without usable text (empty, or reference numbers only) makes the
// signal neutral rather than a mismatch; ledger entries frequently have no
// description at all.
func descriptionScore(bankDesc, atomicDesc string) float64 {
	if len(textsim.Tokenize(bankDesc)) == 0 || len(textsim.Tokenize(atomicDesc)) == 0 {
		return 0.5
	}
	return textsim.Similarity(bankDesc, atomicDesc)
}

// dateProximity is the linear decay chosen for the date signal: full weight
// on the same day, reaching zero just outside the window.
func dateProximity(dayDist, windowDays int) float64 {
	p := 1 - float64(dayDist)/float64(windowDays+1)
	if p < 0 {
		return 0
	}
	return p
}

// runningBalanceScore checks the statement's own arithmetic: previous
// running balance plus this amount should equal this running balance. An
// unreconstructable chain is neutral, a reconstructable mismatch penalizes.
func runningBalanceScore(prevBalance *decimal.Decimal, bankTxn domain.BankStatementTransaction) float64 {
	if bankTxn.RunningBalance == nil || prevBalance == nil {
		return 0.5
	}
	if prevBalance.Add(bankTxn.Amount).Equal(*bankTxn.RunningBalance) {
		return 1.0
	}
	return 0.0
}

// daysBetween counts whole calendar days between two timestamps, ignoring
// the time-of-day component.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	d := int(ad.Sub(bd).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// windowBounds returns the [lo, hi) slice of a date-sorted pool falling
// inside the bank txn's date window.
func windowBounds(pool []domain.AtomicTransaction, date time.Time, windowDays int) (int, int) {
	from := date.AddDate(0, 0, -windowDays)
	to := date.AddDate(0, 0, windowDays)
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	// End of the window day so any time-of-day within it is included.
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 999999999, time.UTC)

	lo := sort.Search(len(pool), func(i int) bool {
		t := pool[i].TransactionDate
		ti := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return !ti.Before(fromDay)
	})
	hi := sort.Search(len(pool), func(i int) bool {
		t := pool[i].TransactionDate
		ti := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return ti.After(toDay)
	})
	return lo, hi
}
