package services

import "github.com/finbook/reconcore/internal/core/domain"

// RouteByThreshold maps a match score to its confidence band. Stateless and
// total: every score maps to exactly one band.
//
//	score >= AutoConfirmThreshold -> AUTO_CONFIRM
//	RejectThreshold <= score < AutoConfirmThreshold -> NEEDS_REVIEW
//	score < RejectThreshold -> REJECT
//
// Scores outside [0, 1] are clamped first, so malformed input still routes.
func RouteByThreshold(score float64, cfg domain.RouterConfig) domain.ConfidenceLevel {
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	switch {
	case score >= cfg.AutoConfirmThreshold:
		return domain.ConfidenceAutoConfirm
	case score >= cfg.RejectThreshold:
		return domain.ConfidenceNeedsReview
	default:
		return domain.ConfidenceReject
	}
}
