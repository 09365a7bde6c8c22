package services_test

import (
	"testing"

	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/finbook/reconcore/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestRouteByThreshold(t *testing.T) {
	cfg := domain.DefaultRouterConfig() // auto-confirm 0.85, reject below 0.40

	testCases := []struct {
		name     string
		score    float64
		expected domain.ConfidenceLevel
	}{
		{"perfect score auto-confirms", 1.0, domain.ConfidenceAutoConfirm},
		{"at auto-confirm threshold", 0.85, domain.ConfidenceAutoConfirm},
		{"just below auto-confirm", 0.8499, domain.ConfidenceNeedsReview},
		{"middle of review band", 0.6, domain.ConfidenceNeedsReview},
		{"at reject threshold still reviews", 0.40, domain.ConfidenceNeedsReview},
		{"just below reject threshold", 0.3999, domain.ConfidenceReject},
		{"zero rejects", 0.0, domain.ConfidenceReject},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, services.RouteByThreshold(tc.score, cfg))
		})
	}
}

func TestRouteByThresholdClampsMalformedScores(t *testing.T) {
	cfg := domain.DefaultRouterConfig()

	assert.Equal(t, domain.ConfidenceAutoConfirm, services.RouteByThreshold(1.7, cfg))
	assert.Equal(t, domain.ConfidenceReject, services.RouteByThreshold(-0.2, cfg))
}

// Every representable score must land in exactly one band: the router is
// total over [0, 1].
func TestRouteByThresholdIsTotal(t *testing.T) {
	cfg := domain.DefaultRouterConfig()

	for i := 0; i <= 1000; i++ {
		score := float64(i) / 1000
		band := services.RouteByThreshold(score, cfg)
		switch band {
		case domain.ConfidenceAutoConfirm:
			assert.GreaterOrEqual(t, score, cfg.AutoConfirmThreshold)
		case domain.ConfidenceNeedsReview:
			assert.GreaterOrEqual(t, score, cfg.RejectThreshold)
			assert.Less(t, score, cfg.AutoConfirmThreshold)
		case domain.ConfidenceReject:
			assert.Less(t, score, cfg.RejectThreshold)
		default:
			t.Fatalf("score %f routed to unknown band %q", score, band)
		}
	}
}

func TestRouteByThresholdDegenerateConfig(t *testing.T) {
	// Equal thresholds squeeze the review band to nothing; routing stays total.
	cfg := domain.RouterConfig{AutoConfirmThreshold: 0.5, RejectThreshold: 0.5}

	assert.Equal(t, domain.ConfidenceAutoConfirm, services.RouteByThreshold(0.5, cfg))
	assert.Equal(t, domain.ConfidenceReject, services.RouteByThreshold(0.4999, cfg))
}
