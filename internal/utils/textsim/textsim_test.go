package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"grocery", "store"}, Tokenize("GROCERY STORE 0042"))
	assert.Equal(t, []string{"payment", "ref", "invoice"}, Tokenize("PAYMENT/REF#8812 invoice"))
	assert.Empty(t, Tokenize("12345 7 - 9"), "numeric and one-char tokens carry no signal")
	assert.Empty(t, Tokenize(""))
}

func TestSimilarity_IdenticalAfterNormalization(t *testing.T) {
	// Casing and a reference number should not hurt the score.
	sim := Similarity("GROCERY STORE 0042", "grocery store")
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestSimilarity_Unrelated(t *testing.T) {
	sim := Similarity("GROCERY STORE", "electric utility payment")
	assert.Less(t, sim, 0.3)
}

func TestSimilarity_PartialOverlap(t *testing.T) {
	full := Similarity("acme payroll deposit", "acme payroll deposit")
	partial := Similarity("acme payroll deposit", "acme payroll")
	none := Similarity("acme payroll deposit", "coffee shop")

	assert.InDelta(t, 1.0, full, 1e-9)
	assert.Greater(t, partial, none)
	assert.Greater(t, partial, 0.4)
}

func TestSimilarity_EmptyInputs(t *testing.T) {
	assert.Zero(t, Similarity("", "grocery store"))
	assert.Zero(t, Similarity("grocery store", ""))
	assert.Zero(t, Similarity("", ""))
	assert.Zero(t, Similarity("0042", "0042"), "numbers-only descriptions have no tokens")
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"GROCERY STORE 0042", "grocery store"},
		{"monthly rent", "RENT PAYMENT march"},
		{"transfer to savings", "TRANSFER TO SAVINGS 991"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		assert.InDelta(t, ab, ba, 1e-9, "similarity must be symmetric for %q / %q", p[0], p[1])
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	}
}
