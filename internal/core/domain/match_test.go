package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTargetConstructors(t *testing.T) {
	atomic := AtomicTarget("atomic-1")
	assert.Equal(t, TargetAtomicTransaction, atomic.Kind)
	assert.Equal(t, "atomic-1", atomic.ID)
	assert.False(t, atomic.IsZero())

	journal := JournalTarget("journal-1")
	assert.Equal(t, TargetJournal, journal.Kind)
	assert.Equal(t, "journal-1", journal.ID)
	assert.False(t, journal.IsZero())
}

func TestMatchTargetIsZero(t *testing.T) {
	assert.True(t, MatchTarget{}.IsZero())
	assert.True(t, MatchTarget{Kind: TargetJournal}.IsZero(), "kind without ID is unset")
	assert.True(t, MatchTarget{ID: "orphan"}.IsZero(), "ID without kind is unset")
}

func TestTransactionTypeOpposite(t *testing.T) {
	assert.Equal(t, Credit, Debit.Opposite())
	assert.Equal(t, Debit, Credit.Opposite())
}

func TestAccountTypeIsDebitNormal(t *testing.T) {
	assert.True(t, Asset.IsDebitNormal())
	assert.True(t, Expense.IsDebitNormal())
	assert.False(t, Liability.IsDebitNormal())
	assert.False(t, Equity.IsDebitNormal())
	assert.False(t, Revenue.IsDebitNormal())
}
