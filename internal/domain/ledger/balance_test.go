package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate/backend/internal/domain/shared/valueobject"
)

func newBalanceEntry(t *testing.T, entryType EntryType, amount float64, date time.Time) *LedgerEntry {
	t.Helper()
	entry, err := NewLedgerEntry(entryType, AccountBuyer, CategoryInstallment,
		valueobject.NewMoneyPKRFromFloat(amount), "", uuid.New(), RefTypeInstallmentPlan, date)
	require.NoError(t, err)
	return entry
}

func TestComputeBalance(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("credits add and debits subtract", func(t *testing.T) {
		entries := []*LedgerEntry{
			newBalanceEntry(t, EntryTypeCredit, 1000, base),
			newBalanceEntry(t, EntryTypeCredit, 500, base.AddDate(0, 0, 1)),
			newBalanceEntry(t, EntryTypeDebit, 300, base.AddDate(0, 0, 2)),
		}

		balance := ComputeBalance(entries)
		assert.Equal(t, "1200.00", balance.Amount().StringFixed(2))
	})

	t.Run("empty list yields zero", func(t *testing.T) {
		assert.True(t, ComputeBalance(nil).IsZero())
	})

	t.Run("fold is order independent for the input slice", func(t *testing.T) {
		a := newBalanceEntry(t, EntryTypeCredit, 100, base)
		b := newBalanceEntry(t, EntryTypeDebit, 40, base.AddDate(0, 0, 5))
		c := newBalanceEntry(t, EntryTypeCredit, 25, base.AddDate(0, 0, 3))

		forward := ComputeBalance([]*LedgerEntry{a, b, c})
		reversed := ComputeBalance([]*LedgerEntry{c, b, a})
		assert.True(t, forward.Equals(reversed))
	})
}

func TestRunningBalance(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("statement lines in date order", func(t *testing.T) {
		late := newBalanceEntry(t, EntryTypeDebit, 200, base.AddDate(0, 0, 10))
		early := newBalanceEntry(t, EntryTypeCredit, 1000, base)

		lines := RunningBalance([]*LedgerEntry{late, early})
		require.Len(t, lines, 2)
		assert.Equal(t, early.ID, lines[0].Entry.ID)
		assert.Equal(t, "1000.00", lines[0].Balance.Amount().StringFixed(2))
		assert.Equal(t, "800.00", lines[1].Balance.Amount().StringFixed(2))
	})

	t.Run("timestamp ties broken by entry id", func(t *testing.T) {
		a := newBalanceEntry(t, EntryTypeCredit, 100, base)
		b := newBalanceEntry(t, EntryTypeCredit, 200, base)

		first := RunningBalance([]*LedgerEntry{a, b})
		second := RunningBalance([]*LedgerEntry{b, a})

		require.Len(t, first, 2)
		require.Len(t, second, 2)
		assert.Equal(t, first[0].Entry.ID, second[0].Entry.ID)
		assert.Equal(t, first[1].Entry.ID, second[1].Entry.ID)
		assert.True(t, first[1].Balance.Equals(second[1].Balance))
	})
}
