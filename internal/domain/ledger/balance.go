package ledger

import (
	"sort"
	"strings"

	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// BalanceLine is one step of a running balance computation
type BalanceLine struct {
	Entry   *LedgerEntry
	Balance valueobject.Money
}

// sortEntries orders entries by entry date ascending, breaking timestamp
// ties by entry id so the fold is deterministic and replayable.
func sortEntries(entries []*LedgerEntry) []*LedgerEntry {
	sorted := make([]*LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EntryDate.Equal(sorted[j].EntryDate) {
			return strings.Compare(sorted[i].ID.String(), sorted[j].ID.String()) < 0
		}
		return sorted[i].EntryDate.Before(sorted[j].EntryDate)
	})
	return sorted
}

// ComputeBalance folds the given entries into a single account balance.
// Credits add, debits subtract. Balances are never stored; every read
// recomputes from the entry list.
func ComputeBalance(entries []*LedgerEntry) valueobject.Money {
	balance := valueobject.ZeroPKR()
	for _, entry := range sortEntries(entries) {
		balance = balance.MustAdd(entry.SignedAmount())
	}
	return balance
}

// RunningBalance returns the per-entry running balance for an account
// statement, in fold order.
func RunningBalance(entries []*LedgerEntry) []BalanceLine {
	lines := make([]BalanceLine, 0, len(entries))
	balance := valueobject.ZeroPKR()
	for _, entry := range sortEntries(entries) {
		balance = balance.MustAdd(entry.SignedAmount())
		lines = append(lines, BalanceLine{Entry: entry, Balance: balance})
	}
	return lines
}
