package bank

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/ledger"
)

// Matching thresholds. The amount tolerance absorbs rounding differences
// between bank statements and internal postings.
var (
	amountTolerance = decimal.NewFromFloat(0.01)
	dateWindow      = 7 * 24 * time.Hour
)

// descriptionsOverlap reports case-insensitive substring containment in
// either direction.
func descriptionsOverlap(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// Matches reports whether a single ledger entry satisfies the
// reconciliation heuristic for the transaction: the amounts differ by less
// than 0.01 and either the dates fall within 7 days of each other or the
// descriptions overlap.
func Matches(tx *Transaction, entry *ledger.LedgerEntry) bool {
	diff := tx.Amount.Sub(entry.Amount.Amount()).Abs()
	if diff.GreaterThanOrEqual(amountTolerance) {
		return false
	}

	dateDiff := tx.Date.Sub(entry.EntryDate)
	if dateDiff < 0 {
		dateDiff = -dateDiff
	}
	if dateDiff <= dateWindow {
		return true
	}
	return descriptionsOverlap(tx.Description, entry.Description)
}

// Match returns the first candidate ledger entry satisfying the heuristic,
// or nil when none does. Candidates are scanned in input order; callers
// supply them sorted by (entry date, id) so matching is deterministic.
// Entries already reconciled are skipped, a ledger entry can back at most
// one bank transaction.
func Match(tx *Transaction, candidates []*ledger.LedgerEntry) *ledger.LedgerEntry {
	for _, entry := range candidates {
		if entry.Reconciled {
			continue
		}
		if Matches(tx, entry) {
			return entry
		}
	}
	return nil
}
