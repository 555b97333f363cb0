package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
)

// Repository defines the persistence contract for ledger entries.
// Implementations must return entries for an account ordered by
// (entry_date, id) ascending so balance folds stay deterministic.
type Repository interface {
	Save(ctx context.Context, entry *LedgerEntry) error
	SaveWithLock(ctx context.Context, entry *LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)
	FindByAccount(ctx context.Context, account Account) ([]*LedgerEntry, error)
	FindByRef(ctx context.Context, refID uuid.UUID, refType RefType) ([]*LedgerEntry, error)
	FindUnreconciled(ctx context.Context, from, to time.Time) ([]*LedgerEntry, error)
	// FindByDateRange returns entries with entry_date inside [from, to].
	// A zero bound leaves that side open.
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*LedgerEntry, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*LedgerEntry], error)
	// Delete removes an entry. Entries are immutable facts once a business
	// transaction commits; deletion exists only so a failed sale can take
	// back the postings it made.
	Delete(ctx context.Context, id uuid.UUID) error
}
