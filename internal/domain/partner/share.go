package partner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/shared"
)

// ValidateShareInvariant checks that adding or changing a partner's share
// keeps the total across non-terminated partners at or below 100%.
// It takes the full current partner set plus the pending change so the rule
// does not depend on any aggregation query. excludePartnerID skips the
// partner being updated so their old share is not double counted.
// A total of exactly 100 is allowed.
func ValidateShareInvariant(partners []*Partner, candidatePercent decimal.Decimal, excludePartnerID *uuid.UUID) error {
	if candidatePercent.IsNegative() || candidatePercent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("VALIDATION", "share percent must be between 0 and 100")
	}

	total := decimal.Zero
	for _, p := range partners {
		if excludePartnerID != nil && p.ID == *excludePartnerID {
			continue
		}
		if !p.Status.CountsTowardShares() {
			continue
		}
		total = total.Add(p.SharePercent)
	}

	if total.Add(candidatePercent).GreaterThan(decimal.NewFromInt(100)) {
		return shared.ErrShareOverflow
	}
	return nil
}
