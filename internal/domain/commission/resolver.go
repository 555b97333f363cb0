package commission

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// Resolution is the outcome of resolving a commission for a sale.
// A nil RuleID with a zero amount is a valid "no commission" outcome,
// not an error.
type Resolution struct {
	Amount valueobject.Money
	RuleID *uuid.UUID
}

// Resolve computes the commission for a plot sale from the given rule set.
// It is a pure function of (rules, projectID, sizeMarla, salePrice, asOf).
//
// Rules are filtered to those active and effective for the project at asOf,
// ordered by priority descending, and the first rule whose size range
// contains the plot wins. Equal priorities are broken by narrowest range
// first, then by rule id, so resolution never depends on read order.
// The resulting amount is rounded to 2 decimal places.
func Resolve(
	rules []*Rule,
	projectID uuid.UUID,
	sizeMarla decimal.Decimal,
	salePrice valueobject.Money,
	asOf time.Time,
) Resolution {
	applicable := make([]*Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.AppliesTo(projectID, asOf) {
			applicable = append(applicable, rule)
		}
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		a, b := applicable[i], applicable[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.RangeWidth().Equal(b.RangeWidth()) {
			return a.RangeWidth().LessThan(b.RangeWidth())
		}
		return strings.Compare(a.ID.String(), b.ID.String()) < 0
	})

	for _, rule := range applicable {
		if !rule.Contains(sizeMarla) {
			continue
		}
		ruleID := rule.ID
		var amount valueobject.Money
		switch rule.Type {
		case RuleTypeFixed:
			amount = valueobject.NewMoneyPKR(rule.Value)
		default:
			amount = salePrice.CalculatePercentage(rule.Value)
		}
		return Resolution{Amount: amount.Round(2), RuleID: &ruleID}
	}

	return Resolution{Amount: valueobject.ZeroPKR(), RuleID: nil}
}
