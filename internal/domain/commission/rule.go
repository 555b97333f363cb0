package commission

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/shared"
)

// RuleType determines how a commission rule computes its payout
type RuleType string

const (
	RuleTypePercent RuleType = "percent"
	RuleTypeFixed   RuleType = "fixed"
)

// IsValid checks if the rule type is valid
func (t RuleType) IsValid() bool {
	return t == RuleTypePercent || t == RuleTypeFixed
}

// Rule maps a plot size range within a project (or globally) to a
// commission rate. Rules are admin-managed; the sale flow only reads them.
// Ranges may overlap, resolution is priority plus first-match.
type Rule struct {
	shared.BaseAggregateRoot
	ProjectID     *uuid.UUID      `json:"project_id,omitempty"` // nil means global
	MinSizeMarla  decimal.Decimal `json:"min_size_marla"`
	MaxSizeMarla  decimal.Decimal `json:"max_size_marla"`
	Type          RuleType        `json:"type"`
	Value         decimal.Decimal `json:"value"`
	Active        bool            `json:"active"`
	Priority      int             `json:"priority"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
}

// NewRule creates and validates a commission rule
func NewRule(
	projectID *uuid.UUID,
	minSize, maxSize decimal.Decimal,
	ruleType RuleType,
	value decimal.Decimal,
	priority int,
	effectiveFrom time.Time,
) (*Rule, error) {
	if !ruleType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "invalid rule type: "+string(ruleType))
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION", "rule value cannot be negative")
	}
	if minSize.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION", "minimum plot size cannot be negative")
	}
	if maxSize.LessThan(minSize) {
		return nil, shared.NewDomainError("VALIDATION", "maximum plot size cannot be below minimum")
	}
	if effectiveFrom.IsZero() {
		effectiveFrom = time.Now()
	}

	return &Rule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		MinSizeMarla:      minSize,
		MaxSizeMarla:      maxSize,
		Type:              ruleType,
		Value:             value,
		Active:            true,
		Priority:          priority,
		EffectiveFrom:     effectiveFrom,
	}, nil
}

// IsGlobal reports whether the rule applies to every project
func (r *Rule) IsGlobal() bool {
	return r.ProjectID == nil
}

// AppliesTo reports whether the rule covers the given project at the given
// time. A nil project id on the rule matches any project.
func (r *Rule) AppliesTo(projectID uuid.UUID, asOf time.Time) bool {
	if !r.Active {
		return false
	}
	if r.ProjectID != nil && *r.ProjectID != projectID {
		return false
	}
	if asOf.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && asOf.After(*r.EffectiveTo) {
		return false
	}
	return true
}

// Contains reports whether the plot size falls in the rule's range,
// inclusive on both ends.
func (r *Rule) Contains(sizeMarla decimal.Decimal) bool {
	return sizeMarla.GreaterThanOrEqual(r.MinSizeMarla) && sizeMarla.LessThanOrEqual(r.MaxSizeMarla)
}

// RangeWidth returns the width of the rule's size range
func (r *Rule) RangeWidth() decimal.Decimal {
	return r.MaxSizeMarla.Sub(r.MinSizeMarla)
}

// Deactivate retires the rule from resolution
func (r *Rule) Deactivate() {
	r.Active = false
	r.Touch()
}
