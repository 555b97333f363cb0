package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/domain/commission"
	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
	"github.com/estate/backend/internal/infrastructure/cache"
	"github.com/estate/backend/internal/infrastructure/telemetry"
)

// CommissionService provides application-level commission operations
type CommissionService struct {
	ruleRepo       commission.RuleRepository
	commissionRepo commission.Repository
	entryRepo      ledger.Repository
	ruleCache      cache.RuleCache
	eventBus       shared.EventPublisher
	logger         *zap.Logger
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(
	ruleRepo commission.RuleRepository,
	commissionRepo commission.Repository,
	entryRepo ledger.Repository,
	ruleCache cache.RuleCache,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *CommissionService {
	return &CommissionService{
		ruleRepo:       ruleRepo,
		commissionRepo: commissionRepo,
		entryRepo:      entryRepo,
		ruleCache:      ruleCache,
		eventBus:       eventBus,
		logger:         logger,
	}
}

// CreateRuleRequest represents a request to create a commission rule
type CreateRuleRequest struct {
	ProjectID     *uuid.UUID      `json:"project_id"`
	MinSizeMarla  decimal.Decimal `json:"min_size_marla"`
	MaxSizeMarla  decimal.Decimal `json:"max_size_marla" binding:"required"`
	Type          string          `json:"type" binding:"required,oneof=percent fixed"`
	Value         decimal.Decimal `json:"value" binding:"required"`
	Priority      int             `json:"priority"`
	EffectiveFrom time.Time       `json:"effective_from"`
}

// RuleResponse represents a commission rule in API responses
type RuleResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProjectID     *uuid.UUID      `json:"project_id,omitempty"`
	MinSizeMarla  decimal.Decimal `json:"min_size_marla"`
	MaxSizeMarla  decimal.Decimal `json:"max_size_marla"`
	Type          string          `json:"type"`
	Value         decimal.Decimal `json:"value"`
	Active        bool            `json:"active"`
	Priority      int             `json:"priority"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CommissionResponse represents a commission in API responses
type CommissionResponse struct {
	ID               uuid.UUID       `json:"id"`
	AgentID          uuid.UUID       `json:"agent_id"`
	PlotID           uuid.UUID       `json:"plot_id"`
	ProjectID        uuid.UUID       `json:"project_id"`
	Amount           decimal.Decimal `json:"amount"`
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
	RuleID           *uuid.UUID      `json:"rule_id,omitempty"`
	Status           string          `json:"status"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	PaymentDate      *time.Time      `json:"payment_date,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	Version          int             `json:"version"`
}

// CreateRule creates a commission rule and invalidates the rule cache
func (s *CommissionService) CreateRule(ctx context.Context, req CreateRuleRequest) (*RuleResponse, error) {
	rule, err := commission.NewRule(
		req.ProjectID,
		req.MinSizeMarla, req.MaxSizeMarla,
		commission.RuleType(req.Type),
		req.Value,
		req.Priority,
		req.EffectiveFrom,
	)
	if err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save commission rule: %w", err)
	}

	s.invalidateRules(ctx, rule)
	s.logger.Info("Commission rule created",
		zap.String("id", rule.ID.String()),
		zap.String("type", string(rule.Type)),
		zap.Int("priority", rule.Priority))

	return toRuleResponse(rule), nil
}

// DeactivateRule retires a rule from resolution and invalidates the cache
func (s *CommissionService) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	rule.Deactivate()
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return fmt.Errorf("failed to save commission rule: %w", err)
	}

	s.invalidateRules(ctx, rule)
	return nil
}

// ListRules returns a paginated list of commission rules
func (s *CommissionService) ListRules(ctx context.Context, filter shared.Filter) (shared.Paginated[*RuleResponse], error) {
	page, err := s.ruleRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[*RuleResponse]{}, err
	}

	items := make([]*RuleResponse, len(page.Items))
	for i, rule := range page.Items {
		items[i] = toRuleResponse(rule)
	}
	return shared.Paginated[*RuleResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// ResolveRate runs the rule resolver against the current rule set without
// creating a commission. Used to preview what a sale would pay.
func (s *CommissionService) ResolveRate(ctx context.Context, projectID uuid.UUID, sizeMarla decimal.Decimal, salePrice decimal.Decimal) (*commission.Resolution, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commission", "resolve_rate")
	defer span.End()

	rules, err := s.CandidateRules(ctx, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resolution := commission.Resolve(rules, projectID, sizeMarla, valueobject.NewMoneyPKR(salePrice), time.Now())
	telemetry.SetOK(span)
	return &resolution, nil
}

// CandidateRules returns the candidate rule set for a project, served from
// cache when possible. Cache read errors degrade to a database read.
func (s *CommissionService) CandidateRules(ctx context.Context, projectID uuid.UUID) ([]*commission.Rule, error) {
	rules, found, err := s.ruleCache.Get(ctx, projectID)
	if err != nil {
		s.logger.Warn("Rule cache read failed", zap.Error(err))
	}
	if found {
		return rules, nil
	}

	rules, err = s.ruleRepo.FindCandidates(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission rules: %w", err)
	}

	if err := s.ruleCache.Set(ctx, projectID, rules); err != nil {
		s.logger.Warn("Rule cache write failed", zap.Error(err))
	}
	return rules, nil
}

// GetCommission returns a single commission
func (s *CommissionService) GetCommission(ctx context.Context, id uuid.UUID) (*CommissionResponse, error) {
	c, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCommissionResponse(c), nil
}

// ListCommissions returns a paginated list of commissions
func (s *CommissionService) ListCommissions(ctx context.Context, filter shared.Filter) (shared.Paginated[*CommissionResponse], error) {
	page, err := s.commissionRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[*CommissionResponse]{}, err
	}

	items := make([]*CommissionResponse, len(page.Items))
	for i, c := range page.Items {
		items[i] = toCommissionResponse(c)
	}
	return shared.Paginated[*CommissionResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// ApproveCommission moves a pending commission to approved
func (s *CommissionService) ApproveCommission(ctx context.Context, id, approvedBy uuid.UUID) (*CommissionResponse, error) {
	c, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Approve(approvedBy); err != nil {
		return nil, err
	}
	c.IncrementVersion()

	if err := s.commissionRepo.SaveWithLock(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save commission: %w", err)
	}

	s.publishEvents(ctx, c)
	return toCommissionResponse(c), nil
}

// PayCommission marks an approved commission as paid and posts the expense
// to the ledger
func (s *CommissionService) PayCommission(ctx context.Context, id uuid.UUID) (*CommissionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commission", "pay")
	defer span.End()

	c, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	paymentDate := time.Now()
	if err := c.MarkPaid(paymentDate); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	c.IncrementVersion()

	if err := s.commissionRepo.SaveWithLock(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save commission: %w", err)
	}

	entry, err := ledger.NewLedgerEntry(
		ledger.EntryTypeDebit,
		ledger.AccountAgentCommission,
		ledger.CategoryCommission,
		c.Amount,
		fmt.Sprintf("Commission payout to agent %s", c.AgentID),
		c.ID,
		ledger.RefTypeCommission,
		paymentDate,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	entry.WithProject(c.ProjectID)

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to post commission ledger entry: %w", err)
	}

	s.publishEvents(ctx, c)
	s.logger.Info("Commission paid",
		zap.String("id", c.ID.String()),
		zap.String("amount", c.Amount.Amount().String()))

	telemetry.SetOK(span)
	return toCommissionResponse(c), nil
}

// CancelCommission cancels a commission that has not reached a terminal state
func (s *CommissionService) CancelCommission(ctx context.Context, id uuid.UUID) (*CommissionResponse, error) {
	c, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Cancel(""); err != nil {
		return nil, err
	}
	c.IncrementVersion()

	if err := s.commissionRepo.SaveWithLock(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save commission: %w", err)
	}
	return toCommissionResponse(c), nil
}

// invalidateRules drops cached rule sets affected by a rule write. A global
// rule write invalidates every project.
func (s *CommissionService) invalidateRules(ctx context.Context, rule *commission.Rule) {
	var err error
	if rule.IsGlobal() {
		err = s.ruleCache.InvalidateAll(ctx)
	} else {
		err = s.ruleCache.Invalidate(ctx, *rule.ProjectID)
	}
	if err != nil {
		s.logger.Warn("Rule cache invalidation failed", zap.Error(err))
	}
}

func (s *CommissionService) publishEvents(ctx context.Context, c *commission.Commission) {
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish commission events", zap.Error(err))
	}
	c.ClearDomainEvents()
}

func toRuleResponse(rule *commission.Rule) *RuleResponse {
	return &RuleResponse{
		ID:            rule.ID,
		ProjectID:     rule.ProjectID,
		MinSizeMarla:  rule.MinSizeMarla,
		MaxSizeMarla:  rule.MaxSizeMarla,
		Type:          string(rule.Type),
		Value:         rule.Value,
		Active:        rule.Active,
		Priority:      rule.Priority,
		EffectiveFrom: rule.EffectiveFrom,
		EffectiveTo:   rule.EffectiveTo,
		CreatedAt:     rule.CreatedAt,
	}
}

func toCommissionResponse(c *commission.Commission) *CommissionResponse {
	return &CommissionResponse{
		ID:               c.ID,
		AgentID:          c.AgentID,
		PlotID:           c.PlotID,
		ProjectID:        c.ProjectID,
		Amount:           c.Amount.Amount(),
		CalculatedAmount: c.CalculatedAmount.Amount(),
		RuleID:           c.RuleID,
		Status:           string(c.Status),
		ApprovedBy:       c.ApprovedBy,
		ApprovedAt:       c.ApprovedAt,
		PaymentDate:      c.PaymentDate,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
		Version:          c.Version,
	}
}
