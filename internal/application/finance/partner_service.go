package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/partner"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
	"github.com/estate/backend/internal/infrastructure/telemetry"
)

// PartnerService provides application-level partner capital and profit
// operations
type PartnerService struct {
	partnerRepo partner.Repository
	entryRepo   ledger.Repository
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewPartnerService creates a new PartnerService
func NewPartnerService(
	partnerRepo partner.Repository,
	entryRepo ledger.Repository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *PartnerService {
	return &PartnerService{
		partnerRepo: partnerRepo,
		entryRepo:   entryRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// CreatePartnerRequest represents a request to create a partner
type CreatePartnerRequest struct {
	Name           string          `json:"name" binding:"required"`
	SharePercent   decimal.Decimal `json:"share_percent" binding:"required"`
	UserID         *uuid.UUID      `json:"user_id"`
	InitialCapital decimal.Decimal `json:"initial_capital"`
}

// CapitalRequest represents a capital injection or withdrawal
type CapitalRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Type   string          `json:"type" binding:"required,oneof=injection withdrawal"`
	Date   time.Time       `json:"date"`
	Notes  string          `json:"notes"`
}

// DistributeProfitRequest represents a profit distribution run over all
// active partners
type DistributeProfitRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required"`
	ProjectID   *uuid.UUID      `json:"project_id"`
	Period      string          `json:"period" binding:"required"`
}

// CapitalTransactionResponse is one capital movement in API responses
type CapitalTransactionResponse struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
	Date   time.Time       `json:"date"`
	Notes  string          `json:"notes,omitempty"`
}

// DistributionResponse is one profit distribution in API responses
type DistributionResponse struct {
	ID        uuid.UUID       `json:"id"`
	PartnerID uuid.UUID       `json:"partner_id"`
	Amount    decimal.Decimal `json:"amount"`
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
	Period    string          `json:"period"`
	Status    string          `json:"status"`
	Date      time.Time       `json:"date"`
	PaidDate  *time.Time      `json:"paid_date,omitempty"`
}

// PartnerResponse represents a partner in API responses
type PartnerResponse struct {
	ID                  uuid.UUID                    `json:"id"`
	Name                string                       `json:"name"`
	UserID              *uuid.UUID                   `json:"user_id,omitempty"`
	SharePercent        decimal.Decimal              `json:"share_percent"`
	CapitalInjected     decimal.Decimal              `json:"capital_injected"`
	Withdrawals         decimal.Decimal              `json:"withdrawals"`
	CapitalBalance      decimal.Decimal              `json:"capital_balance"`
	ProfitCredited      decimal.Decimal              `json:"profit_credited"`
	CapitalTransactions []CapitalTransactionResponse `json:"capital_transactions"`
	Distributions       []DistributionResponse       `json:"distributions"`
	Status              string                       `json:"status"`
	CreatedAt           time.Time                    `json:"created_at"`
	Version             int                          `json:"version"`
}

// CreatePartner creates a partner after validating the share invariant
// across the full partner set. An initial capital amount is recorded as an
// injection with its ledger entry.
func (s *PartnerService) CreatePartner(ctx context.Context, req CreatePartnerRequest) (*PartnerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "partner", "create")
	defer span.End()

	existing, err := s.partnerRepo.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load partners: %w", err)
	}
	if err := partner.ValidateShareInvariant(existing, req.SharePercent, nil); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	p, err := partner.NewPartner(req.Name, req.SharePercent)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.UserID != nil {
		p.UserID = req.UserID
	}

	if req.InitialCapital.IsPositive() {
		tx, err := p.AddCapital(valueobject.NewMoneyPKR(req.InitialCapital), partner.CapitalInjection, time.Now(), "initial capital")
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.postCapitalEntry(ctx, p, tx); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.partnerRepo.Save(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save partner: %w", err)
	}

	s.publishEvents(ctx, p)
	s.logger.Info("Partner created",
		zap.String("id", p.ID.String()),
		zap.String("share_percent", p.SharePercent.String()))

	telemetry.SetOK(span)
	return toPartnerResponse(p), nil
}

// GetPartner returns a single partner
func (s *PartnerService) GetPartner(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPartnerResponse(p), nil
}

// PartnerLedger returns the partner's statement, every ledger entry
// referencing the partner with a running balance column
func (s *PartnerService) PartnerLedger(ctx context.Context, id uuid.UUID) ([]ledger.BalanceLine, error) {
	if _, err := s.partnerRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.FindByRef(ctx, id, ledger.RefTypePartner)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner ledger: %w", err)
	}
	return ledger.RunningBalance(entries), nil
}

// ListPartners returns a paginated list of partners
func (s *PartnerService) ListPartners(ctx context.Context, filter shared.Filter) (shared.Paginated[*PartnerResponse], error) {
	page, err := s.partnerRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[*PartnerResponse]{}, err
	}

	items := make([]*PartnerResponse, len(page.Items))
	for i, p := range page.Items {
		items[i] = toPartnerResponse(p)
	}
	return shared.Paginated[*PartnerResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// UpdateShare changes a partner's share percentage, re-validating the
// invariant with the partner's own current share excluded
func (s *PartnerService) UpdateShare(ctx context.Context, id uuid.UUID, sharePercent decimal.Decimal) (*PartnerResponse, error) {
	all, err := s.partnerRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load partners: %w", err)
	}
	if err := partner.ValidateShareInvariant(all, sharePercent, &id); err != nil {
		return nil, err
	}

	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := p.UpdateShare(sharePercent); err != nil {
		return nil, err
	}
	p.IncrementVersion()

	if err := s.partnerRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save partner: %w", err)
	}
	return toPartnerResponse(p), nil
}

// AddCapital records a capital injection or withdrawal and posts the
// matching ledger entry
func (s *PartnerService) AddCapital(ctx context.Context, id uuid.UUID, req CapitalRequest) (*PartnerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "partner", "add_capital")
	defer span.End()

	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	tx, err := p.AddCapital(valueobject.NewMoneyPKR(req.Amount), partner.CapitalTransactionType(req.Type), date, req.Notes)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	p.IncrementVersion()

	if err := s.partnerRepo.SaveWithLock(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save partner: %w", err)
	}

	if err := s.postCapitalEntry(ctx, p, tx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, p)
	telemetry.SetOK(span)
	return toPartnerResponse(p), nil
}

// DistributeProfit splits a profit amount across every active partner by
// share percentage. Shares must sum to exactly 100 before any distribution
// is recorded.
func (s *PartnerService) DistributeProfit(ctx context.Context, req DistributeProfitRequest) ([]*DistributionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "partner", "distribute_profit")
	defer span.End()

	if !req.TotalAmount.IsPositive() {
		err := shared.NewDomainError("VALIDATION", "profit amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	partners, err := s.partnerRepo.FindActive(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load partners: %w", err)
	}
	if len(partners) == 0 {
		err := shared.NewDomainError("INVALID_STATE", "no active partners to distribute to")
		telemetry.RecordError(span, err)
		return nil, err
	}

	totalShares := decimal.Zero
	for _, p := range partners {
		totalShares = totalShares.Add(p.SharePercent)
	}
	if !totalShares.Equal(decimal.NewFromInt(100)) {
		err := shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("active partner shares sum to %s, distribution requires exactly 100", totalShares))
		telemetry.RecordError(span, err)
		return nil, err
	}

	total := valueobject.NewMoneyPKR(req.TotalAmount)
	responses := make([]*DistributionResponse, 0, len(partners))
	for _, p := range partners {
		dist, err := p.DistributeProfit(total, req.ProjectID, req.Period)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		p.IncrementVersion()

		if err := s.partnerRepo.SaveWithLock(ctx, p); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save partner %s: %w", p.ID, err)
		}

		entry, err := ledger.NewLedgerEntry(
			ledger.EntryTypeDebit,
			ledger.AccountPartner,
			ledger.CategoryPartnerProfit,
			valueobject.NewMoneyPKR(dist.Amount),
			fmt.Sprintf("Profit share %s for partner %s", req.Period, p.Name),
			p.ID,
			ledger.RefTypePartner,
			dist.Date,
		)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if req.ProjectID != nil {
			entry.WithProject(*req.ProjectID)
		}
		if err := s.entryRepo.Save(ctx, entry); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to post profit ledger entry: %w", err)
		}

		s.publishEvents(ctx, p)
		responses = append(responses, toDistributionResponse(p.ID, dist))
	}

	s.logger.Info("Profit distributed",
		zap.String("total", req.TotalAmount.String()),
		zap.String("period", req.Period),
		zap.Int("partners", len(partners)))

	telemetry.SetOK(span)
	return responses, nil
}

// ApproveDistribution pays out a pending profit distribution
func (s *PartnerService) ApproveDistribution(ctx context.Context, partnerID, distributionID uuid.UUID) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	if err := p.ApproveDistribution(distributionID, time.Now()); err != nil {
		return nil, err
	}
	p.IncrementVersion()

	if err := s.partnerRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save partner: %w", err)
	}

	s.publishEvents(ctx, p)
	return toPartnerResponse(p), nil
}

// TerminatePartner retires a partner. Terminated partners stop counting
// toward the share invariant.
func (s *PartnerService) TerminatePartner(ctx context.Context, id uuid.UUID) error {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := p.Terminate(); err != nil {
		return err
	}
	p.IncrementVersion()

	if err := s.partnerRepo.SaveWithLock(ctx, p); err != nil {
		return fmt.Errorf("failed to save partner: %w", err)
	}
	return nil
}

// postCapitalEntry posts the ledger side of a capital movement. Injections
// credit the partner account, withdrawals debit it.
func (s *PartnerService) postCapitalEntry(ctx context.Context, p *partner.Partner, tx *partner.CapitalTransaction) error {
	entryType := ledger.EntryTypeCredit
	category := ledger.CategoryCapitalInjection
	if tx.Type == partner.CapitalWithdrawal {
		entryType = ledger.EntryTypeDebit
		category = ledger.CategoryCapitalWithdrawal
	}

	entry, err := ledger.NewLedgerEntry(
		entryType,
		ledger.AccountPartner,
		category,
		valueobject.NewMoneyPKR(tx.Amount),
		fmt.Sprintf("Capital %s for partner %s", tx.Type, p.Name),
		p.ID,
		ledger.RefTypePartner,
		tx.Date,
	)
	if err != nil {
		return err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to post capital ledger entry: %w", err)
	}
	return nil
}

func (s *PartnerService) publishEvents(ctx context.Context, p *partner.Partner) {
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish partner events", zap.Error(err))
	}
	p.ClearDomainEvents()
}

func toDistributionResponse(partnerID uuid.UUID, dist *partner.ProfitDistribution) *DistributionResponse {
	return &DistributionResponse{
		ID:        dist.ID,
		PartnerID: partnerID,
		Amount:    dist.Amount,
		ProjectID: dist.ProjectID,
		Period:    dist.Period,
		Status:    string(dist.Status),
		Date:      dist.Date,
		PaidDate:  dist.PaidDate,
	}
}

func toPartnerResponse(p *partner.Partner) *PartnerResponse {
	txs := make([]CapitalTransactionResponse, len(p.CapitalTransactions))
	for i, tx := range p.CapitalTransactions {
		txs[i] = CapitalTransactionResponse{
			ID:     tx.ID,
			Amount: tx.Amount,
			Type:   string(tx.Type),
			Date:   tx.Date,
			Notes:  tx.Notes,
		}
	}
	dists := make([]DistributionResponse, len(p.ProfitDistributions))
	for i, dist := range p.ProfitDistributions {
		d := dist
		dists[i] = *toDistributionResponse(p.ID, &d)
	}
	return &PartnerResponse{
		ID:                  p.ID,
		Name:                p.Name,
		UserID:              p.UserID,
		SharePercent:        p.SharePercent,
		CapitalInjected:     p.CapitalInjected.Amount(),
		Withdrawals:         p.Withdrawals.Amount(),
		CapitalBalance:      p.CapitalBalance().Amount(),
		ProfitCredited:      p.ProfitCredited.Amount(),
		CapitalTransactions: txs,
		Distributions:       dists,
		Status:              string(p.Status),
		CreatedAt:           p.CreatedAt,
		Version:             p.Version,
	}
}
