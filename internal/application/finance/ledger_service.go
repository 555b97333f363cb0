package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
	"github.com/estate/backend/internal/infrastructure/telemetry"
)

// LedgerService provides application-level ledger operations
type LedgerService struct {
	entryRepo ledger.Repository
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(entryRepo ledger.Repository, eventBus shared.EventPublisher, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		entryRepo: entryRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// PostEntryRequest represents a request to post a manual ledger entry
type PostEntryRequest struct {
	Type        string          `json:"type" binding:"required,oneof=debit credit"`
	Account     string          `json:"account" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	RefID       uuid.UUID       `json:"ref_id" binding:"required"`
	RefType     string          `json:"ref_type" binding:"required"`
	EntryDate   time.Time       `json:"entry_date"`
	ProjectID   *uuid.UUID      `json:"project_id"`
	UserID      *uuid.UUID      `json:"-"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Account      string          `json:"account"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
	RefID        uuid.UUID       `json:"ref_id"`
	RefType      string          `json:"ref_type"`
	EntryDate    time.Time       `json:"entry_date"`
	ProjectID    *uuid.UUID      `json:"project_id,omitempty"`
	UserID       *uuid.UUID      `json:"user_id,omitempty"`
	Reconciled   bool            `json:"reconciled"`
	ReconciledAt *time.Time      `json:"reconciled_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Version      int             `json:"version"`
}

// BalanceResponse represents an account balance
type BalanceResponse struct {
	Account    string          `json:"account"`
	Balance    decimal.Decimal `json:"balance"`
	EntryCount int             `json:"entry_count"`
}

// StatementLine is one entry of an account statement with its running balance
type StatementLine struct {
	Entry   EntryResponse   `json:"entry"`
	Balance decimal.Decimal `json:"balance"`
}

// StatementResponse represents a full account statement
type StatementResponse struct {
	Account string          `json:"account"`
	Lines   []StatementLine `json:"lines"`
	Balance decimal.Decimal `json:"balance"`
}

// PostEntry posts a new ledger entry
func (s *LedgerService) PostEntry(ctx context.Context, req PostEntryRequest) (*EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "post_entry")
	defer span.End()

	entry, err := ledger.NewLedgerEntry(
		ledger.EntryType(req.Type),
		ledger.Account(req.Account),
		ledger.Category(req.Category),
		valueobject.NewMoneyPKR(req.Amount),
		req.Description,
		req.RefID,
		ledger.RefType(req.RefType),
		req.EntryDate,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.ProjectID != nil {
		entry.WithProject(*req.ProjectID)
	}
	if req.UserID != nil {
		entry.WithUser(*req.UserID)
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save ledger entry: %w", err)
	}

	s.publishEvents(ctx, entry)
	s.logger.Info("Ledger entry posted",
		zap.String("id", entry.ID.String()),
		zap.String("account", string(entry.Account)),
		zap.String("type", string(entry.Type)),
		zap.String("amount", entry.Amount.Amount().String()))

	telemetry.SetOK(span)
	return toEntryResponse(entry), nil
}

// GetEntry returns a single ledger entry
func (s *LedgerService) GetEntry(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// Reconcile marks a ledger entry as reconciled
func (s *LedgerService) Reconcile(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "reconcile")
	defer span.End()

	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := entry.Reconcile(time.Now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	entry.IncrementVersion()

	if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save reconciled entry: %w", err)
	}

	s.publishEvents(ctx, entry)
	telemetry.SetOK(span)
	return toEntryResponse(entry), nil
}

// GetBalance folds the account's entries into its current balance
func (s *LedgerService) GetBalance(ctx context.Context, account ledger.Account) (*BalanceResponse, error) {
	if !account.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "invalid account: "+string(account))
	}

	entries, err := s.entryRepo.FindByAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load account entries: %w", err)
	}

	balance := ledger.ComputeBalance(entries)
	return &BalanceResponse{
		Account:    string(account),
		Balance:    balance.Amount(),
		EntryCount: len(entries),
	}, nil
}

// GetStatement returns the account's entries with a running balance column
func (s *LedgerService) GetStatement(ctx context.Context, account ledger.Account) (*StatementResponse, error) {
	if !account.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "invalid account: "+string(account))
	}

	entries, err := s.entryRepo.FindByAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load account entries: %w", err)
	}

	lines := ledger.RunningBalance(entries)
	resp := &StatementResponse{
		Account: string(account),
		Lines:   make([]StatementLine, len(lines)),
		Balance: decimal.Zero,
	}
	for i, line := range lines {
		resp.Lines[i] = StatementLine{
			Entry:   *toEntryResponse(line.Entry),
			Balance: line.Balance.Amount(),
		}
	}
	if len(lines) > 0 {
		resp.Balance = lines[len(lines)-1].Balance.Amount()
	}
	return resp, nil
}

// ReportPeriod bounds a report to a date range; zero bounds stay open
type ReportPeriod struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

// ProfitLossQuery selects the slice of the ledger a P&L report covers.
// ProjectID is parsed by the handler, not query binding.
type ProfitLossQuery struct {
	ReportPeriod
	ProjectID *uuid.UUID `form:"-"`
}

// CashFlowQuery selects the slice and grouping of a cash flow report
type CashFlowQuery struct {
	ReportPeriod
	GroupBy string `form:"group_by" binding:"omitempty,oneof=day week month"`
}

// ProfitLossReport folds the period's entries into a profit and loss
// report, optionally scoped to one project
func (s *LedgerService) ProfitLossReport(ctx context.Context, query ProfitLossQuery) (*ledger.ProfitLossReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "profit_loss_report")
	defer span.End()

	entries, err := s.entryRepo.FindByDateRange(ctx, query.From, query.To)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}

	report := ledger.ProfitLoss(entries, query.ProjectID)
	telemetry.SetOK(span)
	return &report, nil
}

// CashFlowReport folds the period's entries into inflow/outflow buckets.
// Grouping defaults to monthly.
func (s *LedgerService) CashFlowReport(ctx context.Context, query CashFlowQuery) (*ledger.CashFlowReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "cash_flow_report")
	defer span.End()

	groupBy := ledger.CashFlowGroupBy(query.GroupBy)
	if query.GroupBy == "" {
		groupBy = ledger.CashFlowByMonth
	}
	if !groupBy.IsValid() {
		err := shared.NewDomainError("VALIDATION", "invalid group_by: "+query.GroupBy)
		telemetry.RecordError(span, err)
		return nil, err
	}

	entries, err := s.entryRepo.FindByDateRange(ctx, query.From, query.To)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}

	report := ledger.CashFlow(entries, groupBy)
	telemetry.SetOK(span)
	return &report, nil
}

// ListEntries returns a paginated list of ledger entries
func (s *LedgerService) ListEntries(ctx context.Context, filter shared.Filter) (shared.Paginated[*EntryResponse], error) {
	page, err := s.entryRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[*EntryResponse]{}, err
	}

	items := make([]*EntryResponse, len(page.Items))
	for i, entry := range page.Items {
		items[i] = toEntryResponse(entry)
	}
	return shared.Paginated[*EntryResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

func (s *LedgerService) publishEvents(ctx context.Context, entry *ledger.LedgerEntry) {
	events := entry.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish ledger events", zap.Error(err))
	}
	entry.ClearDomainEvents()
}

func toEntryResponse(entry *ledger.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:           entry.ID,
		Type:         string(entry.Type),
		Account:      string(entry.Account),
		Category:     string(entry.Category),
		Amount:       entry.Amount.Amount(),
		Description:  entry.Description,
		RefID:        entry.RefID,
		RefType:      string(entry.RefType),
		EntryDate:    entry.EntryDate,
		ProjectID:    entry.ProjectID,
		UserID:       entry.UserID,
		Reconciled:   entry.Reconciled,
		ReconciledAt: entry.ReconciledAt,
		CreatedAt:    entry.CreatedAt,
		Version:      entry.Version,
	}
}
