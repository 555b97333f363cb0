package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/domain/installment"
	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
	"github.com/estate/backend/internal/infrastructure/lock"
	"github.com/estate/backend/internal/infrastructure/telemetry"
)

// InstallmentService provides application-level installment plan operations
type InstallmentService struct {
	planRepo  installment.Repository
	entryRepo ledger.Repository
	locks     *lock.KeyedMutex
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(
	planRepo installment.Repository,
	entryRepo ledger.Repository,
	locks *lock.KeyedMutex,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *InstallmentService {
	return &InstallmentService{
		planRepo:  planRepo,
		entryRepo: entryRepo,
		locks:     locks,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// InstallmentSpecRequest describes one installment at plan creation
type InstallmentSpecRequest struct {
	DueDate time.Time       `json:"due_date" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

// CreatePlanRequest represents a request to create an installment plan
type CreatePlanRequest struct {
	BuyerID      uuid.UUID                `json:"buyer_id" binding:"required"`
	PlotID       uuid.UUID                `json:"plot_id" binding:"required"`
	ProjectID    uuid.UUID                `json:"project_id" binding:"required"`
	TotalAmount  decimal.Decimal          `json:"total_amount" binding:"required"`
	DownPayment  decimal.Decimal          `json:"down_payment"`
	Installments []InstallmentSpecRequest `json:"installments" binding:"required,min=1,dive"`
}

// PayInstallmentRequest represents a payment against one installment
type PayInstallmentRequest struct {
	InstallmentNo int             `json:"installment_no" binding:"required,min=1"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaidDate      time.Time       `json:"paid_date"`
}

// PayDownPaymentRequest represents a down payment. A zero amount pays the
// full agreed down payment.
type PayDownPaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	PaidDate time.Time       `json:"paid_date"`
}

// InstallmentResponse represents one installment in API responses
type InstallmentResponse struct {
	InstallmentNo int             `json:"installment_no"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Paid          bool            `json:"paid"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	Status        string          `json:"status"`
}

// PlanResponse represents an installment plan in API responses
type PlanResponse struct {
	ID                  uuid.UUID             `json:"id"`
	BuyerID             uuid.UUID             `json:"buyer_id"`
	PlotID              uuid.UUID             `json:"plot_id"`
	ProjectID           uuid.UUID             `json:"project_id"`
	TotalAmount         decimal.Decimal       `json:"total_amount"`
	DownPayment         decimal.Decimal       `json:"down_payment"`
	DownPaymentPaid     bool                  `json:"down_payment_paid"`
	DownPaymentPaidDate *time.Time            `json:"down_payment_paid_date,omitempty"`
	Installments        []InstallmentResponse `json:"installments"`
	Status              string                `json:"status"`
	TotalPaid           decimal.Decimal       `json:"total_paid"`
	RemainingAmount     decimal.Decimal       `json:"remaining_amount"`
	NextDueDate         *time.Time            `json:"next_due_date,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	Version             int                   `json:"version"`
}

// AgingItemResponse is one overdue installment in the aging report
type AgingItemResponse struct {
	PlanID        uuid.UUID       `json:"plan_id"`
	BuyerID       uuid.UUID       `json:"buyer_id"`
	PlotID        uuid.UUID       `json:"plot_id"`
	InstallmentNo int             `json:"installment_no"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	DaysOverdue   int             `json:"days_overdue"`
	Bucket        string          `json:"bucket"`
}

// AgingReportResponse is the receivables aging report
type AgingReportResponse struct {
	Items  []AgingItemResponse        `json:"items"`
	Totals map[string]decimal.Decimal `json:"totals"`
}

// CreatePlan creates a new installment plan
func (s *InstallmentService) CreatePlan(ctx context.Context, req CreatePlanRequest) (*PlanResponse, error) {
	specs := make([]installment.InstallmentSpec, len(req.Installments))
	for i, spec := range req.Installments {
		specs[i] = installment.InstallmentSpec{DueDate: spec.DueDate, Amount: spec.Amount}
	}

	plan, err := installment.NewPlan(
		req.BuyerID, req.PlotID, req.ProjectID,
		valueobject.NewMoneyPKR(req.TotalAmount),
		valueobject.NewMoneyPKR(req.DownPayment),
		specs,
	)
	if err != nil {
		return nil, err
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save installment plan: %w", err)
	}

	s.logger.Info("Installment plan created",
		zap.String("id", plan.ID.String()),
		zap.String("buyer_id", plan.BuyerID.String()),
		zap.Int("installments", len(plan.Installments)))

	return toPlanResponse(plan), nil
}

// GetPlan returns a single installment plan
func (s *InstallmentService) GetPlan(ctx context.Context, id uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// ListPlans returns a paginated list of installment plans
func (s *InstallmentService) ListPlans(ctx context.Context, filter shared.Filter) (shared.Paginated[*PlanResponse], error) {
	page, err := s.planRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[*PlanResponse]{}, err
	}

	items := make([]*PlanResponse, len(page.Items))
	for i, plan := range page.Items {
		items[i] = toPlanResponse(plan)
	}
	return shared.Paginated[*PlanResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// PayInstallment records a payment against one installment and posts the
// matching ledger entry. Payments on the same plan are serialized through a
// per-plan lock so two tellers cannot both take the same installment.
func (s *InstallmentService) PayInstallment(ctx context.Context, planID uuid.UUID, req PayInstallmentRequest) (*PlanResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "installment", "pay_installment")
	defer span.End()

	var plan *installment.Plan
	err := s.locks.WithLock("installment-plan:"+planID.String(), func() error {
		var err error
		plan, err = s.planRepo.FindByID(ctx, planID)
		if err != nil {
			return err
		}

		paidDate := req.PaidDate
		if paidDate.IsZero() {
			paidDate = time.Now()
		}

		amount := valueobject.NewMoneyPKR(req.Amount)
		if err := plan.PayInstallment(req.InstallmentNo, amount, paidDate); err != nil {
			return err
		}
		plan.IncrementVersion()

		if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
			return fmt.Errorf("failed to save installment plan: %w", err)
		}

		entry, err := ledger.NewLedgerEntry(
			ledger.EntryTypeCredit,
			ledger.AccountBuyer,
			ledger.CategoryInstallment,
			amount,
			fmt.Sprintf("Installment %d payment on plan %s", req.InstallmentNo, plan.ID),
			plan.ID,
			ledger.RefTypeInstallmentPlan,
			paidDate,
		)
		if err != nil {
			return err
		}
		entry.WithProject(plan.ProjectID)

		if err := s.entryRepo.Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to post installment ledger entry: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, plan)
	s.logger.Info("Installment paid",
		zap.String("plan_id", plan.ID.String()),
		zap.Int("installment_no", req.InstallmentNo),
		zap.String("amount", req.Amount.String()))

	telemetry.SetOK(span)
	return toPlanResponse(plan), nil
}

// PayDownPayment records the down payment and posts the matching ledger entry
func (s *InstallmentService) PayDownPayment(ctx context.Context, planID uuid.UUID, req PayDownPaymentRequest) (*PlanResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "installment", "pay_down_payment")
	defer span.End()

	var plan *installment.Plan
	err := s.locks.WithLock("installment-plan:"+planID.String(), func() error {
		var err error
		plan, err = s.planRepo.FindByID(ctx, planID)
		if err != nil {
			return err
		}

		paidDate := req.PaidDate
		if paidDate.IsZero() {
			paidDate = time.Now()
		}

		amount := valueobject.NewMoneyPKR(req.Amount)
		if err := plan.PayDownPayment(amount, paidDate); err != nil {
			return err
		}
		plan.IncrementVersion()

		if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
			return fmt.Errorf("failed to save installment plan: %w", err)
		}

		paid := amount
		if paid.IsZero() {
			paid = plan.DownPayment
		}
		entry, err := ledger.NewLedgerEntry(
			ledger.EntryTypeCredit,
			ledger.AccountBuyer,
			ledger.CategoryInstallment,
			paid,
			fmt.Sprintf("Down payment on plan %s", plan.ID),
			plan.ID,
			ledger.RefTypeInstallmentPlan,
			paidDate,
		)
		if err != nil {
			return err
		}
		entry.WithProject(plan.ProjectID)

		if err := s.entryRepo.Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to post down payment ledger entry: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, plan)
	telemetry.SetOK(span)
	return toPlanResponse(plan), nil
}

// CancelPlan cancels an active installment plan
func (s *InstallmentService) CancelPlan(ctx context.Context, planID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if err := plan.Cancel(); err != nil {
		return nil, err
	}
	plan.IncrementVersion()

	if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save installment plan: %w", err)
	}
	return toPlanResponse(plan), nil
}

// AgingReport builds the receivables aging report over active plans
func (s *InstallmentService) AgingReport(ctx context.Context) (*AgingReportResponse, error) {
	plans, err := s.planRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active plans: %w", err)
	}

	report := installment.BuildAgingReport(plans, time.Now())
	resp := &AgingReportResponse{
		Items:  make([]AgingItemResponse, len(report.Items)),
		Totals: make(map[string]decimal.Decimal, len(report.Totals)),
	}
	for i, item := range report.Items {
		resp.Items[i] = AgingItemResponse{
			PlanID:        item.PlanID,
			BuyerID:       item.BuyerID,
			PlotID:        item.PlotID,
			InstallmentNo: item.InstallmentNo,
			DueDate:       item.DueDate,
			Amount:        item.Amount,
			DaysOverdue:   item.DaysOverdue,
			Bucket:        string(item.Bucket),
		}
	}
	for bucket, total := range report.Totals {
		resp.Totals[string(bucket)] = total
	}
	return resp, nil
}

func (s *InstallmentService) publishEvents(ctx context.Context, plan *installment.Plan) {
	events := plan.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish plan events", zap.Error(err))
	}
	plan.ClearDomainEvents()
}

func toPlanResponse(plan *installment.Plan) *PlanResponse {
	installments := make([]InstallmentResponse, len(plan.Installments))
	for i, inst := range plan.Installments {
		installments[i] = InstallmentResponse{
			InstallmentNo: inst.InstallmentNo,
			DueDate:       inst.DueDate,
			Amount:        inst.Amount,
			Paid:          inst.Paid,
			PaidAmount:    inst.PaidAmount,
			PaidDate:      inst.PaidDate,
			Status:        string(inst.Status),
		}
	}
	return &PlanResponse{
		ID:                  plan.ID,
		BuyerID:             plan.BuyerID,
		PlotID:              plan.PlotID,
		ProjectID:           plan.ProjectID,
		TotalAmount:         plan.TotalAmount.Amount(),
		DownPayment:         plan.DownPayment.Amount(),
		DownPaymentPaid:     plan.DownPaymentPaid,
		DownPaymentPaidDate: plan.DownPaymentPaidDate,
		Installments:        installments,
		Status:              string(plan.Status),
		TotalPaid:           plan.TotalPaid.Amount(),
		RemainingAmount:     plan.RemainingAmount.Amount(),
		NextDueDate:         plan.NextDueDate,
		CreatedAt:           plan.CreatedAt,
		Version:             plan.Version,
	}
}
