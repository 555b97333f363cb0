// Package sale orchestrates the multi-record sale workflow as a saga:
// each step that writes a record pushes a compensation, and a failure runs
// the stack in reverse so no partial sale survives.
package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/application/finance"
	"github.com/estate/backend/internal/domain/commission"
	"github.com/estate/backend/internal/domain/installment"
	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/property"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
	"github.com/estate/backend/internal/infrastructure/lock"
	"github.com/estate/backend/internal/infrastructure/notification"
	"github.com/estate/backend/internal/infrastructure/telemetry"
)

// sellerSharePercent is the share of the sale price owed to the plot's
// seller when the society sells on a seller's behalf.
var sellerSharePercent = decimal.NewFromInt(70)

// PaymentMode selects how the buyer pays
type PaymentMode string

const (
	PaymentModeFull         PaymentMode = "full"
	PaymentModeInstallments PaymentMode = "installments"
)

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	return m == PaymentModeFull || m == PaymentModeInstallments
}

// Service orchestrates the sale workflow
type Service struct {
	plotRepo          property.PlotRepository
	planRepo          installment.Repository
	commissionRepo    commission.Repository
	sellerPaymentRepo property.SellerPaymentRepository
	entryRepo         ledger.Repository
	commissionService *finance.CommissionService
	dispatcher        notification.Dispatcher
	locks             *lock.KeyedMutex
	eventBus          shared.EventPublisher
	logger            *zap.Logger

	notificationTimeout time.Duration
}

// NewService creates a new sale Service
func NewService(
	plotRepo property.PlotRepository,
	planRepo installment.Repository,
	commissionRepo commission.Repository,
	sellerPaymentRepo property.SellerPaymentRepository,
	entryRepo ledger.Repository,
	commissionService *finance.CommissionService,
	dispatcher notification.Dispatcher,
	locks *lock.KeyedMutex,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
	notificationTimeout time.Duration,
) *Service {
	return &Service{
		plotRepo:            plotRepo,
		planRepo:            planRepo,
		commissionRepo:      commissionRepo,
		sellerPaymentRepo:   sellerPaymentRepo,
		entryRepo:           entryRepo,
		commissionService:   commissionService,
		dispatcher:          dispatcher,
		locks:               locks,
		eventBus:            eventBus,
		logger:              logger,
		notificationTimeout: notificationTimeout,
	}
}

// InstallmentSpec describes one installment of the buyer's schedule
type InstallmentSpec struct {
	DueDate time.Time       `json:"due_date" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

// ProcessSaleRequest represents a request to sell a plot
type ProcessSaleRequest struct {
	PlotID       uuid.UUID         `json:"plot_id" binding:"required"`
	BuyerID      uuid.UUID         `json:"buyer_id" binding:"required"`
	SalePrice    decimal.Decimal   `json:"sale_price" binding:"required"`
	PaymentMode  string            `json:"payment_mode" binding:"required,oneof=full installments"`
	DownPayment  decimal.Decimal   `json:"down_payment"`
	Installments []InstallmentSpec `json:"installments"`
}

// SaleResult reports everything the sale created
type SaleResult struct {
	PlotID       uuid.UUID  `json:"plot_id"`
	PlotNo       string     `json:"plot_no"`
	BuyerID      uuid.UUID  `json:"buyer_id"`
	SalePrice    string     `json:"sale_price"`
	PlanID       *uuid.UUID `json:"plan_id,omitempty"`
	CommissionID *uuid.UUID `json:"commission_id,omitempty"`
	PaymentID    *uuid.UUID `json:"seller_payment_id,omitempty"`
	SoldAt       time.Time  `json:"sold_at"`
}

// PaySellerRequest represents a payout recorded against a seller payment
type PaySellerRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// compensation undoes one committed saga step
type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// ProcessSale runs the sale workflow. Sales of the same plot are serialized
// through a per-plot lock; inside the lock each step either commits or the
// compensations already pushed run in reverse order.
func (s *Service) ProcessSale(ctx context.Context, req ProcessSaleRequest) (*SaleResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "process")
	defer span.End()

	mode := PaymentMode(req.PaymentMode)
	if !mode.IsValid() {
		err := shared.NewDomainError("VALIDATION", "invalid payment mode: "+req.PaymentMode)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !req.SalePrice.IsPositive() {
		err := shared.NewDomainError("VALIDATION", "sale price must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if mode == PaymentModeInstallments && len(req.Installments) == 0 {
		err := shared.NewDomainError("VALIDATION", "installment sale requires a schedule")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *SaleResult
	err := s.locks.WithLock("plot:"+req.PlotID.String(), func() error {
		var err error
		result, err = s.processLocked(ctx, req, mode)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetOK(span)
	return result, nil
}

func (s *Service) processLocked(ctx context.Context, req ProcessSaleRequest, mode PaymentMode) (result *SaleResult, err error) {
	plot, err := s.plotRepo.FindByID(ctx, req.PlotID)
	if err != nil {
		return nil, err
	}

	var compensations []compensation
	defer func() {
		if err != nil {
			s.compensate(ctx, compensations)
		}
	}()

	salePrice := valueobject.NewMoneyPKR(req.SalePrice)
	soldAt := time.Now()

	// Step 1: flip the plot to sold.
	if err = plot.MarkSold(req.BuyerID, salePrice, soldAt); err != nil {
		return nil, err
	}
	plot.IncrementVersion()
	if err = s.plotRepo.SaveWithLock(ctx, plot); err != nil {
		return nil, fmt.Errorf("failed to save plot: %w", err)
	}
	compensations = append(compensations, compensation{
		name: "revert plot",
		undo: func(ctx context.Context) error {
			if rerr := plot.RevertToAvailable(); rerr != nil {
				return rerr
			}
			plot.IncrementVersion()
			return s.plotRepo.SaveWithLock(ctx, plot)
		},
	})

	result = &SaleResult{
		PlotID:    plot.ID,
		PlotNo:    plot.PlotNo,
		BuyerID:   req.BuyerID,
		SalePrice: salePrice.Amount().String(),
		SoldAt:    soldAt,
	}

	// Step 2: payment records. Installment sales get a plan plus the down
	// payment posting; full sales post the whole price at once.
	if mode == PaymentModeInstallments {
		if err = s.createPlan(ctx, req, plot, soldAt, result, &compensations); err != nil {
			return nil, err
		}
	} else {
		if err = s.postSaleEntry(ctx, plot, salePrice, soldAt, &compensations); err != nil {
			return nil, err
		}
	}

	// Step 3: booking agent commission, when a rule matches.
	if plot.BookedBy != nil {
		if err = s.createCommission(ctx, plot, salePrice, soldAt, result, &compensations); err != nil {
			return nil, err
		}
	}

	// Step 4: seller payment at the agreed share of the price.
	if plot.SellerID != nil {
		if err = s.createSellerPayment(ctx, plot, salePrice, soldAt, result, &compensations); err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, plot)
	s.notify(plot, req.BuyerID, salePrice)

	s.logger.Info("Sale processed",
		zap.String("plot_id", plot.ID.String()),
		zap.String("plot_no", plot.PlotNo),
		zap.String("buyer_id", req.BuyerID.String()),
		zap.String("sale_price", salePrice.Amount().String()),
		zap.String("payment_mode", string(mode)))

	return result, nil
}

// createPlan creates the installment plan and, when a down payment was
// agreed, records its payment with the matching ledger entry
func (s *Service) createPlan(ctx context.Context, req ProcessSaleRequest, plot *property.Plot, soldAt time.Time, result *SaleResult, compensations *[]compensation) error {
	specs := make([]installment.InstallmentSpec, len(req.Installments))
	for i, spec := range req.Installments {
		specs[i] = installment.InstallmentSpec{DueDate: spec.DueDate, Amount: spec.Amount}
	}

	plan, err := installment.NewPlan(
		req.BuyerID, plot.ID, plot.ProjectID,
		valueobject.NewMoneyPKR(req.SalePrice),
		valueobject.NewMoneyPKR(req.DownPayment),
		specs,
	)
	if err != nil {
		return err
	}

	if req.DownPayment.IsPositive() {
		if err := plan.PayDownPayment(plan.DownPayment, soldAt); err != nil {
			return err
		}
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return fmt.Errorf("failed to save installment plan: %w", err)
	}
	*compensations = append(*compensations, compensation{
		name: "delete installment plan",
		undo: func(ctx context.Context) error {
			return s.planRepo.Delete(ctx, plan.ID)
		},
	})

	if req.DownPayment.IsPositive() {
		entry, err := ledger.NewLedgerEntry(
			ledger.EntryTypeCredit,
			ledger.AccountBuyer,
			ledger.CategoryInstallment,
			plan.DownPayment,
			fmt.Sprintf("Down payment on plot %s", plot.PlotNo),
			plan.ID,
			ledger.RefTypeInstallmentPlan,
			soldAt,
		)
		if err != nil {
			return err
		}
		entry.WithProject(plot.ProjectID)
		if err := s.saveEntry(ctx, entry, compensations); err != nil {
			return err
		}
	}

	result.PlanID = &plan.ID
	return nil
}

// postSaleEntry posts the full-payment income entry
func (s *Service) postSaleEntry(ctx context.Context, plot *property.Plot, salePrice valueobject.Money, soldAt time.Time, compensations *[]compensation) error {
	entry, err := ledger.NewLedgerEntry(
		ledger.EntryTypeCredit,
		ledger.AccountIncome,
		ledger.CategoryPlotSale,
		salePrice,
		fmt.Sprintf("Sale of plot %s", plot.PlotNo),
		plot.ID,
		ledger.RefTypePlot,
		soldAt,
	)
	if err != nil {
		return err
	}
	entry.WithProject(plot.ProjectID)
	return s.saveEntry(ctx, entry, compensations)
}

// createCommission resolves the booking agent's commission and records it
// with the matching expense entry. A zero resolution means no applicable
// rule; the sale proceeds without a commission.
func (s *Service) createCommission(ctx context.Context, plot *property.Plot, salePrice valueobject.Money, soldAt time.Time, result *SaleResult, compensations *[]compensation) error {
	rules, err := s.commissionService.CandidateRules(ctx, plot.ProjectID)
	if err != nil {
		return err
	}

	resolution := commission.Resolve(rules, plot.ProjectID, plot.SizeMarla, salePrice, soldAt)
	if resolution.Amount.IsZero() {
		s.logger.Info("No commission rule matched",
			zap.String("plot_id", plot.ID.String()),
			zap.String("agent_id", plot.BookedBy.String()))
		return nil
	}

	c, err := commission.NewCommission(*plot.BookedBy, plot.ID, plot.ProjectID, resolution.Amount, resolution.RuleID)
	if err != nil {
		return err
	}
	if err := s.commissionRepo.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to save commission: %w", err)
	}
	*compensations = append(*compensations, compensation{
		name: "delete commission",
		undo: func(ctx context.Context) error {
			return s.commissionRepo.Delete(ctx, c.ID)
		},
	})

	entry, err := ledger.NewLedgerEntry(
		ledger.EntryTypeDebit,
		ledger.AccountAgentCommission,
		ledger.CategoryCommission,
		resolution.Amount,
		fmt.Sprintf("Commission accrual on plot %s", plot.PlotNo),
		c.ID,
		ledger.RefTypeCommission,
		soldAt,
	)
	if err != nil {
		return err
	}
	entry.WithProject(plot.ProjectID)
	if err := s.saveEntry(ctx, entry, compensations); err != nil {
		return err
	}

	result.CommissionID = &c.ID
	return nil
}

// createSellerPayment records what the society owes the plot's seller
func (s *Service) createSellerPayment(ctx context.Context, plot *property.Plot, salePrice valueobject.Money, soldAt time.Time, result *SaleResult, compensations *[]compensation) error {
	owed := salePrice.CalculatePercentage(sellerSharePercent).Round(2)
	payment, err := property.NewSellerPayment(*plot.SellerID, plot.ID, owed)
	if err != nil {
		return err
	}
	if err := s.sellerPaymentRepo.Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save seller payment: %w", err)
	}
	*compensations = append(*compensations, compensation{
		name: "delete seller payment",
		undo: func(ctx context.Context) error {
			return s.sellerPaymentRepo.Delete(ctx, payment.ID)
		},
	})

	entry, err := ledger.NewLedgerEntry(
		ledger.EntryTypeDebit,
		ledger.AccountSeller,
		ledger.CategorySellerPayment,
		owed,
		fmt.Sprintf("Seller share on plot %s", plot.PlotNo),
		payment.ID,
		ledger.RefTypeSellerPayment,
		soldAt,
	)
	if err != nil {
		return err
	}
	entry.WithProject(plot.ProjectID)
	if err := s.saveEntry(ctx, entry, compensations); err != nil {
		return err
	}

	result.PaymentID = &payment.ID
	return nil
}

// GetSellerPayment returns a single seller payment
func (s *Service) GetSellerPayment(ctx context.Context, id uuid.UUID) (*property.SellerPayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "get_seller_payment")
	defer span.End()

	payment, err := s.sellerPaymentRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return payment, nil
}

// SellerPaymentsBySeller returns every payout owed to one seller
func (s *Service) SellerPaymentsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*property.SellerPayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "seller_payments_by_seller")
	defer span.End()

	payments, err := s.sellerPaymentRepo.FindBySeller(ctx, sellerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return payments, nil
}

// PaySeller records a payout toward a seller payment and posts the
// matching expense entry. Payouts against the same payment are serialized
// through a per-payment lock.
func (s *Service) PaySeller(ctx context.Context, paymentID uuid.UUID, req PaySellerRequest) (*property.SellerPayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "pay_seller")
	defer span.End()

	var payment *property.SellerPayment
	err := s.locks.WithLock("seller-payment:"+paymentID.String(), func() error {
		var err error
		payment, err = s.paySellerLocked(ctx, paymentID, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetOK(span)
	return payment, nil
}

func (s *Service) paySellerLocked(ctx context.Context, paymentID uuid.UUID, req PaySellerRequest) (*property.SellerPayment, error) {
	payment, err := s.sellerPaymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	amount := valueobject.NewMoneyPKR(req.Amount)
	if err := payment.ApplyPayment(amount); err != nil {
		return nil, err
	}

	payment.IncrementVersion()
	if err := s.sellerPaymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save seller payment: %w", err)
	}

	entry, err := ledger.NewLedgerEntry(
		ledger.EntryTypeDebit,
		ledger.AccountExpense,
		ledger.CategorySellerPayment,
		amount,
		fmt.Sprintf("Seller payout %s", payment.ID),
		payment.ID,
		ledger.RefTypeSellerPayment,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to post ledger entry: %w", err)
	}

	s.logger.Info("Seller payout recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", amount.Amount().String()),
		zap.String("status", string(payment.Status)))

	return payment, nil
}

// saveEntry persists a ledger entry and pushes its compensation
func (s *Service) saveEntry(ctx context.Context, entry *ledger.LedgerEntry, compensations *[]compensation) error {
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to post ledger entry: %w", err)
	}
	*compensations = append(*compensations, compensation{
		name: "delete ledger entry",
		undo: func(ctx context.Context) error {
			return s.entryRepo.Delete(ctx, entry.ID)
		},
	})
	return nil
}

// compensate runs the pushed compensations newest-first. A compensation
// failure is logged and the rest still run; leftovers are surfaced for
// manual repair rather than silently dropped.
func (s *Service) compensate(ctx context.Context, compensations []compensation) {
	for i := len(compensations) - 1; i >= 0; i-- {
		c := compensations[i]
		if err := c.undo(ctx); err != nil {
			s.logger.Error("Saga compensation failed",
				zap.String("step", c.name),
				zap.Error(err))
		} else {
			s.logger.Info("Saga step compensated", zap.String("step", c.name))
		}
	}
}

// notify sends the best-effort sale notification. The call is bounded by
// the configured timeout and failures are logged, never propagated.
func (s *Service) notify(plot *property.Plot, buyerID uuid.UUID, salePrice valueobject.Money) {
	ctx, cancel := context.WithTimeout(context.Background(), s.notificationTimeout)
	defer cancel()

	err := s.dispatcher.NotifySaleCompleted(ctx, notification.SaleNotification{
		PlotID:    plot.ID,
		PlotNo:    plot.PlotNo,
		BuyerID:   buyerID,
		SalePrice: salePrice.Amount().String(),
	})
	if err != nil {
		s.logger.Warn("Sale notification failed",
			zap.String("plot_id", plot.ID.String()),
			zap.Error(err))
	}
}

func (s *Service) publishEvents(ctx context.Context, plot *property.Plot) {
	events := plot.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish sale events", zap.Error(err))
	}
	plot.ClearDomainEvents()
}
