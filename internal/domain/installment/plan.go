package installment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// PlanStatus represents the lifecycle state of an installment plan
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
	PlanStatusDefaulted PlanStatus = "defaulted"
)

// IsValid checks if the plan status is valid
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusActive, PlanStatusCompleted, PlanStatusCancelled, PlanStatusDefaulted:
		return true
	}
	return false
}

// IsTerminal reports whether the plan accepts no further payments
func (s PlanStatus) IsTerminal() bool {
	return s != PlanStatusActive
}

// InstallmentStatus tracks payment state of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPartial InstallmentStatus = "partial"
	InstallmentStatusPaid    InstallmentStatus = "paid"
)

// Installment is one scheduled payment inside a plan. Stored as part of
// the plan's JSONB column, not as a separate row.
type Installment struct {
	InstallmentNo int               `json:"installment_no"`
	DueDate       time.Time         `json:"due_date"`
	Amount        decimal.Decimal   `json:"amount"`
	Paid          bool              `json:"paid"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
	PaidDate      *time.Time        `json:"paid_date,omitempty"`
	Status        InstallmentStatus `json:"status"`
}

// IsOverdue reports whether the installment is unpaid past its due date
func (i *Installment) IsOverdue(now time.Time) bool {
	return !i.Paid && i.DueDate.Before(now)
}

// Installments is a JSONB-persisted slice of installments
type Installments []Installment

// Value implements driver.Valuer for JSONB storage
func (ins Installments) Value() (driver.Value, error) {
	return json.Marshal(ins)
}

// Scan implements sql.Scanner for JSONB retrieval
func (ins *Installments) Scan(value any) error {
	if value == nil {
		*ins = Installments{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, isStr := value.(string); isStr {
			bytes = []byte(s)
		} else {
			return errors.New("failed to scan Installments: unsupported type")
		}
	}
	return json.Unmarshal(bytes, ins)
}

// InstallmentSpec describes one installment at plan creation time.
// Due dates are caller-supplied; no schedule generation happens here.
type InstallmentSpec struct {
	DueDate time.Time
	Amount  decimal.Decimal
}

// Plan is a buyer's payment schedule for a plot. The derived fields
// TotalPaid, RemainingAmount and NextDueDate are never set by callers;
// they are recomputed after every mutation via DeriveState.
type Plan struct {
	shared.BaseAggregateRoot
	BuyerID             uuid.UUID         `json:"buyer_id"`
	PlotID              uuid.UUID         `json:"plot_id"`
	ProjectID           uuid.UUID         `json:"project_id"`
	TotalAmount         valueobject.Money `json:"total_amount"`
	DownPayment         valueobject.Money `json:"down_payment"`
	DownPaymentPaid     bool              `json:"down_payment_paid"`
	DownPaymentPaidDate *time.Time        `json:"down_payment_paid_date,omitempty"`
	Installments        Installments      `json:"installments"`
	Status              PlanStatus        `json:"status"`
	TotalPaid           valueobject.Money `json:"total_paid"`
	RemainingAmount     valueobject.Money `json:"remaining_amount"`
	NextDueDate         *time.Time        `json:"next_due_date,omitempty"`
}

// NewPlan creates an installment plan. Installments are numbered 1..N in
// the order given.
func NewPlan(
	buyerID, plotID, projectID uuid.UUID,
	totalAmount, downPayment valueobject.Money,
	specs []InstallmentSpec,
) (*Plan, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "buyer id is required")
	}
	if plotID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "plot id is required")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "total amount must be positive")
	}
	if downPayment.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION", "down payment cannot be negative")
	}
	if len(specs) == 0 {
		return nil, shared.NewDomainError("VALIDATION", "at least one installment is required")
	}

	installments := make(Installments, 0, len(specs))
	for i, spec := range specs {
		if spec.Amount.IsNegative() {
			return nil, shared.NewDomainError("VALIDATION",
				fmt.Sprintf("installment %d amount cannot be negative", i+1))
		}
		if spec.DueDate.IsZero() {
			return nil, shared.NewDomainError("VALIDATION",
				fmt.Sprintf("installment %d due date is required", i+1))
		}
		installments = append(installments, Installment{
			InstallmentNo: i + 1,
			DueDate:       spec.DueDate,
			Amount:        spec.Amount,
			Paid:          false,
			PaidAmount:    decimal.Zero,
			Status:        InstallmentStatusPending,
		})
	}

	plan := &Plan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuyerID:           buyerID,
		PlotID:            plotID,
		ProjectID:         projectID,
		TotalAmount:       totalAmount,
		DownPayment:       downPayment,
		Installments:      installments,
		Status:            PlanStatusActive,
	}
	plan.recompute(time.Now())

	plan.AddDomainEvent(NewPlanCreatedEvent(plan))
	return plan, nil
}

// recompute refreshes the derived fields and runs the completion check.
// It must be called after every mutation.
func (p *Plan) recompute(now time.Time) {
	state := DeriveState(p, now)
	p.TotalPaid = state.TotalPaid
	p.RemainingAmount = state.RemainingAmount
	p.NextDueDate = state.NextDueDate
	if p.Status == PlanStatusActive && state.Completed {
		p.Status = PlanStatusCompleted
		p.AddDomainEvent(NewPlanCompletedEvent(p))
	}
}

// FindInstallment returns the installment with the given number, or nil
func (p *Plan) FindInstallment(installmentNo int) *Installment {
	for i := range p.Installments {
		if p.Installments[i].InstallmentNo == installmentNo {
			return &p.Installments[i]
		}
	}
	return nil
}

// PayInstallment records a payment against a single installment. The
// installment is marked paid even when the amount falls short; the shortfall
// is reflected in its partial status.
func (p *Plan) PayInstallment(installmentNo int, amount valueobject.Money, paidDate time.Time) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"plan in status "+string(p.Status)+" does not accept payments")
	}
	inst := p.FindInstallment(installmentNo)
	if inst == nil {
		return shared.NewDomainError("NOT_FOUND",
			fmt.Sprintf("installment %d not found in plan", installmentNo))
	}
	if inst.Paid {
		return shared.ErrAlreadyPaid
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION", "payment amount must be positive")
	}
	if paidDate.IsZero() {
		paidDate = time.Now()
	}

	inst.Paid = true
	inst.PaidAmount = amount.Amount()
	inst.PaidDate = &paidDate
	if amount.Amount().GreaterThanOrEqual(inst.Amount) {
		inst.Status = InstallmentStatusPaid
	} else {
		inst.Status = InstallmentStatusPartial
	}

	p.Touch()
	p.recompute(time.Now())

	p.AddDomainEvent(NewInstallmentPaidEvent(p, installmentNo, amount))
	return nil
}

// PayDownPayment records the down payment. A zero amount means the full
// scheduled down payment was received.
func (p *Plan) PayDownPayment(amount valueobject.Money, paidDate time.Time) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"plan in status "+string(p.Status)+" does not accept payments")
	}
	if p.DownPaymentPaid {
		return shared.ErrAlreadyPaid
	}
	if amount.IsNegative() {
		return shared.NewDomainError("VALIDATION", "payment amount cannot be negative")
	}
	if amount.IsZero() {
		amount = p.DownPayment
	}
	if paidDate.IsZero() {
		paidDate = time.Now()
	}

	p.DownPaymentPaid = true
	p.DownPaymentPaidDate = &paidDate
	p.DownPayment = amount
	p.Touch()
	p.recompute(time.Now())

	p.AddDomainEvent(NewDownPaymentPaidEvent(p, amount))
	return nil
}

// Cancel terminates the plan by admin action
func (p *Plan) Cancel() error {
	if p.Status != PlanStatusActive {
		return shared.NewDomainError("INVALID_STATE",
			"only active plans can be cancelled, current status: "+string(p.Status))
	}
	p.Status = PlanStatusCancelled
	p.Touch()
	return nil
}

// MarkDefaulted flags the plan as defaulted by admin action
func (p *Plan) MarkDefaulted() error {
	if p.Status != PlanStatusActive {
		return shared.NewDomainError("INVALID_STATE",
			"only active plans can be defaulted, current status: "+string(p.Status))
	}
	p.Status = PlanStatusDefaulted
	p.Touch()
	return nil
}

// OverdueInstallments returns the unpaid installments past due as of now
func (p *Plan) OverdueInstallments(now time.Time) []Installment {
	var overdue []Installment
	for _, inst := range p.Installments {
		if inst.IsOverdue(now) {
			overdue = append(overdue, inst)
		}
	}
	return overdue
}

// Installment plan domain events
const (
	EventPlanCreated     = "installment.plan_created"
	EventPlanCompleted   = "installment.plan_completed"
	EventInstallmentPaid = "installment.installment_paid"
	EventDownPaymentPaid = "installment.down_payment_paid"
)

// PlanCreatedEvent is raised when a new plan is created
type PlanCreatedEvent struct {
	shared.BaseDomainEvent
	BuyerID     uuid.UUID `json:"buyer_id"`
	PlotID      uuid.UUID `json:"plot_id"`
	TotalAmount string    `json:"total_amount"`
	Count       int       `json:"installment_count"`
}

// NewPlanCreatedEvent creates a new plan created event
func NewPlanCreatedEvent(p *Plan) *PlanCreatedEvent {
	return &PlanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPlanCreated, "InstallmentPlan", p.ID),
		BuyerID:         p.BuyerID,
		PlotID:          p.PlotID,
		TotalAmount:     p.TotalAmount.Amount().String(),
		Count:           len(p.Installments),
	}
}

// PlanCompletedEvent is raised when every installment and the down payment
// have been paid
type PlanCompletedEvent struct {
	shared.BaseDomainEvent
	BuyerID uuid.UUID `json:"buyer_id"`
	PlotID  uuid.UUID `json:"plot_id"`
}

// NewPlanCompletedEvent creates a new plan completed event
func NewPlanCompletedEvent(p *Plan) *PlanCompletedEvent {
	return &PlanCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPlanCompleted, "InstallmentPlan", p.ID),
		BuyerID:         p.BuyerID,
		PlotID:          p.PlotID,
	}
}

// InstallmentPaidEvent is raised when a single installment is paid
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	InstallmentNo int    `json:"installment_no"`
	Amount        string `json:"amount"`
}

// NewInstallmentPaidEvent creates a new installment paid event
func NewInstallmentPaidEvent(p *Plan, no int, amount valueobject.Money) *InstallmentPaidEvent {
	return &InstallmentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInstallmentPaid, "InstallmentPlan", p.ID),
		InstallmentNo:   no,
		Amount:          amount.Amount().String(),
	}
}

// DownPaymentPaidEvent is raised when the down payment is received
type DownPaymentPaidEvent struct {
	shared.BaseDomainEvent
	Amount string `json:"amount"`
}

// NewDownPaymentPaidEvent creates a new down payment paid event
func NewDownPaymentPaidEvent(p *Plan, amount valueobject.Money) *DownPaymentPaidEvent {
	return &DownPaymentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDownPaymentPaid, "InstallmentPlan", p.ID),
		Amount:          amount.Amount().String(),
	}
}
