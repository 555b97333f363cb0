package commission

import (
	"time"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// Status is a forward-only state machine: a commission moves from pending
// to approved to paid, or to cancelled. There is no un-approve.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Commission is an agent's payout for a qualifying sale, created once per
// sale by the workflow and advanced through its status by admin actions.
type Commission struct {
	shared.BaseAggregateRoot
	AgentID          uuid.UUID         `json:"agent_id"`
	PlotID           uuid.UUID         `json:"plot_id"`
	ProjectID        uuid.UUID         `json:"project_id"`
	Amount           valueobject.Money `json:"amount"`
	CalculatedAmount valueobject.Money `json:"calculated_amount"`
	RuleID           *uuid.UUID        `json:"rule_id,omitempty"`
	Status           Status            `json:"status"`
	ApprovedBy       *uuid.UUID        `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	PaymentDate      *time.Time        `json:"payment_date,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// NewCommission creates a pending commission for an agent. CalculatedAmount
// preserves what the rule produced; Amount may later diverge if an admin
// adjusts the payout before approval.
func NewCommission(
	agentID, plotID, projectID uuid.UUID,
	amount valueobject.Money,
	ruleID *uuid.UUID,
) (*Commission, error) {
	if agentID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "agent id is required")
	}
	if plotID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "plot id is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION", "commission amount cannot be negative")
	}

	c := &Commission{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AgentID:           agentID,
		PlotID:            plotID,
		ProjectID:         projectID,
		Amount:            amount,
		CalculatedAmount:  amount,
		RuleID:            ruleID,
		Status:            StatusPending,
	}

	c.AddDomainEvent(NewCommissionCreatedEvent(c))
	return c, nil
}

// AdjustAmount overrides the payout amount before approval
func (c *Commission) AdjustAmount(amount valueobject.Money, notes string) error {
	if c.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE",
			"commission amount can only be adjusted while pending, current status: "+string(c.Status))
	}
	if amount.IsNegative() {
		return shared.NewDomainError("VALIDATION", "commission amount cannot be negative")
	}
	c.Amount = amount
	c.Notes = notes
	c.Touch()
	return nil
}

// Approve moves the commission from pending to approved
func (c *Commission) Approve(approvedBy uuid.UUID) error {
	if c.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE",
			"only pending commissions can be approved, current status: "+string(c.Status))
	}
	now := time.Now()
	c.Status = StatusApproved
	c.ApprovedBy = &approvedBy
	c.ApprovedAt = &now
	c.UpdatedAt = now

	c.AddDomainEvent(NewCommissionApprovedEvent(c))
	return nil
}

// MarkPaid moves the commission from approved to paid
func (c *Commission) MarkPaid(paymentDate time.Time) error {
	if c.Status != StatusApproved {
		return shared.NewDomainError("INVALID_STATE",
			"only approved commissions can be paid, current status: "+string(c.Status))
	}
	c.Status = StatusPaid
	c.PaymentDate = &paymentDate
	c.Touch()

	c.AddDomainEvent(NewCommissionPaidEvent(c))
	return nil
}

// Cancel voids the commission. Paid commissions cannot be cancelled.
func (c *Commission) Cancel(reason string) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"commission in status "+string(c.Status)+" cannot be cancelled")
	}
	c.Status = StatusCancelled
	c.Notes = reason
	c.Touch()
	return nil
}

// Commission domain events
const (
	EventCommissionCreated  = "commission.created"
	EventCommissionApproved = "commission.approved"
	EventCommissionPaid     = "commission.paid"
)

// CommissionCreatedEvent is raised when a commission is created for a sale
type CommissionCreatedEvent struct {
	shared.BaseDomainEvent
	AgentID uuid.UUID `json:"agent_id"`
	PlotID  uuid.UUID `json:"plot_id"`
	Amount  string    `json:"amount"`
}

// NewCommissionCreatedEvent creates a new commission created event
func NewCommissionCreatedEvent(c *Commission) *CommissionCreatedEvent {
	return &CommissionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCommissionCreated, "Commission", c.ID),
		AgentID:         c.AgentID,
		PlotID:          c.PlotID,
		Amount:          c.Amount.Amount().String(),
	}
}

// CommissionApprovedEvent is raised when a commission is approved
type CommissionApprovedEvent struct {
	shared.BaseDomainEvent
	AgentID    uuid.UUID `json:"agent_id"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// NewCommissionApprovedEvent creates a new commission approved event
func NewCommissionApprovedEvent(c *Commission) *CommissionApprovedEvent {
	return &CommissionApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCommissionApproved, "Commission", c.ID),
		AgentID:         c.AgentID,
		ApprovedBy:      *c.ApprovedBy,
	}
}

// CommissionPaidEvent is raised when a commission payout is recorded
type CommissionPaidEvent struct {
	shared.BaseDomainEvent
	AgentID uuid.UUID `json:"agent_id"`
	Amount  string    `json:"amount"`
}

// NewCommissionPaidEvent creates a new commission paid event
func NewCommissionPaidEvent(c *Commission) *CommissionPaidEvent {
	return &CommissionPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCommissionPaid, "Commission", c.ID),
		AgentID:         c.AgentID,
		Amount:          c.Amount.Amount().String(),
	}
}
