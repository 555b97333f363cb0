package partner

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle state of a partner
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTerminated:
		return true
	}
	return false
}

// CountsTowardShares reports whether a partner in this status occupies
// share capacity. Terminated partners release their share.
func (s Status) CountsTowardShares() bool {
	return s != StatusTerminated
}

// CapitalTransactionType is the direction of a capital movement
type CapitalTransactionType string

const (
	CapitalInjection  CapitalTransactionType = "injection"
	CapitalWithdrawal CapitalTransactionType = "withdrawal"
)

// CapitalTransaction records one capital movement for a partner
type CapitalTransaction struct {
	ID     uuid.UUID              `json:"id"`
	Amount decimal.Decimal        `json:"amount"`
	Type   CapitalTransactionType `json:"type"`
	Date   time.Time              `json:"date"`
	Notes  string                 `json:"notes,omitempty"`
}

// CapitalTransactions is a JSONB-persisted slice of capital transactions
type CapitalTransactions []CapitalTransaction

// Value implements driver.Valuer for JSONB storage
func (c CapitalTransactions) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB retrieval
func (c *CapitalTransactions) Scan(value any) error {
	if value == nil {
		*c = CapitalTransactions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, isStr := value.(string); isStr {
			bytes = []byte(s)
		} else {
			return errors.New("failed to scan CapitalTransactions: unsupported type")
		}
	}
	return json.Unmarshal(bytes, c)
}

// DistributionStatus tracks a profit distribution's payout state. The
// approved state exists in the enum but distributions move pending to paid
// in one step.
type DistributionStatus string

const (
	DistributionPending  DistributionStatus = "pending"
	DistributionApproved DistributionStatus = "approved"
	DistributionPaid     DistributionStatus = "paid"
)

// ProfitDistribution records one profit-share payout for a partner
type ProfitDistribution struct {
	ID        uuid.UUID          `json:"id"`
	Amount    decimal.Decimal    `json:"amount"`
	ProjectID *uuid.UUID         `json:"project_id,omitempty"`
	Period    string             `json:"period"`
	Status    DistributionStatus `json:"status"`
	Date      time.Time          `json:"date"`
	PaidDate  *time.Time         `json:"paid_date,omitempty"`
}

// ProfitDistributions is a JSONB-persisted slice of profit distributions
type ProfitDistributions []ProfitDistribution

// Value implements driver.Valuer for JSONB storage
func (p ProfitDistributions) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *ProfitDistributions) Scan(value any) error {
	if value == nil {
		*p = ProfitDistributions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, isStr := value.(string); isStr {
			bytes = []byte(s)
		} else {
			return errors.New("failed to scan ProfitDistributions: unsupported type")
		}
	}
	return json.Unmarshal(bytes, p)
}

// Partner holds a capital stake and a profit share in the business.
// Capital and distribution histories are embedded, the partner aggregate
// is their single writer.
type Partner struct {
	shared.BaseAggregateRoot
	Name                string              `json:"name"`
	UserID              *uuid.UUID          `json:"user_id,omitempty"`
	SharePercent        decimal.Decimal     `json:"share_percent"`
	CapitalInjected     valueobject.Money   `json:"capital_injected"`
	Withdrawals         valueobject.Money   `json:"withdrawals"`
	CapitalTransactions CapitalTransactions `json:"capital_transactions"`
	ProfitCredited      valueobject.Money   `json:"profit_credited"`
	ProfitDistributions ProfitDistributions `json:"profit_distributions"`
	Status              Status              `json:"status"`
}

// NewPartner creates a partner with the given share percentage.
// The share invariant across all partners is validated separately.
func NewPartner(name string, sharePercent decimal.Decimal) (*Partner, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION", "partner name is required")
	}
	if sharePercent.IsNegative() || sharePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("VALIDATION", "share percent must be between 0 and 100")
	}

	return &Partner{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Name:                name,
		SharePercent:        sharePercent,
		CapitalInjected:     valueobject.ZeroPKR(),
		Withdrawals:         valueobject.ZeroPKR(),
		CapitalTransactions: CapitalTransactions{},
		ProfitCredited:      valueobject.ZeroPKR(),
		ProfitDistributions: ProfitDistributions{},
		Status:              StatusActive,
	}, nil
}

// CapitalBalance is injections minus withdrawals
func (p *Partner) CapitalBalance() valueobject.Money {
	return p.CapitalInjected.MustSubtract(p.Withdrawals)
}

// AddCapital records a capital injection or withdrawal. Withdrawals beyond
// the current capital balance are rejected.
func (p *Partner) AddCapital(amount valueobject.Money, txType CapitalTransactionType, date time.Time, notes string) (*CapitalTransaction, error) {
	if p.Status == StatusTerminated {
		return nil, shared.NewDomainError("INVALID_STATE", "terminated partner cannot move capital")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "capital amount must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}

	switch txType {
	case CapitalInjection:
		p.CapitalInjected = p.CapitalInjected.MustAdd(amount)
	case CapitalWithdrawal:
		balance := p.CapitalBalance()
		enough, err := balance.GreaterThanOrEqual(amount)
		if err != nil {
			return nil, err
		}
		if !enough {
			return nil, shared.ErrInsufficientCapital
		}
		p.Withdrawals = p.Withdrawals.MustAdd(amount)
	default:
		return nil, shared.NewDomainError("VALIDATION", "invalid capital transaction type: "+string(txType))
	}

	tx := CapitalTransaction{
		ID:     uuid.New(),
		Amount: amount.Amount(),
		Type:   txType,
		Date:   date,
		Notes:  notes,
	}
	p.CapitalTransactions = append(p.CapitalTransactions, tx)
	p.Touch()

	p.AddDomainEvent(NewCapitalMovedEvent(p, &tx))
	return &tx, nil
}

// DistributeProfit credits the partner's share of a profit amount as a
// pending distribution.
func (p *Partner) DistributeProfit(totalAmount valueobject.Money, projectID *uuid.UUID, period string) (*ProfitDistribution, error) {
	if p.Status != StatusActive {
		return nil, shared.NewDomainError("INVALID_STATE",
			"profit can only be distributed to active partners, current status: "+string(p.Status))
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "profit amount must be positive")
	}
	if period == "" {
		return nil, shared.NewDomainError("VALIDATION", "distribution period is required")
	}

	share := totalAmount.CalculatePercentage(p.SharePercent).Round(2)
	dist := ProfitDistribution{
		ID:        uuid.New(),
		Amount:    share.Amount(),
		ProjectID: projectID,
		Period:    period,
		Status:    DistributionPending,
		Date:      time.Now(),
	}
	p.ProfitDistributions = append(p.ProfitDistributions, dist)
	p.ProfitCredited = p.ProfitCredited.MustAdd(share)
	p.Touch()

	p.AddDomainEvent(NewProfitDistributedEvent(p, &dist))
	return &dist, nil
}

// FindDistribution returns the distribution with the given id, or nil
func (p *Partner) FindDistribution(distributionID uuid.UUID) *ProfitDistribution {
	for i := range p.ProfitDistributions {
		if p.ProfitDistributions[i].ID == distributionID {
			return &p.ProfitDistributions[i]
		}
	}
	return nil
}

// ApproveDistribution pays out a pending distribution. The payout counts
// as a withdrawal against the partner's capital position.
func (p *Partner) ApproveDistribution(distributionID uuid.UUID, paidDate time.Time) error {
	dist := p.FindDistribution(distributionID)
	if dist == nil {
		return shared.NewDomainError("NOT_FOUND", "profit distribution not found")
	}
	if dist.Status != DistributionPending {
		return shared.NewDomainError("INVALID_STATE",
			"only pending distributions can be paid, current status: "+string(dist.Status))
	}
	if paidDate.IsZero() {
		paidDate = time.Now()
	}

	dist.Status = DistributionPaid
	dist.PaidDate = &paidDate
	p.Withdrawals = p.Withdrawals.MustAdd(valueobject.NewMoneyPKR(dist.Amount))
	p.Touch()
	return nil
}

// UpdateShare changes the partner's share percentage. The cross-partner
// invariant is validated by the caller against the full partner set.
func (p *Partner) UpdateShare(sharePercent decimal.Decimal) error {
	if p.Status == StatusTerminated {
		return shared.NewDomainError("INVALID_STATE", "terminated partner cannot change share")
	}
	if sharePercent.IsNegative() || sharePercent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("VALIDATION", "share percent must be between 0 and 100")
	}
	p.SharePercent = sharePercent
	p.Touch()
	return nil
}

// Deactivate suspends the partner without releasing their share
func (p *Partner) Deactivate() error {
	if p.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE",
			"only active partners can be deactivated, current status: "+string(p.Status))
	}
	p.Status = StatusInactive
	p.Touch()
	return nil
}

// Reactivate restores an inactive partner
func (p *Partner) Reactivate() error {
	if p.Status != StatusInactive {
		return shared.NewDomainError("INVALID_STATE",
			"only inactive partners can be reactivated, current status: "+string(p.Status))
	}
	p.Status = StatusActive
	p.Touch()
	return nil
}

// Terminate ends the partnership and releases the partner's share
func (p *Partner) Terminate() error {
	if p.Status == StatusTerminated {
		return shared.NewDomainError("INVALID_STATE", "partner is already terminated")
	}
	p.Status = StatusTerminated
	p.Touch()
	return nil
}

// Partner domain events
const (
	EventCapitalMoved      = "partner.capital_moved"
	EventProfitDistributed = "partner.profit_distributed"
)

// CapitalMovedEvent is raised on capital injections and withdrawals
type CapitalMovedEvent struct {
	shared.BaseDomainEvent
	TransactionType CapitalTransactionType `json:"transaction_type"`
	Amount          string                 `json:"amount"`
}

// NewCapitalMovedEvent creates a new capital moved event
func NewCapitalMovedEvent(p *Partner, tx *CapitalTransaction) *CapitalMovedEvent {
	return &CapitalMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCapitalMoved, "Partner", p.ID),
		TransactionType: tx.Type,
		Amount:          tx.Amount.String(),
	}
}

// ProfitDistributedEvent is raised when a profit share is credited
type ProfitDistributedEvent struct {
	shared.BaseDomainEvent
	Amount string `json:"amount"`
	Period string `json:"period"`
}

// NewProfitDistributedEvent creates a new profit distributed event
func NewProfitDistributedEvent(p *Partner, dist *ProfitDistribution) *ProfitDistributedEvent {
	return &ProfitDistributedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProfitDistributed, "Partner", p.ID),
		Amount:          dist.Amount.String(),
		Period:          dist.Period,
	}
}
