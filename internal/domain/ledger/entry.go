package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// EntryType encodes the direction of a money movement. Amounts are always
// non-negative; direction is carried by the type, never by sign.
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

// Account identifies the ledger account an entry posts against
type Account string

const (
	AccountBuyer           Account = "buyer"
	AccountSeller          Account = "seller"
	AccountPartner         Account = "partner"
	AccountAgentCommission Account = "agent-commission"
	AccountIncome          Account = "income"
	AccountExpense         Account = "expense"
	AccountBank            Account = "bank"
	AccountCash            Account = "cash"
)

// IsValid checks if the account is one of the closed set
func (a Account) IsValid() bool {
	switch a {
	case AccountBuyer, AccountSeller, AccountPartner, AccountAgentCommission,
		AccountIncome, AccountExpense, AccountBank, AccountCash:
		return true
	}
	return false
}

// Category classifies the business reason behind an entry
type Category string

const (
	CategoryPlotSale          Category = "plot-sale"
	CategoryInstallment       Category = "installment"
	CategoryCommission        Category = "commission"
	CategorySellerPayment     Category = "seller-payment"
	CategoryPartnerProfit     Category = "partner-profit"
	CategoryCapitalInjection  Category = "capital-injection"
	CategoryCapitalWithdrawal Category = "capital-withdrawal"
	CategoryExpense           Category = "expense"
	CategoryOther             Category = "other"
)

// IsValid checks if the category is one of the closed set
func (c Category) IsValid() bool {
	switch c {
	case CategoryPlotSale, CategoryInstallment, CategoryCommission,
		CategorySellerPayment, CategoryPartnerProfit, CategoryCapitalInjection,
		CategoryCapitalWithdrawal, CategoryExpense, CategoryOther:
		return true
	}
	return false
}

// RefType names the kind of source record an entry is tied to
type RefType string

const (
	RefTypePlot            RefType = "plot"
	RefTypeInstallmentPlan RefType = "installment-plan"
	RefTypeCommission      RefType = "commission"
	RefTypeSellerPayment   RefType = "seller-payment"
	RefTypePartner         RefType = "partner"
	RefTypeBankTransaction RefType = "bank-transaction"
	RefTypeManual          RefType = "manual"
)

// IsValid checks if the ref type is one of the closed set
func (r RefType) IsValid() bool {
	switch r {
	case RefTypePlot, RefTypeInstallmentPlan, RefTypeCommission,
		RefTypeSellerPayment, RefTypePartner, RefTypeBankTransaction, RefTypeManual:
		return true
	}
	return false
}

// allowedAccounts lists which accounts each ref type may post against.
// Manual entries are unrestricted.
var allowedAccounts = map[RefType][]Account{
	RefTypePlot:            {AccountIncome, AccountBuyer, AccountCash, AccountBank},
	RefTypeInstallmentPlan: {AccountBuyer, AccountIncome, AccountCash, AccountBank},
	RefTypeCommission:      {AccountAgentCommission, AccountExpense},
	RefTypeSellerPayment:   {AccountSeller, AccountExpense},
	RefTypePartner:         {AccountPartner, AccountCash, AccountBank},
	RefTypeBankTransaction: {AccountBank},
}

// AllowsAccount reports whether the ref type may post against the account
func (r RefType) AllowsAccount(account Account) bool {
	if r == RefTypeManual {
		return true
	}
	for _, a := range allowedAccounts[r] {
		if a == account {
			return true
		}
	}
	return false
}

// LedgerEntry is an immutable money-movement fact. After creation the only
// permitted mutation is marking it reconciled against a bank transaction.
type LedgerEntry struct {
	shared.BaseAggregateRoot
	Type         EntryType         `json:"type"`
	Account      Account           `json:"account"`
	Category     Category          `json:"category"`
	Amount       valueobject.Money `json:"amount"`
	Description  string            `json:"description"`
	RefID        uuid.UUID         `json:"ref_id"`
	RefType      RefType           `json:"ref_type"`
	EntryDate    time.Time         `json:"entry_date"`
	ProjectID    *uuid.UUID        `json:"project_id,omitempty"`
	UserID       *uuid.UUID        `json:"user_id,omitempty"`
	Reconciled   bool              `json:"reconciled"`
	ReconciledAt *time.Time        `json:"reconciled_at,omitempty"`
}

// NewLedgerEntry creates and validates a new ledger entry
func NewLedgerEntry(
	entryType EntryType,
	account Account,
	category Category,
	amount valueobject.Money,
	description string,
	refID uuid.UUID,
	refType RefType,
	entryDate time.Time,
) (*LedgerEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "invalid entry type: "+string(entryType))
	}
	if !account.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "invalid account: "+string(account))
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "invalid category: "+string(category))
	}
	if !refType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "invalid ref type: "+string(refType))
	}
	if !refType.AllowsAccount(account) {
		return nil, shared.NewDomainError("VALIDATION",
			"ref type "+string(refType)+" cannot post against account "+string(account))
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION", "amount cannot be negative")
	}
	if refID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "ref id is required")
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	entry := &LedgerEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              entryType,
		Account:           account,
		Category:          category,
		Amount:            amount,
		Description:       description,
		RefID:             refID,
		RefType:           refType,
		EntryDate:         entryDate,
		Reconciled:        false,
	}

	entry.AddDomainEvent(NewLedgerEntryPostedEvent(entry))
	return entry, nil
}

// WithProject attaches a project reference to the entry
func (e *LedgerEntry) WithProject(projectID uuid.UUID) *LedgerEntry {
	e.ProjectID = &projectID
	return e
}

// WithUser attaches a user reference to the entry
func (e *LedgerEntry) WithUser(userID uuid.UUID) *LedgerEntry {
	e.UserID = &userID
	return e
}

// SignedAmount returns the amount with direction applied: credits are
// positive, debits negative. Used when folding an account balance.
func (e *LedgerEntry) SignedAmount() valueobject.Money {
	if e.Type == EntryTypeDebit {
		return valueobject.ZeroPKR().MustSubtract(e.Amount)
	}
	return e.Amount
}

// Reconcile marks the entry as reconciled against a bank transaction.
// Fails if the entry is already reconciled, reconciliation is not repeatable.
func (e *LedgerEntry) Reconcile(at time.Time) error {
	if e.Reconciled {
		return shared.ErrAlreadyReconciled
	}
	e.Reconciled = true
	e.ReconciledAt = &at
	e.Touch()

	e.AddDomainEvent(NewLedgerEntryReconciledEvent(e))
	return nil
}

// Ledger domain events
const (
	EventLedgerEntryPosted     = "ledger.entry_posted"
	EventLedgerEntryReconciled = "ledger.entry_reconciled"
)

// LedgerEntryPostedEvent is raised when a new entry is posted
type LedgerEntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryType EntryType `json:"entry_type"`
	Account   Account   `json:"account"`
	Category  Category  `json:"category"`
	Amount    string    `json:"amount"`
	RefID     uuid.UUID `json:"ref_id"`
	RefType   RefType   `json:"ref_type"`
}

// NewLedgerEntryPostedEvent creates a new entry posted event
func NewLedgerEntryPostedEvent(entry *LedgerEntry) *LedgerEntryPostedEvent {
	return &LedgerEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventLedgerEntryPosted, "LedgerEntry", entry.ID),
		EntryType:       entry.Type,
		Account:         entry.Account,
		Category:        entry.Category,
		Amount:          entry.Amount.Amount().String(),
		RefID:           entry.RefID,
		RefType:         entry.RefType,
	}
}

// LedgerEntryReconciledEvent is raised when an entry is reconciled
type LedgerEntryReconciledEvent struct {
	shared.BaseDomainEvent
	Account      Account   `json:"account"`
	ReconciledAt time.Time `json:"reconciled_at"`
}

// NewLedgerEntryReconciledEvent creates a new entry reconciled event
func NewLedgerEntryReconciledEvent(entry *LedgerEntry) *LedgerEntryReconciledEvent {
	return &LedgerEntryReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventLedgerEntryReconciled, "LedgerEntry", entry.ID),
		Account:         entry.Account,
		ReconciledAt:    *entry.ReconciledAt,
	}
}
