package bank

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

// TransactionType is the direction of a bank statement line
type TransactionType string

const (
	TransactionDebit  TransactionType = "debit"
	TransactionCredit TransactionType = "credit"
)

// Transaction is one imported bank statement line. Matched flips true
// exactly once, pointing at the reconciled ledger entry.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Reference   string          `json:"reference,omitempty"`
	Category    string          `json:"category,omitempty"`
	Matched     bool            `json:"matched"`
	MatchedTo   *uuid.UUID      `json:"matched_to,omitempty"`
}

// Transactions is a JSONB-persisted slice of bank transactions
type Transactions []Transaction

// Value implements driver.Valuer for JSONB storage
func (t Transactions) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB retrieval
func (t *Transactions) Scan(value any) error {
	if value == nil {
		*t = Transactions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, isStr := value.(string); isStr {
			bytes = []byte(s)
		} else {
			return errors.New("failed to scan Transactions: unsupported type")
		}
	}
	return json.Unmarshal(bytes, t)
}

// StatementRow is one already-parsed row from an imported bank statement.
// Parsing the raw file is an external collaborator's job. A negative
// amount marks a debit.
type StatementRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	Reference   string
}

// Account is a bank account with its imported statement history embedded
type Account struct {
	shared.BaseAggregateRoot
	AccountNo    string               `json:"account_no"`
	BankName     string               `json:"bank_name"`
	Title        string               `json:"title,omitempty"`
	Currency     valueobject.Currency `json:"currency"`
	Balance      valueobject.Money    `json:"balance"`
	Transactions Transactions         `json:"transactions"`
}

// NewAccount creates a bank account
func NewAccount(accountNo, bankName, title string) (*Account, error) {
	if accountNo == "" {
		return nil, shared.NewDomainError("VALIDATION", "account number is required")
	}
	if bankName == "" {
		return nil, shared.NewDomainError("VALIDATION", "bank name is required")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountNo:         accountNo,
		BankName:          bankName,
		Title:             title,
		Currency:          valueobject.DefaultCurrency,
		Balance:           valueobject.ZeroPKR(),
		Transactions:      Transactions{},
	}, nil
}

// ImportRows appends parsed statement rows as unmatched transactions and
// rolls the account balance forward to the last row's reported balance.
func (a *Account) ImportRows(rows []StatementRow) ([]Transaction, error) {
	if len(rows) == 0 {
		return nil, shared.NewDomainError("VALIDATION", "no statement rows to import")
	}

	imported := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		if row.Date.IsZero() {
			return nil, shared.NewDomainError("VALIDATION", "statement row date is required")
		}
		txType := TransactionCredit
		amount := row.Amount
		if amount.IsNegative() {
			txType = TransactionDebit
			amount = amount.Abs()
		}
		tx := Transaction{
			ID:          uuid.New(),
			Date:        row.Date,
			Description: row.Description,
			Amount:      amount,
			Type:        txType,
			Balance:     row.Balance,
			Reference:   row.Reference,
			Matched:     false,
		}
		imported = append(imported, tx)
		a.Transactions = append(a.Transactions, tx)
	}

	a.Balance = valueobject.NewMoneyPKR(rows[len(rows)-1].Balance)
	a.Touch()

	a.AddDomainEvent(NewStatementImportedEvent(a, len(imported)))
	return imported, nil
}

// FindTransaction returns the transaction with the given id, or nil
func (a *Account) FindTransaction(txID uuid.UUID) *Transaction {
	for i := range a.Transactions {
		if a.Transactions[i].ID == txID {
			return &a.Transactions[i]
		}
	}
	return nil
}

// MarkMatched links a transaction to its reconciled ledger entry.
// A transaction can only be matched once.
func (a *Account) MarkMatched(txID, entryID uuid.UUID) error {
	tx := a.FindTransaction(txID)
	if tx == nil {
		return shared.NewDomainError("NOT_FOUND", "bank transaction not found")
	}
	if tx.Matched {
		return shared.ErrAlreadyReconciled
	}
	tx.Matched = true
	tx.MatchedTo = &entryID
	a.Touch()
	return nil
}

// UnmatchedTransactions returns the transactions still awaiting
// reconciliation
func (a *Account) UnmatchedTransactions() []Transaction {
	var unmatched []Transaction
	for _, tx := range a.Transactions {
		if !tx.Matched {
			unmatched = append(unmatched, tx)
		}
	}
	return unmatched
}

// Bank domain events
const EventStatementImported = "bank.statement_imported"

// StatementImportedEvent is raised when statement rows are imported
type StatementImportedEvent struct {
	shared.BaseDomainEvent
	AccountNo string `json:"account_no"`
	RowCount  int    `json:"row_count"`
}

// NewStatementImportedEvent creates a new statement imported event
func NewStatementImportedEvent(a *Account, count int) *StatementImportedEvent {
	return &StatementImportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStatementImported, "BankAccount", a.ID),
		AccountNo:       a.AccountNo,
		RowCount:        count,
	}
}
