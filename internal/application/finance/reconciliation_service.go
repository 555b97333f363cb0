package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/domain/bank"
	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/telemetry"
)

// matchWindowPadding widens the candidate-entry date range around a
// statement so entries matched on description rather than date still load.
const matchWindowPadding = 30 * 24 * time.Hour

// ReconciliationService provides application-level bank reconciliation
// operations
type ReconciliationService struct {
	bankRepo  bank.Repository
	entryRepo ledger.Repository
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	bankRepo bank.Repository,
	entryRepo ledger.Repository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		bankRepo:  bankRepo,
		entryRepo: entryRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// CreateAccountRequest represents a request to register a bank account
type CreateAccountRequest struct {
	AccountNo string `json:"account_no" binding:"required"`
	BankName  string `json:"bank_name" binding:"required"`
	Title     string `json:"title"`
}

// StatementRowRequest is one already-parsed statement row
type StatementRowRequest struct {
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Balance     decimal.Decimal `json:"balance"`
	Reference   string          `json:"reference"`
}

// ImportStatementRequest represents a statement import
type ImportStatementRequest struct {
	Rows []StatementRowRequest `json:"rows" binding:"required,min=1,dive"`
}

// TransactionResponse represents a bank transaction in API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Reference   string          `json:"reference,omitempty"`
	Matched     bool            `json:"matched"`
	MatchedTo   *uuid.UUID      `json:"matched_to,omitempty"`
}

// AccountResponse represents a bank account in API responses
type AccountResponse struct {
	ID           uuid.UUID             `json:"id"`
	AccountNo    string                `json:"account_no"`
	BankName     string                `json:"bank_name"`
	Title        string                `json:"title,omitempty"`
	Currency     string                `json:"currency"`
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
	CreatedAt    time.Time             `json:"created_at"`
	Version      int                   `json:"version"`
}

// MatchResultResponse reports the outcome of an auto-match run
type MatchResultResponse struct {
	AccountID uuid.UUID       `json:"account_id"`
	Matched   []MatchedPair   `json:"matched"`
	Unmatched []uuid.UUID     `json:"unmatched"`
	Total     decimal.Decimal `json:"total_matched_amount"`
}

// MatchedPair is one confirmed transaction-to-entry match
type MatchedPair struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	EntryID       uuid.UUID       `json:"entry_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// CreateAccount registers a bank account
func (s *ReconciliationService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	account, err := bank.NewAccount(req.AccountNo, req.BankName, req.Title)
	if err != nil {
		return nil, err
	}

	if err := s.bankRepo.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}

	s.logger.Info("Bank account created",
		zap.String("id", account.ID.String()),
		zap.String("account_no", account.AccountNo))

	return toAccountResponse(account), nil
}

// GetAccount returns a single bank account with its statement history
func (s *ReconciliationService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.bankRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// ListAccounts returns a paginated list of bank accounts
func (s *ReconciliationService) ListAccounts(ctx context.Context, filter shared.Filter) (shared.Paginated[*AccountResponse], error) {
	page, err := s.bankRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[*AccountResponse]{}, err
	}

	items := make([]*AccountResponse, len(page.Items))
	for i, account := range page.Items {
		items[i] = toAccountResponse(account)
	}
	return shared.Paginated[*AccountResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// ImportStatement appends already-parsed statement rows to an account
func (s *ReconciliationService) ImportStatement(ctx context.Context, accountID uuid.UUID, req ImportStatementRequest) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "import_statement")
	defer span.End()

	account, err := s.bankRepo.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rows := make([]bank.StatementRow, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = bank.StatementRow{
			Date:        row.Date,
			Description: row.Description,
			Amount:      row.Amount,
			Balance:     row.Balance,
			Reference:   row.Reference,
		}
	}

	if _, err := account.ImportRows(rows); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	account.IncrementVersion()

	if err := s.bankRepo.SaveWithLock(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}

	s.publishEvents(ctx, account)
	s.logger.Info("Statement imported",
		zap.String("account_id", account.ID.String()),
		zap.Int("rows", len(rows)))

	telemetry.SetOK(span)
	return toAccountResponse(account), nil
}

// AutoMatch runs the matcher over every unmatched transaction on the
// account against unreconciled ledger entries. Each confirmed match flips
// both sides exactly once.
func (s *ReconciliationService) AutoMatch(ctx context.Context, accountID uuid.UUID) (*MatchResultResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "auto_match")
	defer span.End()

	account, err := s.bankRepo.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	unmatched := account.UnmatchedTransactions()
	result := &MatchResultResponse{
		AccountID: account.ID,
		Matched:   make([]MatchedPair, 0),
		Unmatched: make([]uuid.UUID, 0),
		Total:     decimal.Zero,
	}
	if len(unmatched) == 0 {
		telemetry.SetOK(span)
		return result, nil
	}

	from, to := statementWindow(unmatched)
	candidates, err := s.entryRepo.FindUnreconciled(ctx, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load unreconciled entries: %w", err)
	}

	accountDirty := false
	for i := range unmatched {
		tx := &unmatched[i]
		entry := bank.Match(tx, candidates)
		if entry == nil {
			result.Unmatched = append(result.Unmatched, tx.ID)
			continue
		}

		if err := s.confirmMatch(ctx, account, tx.ID, entry); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		accountDirty = true
		result.Matched = append(result.Matched, MatchedPair{
			TransactionID: tx.ID,
			EntryID:       entry.ID,
			Amount:        tx.Amount,
		})
		result.Total = result.Total.Add(tx.Amount)
	}

	if accountDirty {
		account.IncrementVersion()
		if err := s.bankRepo.SaveWithLock(ctx, account); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save bank account: %w", err)
		}
		s.publishEvents(ctx, account)
	}

	s.logger.Info("Auto-match completed",
		zap.String("account_id", account.ID.String()),
		zap.Int("matched", len(result.Matched)),
		zap.Int("unmatched", len(result.Unmatched)))

	telemetry.SetOK(span)
	return result, nil
}

// MatchManually confirms a match a human picked between a statement
// transaction and a ledger entry. The pair still has to satisfy the
// matcher's rules.
func (s *ReconciliationService) MatchManually(ctx context.Context, accountID, txID, entryID uuid.UUID) (*MatchedPair, error) {
	account, err := s.bankRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	tx := account.FindTransaction(txID)
	if tx == nil {
		return nil, shared.ErrNotFound
	}
	if tx.Matched {
		return nil, shared.ErrAlreadyReconciled
	}

	entry, err := s.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !bank.Matches(tx, entry) {
		return nil, shared.NewDomainError("VALIDATION", "transaction and entry do not satisfy the match rules")
	}

	if err := s.confirmMatch(ctx, account, txID, entry); err != nil {
		return nil, err
	}
	account.IncrementVersion()
	if err := s.bankRepo.SaveWithLock(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}
	s.publishEvents(ctx, account)

	return &MatchedPair{TransactionID: txID, EntryID: entryID, Amount: tx.Amount}, nil
}

// UnmatchedEntries lists unreconciled ledger entries inside a date window,
// the review queue after an auto-match run
func (s *ReconciliationService) UnmatchedEntries(ctx context.Context, from, to time.Time) ([]*EntryResponse, error) {
	entries, err := s.entryRepo.FindUnreconciled(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load unreconciled entries: %w", err)
	}

	responses := make([]*EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = toEntryResponse(entry)
	}
	return responses, nil
}

// confirmMatch flips both sides of a match: the statement transaction and
// the ledger entry
func (s *ReconciliationService) confirmMatch(ctx context.Context, account *bank.Account, txID uuid.UUID, entry *ledger.LedgerEntry) error {
	if err := entry.Reconcile(time.Now()); err != nil {
		return err
	}
	entry.IncrementVersion()
	if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
		return fmt.Errorf("failed to save reconciled entry: %w", err)
	}

	if err := account.MarkMatched(txID, entry.ID); err != nil {
		return err
	}
	return nil
}

// statementWindow returns the date range the unmatched transactions span,
// padded on both sides
func statementWindow(txs []bank.Transaction) (time.Time, time.Time) {
	from, to := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(from) {
			from = tx.Date
		}
		if tx.Date.After(to) {
			to = tx.Date
		}
	}
	return from.Add(-matchWindowPadding), to.Add(matchWindowPadding)
}

func (s *ReconciliationService) publishEvents(ctx context.Context, account *bank.Account) {
	events := account.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish bank events", zap.Error(err))
	}
	account.ClearDomainEvents()
}

func toAccountResponse(account *bank.Account) *AccountResponse {
	txs := make([]TransactionResponse, len(account.Transactions))
	for i, tx := range account.Transactions {
		txs[i] = TransactionResponse{
			ID:          tx.ID,
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount,
			Type:        string(tx.Type),
			Balance:     tx.Balance,
			Reference:   tx.Reference,
			Matched:     tx.Matched,
			MatchedTo:   tx.MatchedTo,
		}
	}
	return &AccountResponse{
		ID:           account.ID,
		AccountNo:    account.AccountNo,
		BankName:     account.BankName,
		Title:        account.Title,
		Currency:     string(account.Currency),
		Balance:      account.Balance.Amount(),
		Transactions: txs,
		CreatedAt:    account.CreatedAt,
		Version:      account.Version,
	}
}
