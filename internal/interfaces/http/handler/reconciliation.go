package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estate/backend/internal/application/finance"
)

// ReconciliationHandler handles bank account and reconciliation API
// endpoints
type ReconciliationHandler struct {
	BaseHandler
	reconciliationService *finance.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciliationService *finance.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: reconciliationService}
}

// RegisterRoutes registers bank reconciliation routes
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/bank-accounts")
	accounts.POST("", h.CreateAccount)
	accounts.GET("", h.List)
	accounts.GET("/:id", h.GetByID)
	accounts.POST("/:id/statement", h.ImportStatement)
	accounts.POST("/:id/auto-match", h.AutoMatch)
	accounts.POST("/:id/matches", h.MatchManually)

	rg.GET("/reconciliation/unmatched-entries", h.UnmatchedEntries)
}

// CreateAccount registers a bank account
func (h *ReconciliationHandler) CreateAccount(c *gin.Context) {
	var req finance.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	account, err := h.reconciliationService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetByID returns a single bank account with its transactions
func (h *ReconciliationHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.reconciliationService.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// List returns a paginated list of bank accounts
func (h *ReconciliationHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.reconciliationService.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// ImportStatement imports parsed statement rows into an account
func (h *ReconciliationHandler) ImportStatement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req finance.ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	account, err := h.reconciliationService.ImportStatement(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// AutoMatch runs the reconciliation heuristic over unmatched transactions
func (h *ReconciliationHandler) AutoMatch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	result, err := h.reconciliationService.AutoMatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ManualMatchRequest pairs a statement transaction with a ledger entry
type ManualMatchRequest struct {
	TransactionID uuid.UUID `json:"transaction_id" binding:"required"`
	EntryID       uuid.UUID `json:"entry_id" binding:"required"`
}

// MatchManually confirms a human-picked match
func (h *ReconciliationHandler) MatchManually(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	pair, err := h.reconciliationService.MatchManually(c.Request.Context(), id, req.TransactionID, req.EntryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pair)
}

// UnmatchedEntriesQuery bounds the unreconciled entry listing
type UnmatchedEntriesQuery struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// UnmatchedEntries lists unreconciled ledger entries in a date window
func (h *ReconciliationHandler) UnmatchedEntries(c *gin.Context) {
	var query UnmatchedEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	entries, err := h.reconciliationService.UnmatchedEntries(c.Request.Context(), query.From, query.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
