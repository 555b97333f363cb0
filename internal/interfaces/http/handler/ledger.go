package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estate/backend/internal/application/finance"
	"github.com/estate/backend/internal/domain/ledger"
)

// LedgerHandler handles ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *finance.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *finance.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterRoutes registers ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/ledger/entries")
	entries.POST("", h.PostEntry)
	entries.GET("", h.List)
	entries.GET("/:id", h.GetByID)
	entries.POST("/:id/reconcile", h.Reconcile)

	accounts := rg.Group("/ledger/accounts")
	accounts.GET("/:account/balance", h.GetBalance)
	accounts.GET("/:account/statement", h.GetStatement)

	reports := rg.Group("/ledger/reports")
	reports.GET("/profit-loss", h.ProfitLossReport)
	reports.GET("/cash-flow", h.CashFlowReport)
}

// ProfitLossReport returns a profit and loss report for a period,
// optionally scoped to a project
func (h *LedgerHandler) ProfitLossReport(c *gin.Context) {
	var query finance.ProfitLossQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	if raw := c.Query("project_id"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid project ID format")
			return
		}
		query.ProjectID = &projectID
	}

	report, err := h.ledgerService.ProfitLossReport(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// CashFlowReport returns period-bucketed cash in and out
func (h *LedgerHandler) CashFlowReport(c *gin.Context) {
	var query finance.CashFlowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	report, err := h.ledgerService.CashFlowReport(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// PostEntry posts a manual ledger entry
func (h *LedgerHandler) PostEntry(c *gin.Context) {
	var req finance.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	entry, err := h.ledgerService.PostEntry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetByID returns a single ledger entry
func (h *LedgerHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List returns a paginated list of ledger entries
func (h *LedgerHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.ledgerService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// Reconcile marks an entry as reconciled
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.ledgerService.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// GetBalance returns the balance of a ledger account
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	account := ledger.Account(c.Param("account"))
	if !account.IsValid() {
		h.BadRequest(c, "Invalid account: "+string(account))
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), account)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// GetStatement returns the statement of a ledger account with running
// balances
func (h *LedgerHandler) GetStatement(c *gin.Context) {
	account := ledger.Account(c.Param("account"))
	if !account.IsValid() {
		h.BadRequest(c, "Invalid account: "+string(account))
		return
	}

	statement, err := h.ledgerService.GetStatement(c.Request.Context(), account)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statement)
}
