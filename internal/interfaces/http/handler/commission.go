package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/application/finance"
)

// CommissionHandler handles commission rule and commission API endpoints
type CommissionHandler struct {
	BaseHandler
	commissionService *finance.CommissionService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(commissionService *finance.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

// RegisterRoutes registers commission routes
func (h *CommissionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/commission/rules")
	rules.POST("", h.CreateRule)
	rules.GET("", h.ListRules)
	rules.DELETE("/:id", h.DeactivateRule)

	rg.GET("/commission/resolve", h.ResolveRate)

	commissions := rg.Group("/commissions")
	commissions.GET("", h.List)
	commissions.GET("/:id", h.GetByID)
	commissions.POST("/:id/approve", h.Approve)
	commissions.POST("/:id/pay", h.Pay)
	commissions.POST("/:id/cancel", h.Cancel)
}

// CreateRule creates a commission rule
func (h *CommissionHandler) CreateRule(c *gin.Context) {
	var req finance.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	rule, err := h.commissionService.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// ListRules returns a paginated list of commission rules
func (h *CommissionHandler) ListRules(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.commissionService.ListRules(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// DeactivateRule retires a rule from resolution
func (h *CommissionHandler) DeactivateRule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	if err := h.commissionService.DeactivateRule(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ResolveRateQuery represents the query parameters of a rate preview
type ResolveRateQuery struct {
	ProjectID uuid.UUID       `form:"project_id" binding:"required"`
	SizeMarla decimal.Decimal `form:"size_marla" binding:"required"`
	SalePrice decimal.Decimal `form:"sale_price" binding:"required"`
}

// ResolveRateResponse reports what a sale would pay in commission
type ResolveRateResponse struct {
	Amount decimal.Decimal `json:"amount"`
	RuleID *uuid.UUID      `json:"rule_id,omitempty"`
}

// ResolveRate previews the commission a sale would produce
func (h *CommissionHandler) ResolveRate(c *gin.Context) {
	var query ResolveRateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	resolution, err := h.commissionService.ResolveRate(c.Request.Context(),
		query.ProjectID, query.SizeMarla, query.SalePrice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ResolveRateResponse{
		Amount: resolution.Amount.Amount(),
		RuleID: resolution.RuleID,
	})
}

// GetByID returns a single commission
func (h *CommissionHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid commission ID format")
		return
	}

	commission, err := h.commissionService.GetCommission(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commission)
}

// List returns a paginated list of commissions
func (h *CommissionHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.commissionService.ListCommissions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// ApproveCommissionRequest names the approver of a commission
type ApproveCommissionRequest struct {
	ApprovedBy uuid.UUID `json:"approved_by" binding:"required"`
}

// Approve approves a pending commission
func (h *CommissionHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid commission ID format")
		return
	}

	var req ApproveCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	commission, err := h.commissionService.ApproveCommission(c.Request.Context(), id, req.ApprovedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commission)
}

// Pay marks an approved commission as paid and posts the payout entry
func (h *CommissionHandler) Pay(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid commission ID format")
		return
	}

	commission, err := h.commissionService.PayCommission(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commission)
}

// Cancel cancels a commission that has not been paid
func (h *CommissionHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid commission ID format")
		return
	}

	commission, err := h.commissionService.CancelCommission(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commission)
}
