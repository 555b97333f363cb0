package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/application/finance"
)

// PartnerHandler handles partner capital and profit API endpoints
type PartnerHandler struct {
	BaseHandler
	partnerService *finance.PartnerService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partnerService *finance.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

// RegisterRoutes registers partner routes
func (h *PartnerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	partners := rg.Group("/partners")
	partners.POST("", h.Create)
	partners.GET("", h.List)
	partners.GET("/:id", h.GetByID)
	partners.GET("/:id/ledger", h.Ledger)
	partners.PUT("/:id/share", h.UpdateShare)
	partners.POST("/:id/capital", h.AddCapital)
	partners.POST("/:id/terminate", h.Terminate)
	partners.POST("/:id/distributions/:distribution_id/approve", h.ApproveDistribution)

	rg.POST("/profit-distributions", h.DistributeProfit)
}

// Create creates a partner
func (h *PartnerHandler) Create(c *gin.Context) {
	var req finance.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	partner, err := h.partnerService.CreatePartner(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, partner)
}

// GetByID returns a single partner
func (h *PartnerHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	partner, err := h.partnerService.GetPartner(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// Ledger returns the partner's statement with a running balance column
func (h *PartnerHandler) Ledger(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	lines, err := h.partnerService.PartnerLedger(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// List returns a paginated list of partners
func (h *PartnerHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.partnerService.ListPartners(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// UpdateShareRequest carries the new share percentage
type UpdateShareRequest struct {
	SharePercent decimal.Decimal `json:"share_percent" binding:"required"`
}

// UpdateShare changes a partner's share percentage
func (h *PartnerHandler) UpdateShare(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	var req UpdateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	partner, err := h.partnerService.UpdateShare(c.Request.Context(), id, req.SharePercent)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// AddCapital records a capital injection or withdrawal
func (h *PartnerHandler) AddCapital(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	var req finance.CapitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	partner, err := h.partnerService.AddCapital(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// DistributeProfit splits a profit amount across all active partners
func (h *PartnerHandler) DistributeProfit(c *gin.Context) {
	var req finance.DistributeProfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	distributions, err := h.partnerService.DistributeProfit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, distributions)
}

// ApproveDistribution pays out a pending profit distribution
func (h *PartnerHandler) ApproveDistribution(c *gin.Context) {
	partnerID, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}
	distributionID, ok := parseID(c, "distribution_id")
	if !ok {
		h.BadRequest(c, "Invalid distribution ID format")
		return
	}

	partner, err := h.partnerService.ApproveDistribution(c.Request.Context(), partnerID, distributionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// Terminate retires a partner, freeing their share
func (h *PartnerHandler) Terminate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	if err := h.partnerService.TerminatePartner(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
