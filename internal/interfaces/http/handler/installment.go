package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/estate/backend/internal/application/finance"
)

// InstallmentHandler handles installment plan API endpoints
type InstallmentHandler struct {
	BaseHandler
	installmentService *finance.InstallmentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(installmentService *finance.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

// RegisterRoutes registers installment plan routes
func (h *InstallmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/installment-plans")
	plans.POST("", h.Create)
	plans.GET("", h.List)
	plans.GET("/aging", h.AgingReport)
	plans.GET("/:id", h.GetByID)
	plans.POST("/:id/pay", h.PayInstallment)
	plans.POST("/:id/down-payment", h.PayDownPayment)
	plans.POST("/:id/cancel", h.Cancel)
}

// Create creates an installment plan
func (h *InstallmentHandler) Create(c *gin.Context) {
	var req finance.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	plan, err := h.installmentService.CreatePlan(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plan)
}

// GetByID returns a single installment plan
func (h *InstallmentHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	plan, err := h.installmentService.GetPlan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// List returns a paginated list of installment plans
func (h *InstallmentHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.installmentService.ListPlans(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// PayInstallment records a payment against one installment
func (h *InstallmentHandler) PayInstallment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req finance.PayInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	plan, err := h.installmentService.PayInstallment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// PayDownPayment records the down payment of a plan
func (h *InstallmentHandler) PayDownPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req finance.PayDownPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	plan, err := h.installmentService.PayDownPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Cancel cancels an active installment plan
func (h *InstallmentHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	plan, err := h.installmentService.CancelPlan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// AgingReport returns the receivables aging report
func (h *InstallmentHandler) AgingReport(c *gin.Context) {
	report, err := h.installmentService.AgingReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
