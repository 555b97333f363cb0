package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estate/backend/internal/application/sale"
)

// SaleHandler handles the sale workflow API endpoint
type SaleHandler struct {
	BaseHandler
	saleService *sale.Service
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *sale.Service) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// RegisterRoutes registers sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sales", h.ProcessSale)

	payments := rg.Group("/seller-payments")
	{
		payments.GET("", h.ListSellerPayments)
		payments.GET("/:id", h.GetSellerPayment)
		payments.POST("/:id/pay", h.PaySeller)
	}
}

// ProcessSale runs the full sale workflow for a plot
func (h *SaleHandler) ProcessSale(c *gin.Context) {
	var req sale.ProcessSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.saleService.ProcessSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListSellerPayments lists payouts owed to a seller
func (h *SaleHandler) ListSellerPayments(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Query("seller_id"))
	if err != nil {
		h.BadRequest(c, "seller_id query parameter is required")
		return
	}

	payments, err := h.saleService.SellerPaymentsBySeller(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// GetSellerPayment returns a single seller payment
func (h *SaleHandler) GetSellerPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid seller payment ID format")
		return
	}

	payment, err := h.saleService.GetSellerPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// PaySeller records a payout toward a seller payment
func (h *SaleHandler) PaySeller(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid seller payment ID format")
		return
	}

	var req sale.PaySellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	payment, err := h.saleService.PaySeller(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
