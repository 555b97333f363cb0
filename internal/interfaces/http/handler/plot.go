package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/property"
)

// PlotHandler handles plot inventory API endpoints
type PlotHandler struct {
	BaseHandler
	plotRepo property.PlotRepository
}

// NewPlotHandler creates a new PlotHandler
func NewPlotHandler(plotRepo property.PlotRepository) *PlotHandler {
	return &PlotHandler{plotRepo: plotRepo}
}

// RegisterRoutes registers plot routes
func (h *PlotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plots := rg.Group("/plots")
	plots.POST("", h.Create)
	plots.GET("", h.List)
	plots.GET("/:id", h.GetByID)
	plots.POST("/:id/reserve", h.Reserve)
	plots.POST("/:id/block", h.Block)
}

// CreatePlotRequest represents a request to register a plot
type CreatePlotRequest struct {
	PlotNo    string          `json:"plot_no" binding:"required"`
	ProjectID uuid.UUID       `json:"project_id" binding:"required"`
	SizeMarla decimal.Decimal `json:"size_marla" binding:"required"`
	SellerID  *uuid.UUID      `json:"seller_id"`
	BookedBy  *uuid.UUID      `json:"booked_by"`
}

// Create registers a plot in the inventory
func (h *PlotHandler) Create(c *gin.Context) {
	var req CreatePlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	plot, err := property.NewPlot(req.PlotNo, req.ProjectID, req.SizeMarla)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.SellerID != nil {
		plot.WithSeller(*req.SellerID)
	}
	if req.BookedBy != nil {
		plot.WithBookingAgent(*req.BookedBy)
	}

	if err := h.plotRepo.Save(c.Request.Context(), plot); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plot)
}

// GetByID returns a single plot
func (h *PlotHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plot ID format")
		return
	}

	plot, err := h.plotRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plot)
}

// List returns a paginated list of plots
func (h *PlotHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.plotRepo.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// Reserve holds a plot for a prospective buyer
func (h *PlotHandler) Reserve(c *gin.Context) {
	h.transition(c, func(p *property.Plot) error { return p.Reserve() })
}

// Block takes a plot off the market
func (h *PlotHandler) Block(c *gin.Context) {
	h.transition(c, func(p *property.Plot) error { return p.Block() })
}

func (h *PlotHandler) transition(c *gin.Context, apply func(*property.Plot) error) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plot ID format")
		return
	}

	plot, err := h.plotRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := apply(plot); err != nil {
		h.HandleError(c, err)
		return
	}
	plot.IncrementVersion()

	if err := h.plotRepo.SaveWithLock(c.Request.Context(), plot); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plot)
}
