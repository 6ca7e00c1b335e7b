package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/application/service"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/response"
)

// InventoryHandler handles catalog and stock HTTP requests
type InventoryHandler struct {
	catalogService *service.CatalogService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(catalogService *service.CatalogService) *InventoryHandler {
	return &InventoryHandler{catalogService: catalogService}
}

// List returns every product with the inventory version
func (h *InventoryHandler) List(c *gin.Context) {
	snap, err := h.catalogService.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Inventory retrieved", snap)
}

// Search matches a barcode exactly, falling back to product name
func (h *InventoryHandler) Search(c *gin.Context) {
	var req request.InventorySearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Search term is required")
		return
	}

	products, err := h.catalogService.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Products retrieved", products)
}

// Get returns a single product
func (h *InventoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved", product)
}

// UpdateStock writes absolute stock levels and bumps the inventory version
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	var req request.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	updates := make([]service.StockUpdate, 0, len(req.Items))
	for _, it := range req.Items {
		// binding already checked the uuid format
		updates = append(updates, service.StockUpdate{ID: uuid.MustParse(it.ID), Stock: it.Stock})
	}

	result, err := h.catalogService.UpdateStock(c.Request.Context(), updates)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stock updated", result)
}
