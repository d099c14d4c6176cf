package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/catalog"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// CatalogHandler handles warehouses and items.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, service: service}
}

// CreateWarehouse handles POST /warehouses
func (h *CatalogHandler) CreateWarehouse(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := req.ToEntity()
	if err := h.service.CreateWarehouse(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, w)
}

// ListWarehouses handles GET /warehouses
func (h *CatalogHandler) ListWarehouses(c *gin.Context) {
	list, err := h.service.ListWarehouses(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": list})
}

// CreateItem handles POST /items
// The item's opening stock is posted in the same transaction.
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it := req.ToEntity()
	if err := h.service.CreateItem(c.Request.Context(), it); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, it)
}

// ListItems handles GET /items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var req dto.PaginationRequest
	if !h.BindQuery(c, &req) {
		return
	}

	res, err := h.service.ListItems(c.Request.Context(), req.Page())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(res, func(it *catalog.Item) *catalog.Item { return it }))
}

// GetItem handles GET /items/:code
func (h *CatalogHandler) GetItem(c *gin.Context) {
	it, err := h.service.GetItem(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, it)
}

// GetItemRate handles GET /items/:code/rate?warehouse=
func (h *CatalogHandler) GetItemRate(c *gin.Context) {
	var req dto.ItemRateRequest
	if !h.BindQuery(c, &req) {
		return
	}

	code := c.Param("code")
	rate, err := h.service.LatestRate(c.Request.Context(), code, req.Warehouse)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ItemRateResponse{Item: code, Warehouse: req.Warehouse, ValuationRate: rate})
}
