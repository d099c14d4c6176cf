package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/valuation"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// SettingsHandler exposes the stock settings.
type SettingsHandler struct {
	*BaseHandler
	service *valuation.SettingsService
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(base *BaseHandler, service *valuation.SettingsService) *SettingsHandler {
	return &SettingsHandler{BaseHandler: base, service: service}
}

// Get handles GET /settings/stock
func (h *SettingsHandler) Get(c *gin.Context) {
	st, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, st)
}

// Update handles PUT /settings/stock
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateStockSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	st, err := h.service.SetMethod(c.Request.Context(), req.ValuationMethod)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, st)
}
