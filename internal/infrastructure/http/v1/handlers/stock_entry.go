package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/clock"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// StockEntryHandler handles stock entries: drafts, confirmation and
// cancellation.
type StockEntryHandler struct {
	*BaseHandler
	service *movement.Service
	clock   clock.Clock
}

// NewStockEntryHandler creates a new stock entry handler.
func NewStockEntryHandler(base *BaseHandler, service *movement.Service, clk clock.Clock) *StockEntryHandler {
	return &StockEntryHandler{BaseHandler: base, service: service, clock: clk}
}

// Create handles POST /stock-entries
// With "confirm": true the entry is created and confirmed atomically.
func (h *StockEntryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateStockEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := req.ToEntity(h.clock.Now())
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Confirm {
		entries, err := h.service.CreateAndConfirm(ctx, m)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.Created(c, dto.NewStockEntryResult(m, entries))
		return
	}

	if err := h.service.Create(ctx, m); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// List handles GET /stock-entries
func (h *StockEntryHandler) List(c *gin.Context) {
	var req dto.StockEntryListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(res, func(m *movement.Movement) *movement.Movement { return m }))
}

// Get handles GET /stock-entries/:id
func (h *StockEntryHandler) Get(c *gin.Context) {
	movementID, ok := h.ParamID(c)
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Update handles PUT /stock-entries/:id
func (h *StockEntryHandler) Update(c *gin.Context) {
	movementID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.UpdateStockEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := &movement.Movement{}
	m.ID = movementID
	if err := req.ApplyTo(m); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Validate handles POST /stock-entries/:id/validate
// Runs the pre-confirm checks and reports success without posting.
func (h *StockEntryHandler) Validate(c *gin.Context) {
	movementID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Validate(c.Request.Context(), movementID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"valid": true})
}

// Confirm handles POST /stock-entries/:id/confirm
func (h *StockEntryHandler) Confirm(c *gin.Context) {
	movementID, ok := h.ParamID(c)
	if !ok {
		return
	}

	m, entries, err := h.service.Confirm(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewStockEntryResult(m, entries))
}

// Cancel handles POST /stock-entries/:id/cancel
// Entries in the response are the reversal entries under the reverse
// policy and the removed entries under the delete policy.
func (h *StockEntryHandler) Cancel(c *gin.Context) {
	movementID, ok := h.ParamID(c)
	if !ok {
		return
	}

	m, entries, err := h.service.Cancel(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewStockEntryResult(m, entries))
}

// Ledger handles GET /stock-entries/:id/ledger
func (h *StockEntryHandler) Ledger(c *gin.Context) {
	movementID, ok := h.ParamID(c)
	if !ok {
		return
	}

	entries, err := h.service.Entries(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": entries})
}
