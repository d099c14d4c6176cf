package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/export"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStockBalance handles GET /reports/stock-balance
func (h *ReportsHandler) GetStockBalance(c *gin.Context) {
	var req dto.StockBalanceReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter(h.service.Location())
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.StockBalance(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.render(c, req.Format, "Stock Balance", report)
}

// GetStockLedger handles GET /reports/stock-ledger
func (h *ReportsHandler) GetStockLedger(c *gin.Context) {
	var req dto.StockLedgerReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter(h.service.Location())
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.StockLedger(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.render(c, req.Format, "Stock Ledger", report)
}

// render writes the report as JSON, or as an XLSX attachment.
func (h *ReportsHandler) render(c *gin.Context, format, title string, t reports.Table) {
	if format != dto.FormatXLSX {
		h.OK(c, t)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, title, t); err != nil {
		h.Error(c, fmt.Errorf("export %s: %w", title, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, title))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
