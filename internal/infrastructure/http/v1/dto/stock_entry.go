package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
)

// StockEntryLineRequest is one line of a stock entry request.
type StockEntryLineRequest struct {
	Item            string          `json:"item" binding:"required"`
	Qty             decimal.Decimal `json:"qty"`
	Rate            decimal.Decimal `json:"rate"`
	SourceWarehouse string          `json:"sourceWarehouse"`
	TargetWarehouse string          `json:"targetWarehouse"`
}

// CreateStockEntryRequest is the body of POST /stock-entries.
// PostedAt defaults to the current time. Confirm posts the entry in the
// same transaction it is created in.
type CreateStockEntryRequest struct {
	Type     string                  `json:"type" binding:"required"`
	PostedAt *time.Time              `json:"postedAt"`
	Lines    []StockEntryLineRequest `json:"lines" binding:"dive"`
	Confirm  bool                    `json:"confirm"`
}

// ToEntity converts the request to a draft movement.
func (r *CreateStockEntryRequest) ToEntity(now time.Time) (*movement.Movement, error) {
	typ, err := movement.ParseType(r.Type)
	if err != nil {
		return nil, err
	}
	postedAt := now
	if r.PostedAt != nil {
		postedAt = *r.PostedAt
	}
	m := movement.New(typ, postedAt, now)
	for _, l := range r.Lines {
		m.AddLine(l.Item, l.Qty, l.Rate, l.SourceWarehouse, l.TargetWarehouse)
	}
	return m, nil
}

// UpdateStockEntryRequest is the body of PUT /stock-entries/:id.
// Version is optional; when set it must match the stored version.
type UpdateStockEntryRequest struct {
	Version  int                     `json:"version" binding:"omitempty,min=1"`
	Type     string                  `json:"type" binding:"required"`
	PostedAt time.Time               `json:"postedAt" binding:"required"`
	Lines    []StockEntryLineRequest `json:"lines" binding:"dive"`
}

// ApplyTo copies the request onto m.
func (r *UpdateStockEntryRequest) ApplyTo(m *movement.Movement) error {
	typ, err := movement.ParseType(r.Type)
	if err != nil {
		return err
	}
	m.Version = r.Version
	m.Type = typ
	m.PostedAt = r.PostedAt
	m.Lines = m.Lines[:0]
	for _, l := range r.Lines {
		m.AddLine(l.Item, l.Qty, l.Rate, l.SourceWarehouse, l.TargetWarehouse)
	}
	return nil
}

// StockEntryListRequest holds the query of GET /stock-entries.
type StockEntryListRequest struct {
	Type   string `form:"type"`
	Status string `form:"status"`
	Item   string `form:"item"`
	PaginationRequest
}

// ToFilter converts the request to a movement list filter.
func (r *StockEntryListRequest) ToFilter() (movement.ListFilter, error) {
	f := movement.ListFilter{Item: r.Item, Page: r.Page()}
	if r.Type != "" {
		typ, err := movement.ParseType(r.Type)
		if err != nil {
			return f, err
		}
		f.Type = &typ
	}
	if r.Status != "" {
		st, err := movement.ParseStatus(r.Status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	return f, nil
}

// StockEntryResultResponse is returned by confirm and cancel: the entry
// and the ledger entries the operation wrote.
type StockEntryResultResponse struct {
	StockEntry *movement.Movement `json:"stockEntry"`
	Entries    []ledger.Entry     `json:"entries"`
}

// NewStockEntryResult builds a StockEntryResultResponse.
func NewStockEntryResult(m *movement.Movement, entries []ledger.Entry) StockEntryResultResponse {
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return StockEntryResultResponse{StockEntry: m, Entries: entries}
}
