// Package movement provides stock movements (stock entries) and the engine
// that turns confirmed movements into ledger entries.
package movement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
)

// Type is the kind of movement.
type Type string

const (
	TypeReceive  Type = "Receive"
	TypeConsume  Type = "Consume"
	TypeTransfer Type = "Transfer"
)

// Valid reports whether t is a known movement type.
func (t Type) Valid() bool {
	return t == TypeReceive || t == TypeConsume || t == TypeTransfer
}

// Reversed swaps Receive and Consume. Transfer stays a Transfer.
func (t Type) Reversed() Type {
	switch t {
	case TypeReceive:
		return TypeConsume
	case TypeConsume:
		return TypeReceive
	}
	return t
}

// ParseType accepts a type name case-insensitively.
func ParseType(s string) (Type, error) {
	for _, t := range []Type{TypeReceive, TypeConsume, TypeTransfer} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown movement type %q", s)).
		WithDetail("field", "type")
}

// Status is the lifecycle state. Transitions are one-way:
// Draft -> Confirmed -> Cancelled.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
)

// ParseStatus accepts a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusDraft, StatusConfirmed, StatusCancelled} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown status %q", s)).
		WithDetail("field", "status")
}

// Movement is a user-initiated stock transaction (a stock entry).
type Movement struct {
	entity.BaseDocument

	// Number is the human-readable document number, assigned on creation.
	Number string `db:"number" json:"number,omitempty"`

	Type     Type      `db:"type" json:"type"`
	PostedAt time.Time `db:"posted_at" json:"postedAt"`
	Status   Status    `db:"status" json:"status"`

	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one item of a movement. Qty is always positive; the engine
// derives the sign of the ledger quantity from the movement type.
type Line struct {
	LineNo          int             `db:"line_no" json:"lineNo"`
	Item            string          `db:"item" json:"item"`
	Qty             decimal.Decimal `db:"qty" json:"qty"`
	Rate            decimal.Decimal `db:"rate" json:"rate"`
	SourceWarehouse string          `db:"source_warehouse" json:"sourceWarehouse,omitempty"`
	TargetWarehouse string          `db:"target_warehouse" json:"targetWarehouse,omitempty"`
}

// LineKey identifies a line within its movement.
type LineKey struct {
	Item            string
	SourceWarehouse string
	TargetWarehouse string
}

// Key returns the line's item with its source and target warehouses.
func (l Line) Key() LineKey {
	return LineKey{Item: l.Item, SourceWarehouse: l.SourceWarehouse, TargetWarehouse: l.TargetWarehouse}
}

// Reversed swaps the source and target warehouses.
func (l Line) Reversed() Line {
	l.SourceWarehouse, l.TargetWarehouse = l.TargetWarehouse, l.SourceWarehouse
	return l
}

// New creates a draft movement.
func New(typ Type, postedAt time.Time, now time.Time) *Movement {
	return &Movement{
		BaseDocument: entity.NewBaseDocument(now),
		Type:         typ,
		PostedAt:     postedAt,
		Status:       StatusDraft,
		Lines:        make([]Line, 0),
	}
}

// AddLine appends a line and numbers it.
func (m *Movement) AddLine(item string, qty, rate decimal.Decimal, source, target string) {
	m.Lines = append(m.Lines, Line{
		LineNo:          len(m.Lines) + 1,
		Item:            item,
		Qty:             qty,
		Rate:            rate,
		SourceWarehouse: source,
		TargetWarehouse: target,
	})
}

// Renumber assigns line numbers in declaration order.
func (m *Movement) Renumber() {
	for i := range m.Lines {
		m.Lines[i].LineNo = i + 1
	}
}

// CanModify reports whether the movement may still be edited.
func (m *Movement) CanModify() error {
	if m.Status != StatusDraft {
		return apperror.NewInvalidState(fmt.Sprintf("%s movement cannot be modified", strings.ToLower(string(m.Status)))).
			WithDetail("status", m.Status)
	}
	return nil
}

// CanConfirm reports whether the movement may be confirmed.
func (m *Movement) CanConfirm() error {
	if m.Status != StatusDraft {
		return apperror.NewInvalidState("only draft movements can be confirmed").
			WithDetail("status", m.Status)
	}
	return nil
}

// CanCancel reports whether the movement may be cancelled.
func (m *Movement) CanCancel() error {
	if m.Status != StatusConfirmed {
		return apperror.NewInvalidState("only confirmed movements can be cancelled").
			WithDetail("status", m.Status)
	}
	return nil
}

// MarkConfirmed moves the movement into Confirmed.
func (m *Movement) MarkConfirmed(now time.Time) {
	t := now.UTC()
	m.Status = StatusConfirmed
	m.ConfirmedAt = &t
}

// MarkCancelled moves the movement into Cancelled.
func (m *Movement) MarkCancelled(now time.Time) {
	t := now.UTC()
	m.Status = StatusCancelled
	m.CancelledAt = &t
}

// Validate checks line-level invariants that need no store access:
// a known type, at least one line, positive quantity and rate, the
// warehouses the type requires, and unique line keys. It runs before
// every save and again on confirm.
func (m *Movement) Validate(_ context.Context) error {
	if !m.Type.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown movement type %q", m.Type)).
			WithDetail("field", "type")
	}
	if m.PostedAt.IsZero() {
		return apperror.NewValidation("posting date is required").
			WithDetail("field", "postedAt")
	}
	if len(m.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[LineKey]struct{}, len(m.Lines))
	for i, line := range m.Lines {
		lineNo := i + 1
		if strings.TrimSpace(line.Item) == "" {
			return lineError("item is required", lineNo)
		}
		if !line.Rate.IsPositive() {
			return lineError("rate must be greater than zero, remove the item or set the rate", lineNo)
		}
		if !line.Qty.IsPositive() {
			return lineError("quantity must be greater than zero, remove the item or set the quantity", lineNo)
		}
		if err := m.validateWarehouses(line, lineNo); err != nil {
			return err
		}

		key := line.Key()
		if _, dup := seen[key]; dup {
			return apperror.NewDuplicateLine(line.Item).WithDetail("lineNo", lineNo)
		}
		seen[key] = struct{}{}
	}

	return nil
}

func (m *Movement) validateWarehouses(line Line, lineNo int) error {
	switch m.Type {
	case TypeReceive:
		if line.TargetWarehouse == "" {
			return lineError("target warehouse is required for Receive", lineNo)
		}
	case TypeConsume:
		if line.SourceWarehouse == "" {
			return lineError("source warehouse is required for Consume", lineNo)
		}
	case TypeTransfer:
		if line.SourceWarehouse == "" || line.TargetWarehouse == "" {
			return lineError("source and target warehouses are required for Transfer", lineNo)
		}
		if line.SourceWarehouse == line.TargetWarehouse {
			return lineError("source and target warehouses must differ", lineNo)
		}
	}
	return nil
}

func lineError(msg string, lineNo int) *apperror.AppError {
	return apperror.NewValidation(msg).
		WithDetail("field", "lines").
		WithDetail("lineNo", lineNo)
}
