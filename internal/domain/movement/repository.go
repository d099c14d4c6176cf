package movement

import (
	"context"

	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/valuation"
)

// Repository persists movements together with their lines.
type Repository interface {
	// Create inserts the header and lines.
	Create(ctx context.Context, m *Movement) error

	// GetByID loads the header and lines, or returns a NOT_FOUND AppError.
	GetByID(ctx context.Context, movementID id.ID) (*Movement, error)

	// Update replaces header fields and lines with optimistic locking on
	// Version. On success m.Version and m.UpdatedAt reflect the stored row.
	Update(ctx context.Context, m *Movement) error

	// List returns movements with their lines, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Movement], error)
}

// ListFilter selects movements for listing.
type ListFilter struct {
	Type   *Type
	Status *Status
	Item   string // movements having at least one line of the item
	domain.Page
}

// Matches reports whether m passes the type, status and item filters.
func (f ListFilter) Matches(m *Movement) bool {
	if f.Type != nil && m.Type != *f.Type {
		return false
	}
	if f.Status != nil && m.Status != *f.Status {
		return false
	}
	if f.Item != "" {
		for _, l := range m.Lines {
			if l.Item == f.Item {
				return true
			}
		}
		return false
	}
	return true
}

// Catalog answers reference checks for items and warehouses.
type Catalog interface {
	ItemExists(ctx context.Context, code string) (bool, error)
	WarehouseExists(ctx context.Context, name string) (bool, error)
}

// MethodSource provides the active costing method.
type MethodSource interface {
	ActiveMethod(ctx context.Context) (valuation.Method, error)
}
