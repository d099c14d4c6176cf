package ledger

import (
	"context"

	"stockledger/internal/core/id"
)

// Repository is the ledger store contract.
// Implementations must honour the transaction carried in ctx.
type Repository interface {
	// Append inserts one entry. The store assigns Seq and CreatedAt,
	// and ID when it is nil. Entries are inserted one at a time so that
	// valuation of a later line sees earlier lines of the same movement.
	Append(ctx context.Context, e *Entry) error

	// Totals aggregates all entries of the item/warehouse pair.
	Totals(ctx context.Context, item, warehouse string) (Totals, error)

	// Latest returns the most recent entry by (posted_at, seq), or nil.
	Latest(ctx context.Context, item, warehouse string) (*Entry, error)

	// List returns matching entries ordered by (posted_at, seq).
	List(ctx context.Context, f Filter) ([]Entry, error)

	// ListByMovement returns a movement's entries in insertion order.
	ListByMovement(ctx context.Context, movementID id.ID) ([]Entry, error)

	// DeleteByMovement removes a movement's entries and returns them.
	DeleteByMovement(ctx context.Context, movementID id.ID) ([]Entry, error)
}
