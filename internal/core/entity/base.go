// Package entity holds fields shared by persisted aggregates.
package entity

import (
	"context"
	"time"

	"stockledger/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without store access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseDocument contains the identity, audit and optimistic-locking fields
// of a user-editable document.
type BaseDocument struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking. Repositories update WHERE version
	// matches and then increment it.
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// NewBaseDocument creates a BaseDocument with a generated ID.
func NewBaseDocument(now time.Time) BaseDocument {
	now = now.UTC()
	return BaseDocument{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch records a successful update.
func (b *BaseDocument) Touch(now time.Time) {
	b.UpdatedAt = now.UTC()
	b.Version++
}
