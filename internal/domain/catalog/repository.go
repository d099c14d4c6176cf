package catalog

import (
	"context"

	"stockledger/internal/domain"
)

// Repository persists items and warehouses.
// Create methods return a DUPLICATE_ENTRY AppError when the key is taken;
// Get methods return NOT_FOUND.
type Repository interface {
	CreateWarehouse(ctx context.Context, w *Warehouse) error
	GetWarehouse(ctx context.Context, name string) (*Warehouse, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	WarehouseExists(ctx context.Context, name string) (bool, error)

	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, code string) (*Item, error)
	ListItems(ctx context.Context, page domain.Page) (domain.ListResult[*Item], error)
	ItemExists(ctx context.Context, code string) (bool, error)
}
