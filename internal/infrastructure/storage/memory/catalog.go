package memory

import (
	"context"
	"sort"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/domain/valuation"
)

var (
	_ catalog.Repository           = (*CatalogRepo)(nil)
	_ valuation.SettingsRepository = (*SettingsRepo)(nil)
)

// CatalogRepo implements catalog.Repository.
type CatalogRepo struct {
	s *Store
}

// CreateWarehouse implements catalog.Repository.
func (r *CatalogRepo) CreateWarehouse(ctx context.Context, w *catalog.Warehouse) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.warehouses[w.Name]; ok {
			return apperror.NewDuplicate("warehouse", "name", w.Name)
		}
		cp := *w
		d.warehouses[w.Name] = &cp
		return nil
	})
}

// GetWarehouse implements catalog.Repository.
func (r *CatalogRepo) GetWarehouse(ctx context.Context, name string) (*catalog.Warehouse, error) {
	var out *catalog.Warehouse
	err := r.s.read(ctx, func(d *data) error {
		w, ok := d.warehouses[name]
		if !ok {
			return apperror.NewNotFound("warehouse", name)
		}
		cp := *w
		out = &cp
		return nil
	})
	return out, err
}

// ListWarehouses implements catalog.Repository.
func (r *CatalogRepo) ListWarehouses(ctx context.Context) ([]catalog.Warehouse, error) {
	out := []catalog.Warehouse{}
	err := r.s.read(ctx, func(d *data) error {
		for _, w := range d.warehouses {
			out = append(out, *w)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// WarehouseExists implements catalog.Repository.
func (r *CatalogRepo) WarehouseExists(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := r.s.read(ctx, func(d *data) error {
		_, ok = d.warehouses[name]
		return nil
	})
	return ok, err
}

// CreateItem implements catalog.Repository.
func (r *CatalogRepo) CreateItem(ctx context.Context, it *catalog.Item) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.items[it.Code]; ok {
			return apperror.NewDuplicate("item", "code", it.Code)
		}
		cp := *it
		d.items[it.Code] = &cp
		return nil
	})
}

// GetItem implements catalog.Repository.
func (r *CatalogRepo) GetItem(ctx context.Context, code string) (*catalog.Item, error) {
	var out *catalog.Item
	err := r.s.read(ctx, func(d *data) error {
		it, ok := d.items[code]
		if !ok {
			return apperror.NewNotFound("item", code)
		}
		cp := *it
		out = &cp
		return nil
	})
	return out, err
}

// ListItems implements catalog.Repository.
func (r *CatalogRepo) ListItems(ctx context.Context, page domain.Page) (domain.ListResult[*catalog.Item], error) {
	var all []*catalog.Item
	err := r.s.read(ctx, func(d *data) error {
		for _, it := range d.items {
			cp := *it
			all = append(all, &cp)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*catalog.Item]{}, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return domain.Paginate(all, page), nil
}

// ItemExists implements catalog.Repository.
func (r *CatalogRepo) ItemExists(ctx context.Context, code string) (bool, error) {
	var ok bool
	err := r.s.read(ctx, func(d *data) error {
		_, ok = d.items[code]
		return nil
	})
	return ok, err
}

// SettingsRepo implements valuation.SettingsRepository.
type SettingsRepo struct {
	s *Store
}

// Get implements valuation.SettingsRepository.
func (r *SettingsRepo) Get(ctx context.Context) (*valuation.Settings, error) {
	var out *valuation.Settings
	err := r.s.read(ctx, func(d *data) error {
		if d.settings == nil {
			return apperror.NewNotFound("stock settings", "default")
		}
		cp := *d.settings
		out = &cp
		return nil
	})
	return out, err
}

// Save implements valuation.SettingsRepository.
func (r *SettingsRepo) Save(ctx context.Context, st *valuation.Settings) error {
	return r.s.write(ctx, func(d *data) error {
		cp := *st
		d.settings = &cp
		return nil
	})
}
