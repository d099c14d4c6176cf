// Package catalog_repo provides PostgreSQL storage for items, warehouses
// and stock settings.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/infrastructure/storage/postgres"
)

var _ catalog.Repository = (*CatalogRepo)(nil)

var (
	warehouseColumns = postgres.ExtractDBColumns[catalog.Warehouse]()
	itemColumns      = postgres.ExtractDBColumns[catalog.Item]()
)

// CatalogRepo implements catalog.Repository.
type CatalogRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewCatalogRepo creates a catalog repository.
func NewCatalogRepo(txm *postgres.TxManager) *CatalogRepo {
	return &CatalogRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CatalogRepo) insert(ctx context.Context, table string, values map[string]any) error {
	sql, args, err := r.builder.Insert(table).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	_, err = r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	return err
}

// CreateWarehouse implements catalog.Repository.
func (r *CatalogRepo) CreateWarehouse(ctx context.Context, w *catalog.Warehouse) error {
	if err := r.insert(ctx, postgres.TableWarehouses, postgres.StructToMap(w)); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("warehouse", "name", w.Name).WithCause(err)
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetWarehouse implements catalog.Repository.
func (r *CatalogRepo) GetWarehouse(ctx context.Context, name string) (*catalog.Warehouse, error) {
	sql, args, err := r.builder.Select(warehouseColumns...).
		From(postgres.TableWarehouses).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w catalog.Warehouse
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("warehouse", name)
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// ListWarehouses implements catalog.Repository.
func (r *CatalogRepo) ListWarehouses(ctx context.Context) ([]catalog.Warehouse, error) {
	sql, args, err := r.builder.Select(warehouseColumns...).
		From(postgres.TableWarehouses).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := []catalog.Warehouse{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	return out, nil
}

// WarehouseExists implements catalog.Repository.
func (r *CatalogRepo) WarehouseExists(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, r.existsQuery(postgres.TableWarehouses, "name", name))
}

// CreateItem implements catalog.Repository.
func (r *CatalogRepo) CreateItem(ctx context.Context, it *catalog.Item) error {
	if err := r.insert(ctx, postgres.TableItems, postgres.StructToMap(it)); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("item", "code", it.Code).WithCause(err)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewValidation(fmt.Sprintf("warehouse %s does not exist", it.OpeningWarehouse)).
				WithDetail("field", "openingWarehouse").
				WithCause(err)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetItem implements catalog.Repository.
func (r *CatalogRepo) GetItem(ctx context.Context, code string) (*catalog.Item, error) {
	sql, args, err := r.builder.Select(itemColumns...).
		From(postgres.TableItems).
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var it catalog.Item
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", code)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// ListItems implements catalog.Repository.
func (r *CatalogRepo) ListItems(ctx context.Context, page domain.Page) (domain.ListResult[*catalog.Item], error) {
	page = page.Normalize()
	result := domain.ListResult[*catalog.Item]{
		Items:  []*catalog.Item{},
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	querier := r.txm.GetQuerier(ctx)

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(postgres.TableItems).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count items: %w", err)
	}

	sql, args, err := r.listItemsQuery(page).ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list items: %w", err)
	}
	return result, nil
}

func (r *CatalogRepo) listItemsQuery(page domain.Page) squirrel.SelectBuilder {
	return r.builder.Select(itemColumns...).
		From(postgres.TableItems).
		OrderBy("code").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset))
}

// ItemExists implements catalog.Repository.
func (r *CatalogRepo) ItemExists(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, r.existsQuery(postgres.TableItems, "code", code))
}

func (r *CatalogRepo) existsQuery(table, column, value string) squirrel.SelectBuilder {
	return r.builder.Select("1").
		From(table).
		Where(squirrel.Eq{column: value}).
		Limit(1)
}

func (r *CatalogRepo) exists(ctx context.Context, q squirrel.SelectBuilder) (bool, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}
