// Package ledger_repo provides the PostgreSQL stock ledger.
package ledger_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

var _ ledger.Repository = (*LedgerRepo)(nil)

var (
	entryColumns  = postgres.ExtractDBColumns[ledger.Entry]()
	insertColumns = postgres.ExcludeColumns(entryColumns, "seq", "created_at")
)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append implements ledger.Repository.
func (r *LedgerRepo) Append(ctx context.Context, e *ledger.Entry) error {
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}

	sql, args, err := r.insertQuery(e).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	row := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&e.Seq, &e.CreatedAt); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r *LedgerRepo) insertQuery(e *ledger.Entry) squirrel.InsertBuilder {
	return r.builder.Insert(postgres.TableLedger).
		Columns(insertColumns...).
		Values(postgres.ValuesOf(e, insertColumns)...).
		Suffix("RETURNING seq, created_at")
}

// Totals implements ledger.Repository. Inside a write transaction it first
// takes a transaction-scoped advisory lock on the item/warehouse pair, so
// concurrent postings to one partition are valued one after another.
func (r *LedgerRepo) Totals(ctx context.Context, item, warehouse string) (ledger.Totals, error) {
	var t ledger.Totals
	q := r.txm.GetQuerier(ctx)

	if tx := r.txm.GetTx(ctx); tx != nil && !tx.ReadOnly() {
		if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", item+"__"+warehouse); err != nil {
			return t, fmt.Errorf("lock partition: %w", err)
		}
	}

	sql, args, err := r.totalsQuery(item, warehouse).ToSql()
	if err != nil {
		return t, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, q, &t, sql, args...); err != nil {
		return t, fmt.Errorf("ledger totals: %w", err)
	}
	return t, nil
}

func (r *LedgerRepo) totalsQuery(item, warehouse string) squirrel.SelectBuilder {
	return r.builder.Select(
		"COUNT(*) AS cnt",
		"COALESCE(SUM(qty_change), 0) AS qty",
		"COALESCE(SUM(qty_change * in_out_rate), 0) AS value",
		"COALESCE(AVG(in_out_rate), 0) AS avg_rate",
	).From(postgres.TableLedger).
		Where(squirrel.Eq{"item": item, "warehouse": warehouse})
}

// Latest implements ledger.Repository.
func (r *LedgerRepo) Latest(ctx context.Context, item, warehouse string) (*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(postgres.TableLedger).
		Where(squirrel.Eq{"item": item, "warehouse": warehouse}).
		OrderBy("posted_at DESC", "seq DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.Entry
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest ledger entry: %w", err)
	}
	return &e, nil
}

// List implements ledger.Repository.
func (r *LedgerRepo) List(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	sql, args, err := r.listQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entries := []ledger.Entry{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

func (r *LedgerRepo) listQuery(f ledger.Filter) squirrel.SelectBuilder {
	q := r.builder.Select(entryColumns...).From(postgres.TableLedger)

	if f.Item != "" {
		q = q.Where(squirrel.Eq{"item": f.Item})
	}
	if f.Warehouse != "" {
		q = q.Where(squirrel.Eq{"warehouse": f.Warehouse})
	}
	if f.MovementID != nil {
		q = q.Where(squirrel.Eq{"movement_id": *f.MovementID})
	}
	from, to := f.Bounds()
	if from != nil {
		q = q.Where(squirrel.GtOrEq{"posted_at": *from})
	}
	if to != nil {
		q = q.Where(squirrel.Lt{"posted_at": *to})
	}

	return q.OrderBy("posted_at", "seq")
}

// ListByMovement implements ledger.Repository.
func (r *LedgerRepo) ListByMovement(ctx context.Context, movementID id.ID) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(postgres.TableLedger).
		Where(squirrel.Eq{"movement_id": movementID}).
		OrderBy("seq")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entries := []ledger.Entry{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list movement entries: %w", err)
	}
	return entries, nil
}

// DeleteByMovement implements ledger.Repository.
func (r *LedgerRepo) DeleteByMovement(ctx context.Context, movementID id.ID) ([]ledger.Entry, error) {
	q := r.builder.Delete(postgres.TableLedger).
		Where(squirrel.Eq{"movement_id": movementID}).
		Suffix("RETURNING " + strings.Join(entryColumns, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete: %w", err)
	}

	removed := []ledger.Entry{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &removed, sql, args...); err != nil {
		return nil, fmt.Errorf("delete movement entries: %w", err)
	}
	return removed, nil
}
