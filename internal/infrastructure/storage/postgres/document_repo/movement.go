// Package document_repo provides PostgreSQL storage for stock movements.
package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/storage/postgres"
)

var _ movement.Repository = (*MovementRepo)(nil)

var (
	headerColumns = postgres.ExtractDBColumns[movement.Movement]()
	lineColumns   = postgres.ExtractDBColumns[lineRow]()
)

// lineRow is a movement line together with its owner.
type lineRow struct {
	MovementID id.ID `db:"movement_id"`
	movement.Line
}

// MovementRepo implements movement.Repository. Header and lines are written
// in one transaction; lines are replaced wholesale on update.
type MovementRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewMovementRepo creates a movement repository.
func NewMovementRepo(txm *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create implements movement.Repository.
func (r *MovementRepo) Create(ctx context.Context, m *movement.Movement) error {
	sql, args, err := r.insertQuery(m).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			if postgres.IsUniqueViolation(err) {
				return apperror.NewDuplicate("movement", "id", m.ID.String()).WithCause(err)
			}
			return fmt.Errorf("insert movement: %w", err)
		}
		return r.insertLines(ctx, m)
	})
}

func (r *MovementRepo) insertQuery(m *movement.Movement) squirrel.InsertBuilder {
	return r.builder.Insert(postgres.TableMovements).
		Columns(headerColumns...).
		Values(postgres.ValuesOf(m, headerColumns)...)
}

func (r *MovementRepo) insertLines(ctx context.Context, m *movement.Movement) error {
	rows := make([][]any, 0, len(m.Lines))
	for _, l := range m.Lines {
		rows = append(rows, postgres.ValuesOf(lineRow{MovementID: m.ID, Line: l}, lineColumns))
	}
	_, err := r.txm.CopyRows(ctx, postgres.TableMovementLines, lineColumns, rows)
	return err
}

// GetByID implements movement.Repository.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*movement.Movement, error) {
	sql, args, err := r.builder.Select(headerColumns...).
		From(postgres.TableMovements).
		Where(squirrel.Eq{"id": movementID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	m := &movement.Movement{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", movementID.String())
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}

	if err := r.loadLines(ctx, []*movement.Movement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// Update implements movement.Repository.
func (r *MovementRepo) Update(ctx context.Context, m *movement.Movement) error {
	next := *m
	next.Touch(time.Now())

	sql, args, err := r.updateQuery(&next, m.Version).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	err = r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := r.txm.GetQuerier(ctx)
		res, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("update movement: %w", err)
		}
		if res.RowsAffected() == 0 {
			if _, err := r.GetByID(ctx, m.ID); err != nil {
				return err
			}
			return apperror.NewConcurrentModification("movement", m.ID.String())
		}

		delSQL, delArgs, err := r.builder.Delete(postgres.TableMovementLines).
			Where(squirrel.Eq{"movement_id": m.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := q.Exec(ctx, delSQL, delArgs...); err != nil {
			return fmt.Errorf("delete movement lines: %w", err)
		}
		return r.insertLines(ctx, &next)
	})
	if err != nil {
		return err
	}

	m.Version = next.Version
	m.UpdatedAt = next.UpdatedAt
	return nil
}

// updateQuery sets every mutable header column, guarded by the version the
// caller read. The number is fixed at creation.
func (r *MovementRepo) updateQuery(m *movement.Movement, expectedVersion int) squirrel.UpdateBuilder {
	values := postgres.StructToMap(m)
	delete(values, "id")
	delete(values, "created_at")
	delete(values, "created_by")
	delete(values, "number")

	return r.builder.Update(postgres.TableMovements).
		SetMap(values).
		Where(squirrel.Eq{"id": m.ID}).
		Where(squirrel.Eq{"version": expectedVersion})
}

// List implements movement.Repository.
func (r *MovementRepo) List(ctx context.Context, filter movement.ListFilter) (domain.ListResult[*movement.Movement], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[*movement.Movement]{
		Items:  []*movement.Movement{},
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	q := r.filtered(r.builder.Select(headerColumns...).From(postgres.TableMovements), filter)

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count movements: %w", err)
	}

	sql, args, err := q.OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list movements: %w", err)
	}

	if err := r.loadLines(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

func (r *MovementRepo) filtered(q squirrel.SelectBuilder, f movement.ListFilter) squirrel.SelectBuilder {
	if f.Type != nil {
		q = q.Where(squirrel.Eq{"type": string(*f.Type)})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": string(*f.Status)})
	}
	if f.Item != "" {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+postgres.TableMovementLines+" l WHERE l.movement_id = "+postgres.TableMovements+".id AND l.item = ?)",
			f.Item,
		))
	}
	return q
}

func (r *MovementRepo) loadLines(ctx context.Context, ms []*movement.Movement) error {
	if len(ms) == 0 {
		return nil
	}
	ids := make([]string, 0, len(ms))
	byID := make(map[id.ID]*movement.Movement, len(ms))
	for _, m := range ms {
		m.Lines = []movement.Line{}
		ids = append(ids, m.ID.String())
		byID[m.ID] = m
	}

	sql, args, err := r.linesQuery(ids).ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	var rows []lineRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return fmt.Errorf("select movement lines: %w", err)
	}
	for _, row := range rows {
		if m, ok := byID[row.MovementID]; ok {
			m.Lines = append(m.Lines, row.Line)
		}
	}
	return nil
}

func (r *MovementRepo) linesQuery(ids []string) squirrel.SelectBuilder {
	return r.builder.Select(lineColumns...).
		From(postgres.TableMovementLines).
		Where(squirrel.Eq{"movement_id": ids}).
		OrderBy("movement_id", "line_no")
}
