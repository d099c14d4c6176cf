package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/valuation"
	"stockledger/internal/infrastructure/storage/postgres"
)

var _ valuation.SettingsRepository = (*SettingsRepo)(nil)

// settingsRowID is the primary key of the single settings row.
const settingsRowID = 1

// SettingsRepo implements valuation.SettingsRepository.
type SettingsRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSettingsRepo creates a settings repository.
func NewSettingsRepo(txm *postgres.TxManager) *SettingsRepo {
	return &SettingsRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get implements valuation.SettingsRepository.
func (r *SettingsRepo) Get(ctx context.Context) (*valuation.Settings, error) {
	sql, args, err := r.builder.Select("valuation_method", "updated_at").
		From(postgres.TableSettings).
		Where(squirrel.Eq{"id": settingsRowID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s valuation.Settings
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock settings", "default")
		}
		return nil, fmt.Errorf("get stock settings: %w", err)
	}
	return &s, nil
}

// Save implements valuation.SettingsRepository.
func (r *SettingsRepo) Save(ctx context.Context, s *valuation.Settings) error {
	sql, args, err := r.saveQuery(s).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save stock settings: %w", err)
	}
	return nil
}

func (r *SettingsRepo) saveQuery(s *valuation.Settings) squirrel.InsertBuilder {
	return r.builder.Insert(postgres.TableSettings).
		Columns("id", "valuation_method", "updated_at").
		Values(settingsRowID, string(s.Method), s.UpdatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET valuation_method = EXCLUDED.valuation_method, updated_at = EXCLUDED.updated_at")
}
