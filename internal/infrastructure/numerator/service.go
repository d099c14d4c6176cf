// Package numerator provides PostgreSQL sequences for document numbering.
package numerator

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	corenumerator "stockledger/internal/core/numerator"
	"stockledger/internal/infrastructure/storage/postgres"
)

// Ensure compile-time interface compliance.
var _ corenumerator.Sequences = (*Sequences)(nil)

// Sequences keeps one counter row per key in stock_sequences. The upsert
// runs in the caller's transaction, so a rolled back document releases
// its number.
type Sequences struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// New creates PostgreSQL sequences.
func New(txm *postgres.TxManager) *Sequences {
	return &Sequences{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// NextValue implements corenumerator.Sequences.
func (s *Sequences) NextValue(ctx context.Context, key string) (int64, error) {
	sql, args, err := s.nextQuery(key).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build next value: %w", err)
	}

	var num int64
	if err := s.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&num); err != nil {
		return 0, fmt.Errorf("next value of %s: %w", key, err)
	}
	return num, nil
}

func (s *Sequences) nextQuery(key string) squirrel.InsertBuilder {
	return s.builder.Insert(postgres.TableSequences).
		Columns("key", "current_val").
		Values(key, 1).
		Suffix("ON CONFLICT (key) DO UPDATE SET current_val = " + postgres.TableSequences + ".current_val + 1 RETURNING current_val")
}
