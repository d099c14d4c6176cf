package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/clock"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
)

func entry(item, wh string, qty int64, at time.Time, mid id.ID) *ledger.Entry {
	return &ledger.Entry{
		Item:          item,
		Warehouse:     wh,
		QtyChange:     decimal.NewFromInt(qty),
		InOutRate:     decimal.NewFromInt(10),
		ValuationRate: decimal.NewFromInt(10),
		PostedAt:      at,
		MovementID:    mid,
	}
}

func TestRunInTransaction_RollbackRestoresState(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Catalog().CreateWarehouse(ctx, &catalog.Warehouse{Name: "Main"}))

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Catalog().CreateWarehouse(ctx, &catalog.Warehouse{Name: "Store"}))
		require.NoError(t, s.Ledger().Append(ctx, entry("A", "Main", 1, time.Now(), id.New())))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ok, err := s.Catalog().WarehouseExists(ctx, "Store")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := s.Ledger().List(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	ok, err = s.Catalog().WarehouseExists(ctx, "Main")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunInTransaction_NestedReusesTransaction(t *testing.T) {
	s := New()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		err := s.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.Catalog().CreateWarehouse(ctx, &catalog.Warehouse{Name: "Inner"})
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ok, err := s.Catalog().WarehouseExists(ctx, "Inner")
	require.NoError(t, err)
	assert.False(t, ok, "outer rollback discards inner writes")
}

func TestReadOnly_RejectsWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.ReadOnly(ctx, func(ctx context.Context) error {
		return s.Catalog().CreateWarehouse(ctx, &catalog.Warehouse{Name: "Main"})
	})
	assert.ErrorIs(t, err, errReadOnly)

	err = s.ReadOnly(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(context.Context) error { return nil })
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestLedger_OrderingAndTotals(t *testing.T) {
	s := New()
	ctx := context.Background()
	l := s.Ledger()
	t0 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	mid := id.New()

	// Appended out of posting order; same-timestamp entries keep append order.
	require.NoError(t, l.Append(ctx, entry("A", "Main", 2, t0.Add(time.Hour), mid)))
	require.NoError(t, l.Append(ctx, entry("A", "Main", 5, t0, id.New())))
	require.NoError(t, l.Append(ctx, entry("A", "Main", -1, t0.Add(time.Hour), mid)))
	require.NoError(t, l.Append(ctx, entry("A", "Other", 3, t0, id.New())))

	entries, err := l.List(ctx, ledger.Filter{Item: "A", Warehouse: "Main"})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "5", entries[0].QtyChange.String())
	assert.Equal(t, "2", entries[1].QtyChange.String())
	assert.Equal(t, "-1", entries[2].QtyChange.String())
	assert.Less(t, entries[1].Seq, entries[2].Seq)

	totals, err := l.Totals(ctx, "A", "Main")
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.Count)
	assert.Equal(t, "6", totals.Qty.String())

	latest, err := l.Latest(ctx, "A", "Main")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "-1", latest.QtyChange.String())

	none, err := l.Latest(ctx, "A", "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, none)

	removed, err := l.DeleteByMovement(ctx, mid)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	left, err := l.ListByMovement(ctx, mid)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestMovementRepo_UpdateChecksVersion(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Movements()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	m := movement.New(movement.TypeReceive, now, now)
	m.AddLine("A", decimal.NewFromInt(1), decimal.NewFromInt(10), "", "Main")
	require.NoError(t, repo.Create(ctx, m))

	stale, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, m))

	err = repo.Update(ctx, stale)
	assert.True(t, apperror.HasCode(err, apperror.CodeConcurrentModification))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Version, got.Version)
	require.Len(t, got.Lines, 1)

	// Returned movements are copies.
	got.Lines[0].Item = "B"
	again, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Lines[0].Item)
}

func TestSequenceRepo_NextValue(t *testing.T) {
	s := New()
	ctx := context.Background()
	seq := s.Sequences()

	n, err := seq.NextValue(ctx, "STE-2024")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = seq.NextValue(ctx, "STE-2024")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = seq.NextValue(ctx, "STE-2025")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// A rolled back transaction gives its number back.
	err = s.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := seq.NextValue(ctx, "STE-2024")
		require.NoError(t, err)
		return errors.New("abort")
	})
	require.Error(t, err)

	n, err = seq.NextValue(ctx, "STE-2024")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestWithClock_StampsTimes(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New(WithClock(clock.Fixed(now)))
	ctx := context.Background()

	e := entry("A", "Main", 1, now, id.New())
	require.NoError(t, s.Ledger().Append(ctx, e))
	assert.True(t, e.CreatedAt.Equal(now), e.CreatedAt.String())

	m := movement.New(movement.TypeReceive, now, now.Add(-time.Hour))
	m.AddLine("A", decimal.NewFromInt(1), decimal.NewFromInt(10), "", "Main")
	require.NoError(t, s.Movements().Create(ctx, m))
	require.NoError(t, s.Movements().Update(ctx, m))
	assert.True(t, m.UpdatedAt.Equal(now), m.UpdatedAt.String())
	assert.Equal(t, 2, m.Version)
}
