package movement_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
	"stockledger/internal/domain/valuation"
	"stockledger/internal/infrastructure/storage/memory"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	clock    *testClock
	settings *valuation.SettingsService
	svc      *movement.Service
	engine   *movement.Engine
	catalog  *catalog.Service
}

func newFixture(t *testing.T, method valuation.Method, policy movement.CancelPolicy) *fixture {
	t.Helper()

	st := memory.New()
	clk := &testClock{now: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)}
	settings := valuation.NewSettingsService(st.Settings(), method, clk.Now)
	engine := movement.NewEngine(movement.EngineDeps{
		Movements: st.Movements(),
		Ledger:    st.Ledger(),
		Catalog:   st.Catalog(),
		Clock:     clk,
		TxManager: st,
	})
	svc := movement.NewService(st.Movements(), engine, settings, policy, st, clk)
	cat := catalog.NewService(st.Catalog(), st.Ledger(), svc, st, clk)

	f := &fixture{
		ctx:      context.Background(),
		store:    st,
		clock:    clk,
		settings: settings,
		svc:      svc,
		engine:   engine,
		catalog:  cat,
	}
	for _, wh := range []string{"Main", "Store"} {
		require.NoError(t, cat.CreateWarehouse(f.ctx, &catalog.Warehouse{Name: wh}))
	}
	return f
}

// seedItem creates ITEM-1 with 5 @ 500 in Main at 10:00 and moves the clock to noon.
func (f *fixture) seedItem(t *testing.T) {
	t.Helper()
	require.NoError(t, f.catalog.CreateItem(f.ctx, &catalog.Item{
		Code:                 "ITEM-1",
		OpeningQty:           d("5"),
		OpeningValuationRate: d("500"),
		OpeningWarehouse:     "Main",
	}))
	f.clock.now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (f *fixture) at(hour, minute int) time.Time {
	return time.Date(2024, 3, 10, hour, minute, 0, 0, time.UTC)
}

func (f *fixture) confirm(t *testing.T, typ movement.Type, postedAt time.Time, lines ...movement.Line) (*movement.Movement, []ledger.Entry) {
	t.Helper()
	m := movement.New(typ, postedAt, f.clock.now)
	m.Lines = lines
	entries, err := f.svc.CreateAndConfirm(f.ctx, m)
	require.NoError(t, err)
	return m, entries
}

func (f *fixture) totals(t *testing.T, item, warehouse string) ledger.Totals {
	t.Helper()
	tt, err := f.store.Ledger().Totals(f.ctx, item, warehouse)
	require.NoError(t, err)
	return tt
}

func receive(item string, qty, rate, target string) movement.Line {
	return movement.Line{Item: item, Qty: d(qty), Rate: d(rate), TargetWarehouse: target}
}

func consume(item string, qty, rate, source string) movement.Line {
	return movement.Line{Item: item, Qty: d(qty), Rate: d(rate), SourceWarehouse: source}
}

func transfer(item string, qty, rate, source, target string) movement.Line {
	return movement.Line{Item: item, Qty: d(qty), Rate: d(rate), SourceWarehouse: source, TargetWarehouse: target}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestConfirm_ValuationSequence(t *testing.T) {
	for _, method := range valuation.Methods {
		t.Run(string(method), func(t *testing.T) {
			f := newFixture(t, method, movement.CancelReverse)
			f.seedItem(t)

			_, consumed := f.confirm(t, movement.TypeConsume, f.at(11, 0), consume("ITEM-1", "2", "500", "Main"))
			require.Len(t, consumed, 1)
			assertDecimal(t, "-2", consumed[0].QtyChange)
			assertDecimal(t, "500", consumed[0].InOutRate)
			assertDecimal(t, "500", consumed[0].ValuationRate)
			assert.Equal(t, "Main", consumed[0].Warehouse)

			_, received := f.confirm(t, movement.TypeReceive, f.at(11, 30), receive("ITEM-1", "2", "1000", "Main"))
			require.Len(t, received, 1)
			assertDecimal(t, "2", received[0].QtyChange)
			assertDecimal(t, "1000", received[0].InOutRate)
			assertDecimal(t, "700", received[0].ValuationRate)

			tt := f.totals(t, "ITEM-1", "Main")
			assertDecimal(t, "5", tt.Qty)
			assertDecimal(t, "3500", tt.Value)
		})
	}
}

func TestConfirm_OpeningStockSeedsLedger(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	entries, err := f.store.Ledger().List(f.ctx, ledger.Filter{Item: "ITEM-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assertDecimal(t, "5", entries[0].QtyChange)
	assertDecimal(t, "500", entries[0].ValuationRate)
	assert.Equal(t, f.at(10, 0), entries[0].PostedAt)

	m, err := f.svc.GetByID(f.ctx, entries[0].MovementID)
	require.NoError(t, err)
	assert.Equal(t, movement.TypeReceive, m.Type)
	assert.Equal(t, movement.StatusConfirmed, m.Status)
}

func TestConfirm_TransferPostsSourceThenTarget(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	_, entries := f.confirm(t, movement.TypeTransfer, f.at(11, 0), transfer("ITEM-1", "3", "500", "Main", "Store"))

	require.Len(t, entries, 2)
	assert.Equal(t, "Main", entries[0].Warehouse)
	assertDecimal(t, "-3", entries[0].QtyChange)
	assertDecimal(t, "500", entries[0].ValuationRate)
	assert.Equal(t, "Store", entries[1].Warehouse)
	assertDecimal(t, "3", entries[1].QtyChange)
	assertDecimal(t, "500", entries[1].ValuationRate)
	assert.Less(t, entries[0].Seq, entries[1].Seq)

	assertDecimal(t, "2", f.totals(t, "ITEM-1", "Main").Qty)
	assertDecimal(t, "3", f.totals(t, "ITEM-1", "Store").Qty)
}

func TestConfirm_InsufficientStock(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	tests := []struct {
		name  string
		typ   movement.Type
		lines []movement.Line
	}{
		{"consume more than balance", movement.TypeConsume, []movement.Line{consume("ITEM-1", "6", "500", "Main")}},
		{"transfer more than balance", movement.TypeTransfer, []movement.Line{transfer("ITEM-1", "6", "500", "Main", "Store")}},
		{"consume from empty warehouse", movement.TypeConsume, []movement.Line{consume("ITEM-1", "1", "500", "Store")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := movement.New(tt.typ, f.at(11, 0), f.clock.now)
			m.Lines = tt.lines
			require.NoError(t, f.svc.Create(f.ctx, m))

			_, entries, err := f.svc.Confirm(f.ctx, m.ID)

			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock), err.Error())
			assert.Contains(t, err.Error(), "not enough stock of item ITEM-1 available in warehouse")
			assert.Nil(t, entries)

			stored, err := f.svc.GetByID(f.ctx, m.ID)
			require.NoError(t, err)
			assert.Equal(t, movement.StatusDraft, stored.Status)

			posted, err := f.svc.Entries(f.ctx, m.ID)
			require.NoError(t, err)
			assert.Empty(t, posted)
		})
	}

	assertDecimal(t, "5", f.totals(t, "ITEM-1", "Main").Qty)
}

func TestConfirm_AvailabilityIsCheckedPerLine(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)
	require.NoError(t, f.catalog.CreateWarehouse(f.ctx, &catalog.Warehouse{Name: "Back"}))

	// Each line fits the balance of 5 even though together they do not.
	_, entries := f.confirm(t, movement.TypeTransfer, f.at(11, 0),
		transfer("ITEM-1", "3", "500", "Main", "Store"),
		transfer("ITEM-1", "3", "500", "Main", "Back"),
	)

	require.Len(t, entries, 4)
	assertDecimal(t, "-1", f.totals(t, "ITEM-1", "Main").Qty)
	assertDecimal(t, "3", f.totals(t, "ITEM-1", "Store").Qty)
	assertDecimal(t, "3", f.totals(t, "ITEM-1", "Back").Qty)
}

func TestConfirm_FuturePosting(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	tests := []struct {
		name     string
		postedAt time.Time
		msg      string
	}{
		{"tomorrow", f.at(12, 0).AddDate(0, 0, 1), "date cannot be in future"},
		{"later today", f.at(12, 30), "time cannot be in future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := movement.New(movement.TypeReceive, tt.postedAt, f.clock.now)
			m.Lines = []movement.Line{receive("ITEM-1", "1", "500", "Main")}

			_, err := f.svc.CreateAndConfirm(f.ctx, m)

			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeFuturePosting))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	// Nothing from the failed attempts was stored.
	res, err := f.svc.List(f.ctx, movement.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalCount)
}

func TestConfirm_PostedNowIsAccepted(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	_, entries := f.confirm(t, movement.TypeReceive, f.clock.now, receive("ITEM-1", "1", "500", "Main"))
	assert.Len(t, entries, 1)
}

func TestConfirm_UnknownReferences(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	tests := []struct {
		name string
		line movement.Line
		msg  string
	}{
		{"unknown item", receive("NOPE", "1", "10", "Main"), "item NOPE does not exist"},
		{"unknown warehouse", receive("ITEM-1", "1", "10", "Attic"), "warehouse Attic does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := movement.New(movement.TypeReceive, f.at(11, 0), f.clock.now)
			m.Lines = []movement.Line{tt.line}

			_, err := f.svc.CreateAndConfirm(f.ctx, m)

			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCancel_ReverseRestoresBalances(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	beforeMain := f.totals(t, "ITEM-1", "Main")
	beforeStore := f.totals(t, "ITEM-1", "Store")

	m, posted := f.confirm(t, movement.TypeTransfer, f.at(11, 0), transfer("ITEM-1", "3", "450", "Main", "Store"))

	cancelled, reversal, err := f.svc.Cancel(f.ctx, m.ID)
	require.NoError(t, err)

	assert.Equal(t, movement.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.Len(t, reversal, 2)

	// Reversal consumes from the old target, then receives into the old source.
	assert.Equal(t, "Store", reversal[0].Warehouse)
	assert.Equal(t, "Main", reversal[1].Warehouse)
	for i, e := range reversal {
		assert.Equal(t, m.ID, e.MovementID)
		assert.Equal(t, f.clock.now, e.PostedAt)
		assertDecimal(t, posted[1-i].QtyChange.Neg().String(), e.QtyChange)
		assertDecimal(t, posted[1-i].InOutRate.String(), e.InOutRate)
	}

	afterMain := f.totals(t, "ITEM-1", "Main")
	afterStore := f.totals(t, "ITEM-1", "Store")
	assertDecimal(t, beforeMain.Qty.String(), afterMain.Qty)
	assertDecimal(t, beforeMain.Value.String(), afterMain.Value)
	assertDecimal(t, beforeStore.Qty.String(), afterStore.Qty)
	assertDecimal(t, beforeStore.Value.String(), afterStore.Value)

	all, err := f.svc.Entries(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCancel_ReverseOfConsumeAndReceive(t *testing.T) {
	f := newFixture(t, valuation.MethodMovingAverage, movement.CancelReverse)
	f.seedItem(t)

	c, _ := f.confirm(t, movement.TypeConsume, f.at(11, 0), consume("ITEM-1", "2", "500", "Main"))
	r, _ := f.confirm(t, movement.TypeReceive, f.at(11, 30), receive("ITEM-1", "2", "1000", "Main"))

	_, rev, err := f.svc.Cancel(f.ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, rev, 1)
	assertDecimal(t, "-2", rev[0].QtyChange)
	assertDecimal(t, "1000", rev[0].InOutRate)

	_, rev, err = f.svc.Cancel(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rev, 1)
	assertDecimal(t, "2", rev[0].QtyChange)
	assertDecimal(t, "500", rev[0].InOutRate)

	tt := f.totals(t, "ITEM-1", "Main")
	assertDecimal(t, "5", tt.Qty)
	assertDecimal(t, "2500", tt.Value)
}

func TestCancel_ReverseSkipsSufficiencyCheck(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	r, _ := f.confirm(t, movement.TypeReceive, f.at(11, 0), receive("ITEM-1", "2", "600", "Main"))
	f.confirm(t, movement.TypeConsume, f.at(11, 30), consume("ITEM-1", "6", "500", "Main"))

	// Only 1 left, cancelling the receipt of 2 still goes through.
	_, _, err := f.svc.Cancel(f.ctx, r.ID)
	require.NoError(t, err)
	assertDecimal(t, "-1", f.totals(t, "ITEM-1", "Main").Qty)
}

func TestCancel_DeletePolicy(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelDelete)
	f.seedItem(t)

	m, posted := f.confirm(t, movement.TypeTransfer, f.at(11, 0), transfer("ITEM-1", "3", "500", "Main", "Store"))

	_, removed, err := f.svc.Cancel(f.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, posted[0].ID, removed[0].ID)

	left, err := f.svc.Entries(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assertDecimal(t, "5", f.totals(t, "ITEM-1", "Main").Qty)
	assert.True(t, f.totals(t, "ITEM-1", "Store").Empty())
}

func TestStateMachine(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	m := movement.New(movement.TypeConsume, f.at(11, 0), f.clock.now)
	m.Lines = []movement.Line{consume("ITEM-1", "1", "500", "Main")}
	require.NoError(t, f.svc.Create(f.ctx, m))

	_, _, err := f.svc.Cancel(f.ctx, m.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "draft cannot be cancelled")

	_, _, err = f.svc.Confirm(f.ctx, m.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Confirm(f.ctx, m.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "confirmed cannot be re-confirmed")

	edit := &movement.Movement{Type: movement.TypeConsume, PostedAt: f.at(11, 0), Lines: m.Lines}
	edit.ID = m.ID
	err = f.svc.Update(f.ctx, edit)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "confirmed cannot be edited")

	_, _, err = f.svc.Cancel(f.ctx, m.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Confirm(f.ctx, m.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "cancelled cannot be re-confirmed")

	_, _, err = f.svc.Cancel(f.ctx, m.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "cancelled cannot be cancelled again")
}

func TestService_UpdateDraft(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	m := movement.New(movement.TypeConsume, f.at(11, 0), f.clock.now)
	m.Lines = []movement.Line{consume("ITEM-1", "1", "500", "Main")}
	require.NoError(t, f.svc.Create(f.ctx, m))

	edit := &movement.Movement{
		Type:     movement.TypeReceive,
		PostedAt: f.at(11, 15),
		Lines:    []movement.Line{receive("ITEM-1", "4", "550", "Store")},
	}
	edit.ID = m.ID
	edit.Version = m.Version
	require.NoError(t, f.svc.Update(f.ctx, edit))
	assert.Equal(t, m.Version+1, edit.Version)

	got, err := f.svc.GetByID(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, movement.TypeReceive, got.Type)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 1, got.Lines[0].LineNo)
	assert.Equal(t, "Store", got.Lines[0].TargetWarehouse)

	stale := &movement.Movement{Type: movement.TypeReceive, PostedAt: f.at(11, 15), Lines: got.Lines}
	stale.ID = m.ID
	stale.Version = m.Version
	err = f.svc.Update(f.ctx, stale)
	assert.True(t, apperror.HasCode(err, apperror.CodeConcurrentModification))
}

func TestService_ValidateDoesNotPost(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	ok := movement.New(movement.TypeConsume, f.at(11, 0), f.clock.now)
	ok.Lines = []movement.Line{consume("ITEM-1", "5", "500", "Main")}
	require.NoError(t, f.svc.Create(f.ctx, ok))
	require.NoError(t, f.svc.Validate(f.ctx, ok.ID))

	tooMuch := movement.New(movement.TypeConsume, f.at(11, 0), f.clock.now)
	tooMuch.Lines = []movement.Line{consume("ITEM-1", "9", "500", "Main")}
	require.NoError(t, f.svc.Create(f.ctx, tooMuch))
	err := f.svc.Validate(f.ctx, tooMuch.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	entries, err := f.store.Ledger().List(f.ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestService_CreateRejectsInvalidLines(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	m := movement.New(movement.TypeReceive, f.at(11, 0), f.clock.now)
	m.Lines = []movement.Line{
		receive("ITEM-1", "1", "500", "Main"),
		receive("ITEM-1", "2", "600", "Main"),
	}

	err := f.svc.Create(f.ctx, m)

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateLine))
	assert.Contains(t, err.Error(), "duplicate entry found for item ITEM-1")
}

func TestService_ListFilters(t *testing.T) {
	f := newFixture(t, valuation.MethodFIFO, movement.CancelReverse)
	f.seedItem(t)

	draft := movement.New(movement.TypeConsume, f.at(11, 0), f.clock.now)
	draft.Lines = []movement.Line{consume("ITEM-1", "1", "500", "Main")}
	require.NoError(t, f.svc.Create(f.ctx, draft))

	status := movement.StatusDraft
	res, err := f.svc.List(f.ctx, movement.ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, draft.ID, res.Items[0].ID)

	typ := movement.TypeReceive
	res, err = f.svc.List(f.ctx, movement.ListFilter{Type: &typ})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	res, err = f.svc.List(f.ctx, movement.ListFilter{Item: "OTHER"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}
