// Package memory provides an in-process implementation of every store
// contract. It backs STORAGE=memory and the domain tests.
//
// A store-wide lock serializes write transactions; a failed transaction
// restores the snapshot taken when it began.
package memory

import (
	"context"
	"errors"
	"sync"

	"stockledger/internal/core/clock"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
	"stockledger/internal/domain/valuation"
)

var (
	_ tx.ReadOnlyManager = (*Store)(nil)

	errReadOnly = errors.New("write in read-only transaction")
)

type data struct {
	seq        int64
	entries    []ledger.Entry
	movements  map[id.ID]*movement.Movement
	items      map[string]*catalog.Item
	warehouses map[string]*catalog.Warehouse
	settings   *valuation.Settings
	sequences  map[string]int64
}

func newData() *data {
	return &data{
		movements:  make(map[id.ID]*movement.Movement),
		items:      make(map[string]*catalog.Item),
		warehouses: make(map[string]*catalog.Warehouse),
		sequences:  make(map[string]int64),
	}
}

// clone copies containers. Stored values are replaced, never mutated in
// place, so sharing them between snapshots is safe.
func (d *data) clone() *data {
	cp := &data{
		seq:        d.seq,
		entries:    append([]ledger.Entry(nil), d.entries...),
		movements:  make(map[id.ID]*movement.Movement, len(d.movements)),
		items:      make(map[string]*catalog.Item, len(d.items)),
		warehouses: make(map[string]*catalog.Warehouse, len(d.warehouses)),
		settings:   d.settings,
		sequences:  make(map[string]int64, len(d.sequences)),
	}
	for k, v := range d.movements {
		cp.movements[k] = v
	}
	for k, v := range d.items {
		cp.items[k] = v
	}
	for k, v := range d.warehouses {
		cp.warehouses[k] = v
	}
	for k, v := range d.sequences {
		cp.sequences[k] = v
	}
	return cp
}

// Store holds all state.
type Store struct {
	mu    sync.RWMutex
	data  *data
	clock clock.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock stamps created and updated times from clk.
func WithClock(clk clock.Clock) Option {
	return func(s *Store) {
		if clk != nil {
			s.clock = clk
		}
	}
}

// New creates an empty store. Timestamps come from the UTC wall clock
// unless WithClock is given.
func New(opts ...Option) *Store {
	s := &Store{data: newData(), clock: clock.NewSystem(nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type txKey struct{}

type txState struct {
	store    *Store
	readOnly bool
}

func (s *Store) current(ctx context.Context) *txState {
	if st, ok := ctx.Value(txKey{}).(*txState); ok && st.store == s {
		return st
	}
	return nil
}

// RunInTransaction implements tx.Manager. Nested calls reuse the
// transaction in ctx.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if st := s.current(ctx); st != nil {
		if st.readOnly {
			return errReadOnly
		}
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, &txState{store: s})); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.current(ctx) != nil {
		return fn(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(context.WithValue(ctx, txKey{}, &txState{store: s, readOnly: true}))
}

func (s *Store) read(ctx context.Context, fn func(d *data) error) error {
	if s.current(ctx) != nil {
		return fn(s.data)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) write(ctx context.Context, fn func(d *data) error) error {
	if st := s.current(ctx); st != nil {
		if st.readOnly {
			return errReadOnly
		}
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Ledger returns the ledger repository view of the store.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

// Movements returns the movement repository view of the store.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Catalog returns the catalog repository view of the store.
func (s *Store) Catalog() *CatalogRepo { return &CatalogRepo{s: s} }

// Settings returns the settings repository view of the store.
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{s: s} }

// Sequences returns the document number sequences of the store.
func (s *Store) Sequences() *SequenceRepo { return &SequenceRepo{s: s} }

// Ping implements the readiness check.
func (s *Store) Ping(context.Context) error { return nil }
