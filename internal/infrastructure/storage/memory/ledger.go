package memory

import (
	"context"
	"sort"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
)

var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	s *Store
}

// Append implements ledger.Repository.
func (r *LedgerRepo) Append(ctx context.Context, e *ledger.Entry) error {
	return r.s.write(ctx, func(d *data) error {
		d.seq++
		e.Seq = d.seq
		if id.IsNil(e.ID) {
			e.ID = id.New()
		}
		e.CreatedAt = r.s.clock.Now().UTC()
		d.entries = append(d.entries, *e)
		return nil
	})
}

// Totals implements ledger.Repository.
func (r *LedgerRepo) Totals(ctx context.Context, item, warehouse string) (ledger.Totals, error) {
	var t ledger.Totals
	err := r.s.read(ctx, func(d *data) error {
		var part []ledger.Entry
		for _, e := range d.entries {
			if e.Item == item && e.Warehouse == warehouse {
				part = append(part, e)
			}
		}
		t = ledger.Summarize(part)
		return nil
	})
	return t, err
}

// Latest implements ledger.Repository.
func (r *LedgerRepo) Latest(ctx context.Context, item, warehouse string) (*ledger.Entry, error) {
	var latest *ledger.Entry
	err := r.s.read(ctx, func(d *data) error {
		for i := range d.entries {
			e := d.entries[i]
			if e.Item != item || e.Warehouse != warehouse {
				continue
			}
			if latest == nil || latest.Before(e) {
				cp := e
				latest = &cp
			}
		}
		return nil
	})
	return latest, err
}

// List implements ledger.Repository.
func (r *LedgerRepo) List(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	out := []ledger.Entry{}
	err := r.s.read(ctx, func(d *data) error {
		for _, e := range d.entries {
			if f.Matches(e) {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, err
}

// ListByMovement implements ledger.Repository.
func (r *LedgerRepo) ListByMovement(ctx context.Context, movementID id.ID) ([]ledger.Entry, error) {
	out := []ledger.Entry{}
	err := r.s.read(ctx, func(d *data) error {
		for _, e := range d.entries {
			if e.MovementID == movementID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

// DeleteByMovement implements ledger.Repository.
func (r *LedgerRepo) DeleteByMovement(ctx context.Context, movementID id.ID) ([]ledger.Entry, error) {
	removed := []ledger.Entry{}
	err := r.s.write(ctx, func(d *data) error {
		kept := d.entries[:0:0]
		for _, e := range d.entries {
			if e.MovementID == movementID {
				removed = append(removed, e)
				continue
			}
			kept = append(kept, e)
		}
		d.entries = kept
		return nil
	})
	return removed, err
}
