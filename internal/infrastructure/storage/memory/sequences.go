package memory

import (
	"context"

	"stockledger/internal/core/numerator"
)

var _ numerator.Sequences = (*SequenceRepo)(nil)

// SequenceRepo implements numerator.Sequences.
type SequenceRepo struct {
	s *Store
}

// NextValue implements numerator.Sequences.
func (r *SequenceRepo) NextValue(ctx context.Context, key string) (int64, error) {
	var num int64
	err := r.s.write(ctx, func(d *data) error {
		d.sequences[key]++
		num = d.sequences[key]
		return nil
	})
	return num, err
}
