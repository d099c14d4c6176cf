package numerator

import (
	"context"
	"time"
)

// Sequences hands out consecutive values per key. Values taken inside a
// transaction that rolls back are returned to the sequence, so numbers
// have no gaps.
type Sequences interface {
	NextValue(ctx context.Context, key string) (int64, error)
}

// Generator formats sequence values as document numbers.
type Generator struct {
	seq Sequences
	cfg Config
}

// New creates a Generator drawing from seq.
func New(seq Sequences, cfg Config) *Generator {
	return &Generator{seq: seq, cfg: cfg}
}

// Next returns the next number for a document dated period.
func (g *Generator) Next(ctx context.Context, period time.Time) (string, error) {
	num, err := g.seq.NextValue(ctx, g.cfg.Key(period))
	if err != nil {
		return "", err
	}
	return g.cfg.Format(period, num), nil
}
