package movement

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/domain"
)

// NumberGenerator issues document numbers for a posting date.
type NumberGenerator interface {
	Next(ctx context.Context, period time.Time) (string, error)
}

// AssignNumber returns a BeforeSave hook that numbers movements which have
// no number yet. It runs in the saving transaction.
func AssignNumber(gen NumberGenerator) domain.Hook[*Movement] {
	return func(ctx context.Context, m *Movement) error {
		if m.Number != "" {
			return nil
		}
		num, err := gen.Next(ctx, m.PostedAt)
		if err != nil {
			return fmt.Errorf("assign movement number: %w", err)
		}
		m.Number = num
		return nil
	}
}
