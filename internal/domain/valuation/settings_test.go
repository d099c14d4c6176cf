package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
)

type memSettings struct {
	stored *Settings
}

func (m *memSettings) Get(context.Context) (*Settings, error) {
	if m.stored == nil {
		return nil, apperror.NewNotFound("stock settings", "default")
	}
	cp := *m.stored
	return &cp, nil
}

func (m *memSettings) Save(_ context.Context, s *Settings) error {
	cp := *s
	m.stored = &cp
	return nil
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"FIFO", MethodFIFO, false},
		{"fifo", MethodFIFO, false},
		{"Moving Average", MethodMovingAverage, false},
		{" moving_average ", MethodMovingAverage, false},
		{"moving-average", MethodMovingAverage, false},
		{"LIFO", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_DefaultUntilSaved(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewSettingsService(&memSettings{}, MethodMovingAverage, func() time.Time { return now })

	m, err := svc.ActiveMethod(ctx)
	require.NoError(t, err)
	assert.Equal(t, MethodMovingAverage, m)

	st, err := svc.SetMethod(ctx, "fifo")
	require.NoError(t, err)
	assert.Equal(t, MethodFIFO, st.Method)
	assert.Equal(t, now, st.UpdatedAt)

	m, err = svc.ActiveMethod(ctx)
	require.NoError(t, err)
	assert.Equal(t, MethodFIFO, m)
}

func TestSettingsService_RejectsUnknownMethod(t *testing.T) {
	repo := &memSettings{}
	svc := NewSettingsService(repo, MethodFIFO, nil)

	_, err := svc.SetMethod(context.Background(), "Weighted Guess")

	require.Error(t, err)
	assert.Nil(t, repo.stored)
}

func TestNewSettingsService_InvalidDefault(t *testing.T) {
	svc := NewSettingsService(&memSettings{}, Method("bogus"), nil)

	m, err := svc.ActiveMethod(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MethodFIFO, m)
}
