package valuation

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/pkg/logger"
)

// Settings is the stock configuration. Only the costing method is configurable.
type Settings struct {
	Method    Method    `db:"valuation_method" json:"valuationMethod"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// SettingsRepository persists the single Settings record.
type SettingsRepository interface {
	// Get returns the stored settings or a NOT_FOUND AppError.
	Get(ctx context.Context) (*Settings, error)
	// Save upserts the settings.
	Save(ctx context.Context, s *Settings) error
}

// SettingsService reads and updates stock settings.
// The active method is read once per confirm/cancel and passed explicitly
// into every valuation call.
type SettingsService struct {
	repo          SettingsRepository
	defaultMethod Method
	now           func() time.Time
}

// NewSettingsService creates the service. defaultMethod is returned while
// nothing has been stored yet.
func NewSettingsService(repo SettingsRepository, defaultMethod Method, now func() time.Time) *SettingsService {
	if !defaultMethod.Valid() {
		defaultMethod = MethodFIFO
	}
	if now == nil {
		now = time.Now
	}
	return &SettingsService{repo: repo, defaultMethod: defaultMethod, now: now}
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if apperror.IsNotFound(err) {
			return &Settings{Method: s.defaultMethod}, nil
		}
		return nil, fmt.Errorf("get stock settings: %w", err)
	}
	return stored, nil
}

// ActiveMethod returns the costing method to pass into valuation.
func (s *SettingsService) ActiveMethod(ctx context.Context) (Method, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return st.Method, nil
}

// SetMethod validates and stores a new costing method.
func (s *SettingsService) SetMethod(ctx context.Context, raw string) (*Settings, error) {
	method, err := ParseMethod(raw)
	if err != nil {
		return nil, err
	}

	st := &Settings{Method: method, UpdatedAt: s.now().UTC()}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save stock settings: %w", err)
	}

	logger.Info(ctx, "valuation method changed", "method", method)
	return st, nil
}
