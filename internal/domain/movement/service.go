package movement

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/clock"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain"
	"stockledger/internal/domain/ledger"
	"stockledger/pkg/logger"
)

// Service provides business operations for movements.
type Service struct {
	repo    Repository
	engine  *Engine
	methods MethodSource
	policy  CancelPolicy
	txm     tx.Manager
	clock   clock.Clock
	hooks   *domain.HookRegistry[*Movement]
}

// NewService creates a movement service. policy is fixed for the
// lifetime of the service.
func NewService(
	repo Repository,
	engine *Engine,
	methods MethodSource,
	policy CancelPolicy,
	txm tx.Manager,
	clk clock.Clock,
) *Service {
	return &Service{
		repo:    repo,
		engine:  engine,
		methods: methods,
		policy:  policy,
		txm:     txm,
		clock:   clk,
		hooks:   domain.NewHookRegistry[*Movement](),
	}
}

// Hooks returns the hook registry for external registration.
func (s *Service) Hooks() *domain.HookRegistry[*Movement] {
	return s.hooks
}

// Policy returns the configured cancel policy.
func (s *Service) Policy() CancelPolicy {
	return s.policy
}

// Create stores a new draft movement.
func (s *Service) Create(ctx context.Context, m *Movement) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.create(ctx, m)
	})
}

func (s *Service) create(ctx context.Context, m *Movement) error {
	if id.IsNil(m.ID) {
		base := New(m.Type, m.PostedAt, s.clock.Now()).BaseDocument
		m.BaseDocument = base
	}
	m.Status = StatusDraft
	m.ConfirmedAt, m.CancelledAt = nil, nil
	m.Renumber()

	if err := s.hooks.Run(ctx, domain.BeforeSave, m); err != nil {
		return err
	}
	if err := m.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	if err := s.hooks.Run(ctx, domain.AfterCreate, m); err != nil {
		return err
	}

	logger.Info(ctx, "movement created", "movement_id", m.ID, "type", m.Type, "lines", len(m.Lines))
	return nil
}

// CreateAndConfirm stores a movement and confirms it in one transaction.
// Nothing is stored when confirmation fails.
func (s *Service) CreateAndConfirm(ctx context.Context, m *Movement) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.create(ctx, m); err != nil {
			return err
		}
		posted, err := s.confirm(ctx, m)
		if err != nil {
			return err
		}
		entries = posted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByID retrieves a movement with lines.
func (s *Service) GetByID(ctx context.Context, movementID id.ID) (*Movement, error) {
	return s.repo.GetByID(ctx, movementID)
}

// List retrieves movements with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Movement], error) {
	filter.Page = filter.Page.Normalize()
	return s.repo.List(ctx, filter)
}

// Update replaces the type, posting time and lines of a draft movement.
// A non-zero Version must match the stored one.
func (s *Service) Update(ctx context.Context, m *Movement) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, m.ID)
		if err != nil {
			return err
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		if m.Version != 0 && m.Version != current.Version {
			return apperror.NewConcurrentModification("movement", m.ID)
		}

		current.Type = m.Type
		current.PostedAt = m.PostedAt
		current.Lines = m.Lines
		current.Renumber()

		if err := s.hooks.Run(ctx, domain.BeforeSave, current); err != nil {
			return err
		}
		if err := current.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("update movement: %w", err)
		}

		*m = *current
		return nil
	})
}

// Validate runs the pre-confirm checks without posting anything.
func (s *Service) Validate(ctx context.Context, movementID id.ID) error {
	m, err := s.repo.GetByID(ctx, movementID)
	if err != nil {
		return err
	}
	if err := m.CanConfirm(); err != nil {
		return err
	}
	return s.engine.Validate(ctx, m)
}

// Confirm posts a draft movement to the ledger.
func (s *Service) Confirm(ctx context.Context, movementID id.ID) (*Movement, []ledger.Entry, error) {
	var (
		m       *Movement
		entries []ledger.Entry
	)
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		entries, err = s.confirm(ctx, m)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return m, entries, nil
}

func (s *Service) confirm(ctx context.Context, m *Movement) ([]ledger.Entry, error) {
	if err := s.hooks.Run(ctx, domain.BeforeConfirm, m); err != nil {
		return nil, err
	}

	method, err := s.methods.ActiveMethod(ctx)
	if err != nil {
		return nil, fmt.Errorf("active valuation method: %w", err)
	}

	entries, err := s.engine.Confirm(ctx, m, method)
	if err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.AfterConfirm, m); err != nil {
		return nil, err
	}
	return entries, nil
}

// Cancel undoes a confirmed movement using the configured policy.
func (s *Service) Cancel(ctx context.Context, movementID id.ID) (*Movement, []ledger.Entry, error) {
	var (
		m       *Movement
		entries []ledger.Entry
	)
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetByID(ctx, movementID)
		if err != nil {
			return err
		}

		method, err := s.methods.ActiveMethod(ctx)
		if err != nil {
			return fmt.Errorf("active valuation method: %w", err)
		}

		entries, err = s.engine.Cancel(ctx, m, method, s.policy)
		if err != nil {
			return err
		}
		return s.hooks.Run(ctx, domain.AfterCancel, m)
	})
	if err != nil {
		return nil, nil, err
	}
	return m, entries, nil
}

// Entries returns the ledger entries recorded for a movement.
func (s *Service) Entries(ctx context.Context, movementID id.ID) ([]ledger.Entry, error) {
	if _, err := s.repo.GetByID(ctx, movementID); err != nil {
		return nil, err
	}
	return s.engine.Entries(ctx, movementID)
}
