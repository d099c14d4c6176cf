package memory

import (
	"context"
	"sort"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/movement"
)

var _ movement.Repository = (*MovementRepo)(nil)

// MovementRepo implements movement.Repository.
type MovementRepo struct {
	s *Store
}

func cloneMovement(m *movement.Movement) *movement.Movement {
	cp := *m
	cp.Lines = append([]movement.Line{}, m.Lines...)
	return &cp
}

// Create implements movement.Repository.
func (r *MovementRepo) Create(ctx context.Context, m *movement.Movement) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.movements[m.ID]; ok {
			return apperror.NewDuplicate("movement", "id", m.ID.String())
		}
		d.movements[m.ID] = cloneMovement(m)
		return nil
	})
}

// GetByID implements movement.Repository.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*movement.Movement, error) {
	var out *movement.Movement
	err := r.s.read(ctx, func(d *data) error {
		m, ok := d.movements[movementID]
		if !ok {
			return apperror.NewNotFound("movement", movementID.String())
		}
		out = cloneMovement(m)
		return nil
	})
	return out, err
}

// Update implements movement.Repository.
func (r *MovementRepo) Update(ctx context.Context, m *movement.Movement) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.movements[m.ID]
		if !ok {
			return apperror.NewNotFound("movement", m.ID.String())
		}
		if stored.Version != m.Version {
			return apperror.NewConcurrentModification("movement", m.ID.String())
		}
		m.Touch(r.s.clock.Now())
		d.movements[m.ID] = cloneMovement(m)
		return nil
	})
}

// List implements movement.Repository.
func (r *MovementRepo) List(ctx context.Context, filter movement.ListFilter) (domain.ListResult[*movement.Movement], error) {
	var all []*movement.Movement
	err := r.s.read(ctx, func(d *data) error {
		for _, m := range d.movements {
			if filter.Matches(m) {
				all = append(all, cloneMovement(m))
			}
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*movement.Movement]{}, err
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})
	return domain.Paginate(all, filter.Page), nil
}
