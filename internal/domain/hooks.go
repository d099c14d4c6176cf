package domain

import "context"

// HookEvent represents a lifecycle point.
type HookEvent string

const (
	BeforeSave    HookEvent = "before_save"
	BeforeConfirm HookEvent = "before_confirm"
	AfterCreate   HookEvent = "after_create"
	AfterConfirm  HookEvent = "after_confirm"
	AfterCancel   HookEvent = "after_cancel"
)

// Hook is a function that runs at a lifecycle point.
// Hooks run inside the caller's transaction when there is one.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the event. Hooks run in registration order.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes the hooks of an event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
