package task

import "context"

// Page bounds a Find call. A zero Limit returns everything after Skip.
type Page struct {
	Skip  int
	Limit int
}

// Repository persists tasks. Find returns tasks newest first.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Save(ctx context.Context, t *Task) error
	Find(ctx context.Context, f Filter, p Page) ([]*Task, error)
	Count(ctx context.Context, f Filter) (int, error)
}
