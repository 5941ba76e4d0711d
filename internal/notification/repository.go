package notification

import "context"

type Repository interface {
	// CreateMany persists the batch. An empty batch is a no-op.
	CreateMany(ctx context.Context, ns []*Notification) error
	// ListByUser returns the user's notifications newest first.
	ListByUser(ctx context.Context, userID string) ([]*Notification, error)
	// MarkAllRead flags every unread notification of the user and returns
	// how many changed.
	MarkAllRead(ctx context.Context, userID string) (int, error)
}
