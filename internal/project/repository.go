package project

import "context"

type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	// List returns projects newest first.
	List(ctx context.Context) ([]*Project, error)
	Save(ctx context.Context, p *Project) error
}
