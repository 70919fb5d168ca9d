package catalog

import "context"

// Store describes persistence for the plan catalog.
type Store interface {
	CreatePlan(ctx context.Context, p *Plan) error
	FindPlan(ctx context.Context, id string) (*Plan, error)
	ListPlans(ctx context.Context) ([]*Plan, error)
	UpdatePlan(ctx context.Context, p *Plan) error

	CreateResource(ctx context.Context, r *Resource) error
	FindResource(ctx context.Context, id string) (*Resource, error)
	ListResources(ctx context.Context) ([]*Resource, error)
	ListResourcesForPlan(ctx context.Context, planID string) ([]*Resource, error)
	UpdateResource(ctx context.Context, r *Resource) error
}
