package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Service validates catalog writes; reads pass straight through.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	return &Service{store: store}, nil
}

// PlanParams carries the writable plan fields.
type PlanParams struct {
	Name        string
	Description string
	Price       int64
	Active      bool
	Tags        []string
	TrialDays   *int32
}

func (s *Service) CreatePlan(ctx context.Context, p PlanParams) (*Plan, error) {
	if err := validatePlan(p); err != nil {
		return nil, err
	}
	plan := &Plan{
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Price:       p.Price,
		Active:      p.Active,
		Tags:        dedupeTags(p.Tags),
		TrialDays:   p.TrialDays,
	}
	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) GetPlan(ctx context.Context, id string) (*Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: plan id is required", ErrInvalidInput)
	}
	return s.store.FindPlan(ctx, id)
}

func (s *Service) ListPlans(ctx context.Context) ([]*Plan, error) {
	return s.store.ListPlans(ctx)
}

func (s *Service) UpdatePlan(ctx context.Context, id string, p PlanParams) (*Plan, error) {
	if err := validatePlan(p); err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Name = strings.TrimSpace(p.Name)
	plan.Description = strings.TrimSpace(p.Description)
	plan.Price = p.Price
	plan.Active = p.Active
	plan.Tags = dedupeTags(p.Tags)
	plan.TrialDays = p.TrialDays
	if err := s.store.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ResourceParams carries the writable resource fields.
type ResourceParams struct {
	PlanID      string
	Name        string
	Description string
	Max         int64
}

func (s *Service) CreateResource(ctx context.Context, p ResourceParams) (*Resource, error) {
	if err := validateResource(p); err != nil {
		return nil, err
	}
	// The plan must exist before a resource may point at it.
	if _, err := s.store.FindPlan(ctx, p.PlanID); err != nil {
		return nil, err
	}
	res := &Resource{
		PlanID:      p.PlanID,
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Max:         p.Max,
	}
	if err := s.store.CreateResource(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) GetResource(ctx context.Context, id string) (*Resource, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: resource id is required", ErrInvalidInput)
	}
	return s.store.FindResource(ctx, id)
}

func (s *Service) ListResources(ctx context.Context) ([]*Resource, error) {
	return s.store.ListResources(ctx)
}

func (s *Service) ListResourcesForPlan(ctx context.Context, planID string) ([]*Resource, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return nil, fmt.Errorf("%w: plan id is required", ErrInvalidInput)
	}
	return s.store.ListResourcesForPlan(ctx, planID)
}

func (s *Service) UpdateResource(ctx context.Context, id string, p ResourceParams) (*Resource, error) {
	if err := validateResource(p); err != nil {
		return nil, err
	}
	res, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	res.PlanID = p.PlanID
	res.Name = strings.TrimSpace(p.Name)
	res.Description = strings.TrimSpace(p.Description)
	res.Max = p.Max
	if err := s.store.UpdateResource(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func validatePlan(p PlanParams) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: plan name is required", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if p.TrialDays != nil && *p.TrialDays <= 0 {
		return fmt.Errorf("%w: trial_days must be positive when set", ErrInvalidInput)
	}
	return nil
}

func validateResource(p ResourceParams) error {
	if strings.TrimSpace(p.PlanID) == "" {
		return fmt.Errorf("%w: plan id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: resource name is required", ErrInvalidInput)
	}
	if p.Max < 0 {
		return fmt.Errorf("%w: max must not be negative", ErrInvalidInput)
	}
	return nil
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
