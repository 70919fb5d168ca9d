package rbac

import (
	"context"
	"fmt"
	"strings"
)

// Service validates inputs before delegating to the Store.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	return &Service{store: store}, nil
}

func (s *Service) CreateRole(ctx context.Context, name, description, createdBy string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrInvalidInput)
	}
	r := &Role{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   strings.TrimSpace(createdBy),
	}
	if err := s.store.CreateRole(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) UpdateRole(ctx context.Context, id, name, description string) error {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return fmt.Errorf("%w: role id and name are required", ErrInvalidInput)
	}
	return s.store.UpdateRole(ctx, id, name, strings.TrimSpace(description))
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.store.ListRoles(ctx)
}

func (s *Service) CreatePermission(ctx context.Context, name, description string) (*Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: permission name is required", ErrInvalidInput)
	}
	p := &Permission{Name: name, Description: strings.TrimSpace(description)}
	if err := s.store.CreatePermission(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]*Permission, error) {
	return s.store.ListPermissions(ctx)
}

func (s *Service) Grant(ctx context.Context, roleID, permissionID string) error {
	roleID = strings.TrimSpace(roleID)
	permissionID = strings.TrimSpace(permissionID)
	if roleID == "" || permissionID == "" {
		return fmt.Errorf("%w: role id and permission id are required", ErrInvalidInput)
	}
	return s.store.Grant(ctx, roleID, permissionID)
}

func (s *Service) PermissionsForRole(ctx context.Context, roleID string) ([]*Permission, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, fmt.Errorf("%w: role id is required", ErrInvalidInput)
	}
	return s.store.PermissionsForRole(ctx, roleID)
}
