// Package rbac keeps the role and permission records managed through the
// administrative surface. Records only; token validation decides access, and
// the is_sys flag gates the administrative routes.
package rbac

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("rbac: not found")
	ErrConflict     = errors.New("rbac: conflict")
	ErrInvalidInput = errors.New("rbac: invalid input")
)

// Role is a named grouping of permissions.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Permission is a named capability that roles can carry.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store describes role and permission persistence.
type Store interface {
	CreateRole(ctx context.Context, r *Role) error
	UpdateRole(ctx context.Context, id, name, description string) error
	ListRoles(ctx context.Context) ([]*Role, error)

	CreatePermission(ctx context.Context, p *Permission) error
	ListPermissions(ctx context.Context) ([]*Permission, error)

	Grant(ctx context.Context, roleID, permissionID string) error
	PermissionsForRole(ctx context.Context, roleID string) ([]*Permission, error)
}
