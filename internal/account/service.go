package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service provides account management on top of a Store.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	return &Service{store: store}, nil
}

// CreateParams carries the fields required to register an account.
type CreateParams struct {
	Username string
	Name     string
	Email    string
	Secret   string
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*Account, error) {
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	hash, err := HashSecret(p.Secret)
	if err != nil {
		return nil, err
	}
	a := &Account{
		Username:       p.Username,
		Name:           strings.TrimSpace(p.Name),
		Email:          p.Email,
		CredentialHash: hash,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, username string) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	return s.store.FindByUsername(ctx, username)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.store.List(ctx)
}

// UpdateParams carries a profile update. A changed username is checked for
// collisions before the write.
type UpdateParams struct {
	Username string
	Name     string
	Email    string
}

func (s *Service) Update(ctx context.Context, username string, p UpdateParams) (*Account, error) {
	current, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" {
		p.Username = current.Username
	}
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	if p.Email == "" {
		p.Email = current.Email
	}
	if p.Username != current.Username {
		if _, err := s.store.FindByUsername(ctx, p.Username); err == nil {
			return nil, fmt.Errorf("%w: username %s is taken", ErrConflict, p.Username)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if err := s.store.UpdateProfile(ctx, current.ID, p.Username, strings.TrimSpace(p.Name), p.Email); err != nil {
		return nil, err
	}
	current.Username = p.Username
	current.Name = strings.TrimSpace(p.Name)
	current.Email = p.Email
	return current, nil
}

// ChangeSecret verifies the old secret before storing a hash of the new one.
func (s *Service) ChangeSecret(ctx context.Context, username, oldSecret, newSecret string) error {
	a, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	ok, err := VerifySecret(oldSecret, a.CredentialHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredential
	}
	hash, err := HashSecret(newSecret)
	if err != nil {
		return err
	}
	return s.store.UpdateCredential(ctx, a.ID, hash)
}

func (s *Service) GetSys(ctx context.Context, username string) (*SysAccount, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	return s.store.FindSysByUsername(ctx, username)
}
