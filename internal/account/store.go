package account

import "context"

// Store describes persistence operations required by the account subsystem.
type Store interface {
	Create(ctx context.Context, a *Account) error
	Find(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	UpdateProfile(ctx context.Context, id, username, name, email string) error
	UpdateCredential(ctx context.Context, id, credentialHash string) error

	FindSysByUsername(ctx context.Context, username string) (*SysAccount, error)
}
