// Package auth orchestrates credential verification and the issuance,
// refresh and validation of signed access and refresh tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subcore.org/internal/account"
	"subcore.org/internal/entitlement"
	"subcore.org/internal/session"
)

// AccountSource resolves accounts and system actors for credential checks.
type AccountSource interface {
	Get(ctx context.Context, username string) (*account.Account, error)
	GetByID(ctx context.Context, id string) (*account.Account, error)
	GetSys(ctx context.Context, username string) (*account.SysAccount, error)
}

// EntitlementSource assembles the snapshot embedded into access tokens.
type EntitlementSource interface {
	Snapshot(ctx context.Context, accountID string) (entitlement.Snapshot, error)
}

// Service runs the login and refresh flows.
type Service struct {
	codec        *Codec
	accounts     AccountSource
	entitlements EntitlementSource
	sessions     session.Registry
}

func NewService(codec *Codec, accounts AccountSource, entitlements EntitlementSource, sessions session.Registry) (*Service, error) {
	if codec == nil || accounts == nil || entitlements == nil || sessions == nil {
		return nil, fmt.Errorf("%w: codec, account source, entitlement source and session registry are required", ErrInvalidInput)
	}
	return &Service{
		codec:        codec,
		accounts:     accounts,
		entitlements: entitlements,
		sessions:     sessions,
	}, nil
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AccessGrant is the result of a refresh: a new access token only. The
// refresh token stays as issued until replaced by the next login.
type AccessGrant struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

// Login verifies the credential, snapshots the account's entitlement into a
// fresh access token and replaces the account's refresh session. An unknown
// username and a wrong secret both come back as ErrInvalidCredential.
func (s *Service) Login(ctx context.Context, username, secret string) (*TokenPair, error) {
	acc, err := s.accounts.Get(ctx, username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) || errors.Is(err, account.ErrInvalidInput) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	ok, err := account.VerifySecret(secret, acc.CredentialHash)
	if err != nil {
		return nil, fmt.Errorf("verify credential: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredential
	}

	snap, err := s.entitlements.Snapshot(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("assemble entitlement: %w", err)
	}
	access, accessExp, err := s.codec.MintAccess(AccountPrincipal(acc, snap))
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.codec.MintRefresh(acc.Username)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Replace(ctx, acc.ID, refresh); err != nil {
		return nil, fmt.Errorf("store refresh session: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a valid, still-registered refresh token for a new access
// token with a freshly assembled snapshot. Any failure along the way is
// ErrUnauthorized; the caller learns nothing about which check failed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AccessGrant, error) {
	if _, err := s.codec.VerifyRefresh(refreshToken); err != nil {
		return nil, ErrUnauthorized
	}
	accountID, err := s.sessions.Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrUnknownToken) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	// The registry row is authoritative for identity; the token's username may
	// be stale after a profile rename.
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	snap, err := s.entitlements.Snapshot(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("assemble entitlement: %w", err)
	}
	access, accessExp, err := s.codec.MintAccess(AccountPrincipal(acc, snap))
	if err != nil {
		return nil, err
	}
	return &AccessGrant{AccessToken: access, AccessExpiresAt: accessExp}, nil
}

// SysLogin verifies a system actor's credential and issues an access token
// flagged is_sys. System actors get no refresh token and no session record;
// they log in again when the access token expires.
func (s *Service) SysLogin(ctx context.Context, username, secret string) (*AccessGrant, error) {
	sys, err := s.accounts.GetSys(ctx, username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) || errors.Is(err, account.ErrInvalidInput) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	ok, err := account.VerifySecret(secret, sys.CredentialHash)
	if err != nil {
		return nil, fmt.Errorf("verify credential: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredential
	}
	access, accessExp, err := s.codec.MintAccess(SystemPrincipal(sys))
	if err != nil {
		return nil, err
	}
	return &AccessGrant{AccessToken: access, AccessExpiresAt: accessExp}, nil
}

// VerifyAccess exposes access token validation to the transport layer.
func (s *Service) VerifyAccess(token string) (*AccessClaims, error) {
	return s.codec.VerifyAccess(token)
}
