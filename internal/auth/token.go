package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"subcore.org/internal/account"
	"subcore.org/internal/entitlement"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
	defaultIssuer     = "subcore"
)

// AccessClaims is the signed payload of an access token. Ordinary accounts
// carry their entitlement snapshot; system actors carry the is_sys flag and an
// empty resource list instead.
type AccessClaims struct {
	AccountID    string                    `json:"id"`
	Username     string                    `json:"username"`
	IsSys        bool                      `json:"is_sys,omitempty"`
	Subscription *entitlement.Subscription `json:"subscription,omitempty"`
	Resources    []entitlement.Resource    `json:"resources"`
	jwt.RegisteredClaims
}

// RefreshClaims is the narrow payload of a refresh token.
type RefreshClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Principal is a tagged variant: either an ordinary account with its snapshot
// or a system actor with none. The constructors are the only way to build one,
// so an ordinary access token cannot be minted without its entitlement.
type Principal struct {
	system   bool
	id       string
	username string
	email    string
	snapshot entitlement.Snapshot
}

// AccountPrincipal builds the ordinary variant.
func AccountPrincipal(a *account.Account, snap entitlement.Snapshot) Principal {
	return Principal{
		id:       a.ID,
		username: a.Username,
		email:    a.Email,
		snapshot: snap,
	}
}

// SystemPrincipal builds the administrative variant.
func SystemPrincipal(sys *account.SysAccount) Principal {
	return Principal{
		system:   true,
		id:       sys.ID,
		username: sys.Username,
	}
}

func (p Principal) IsSystem() bool   { return p.system }
func (p Principal) ID() string       { return p.id }
func (p Principal) Username() string { return p.username }

// Codec builds, signs and validates the two token kinds against two
// independent keys, so compromise of one key cannot forge the other and a
// refresh token can never be replayed as an access token.
type Codec struct {
	accessKey  []byte
	refreshKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// CodecOption configures Codec behavior.
type CodecOption func(*Codec)

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			c.issuer = issuer
		}
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec from the two injected signing secrets.
func NewCodec(accessSecret, refreshSecret string, opts ...CodecOption) (*Codec, error) {
	accessSecret = strings.TrimSpace(accessSecret)
	refreshSecret = strings.TrimSpace(refreshSecret)
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("%w: both signing secrets are required", ErrInvalidInput)
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrInvalidInput)
	}
	c := &Codec{
		accessKey:  []byte(accessSecret),
		refreshKey: []byte(refreshSecret),
		issuer:     defaultIssuer,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MintAccess signs an access token for the principal.
func (c *Codec) MintAccess(p Principal) (string, time.Time, error) {
	now := c.now().UTC()
	exp := now.Add(c.accessTTL)

	claims := AccessClaims{
		AccountID: p.id,
		Username:  p.username,
		Resources: []entitlement.Resource{},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   p.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	if p.system {
		claims.IsSys = true
		claims.Subject = p.username
	} else {
		claims.Subscription = p.snapshot.Subscription
		if len(p.snapshot.Resources) > 0 {
			claims.Resources = p.snapshot.Resources
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.accessKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// MintRefresh signs a refresh token carrying only the username.
func (c *Codec) MintRefresh(username string) (string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", time.Time{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	now := c.now().UTC()
	exp := now.Add(c.refreshTTL)

	claims := RefreshClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.refreshKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, exp, nil
}

// VerifyAccess checks signature and expiry against the access key. Every
// failure collapses to ErrUnauthorized to avoid oracle leaks.
func (c *Codec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(token, claims, c.accessKey); err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// VerifyRefresh is symmetric to VerifyAccess, against the refresh key.
func (c *Codec) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(token, claims, c.refreshKey); err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (c *Codec) verify(token string, claims jwt.Claims, key []byte) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrUnauthorized
		}
		return key, nil
	},
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return ErrUnauthorized
	}
	return nil
}
