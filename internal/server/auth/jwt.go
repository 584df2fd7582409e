// Package auth signs and verifies the HS256 tokens handed out by the API.
//
// Access and refresh tokens share one claims shape and are told apart by the
// role claim; both carry their expiry in the standard exp field.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role tags what a token may be used for.
type Role string

const (
	RoleAccess  Role = "access"
	RoleRefresh Role = "refresh"
)

// Claims is the signed payload of every token.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// ExpiresAtTime returns the exp claim, or the zero time when it is absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken string
	RefreshTTL   time.Duration
}

// Codec signs and verifies tokens with one process-wide secret. It holds no
// mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock replaces time.Now, for both issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty signing secret")
	}
	c := &Codec{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClaims builds claims for email that expire ttl from now.
func (c *Codec) NewClaims(email string, role Role, ttl time.Duration) Claims {
	now := c.now()
	return Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (c *Codec) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Issue mints a fresh access/refresh pair for email.
func (c *Codec) Issue(email string, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	access, err := c.Sign(c.NewClaims(email, RoleAccess, accessTTL))
	if err != nil {
		return nil, err
	}
	refresh, err := c.Sign(c.NewClaims(email, RoleRefresh, refreshTTL))
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		AccessTTL:    accessTTL,
		RefreshToken: refresh,
		RefreshTTL:   refreshTTL,
	}, nil
}

// Verify checks the signature, the expiry and the role of tokenString.
// It returns common.ErrTokenExpired for a correctly signed token past its
// expiry and common.ErrInvalidToken for every other failure.
func (c *Codec) Verify(tokenString string, role Role) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Role != role || claims.Email == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Decode reads the claims without checking signature or expiry. The result
// must not be used for authorization decisions.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}
