package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/server/auth"
	"github.com/dmitrijs2005/movieapi/internal/server/revocation"
)

// TTLs are the lifetimes a client asked for. Zero or negative values fall
// back to the configured defaults.
type TTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

// SessionService runs the register, login, refresh and logout flows.
type SessionService struct {
	credentials *CredentialStore
	codec       *auth.Codec
	registry    revocation.Registry
	defaults    TTLs
}

func NewSessionService(creds *CredentialStore, codec *auth.Codec, registry revocation.Registry, defaults TTLs) *SessionService {
	return &SessionService{
		credentials: creds,
		codec:       codec,
		registry:    registry,
		defaults:    defaults,
	}
}

func (s *SessionService) ttls(req TTLs) TTLs {
	if req.Access <= 0 {
		req.Access = s.defaults.Access
	}
	if req.Refresh <= 0 {
		req.Refresh = s.defaults.Refresh
	}
	return req
}

func (s *SessionService) Register(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return common.ErrIncompleteRequest
	}
	return s.credentials.Create(ctx, email, password)
}

// Login checks the password and issues a fresh pair. An unknown email and a
// wrong password fail with different errors.
func (s *SessionService) Login(ctx context.Context, email, password string, req TTLs) (*auth.TokenPair, error) {
	if email == "" || password == "" {
		return nil, common.ErrIncompleteRequest
	}

	cred, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	if !s.credentials.VerifyPassword(password, cred.PasswordHash) {
		return nil, common.ErrPasswordMismatch
	}

	return s.issue(cred.Email, req)
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token stays usable until it expires or is logged out.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string, req TTLs) (*auth.TokenPair, error) {
	claims, err := s.verifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.registry.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if revoked {
		return nil, common.ErrInvalidToken
	}

	return s.issue(claims.Email, req)
}

// Logout revokes refreshToken. Logging out an already revoked token that has
// not yet expired succeeds again.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.verifyRefresh(refreshToken)
	if err != nil {
		return err
	}

	if err := s.registry.Revoke(ctx, refreshToken, claims.ExpiresAtTime()); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return nil
}

func (s *SessionService) verifyRefresh(refreshToken string) (*auth.Claims, error) {
	if refreshToken == "" {
		return nil, common.ErrIncompleteRequest
	}
	return s.codec.Verify(refreshToken, auth.RoleRefresh)
}

func (s *SessionService) issue(email string, req TTLs) (*auth.TokenPair, error) {
	ttl := s.ttls(req)
	pair, err := s.codec.Issue(email, ttl.Access, ttl.Refresh)
	if err != nil {
		return nil, fmt.Errorf("%w: error generating token pair: %v", common.ErrorInternal, err)
	}
	return pair, nil
}
