// Package revocation keeps the set of refresh tokens that were logged out.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Registry records revoked tokens until they would have expired anyway.
// Implementations must be safe for concurrent use.
type Registry interface {
	// Revoke marks token as revoked. A zero expiresAt keeps the entry
	// forever; an expiresAt in the past is a no-op.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
