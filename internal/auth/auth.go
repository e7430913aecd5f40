// Package auth resolves bearer tokens issued by the hosted auth provider to user
// identities, and creates accounts through the provider's admin API.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned for missing, malformed, expired or rejected tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the verified caller.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Verifier resolves a bearer token to an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
