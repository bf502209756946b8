// Package identity defines the contract with the hosted identity provider
// and the implementations the application can be wired with.
//
// Token issuance and verification cryptography live entirely on the
// provider side; this package only consumes the provider's API.
package identity

import (
	"context"
	"errors"

	"github.com/jooba/jooba/internal/model"
)

var (
	// ErrInvalidToken indicates the token is missing, malformed, expired
	// or revoked. Any provider-side verification failure maps here so the
	// caller always fails closed.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotFound indicates the subject does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates an account with the email already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// Verifier resolves opaque tokens into stable identities.
type Verifier interface {
	// Verify checks a token and returns the subject. The returned
	// profile's Email may be empty when the token payload lacks the
	// claim; callers fall back to Profile, at most once per request.
	Verify(ctx context.Context, token string) (*model.UserProfile, error)

	// Profile fetches the account record for a verified subject.
	Profile(ctx context.Context, uid string) (*model.UserProfile, error)
}

// Provider is the full identity-provider contract, adding account
// lifecycle operations to token verification.
type Provider interface {
	Verifier

	// CreateUser registers a new account with the provider.
	CreateUser(ctx context.Context, email, password string) (*model.UserProfile, error)

	// RevokeTokens invalidates all refresh tokens for a subject.
	RevokeTokens(ctx context.Context, uid string) error
}
