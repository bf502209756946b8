package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jooba/jooba/internal/auth"
	"github.com/jooba/jooba/internal/model"
)

// LocalProvider is an in-process identity provider for development and
// tests. Accounts live in memory, passwords are argon2id-hashed and
// tokens are opaque random strings. Never use it in production.
type LocalProvider struct {
	mu       sync.RWMutex
	byUID    map[string]*localAccount
	byEmail  map[string]string // email -> uid
	sessions map[string]string // token -> uid
}

type localAccount struct {
	uid          string
	email        string
	passwordHash string
}

// NewLocalProvider creates an empty local provider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{
		byUID:    make(map[string]*localAccount),
		byEmail:  make(map[string]string),
		sessions: make(map[string]string),
	}
}

// CreateUser registers a new account.
func (p *LocalProvider) CreateUser(ctx context.Context, email, password string) (*model.UserProfile, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[email]; exists {
		return nil, ErrEmailTaken
	}

	acct := &localAccount{
		uid:          uuid.New().String(),
		email:        email,
		passwordHash: hash,
	}
	p.byUID[acct.uid] = acct
	p.byEmail[email] = acct.uid

	return &model.UserProfile{UID: acct.uid, Email: acct.email}, nil
}

// SignIn exchanges credentials for a session token. This mirrors the
// provider-side client SDK flow that real deployments use; it exists so
// development runs and end-to-end tests can obtain tokens.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	p.mu.RLock()
	uid, ok := p.byEmail[email]
	var hash string
	if ok {
		hash = p.byUID[uid].passwordHash
	}
	p.mu.RUnlock()

	if !ok {
		return "", ErrInvalidToken
	}

	match, err := auth.VerifyPassword(password, hash)
	if err != nil || !match {
		return "", ErrInvalidToken
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.sessions[token] = uid
	p.mu.Unlock()

	return token, nil
}

// Verify resolves a session token to its subject.
func (p *LocalProvider) Verify(ctx context.Context, token string) (*model.UserProfile, error) {
	if err := auth.ValidateTokenFormat(token); err != nil {
		return nil, ErrInvalidToken
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	uid, ok := p.sessions[token]
	if !ok {
		return nil, ErrInvalidToken
	}

	acct := p.byUID[uid]
	return &model.UserProfile{UID: acct.uid, Email: acct.email}, nil
}

// Profile fetches the account record for a uid.
func (p *LocalProvider) Profile(ctx context.Context, uid string) (*model.UserProfile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	acct, ok := p.byUID[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &model.UserProfile{UID: acct.uid, Email: acct.email}, nil
}

// RevokeTokens drops every session for a subject.
func (p *LocalProvider) RevokeTokens(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byUID[uid]; !ok {
		return ErrUserNotFound
	}

	for token, subject := range p.sessions {
		if subject == uid {
			delete(p.sessions, token)
		}
	}
	return nil
}

// Ping always succeeds; the provider is in-process.
func (p *LocalProvider) Ping(ctx context.Context) error {
	return nil
}
