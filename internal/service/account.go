package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jooba/jooba/internal/identity"
	"github.com/jooba/jooba/internal/metrics"
	"github.com/jooba/jooba/internal/model"
	"github.com/jooba/jooba/internal/store"
)

// Account errors.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrEmailTaken         = errors.New("email already registered")
)

// AccountService fronts the identity provider for registration, login
// and logout. No account state is kept here; the provider owns it all.
type AccountService struct {
	provider identity.Provider
	catalog  store.Catalog
	metrics  metrics.Recorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(provider identity.Provider, catalog store.Catalog, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		provider: provider,
		catalog:  catalog,
		metrics:  recorder,
	}
}

// Register creates a new account with the identity provider.
func (s *AccountService) Register(ctx context.Context, email, password string) (*model.UserProfile, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	profile, err := s.provider.CreateUser(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.metrics.IncUserRegistered()

	return profile, nil
}

// LoginResult is a verified caller's profile plus their owned products.
type LoginResult struct {
	Profile  *model.UserProfile
	Products []*model.Product
}

// Login verifies a token and returns the caller's profile together with
// the products they own, in catalog order.
func (s *AccountService) Login(ctx context.Context, token string) (*LoginResult, error) {
	caller, err := s.verify(ctx, token)
	if err != nil {
		return nil, err
	}

	all, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return &LoginResult{
		Profile:  caller,
		Products: filterByOwner(all, caller.Email),
	}, nil
}

// Logout revokes every refresh token of the caller's subject.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	caller, err := s.verify(ctx, token)
	if err != nil {
		return err
	}

	if err := s.provider.RevokeTokens(ctx, caller.UID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

func (s *AccountService) verify(ctx context.Context, token string) (*model.UserProfile, error) {
	if token == "" {
		s.metrics.IncAuthFailure()
		return nil, ErrUnauthenticated
	}

	profile, err := s.provider.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			s.metrics.IncAuthFailure()
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("verify caller: %w", err)
	}

	if profile.Email == "" {
		full, err := s.provider.Profile(ctx, profile.UID)
		if err != nil {
			return nil, fmt.Errorf("resolve caller email: %w", err)
		}
		profile = full
	}
	return profile, nil
}
