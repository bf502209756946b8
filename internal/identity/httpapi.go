package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jooba/jooba/internal/httpclient"
	"github.com/jooba/jooba/internal/model"
)

// HTTPProvider talks to the hosted identity provider's REST API.
// Every non-success response maps to a closed-fail outcome.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider creates a provider client for the given base URL.
// The API key is sent as the `key` query parameter on every call.
func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpclient.New(),
	}
}

// Verify checks a token with the provider.
func (p *HTTPProvider) Verify(ctx context.Context, token string) (*model.UserProfile, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var out model.UserProfile
	err := p.post(ctx, "/v1/tokens:verify", map[string]string{"token": token}, &out)
	if err != nil {
		if isAuthFailure(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return &out, nil
}

// Profile fetches the account record for a uid.
func (p *HTTPProvider) Profile(ctx context.Context, uid string) (*model.UserProfile, error) {
	var out model.UserProfile
	err := p.get(ctx, "/v1/accounts/"+url.PathEscape(uid), &out)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &out, nil
}

// CreateUser registers a new account.
func (p *HTTPProvider) CreateUser(ctx context.Context, email, password string) (*model.UserProfile, error) {
	var out model.UserProfile
	err := p.post(ctx, "/v1/accounts", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		if isConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

// RevokeTokens invalidates all refresh tokens for a subject.
func (p *HTTPProvider) RevokeTokens(ctx context.Context, uid string) error {
	if err := p.post(ctx, "/v1/accounts/"+url.PathEscape(uid)+":revokeTokens", struct{}{}, nil); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// Ping checks provider reachability for readiness probes.
func (p *HTTPProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("/v1/status"), nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("identity provider unhealthy: %s", resp.Status)
	}
	return nil
}

// statusError carries an upstream HTTP status plus the provider message.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("identity provider returned %d", e.status)
	}
	return fmt.Sprintf("identity provider returned %d: %s", e.status, e.message)
}

func isAuthFailure(err error) bool {
	var se *statusError
	return errors.As(err, &se) &&
		(se.status == http.StatusUnauthorized || se.status == http.StatusForbidden || se.status == http.StatusBadRequest)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusNotFound
}

func isConflict(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusConflict
}

func (p *HTTPProvider) endpoint(path string) string {
	u := p.baseURL + path
	if p.apiKey != "" {
		u += "?key=" + url.QueryEscape(p.apiKey)
	}
	return u
}

func (p *HTTPProvider) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return p.do(req, out)
}

func (p *HTTPProvider) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(path), nil)
	if err != nil {
		return err
	}
	return p.do(req, out)
}

func (p *HTTPProvider) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &statusError{status: resp.StatusCode, message: apiErr.Message}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
