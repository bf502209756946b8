// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jooba/jooba/internal/identity"
	"github.com/jooba/jooba/internal/metrics"
	"github.com/jooba/jooba/internal/model"
	"github.com/jooba/jooba/internal/store"
)

// Service errors.
var (
	ErrUnauthenticated = errors.New("missing or invalid token")
	ErrForbidden       = errors.New("caller does not own this product")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyCatalog    = errors.New("no products in catalog")
	ErrMissingQuery    = errors.New("search query is required")
	ErrMissingCategory = errors.New("category name is required")
	ErrMissingFields   = errors.New("product requires name, price, category and description")
)

// CatalogService enforces product ownership and shape invariants that
// the backing store itself does not. It is stateless between requests:
// every operation starts from a fresh store read, and concurrent
// read-then-write sequences keep the store's last-write-wins semantics.
type CatalogService struct {
	catalog store.Catalog
	ids     identity.Verifier
	metrics metrics.Recorder
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalog store.Catalog, ids identity.Verifier, recorder metrics.Recorder) *CatalogService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CatalogService{
		catalog: catalog,
		ids:     ids,
		metrics: recorder,
	}
}

// Create validates a draft, stamps ownership and timestamps from the
// authenticated caller and stores the product under a generated id.
// Any id, owner or timestamp the caller supplied is ignored.
func (s *CatalogService) Create(ctx context.Context, token string, draft *model.ProductDraft) (*model.Product, error) {
	caller, err := s.caller(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := draft.Validate(); err != nil {
		return nil, ErrMissingFields
	}

	now := time.Now().UTC()
	product := &model.Product{
		Name:        draft.Name,
		Price:       *draft.Price,
		Category:    draft.Category,
		Description: draft.Description,
		CreatedBy:   caller.Email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.catalog.Push(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("store product: %w", err)
	}
	product.ID = id

	s.metrics.IncProductCreated()

	return product, nil
}

// ListMine returns the caller's products in catalog order. A malformed
// or absent catalog yields an empty list, never an error.
func (s *CatalogService) ListMine(ctx context.Context, token string) ([]*model.Product, error) {
	caller, err := s.caller(ctx, token)
	if err != nil {
		return nil, err
	}

	all, err := s.readCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return filterByOwner(all, caller.Email), nil
}

// ListAll returns the whole catalog verbatim. An empty catalog is a
// distinct outcome from an empty filter result.
func (s *CatalogService) ListAll(ctx context.Context, token string) ([]*model.Product, error) {
	if _, err := s.caller(ctx, token); err != nil {
		return nil, err
	}

	all, err := s.readCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrEmptyCatalog
	}
	return all, nil
}

// Search returns products whose name contains the query,
// case-insensitively. The query is required and checked before any
// store access; zero matches is success.
func (s *CatalogService) Search(ctx context.Context, token, query string) ([]*model.Product, error) {
	if query == "" {
		return nil, ErrMissingQuery
	}

	if _, err := s.caller(ctx, token); err != nil {
		return nil, err
	}

	all, err := s.readCatalog(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.IncSearchPerformed()

	needle := strings.ToLower(query)
	matches := make([]*model.Product, 0)
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// ByCategory returns products whose category matches exactly,
// case-insensitively. No authentication: the listing is read-only and
// non-sensitive.
func (s *CatalogService) ByCategory(ctx context.Context, category string) ([]*model.Product, error) {
	if category == "" {
		return nil, ErrMissingCategory
	}

	all, err := s.readCatalog(ctx)
	if err != nil {
		return nil, err
	}

	wanted := strings.ToLower(category)
	matches := make([]*model.Product, 0)
	for _, p := range all {
		if strings.ToLower(p.Category) == wanted {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Get returns a single product by id.
func (s *CatalogService) Get(ctx context.Context, token, id string) (*model.Product, error) {
	if _, err := s.caller(ctx, token); err != nil {
		return nil, err
	}
	return s.getProduct(ctx, id)
}

// Update applies the recognized mutable fields of a patch to a product
// the caller owns, refreshes updated_at unconditionally (an empty patch
// still bumps it) and returns the persisted result.
func (s *CatalogService) Update(ctx context.Context, token, id string, patch model.ProductPatch) (*model.Product, error) {
	caller, err := s.caller(ctx, token)
	if err != nil {
		return nil, err
	}

	current, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CreatedBy != caller.Email {
		return nil, ErrForbidden
	}

	fields := map[string]any{
		model.FieldUpdatedAt: time.Now().UTC(),
	}
	if patch.Name != nil {
		fields[model.FieldName] = *patch.Name
	}
	if patch.Price != nil {
		fields[model.FieldPrice] = *patch.Price
	}
	if patch.Category != nil {
		fields[model.FieldCategory] = *patch.Category
	}
	if patch.Description != nil {
		fields[model.FieldDescription] = *patch.Description
	}

	if err := s.catalog.Update(ctx, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Deleted between the read and the merge; the store
			// offers no compare-and-swap, so surface the absence.
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.metrics.IncProductUpdated()

	return s.getProduct(ctx, id)
}

// Delete removes a product the caller owns. Deleting the same id twice
// yields success then not-found.
func (s *CatalogService) Delete(ctx context.Context, token, id string) error {
	caller, err := s.caller(ctx, token)
	if err != nil {
		return err
	}

	current, err := s.getProduct(ctx, id)
	if err != nil {
		return err
	}
	if current.CreatedBy != caller.Email {
		return ErrForbidden
	}

	if err := s.catalog.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.metrics.IncProductDeleted()

	return nil
}

// BulkCreate validates every draft up front and rejects the whole batch
// on any missing field. Writes then happen sequentially; a store
// failure mid-batch leaves prior writes committed, which callers accept
// in exchange for the store's lack of multi-key atomicity.
func (s *CatalogService) BulkCreate(ctx context.Context, token string, drafts []*model.ProductDraft) ([]*model.Product, error) {
	caller, err := s.caller(ctx, token)
	if err != nil {
		return nil, err
	}

	for _, draft := range drafts {
		if err := draft.Validate(); err != nil {
			return nil, ErrMissingFields
		}
	}

	created := make([]*model.Product, 0, len(drafts))
	for _, draft := range drafts {
		now := time.Now().UTC()
		product := &model.Product{
			Name:        draft.Name,
			Price:       *draft.Price,
			Category:    draft.Category,
			Description: draft.Description,
			CreatedBy:   caller.Email,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		id, err := s.catalog.Push(ctx, product)
		if err != nil {
			return nil, fmt.Errorf("store product %d of %d: %w", len(created)+1, len(drafts), err)
		}
		product.ID = id

		s.metrics.IncProductCreated()
		created = append(created, product)
	}
	return created, nil
}

// BulkDelete removes the caller-owned subset of ids, silently skipping
// absent or not-owned entries, and returns exactly the ids deleted.
func (s *CatalogService) BulkDelete(ctx context.Context, token string, ids []string) ([]string, error) {
	caller, err := s.caller(ctx, token)
	if err != nil {
		return nil, err
	}

	all, err := s.readCatalog(ctx)
	if err != nil {
		return nil, err
	}

	owned := make(map[string]bool, len(all))
	for _, p := range all {
		if p.CreatedBy == caller.Email {
			owned[p.ID] = true
		}
	}

	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if !owned[id] {
			continue
		}
		if err := s.catalog.Delete(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Raced with another deleter; counts as skipped.
				continue
			}
			return nil, fmt.Errorf("delete product %s: %w", id, err)
		}
		s.metrics.IncProductDeleted()
		deleted = append(deleted, id)
	}
	return deleted, nil
}

// caller verifies a token and resolves the subject's email, fetching
// the profile at most once when the token payload lacks the claim.
// Verification fails closed: every provider failure that is not a clean
// upstream outage maps to ErrUnauthenticated.
func (s *CatalogService) caller(ctx context.Context, token string) (*model.UserProfile, error) {
	if token == "" {
		s.metrics.IncAuthFailure()
		return nil, ErrUnauthenticated
	}

	profile, err := s.ids.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			s.metrics.IncAuthFailure()
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("verify caller: %w", err)
	}

	if profile.Email == "" {
		full, err := s.ids.Profile(ctx, profile.UID)
		if err != nil {
			return nil, fmt.Errorf("resolve caller email: %w", err)
		}
		profile = full
	}
	return profile, nil
}

func (s *CatalogService) getProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("read product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) readCatalog(ctx context.Context) ([]*model.Product, error) {
	start := time.Now()
	all, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	s.metrics.ObserveCatalogReadDuration(time.Since(start))
	return all, nil
}

// filterByOwner keeps the products created by email, preserving order.
func filterByOwner(products []*model.Product, email string) []*model.Product {
	mine := make([]*model.Product, 0)
	for _, p := range products {
		if p != nil && p.CreatedBy == email {
			mine = append(mine, p)
		}
	}
	return mine
}
