package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jooba/jooba/internal/identity"
	"github.com/jooba/jooba/internal/metrics"
	"github.com/jooba/jooba/internal/model"
	"github.com/jooba/jooba/internal/store"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func draft(name string) *model.ProductDraft {
	return &model.ProductDraft{
		Name:        name,
		Price:       floatPtr(10),
		Category:    "Tools",
		Description: "d",
	}
}

type catalogFixture struct {
	svc     *CatalogService
	catalog *store.Memory
	ids     *identity.LocalProvider
	alice   string // token for a@x.com
	bob     string // token for b@x.com
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	ctx := context.Background()

	ids := identity.NewLocalProvider()
	for _, email := range []string{"a@x.com", "b@x.com"} {
		if _, err := ids.CreateUser(ctx, email, "pw123456"); err != nil {
			t.Fatalf("CreateUser(%s): %v", email, err)
		}
	}

	alice, err := ids.SignIn(ctx, "a@x.com", "pw123456")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	bob, err := ids.SignIn(ctx, "b@x.com", "pw123456")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	catalog := store.NewMemory()
	return &catalogFixture{
		svc:     NewCatalogService(catalog, ids, metrics.NewNoop()),
		catalog: catalog,
		ids:     ids,
		alice:   alice,
		bob:     bob,
	}
}

func TestCreate_StampsOwnership(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	created, err := f.svc.Create(ctx, f.alice, draft("Widget"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := f.svc.Get(ctx, f.alice, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CreatedBy != "a@x.com" {
		t.Errorf("expected created_by a@x.com, got %s", got.CreatedBy)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be stamped")
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Error("expected created_at == updated_at on creation")
	}
}

func TestCreate_RejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	cases := []struct {
		name  string
		draft *model.ProductDraft
	}{
		{"nil draft", nil},
		{"missing name", &model.ProductDraft{Price: floatPtr(10), Category: "c", Description: "d"}},
		{"missing price", &model.ProductDraft{Name: "n", Category: "c", Description: "d"}},
		{"missing category", &model.ProductDraft{Name: "n", Price: floatPtr(10), Description: "d"}},
		{"missing description", &model.ProductDraft{Name: "n", Price: floatPtr(10), Category: "c"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, f.alice, tc.draft); !errors.Is(err, ErrMissingFields) {
				t.Errorf("expected ErrMissingFields, got %v", err)
			}
		})
	}
}

func TestCreate_RequiresValidToken(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	for _, token := range []string{"", "jt_bogus"} {
		if _, err := f.svc.Create(ctx, token, draft("Widget")); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestListMine_FiltersByOwner(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	for _, name := range []string{"A1", "A2"} {
		if _, err := f.svc.Create(ctx, f.alice, draft(name)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := f.svc.Create(ctx, f.bob, draft("B1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := f.svc.ListMine(ctx, f.alice)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 products, got %d", len(mine))
	}
	if mine[0].Name != "A1" || mine[1].Name != "A2" {
		t.Errorf("expected catalog order preserved, got %s then %s", mine[0].Name, mine[1].Name)
	}
}

func TestListMine_EmptyCatalogIsNotAnError(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	mine, err := f.svc.ListMine(ctx, f.alice)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("expected empty list, got %d", len(mine))
	}
}

func TestListAll(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	// Empty catalog is a distinct outcome.
	if _, err := f.svc.ListAll(ctx, f.alice); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}

	if _, err := f.svc.Create(ctx, f.alice, draft("Widget")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.bob, draft("Gadget")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := f.svc.ListAll(ctx, f.alice)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected catalog verbatim with 2 products, got %d", len(all))
	}

	if _, err := f.svc.ListAll(ctx, "jt_bogus"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

// trackingCatalog counts store reads to prove validation happens first.
type trackingCatalog struct {
	*store.Memory
	lists int
}

func (c *trackingCatalog) List(ctx context.Context) ([]*model.Product, error) {
	c.lists++
	return c.Memory.List(ctx)
}

func TestSearch_EmptyQueryRejectedBeforeStoreAccess(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	tracked := &trackingCatalog{Memory: f.catalog}
	svc := NewCatalogService(tracked, f.ids, metrics.NewNoop())

	if _, err := svc.Search(ctx, f.alice, ""); !errors.Is(err, ErrMissingQuery) {
		t.Fatalf("expected ErrMissingQuery, got %v", err)
	}
	if tracked.lists != 0 {
		t.Errorf("expected no store access, got %d reads", tracked.lists)
	}
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	if _, err := f.svc.Create(ctx, f.alice, draft("Widget")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.alice, draft("Gadget")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	matches, err := f.svc.Search(ctx, f.alice, "wid")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Widget" {
		t.Errorf("expected Widget for query 'wid', got %+v", matches)
	}

	// Zero matches is success, not an error.
	matches, err = f.svc.Search(ctx, f.alice, "nonexistent")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected zero matches, got %d", len(matches))
	}
}

func TestByCategory(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	d := draft("Widget")
	d.Category = "Tools"
	if _, err := f.svc.Create(ctx, f.alice, d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	d2 := draft("Bread")
	d2.Category = "Food"
	if _, err := f.svc.Create(ctx, f.alice, d2); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// No token involved: category browsing is public.
	matches, err := f.svc.ByCategory(ctx, "tools")
	if err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Widget" {
		t.Errorf("expected case-insensitive exact match, got %+v", matches)
	}

	// Substrings must not match.
	matches, err = f.svc.ByCategory(ctx, "tool")
	if err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected exact matching only, got %d matches", len(matches))
	}

	if _, err := f.svc.ByCategory(ctx, ""); !errors.Is(err, ErrMissingCategory) {
		t.Errorf("expected ErrMissingCategory, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	if _, err := f.svc.Get(ctx, f.alice, "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	created, err := f.svc.Create(ctx, f.alice, draft("Widget"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patch := model.ProductPatch{Name: strPtr("Stolen")}
	if _, err := f.svc.Update(ctx, f.bob, created.ID, patch); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// The product must be untouched after the rejected update.
	got, err := f.svc.Get(ctx, f.alice, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Widget" {
		t.Errorf("product changed after forbidden update: %s", got.Name)
	}
	if !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Error("updated_at changed after forbidden update")
	}
}

func TestUpdate_AppliesOnlyRecognizedFields(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	created, err := f.svc.Create(ctx, f.alice, draft("Widget"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patch := model.ProductPatch{
		Name:  strPtr("Gadget"),
		Price: floatPtr(25),
	}
	updated, err := f.svc.Update(ctx, f.alice, created.ID, patch)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Name != "Gadget" || updated.Price != 25 {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Category != "Tools" || updated.Description != "d" {
		t.Errorf("unpatched fields changed: %+v", updated)
	}
	if updated.CreatedBy != "a@x.com" {
		t.Errorf("created_by must be immutable, got %s", updated.CreatedBy)
	}
	if updated.ID != created.ID {
		t.Errorf("id must be immutable, got %s", updated.ID)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected updated_at to be refreshed")
	}
}

func TestUpdate_EmptyPatchStillRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	created, err := f.svc.Create(ctx, f.alice, draft("Widget"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	updated, err := f.svc.Update(ctx, f.alice, created.ID, model.ProductPatch{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected empty patch to refresh updated_at")
	}
	if updated.Name != created.Name ||
		updated.Price != created.Price ||
		updated.Category != created.Category ||
		updated.Description != created.Description ||
		updated.CreatedBy != created.CreatedBy ||
		!updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("expected all other fields unchanged: %+v vs %+v", updated, created)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	_, err := f.svc.Update(ctx, f.alice, "missing", model.ProductPatch{})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDelete_OwnershipAndIdempotence(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	created, err := f.svc.Create(ctx, f.alice, draft("Widget"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.svc.Delete(ctx, f.bob, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := f.svc.Get(ctx, f.alice, created.ID); err != nil {
		t.Fatalf("product vanished after forbidden delete: %v", err)
	}

	if err := f.svc.Delete(ctx, f.alice, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Second delete yields not-found, never a second success.
	if err := f.svc.Delete(ctx, f.alice, created.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound on second delete, got %v", err)
	}
}

func TestBulkCreate_AllOrNothingValidation(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	drafts := []*model.ProductDraft{
		draft("One"),
		{Name: "Two", Category: "c", Description: "d"}, // missing price
	}

	if _, err := f.svc.BulkCreate(ctx, f.alice, drafts); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	// Nothing may have been written.
	if _, err := f.svc.ListAll(ctx, f.alice); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("expected catalog untouched after rejected batch, got %v", err)
	}
}

func TestBulkCreate_CreatesSequentially(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	created, err := f.svc.BulkCreate(ctx, f.alice, []*model.ProductDraft{
		draft("One"), draft("Two"), draft("Three"),
	})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	if len(created) != 3 {
		t.Fatalf("expected 3 products, got %d", len(created))
	}
	for i, p := range created {
		if p.ID == "" {
			t.Errorf("product %d missing id", i)
		}
		if p.CreatedBy != "a@x.com" {
			t.Errorf("product %d: expected created_by a@x.com, got %s", i, p.CreatedBy)
		}
	}

	all, err := f.svc.ListAll(ctx, f.alice)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 products stored, got %d", len(all))
	}
}

func TestBulkDelete_BestEffortSubset(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	mineA, err := f.svc.Create(ctx, f.alice, draft("MineA"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	mineB, err := f.svc.Create(ctx, f.alice, draft("MineB"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	theirs, err := f.svc.Create(ctx, f.bob, draft("Theirs"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := f.svc.BulkDelete(ctx, f.alice, []string{
		mineA.ID, theirs.ID, "nonexistent", mineB.ID,
	})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}

	if len(deleted) != 2 || deleted[0] != mineA.ID || deleted[1] != mineB.ID {
		t.Errorf("expected exactly the owned-and-existing subset, got %v", deleted)
	}

	// Only that subset is gone.
	all, err := f.svc.ListAll(ctx, f.alice)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 || all[0].ID != theirs.ID {
		t.Errorf("expected only the non-owned product to remain, got %+v", all)
	}
}

// emptyEmailVerifier simulates a token payload lacking the email claim.
type emptyEmailVerifier struct {
	inner *identity.LocalProvider
}

func (v *emptyEmailVerifier) Verify(ctx context.Context, token string) (*model.UserProfile, error) {
	profile, err := v.inner.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return &model.UserProfile{UID: profile.UID}, nil
}

func (v *emptyEmailVerifier) Profile(ctx context.Context, uid string) (*model.UserProfile, error) {
	return v.inner.Profile(ctx, uid)
}

func TestMetrics_RecordedPerOperation(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	recorder := metrics.NewInMemory()
	svc := NewCatalogService(f.catalog, f.ids, recorder)

	created, err := svc.Create(ctx, f.alice, draft("Widget"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Search(ctx, f.alice, "wid"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := svc.Delete(ctx, f.alice, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Create(ctx, "jt_bogus", draft("Nope")); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	snap := recorder.Snapshot()
	if snap.ProductsCreated != 1 {
		t.Errorf("expected 1 product created, got %d", snap.ProductsCreated)
	}
	if snap.SearchesPerformed != 1 {
		t.Errorf("expected 1 search, got %d", snap.SearchesPerformed)
	}
	if snap.ProductsDeleted != 1 {
		t.Errorf("expected 1 product deleted, got %d", snap.ProductsDeleted)
	}
	if snap.AuthFailures != 1 {
		t.Errorf("expected 1 auth failure, got %d", snap.AuthFailures)
	}
	if snap.CatalogReadCount == 0 {
		t.Error("expected catalog read durations to be observed")
	}
}

func TestCaller_FallsBackToProfileLookup(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	svc := NewCatalogService(f.catalog, &emptyEmailVerifier{inner: f.ids}, metrics.NewNoop())

	created, err := svc.Create(ctx, f.alice, draft("Widget"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CreatedBy != "a@x.com" {
		t.Errorf("expected email resolved via profile lookup, got %q", created.CreatedBy)
	}
}
