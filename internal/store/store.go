// Package store defines the catalog store capability contract and the
// backends the application can be wired with.
//
// The store is a dumb key-value tree: it enforces no ownership, no shape
// and no cross-key atomicity. Read-then-write sequences from concurrent
// requests can race and the last write wins; callers must not assume
// anything stronger.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jooba/jooba/internal/model"
)

// ErrNotFound indicates the product id is absent from the catalog.
// Absence is a first-class outcome, not a failure.
var ErrNotFound = errors.New("product not found")

// Catalog is the minimal capability set the service needs from a backend.
type Catalog interface {
	// Get returns a single product by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Product, error)

	// List returns the whole catalog in catalog order (lexicographic id
	// order; generated ids sort chronologically). An absent or empty
	// catalog yields an empty slice, never an error.
	List(ctx context.Context) ([]*model.Product, error)

	// Push stores a new product under a freshly generated unique key and
	// returns that key.
	Push(ctx context.Context, p *model.Product) (string, error)

	// Update merges the given fields into one product. The product's
	// other fields are left untouched. Returns ErrNotFound if absent.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes one product. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Ping checks backend reachability for readiness probes.
	Ping(ctx context.Context) error
}

// NewKey mints a generated child key. ULIDs are lexicographically
// sortable by creation time, matching the ordering of document-tree
// push keys, so every backend shares one notion of catalog order.
func NewKey() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
