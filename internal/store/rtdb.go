package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jooba/jooba/internal/httpclient"
	"github.com/jooba/jooba/internal/model"
)

// RTDB is a client for a hosted document-tree database speaking the
// usual REST dialect: every node is addressable as <base>/<path>.json,
// GET reads a subtree, PUT replaces it, POST creates a child under a
// generated key, PATCH merges fields and DELETE removes the node.
type RTDB struct {
	baseURL string
	path    string
	client  *http.Client
}

// NewRTDB creates a client for the catalog node at path under baseURL.
func NewRTDB(baseURL, path string) *RTDB {
	return &RTDB{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		path:    strings.Trim(path, "/"),
		client:  httpclient.New(),
	}
}

// productDoc is the product as stored in the tree. The child key is the
// id, so the document itself carries no id field.
type productDoc struct {
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d *productDoc) toModel(id string) *model.Product {
	return &model.Product{
		ID:          id,
		Name:        d.Name,
		Price:       d.Price,
		Category:    d.Category,
		Description: d.Description,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func docFromModel(p *model.Product) productDoc {
	return productDoc{
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Get reads a single child node.
func (r *RTDB) Get(ctx context.Context, id string) (*model.Product, error) {
	raw, err := r.read(ctx, r.childURL(id))
	if err != nil {
		return nil, err
	}
	if isJSONNull(raw) {
		return nil, ErrNotFound
	}

	var doc productDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return doc.toModel(id), nil
}

// List reads the whole catalog node. The tree may hold an object keyed
// by id, a legacy array (possibly with null placeholders), or nothing;
// anything unrecognized yields an empty catalog rather than an error.
func (r *RTDB) List(ctx context.Context) ([]*model.Product, error) {
	raw, err := r.read(ctx, r.nodeURL())
	if err != nil {
		return nil, err
	}
	if isJSONNull(raw) {
		return []*model.Product{}, nil
	}

	switch firstToken(raw) {
	case '{':
		var docs map[string]*productDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return []*model.Product{}, nil
		}

		ids := make([]string, 0, len(docs))
		for id, doc := range docs {
			if doc == nil {
				continue
			}
			ids = append(ids, id)
		}
		sort.Strings(ids)

		out := make([]*model.Product, 0, len(ids))
		for _, id := range ids {
			out = append(out, docs[id].toModel(id))
		}
		return out, nil

	case '[':
		var docs []*productDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return []*model.Product{}, nil
		}

		out := make([]*model.Product, 0, len(docs))
		for i, doc := range docs {
			if doc == nil {
				// Null placeholders appear in array-shaped trees.
				continue
			}
			out = append(out, doc.toModel(strconv.Itoa(i)))
		}
		return out, nil

	default:
		return []*model.Product{}, nil
	}
}

// Push creates a child under a server-generated key.
func (r *RTDB) Push(ctx context.Context, p *model.Product) (string, error) {
	payload, err := json.Marshal(docFromModel(p))
	if err != nil {
		return "", fmt.Errorf("encode product: %w", err)
	}

	raw, err := r.request(ctx, http.MethodPost, r.nodeURL(), payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Name == "" {
		return "", fmt.Errorf("push returned no generated key")
	}
	return resp.Name, nil
}

// Update merges fields into one child node. The tree's PATCH would
// happily create an absent child, so existence is checked first; the
// check-then-patch pair can race with a concurrent delete, which is the
// store's documented last-write-wins behavior.
func (r *RTDB) Update(ctx context.Context, id string, fields map[string]any) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	if _, err := r.request(ctx, http.MethodPatch, r.childURL(id), payload); err != nil {
		return err
	}
	return nil
}

// Delete removes one child node. The tree's DELETE succeeds on absent
// keys, so existence is checked first to surface ErrNotFound.
func (r *RTDB) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	if _, err := r.request(ctx, http.MethodDelete, r.childURL(id), nil); err != nil {
		return err
	}
	return nil
}

// Ping checks database reachability with a shallow read.
func (r *RTDB) Ping(ctx context.Context) error {
	_, err := r.read(ctx, r.nodeURL()+"?shallow=true")
	return err
}

func (r *RTDB) nodeURL() string {
	return r.baseURL + "/" + r.path + ".json"
}

func (r *RTDB) childURL(id string) string {
	return r.baseURL + "/" + r.path + "/" + id + ".json"
}

func (r *RTDB) read(ctx context.Context, url string) (json.RawMessage, error) {
	return r.request(ctx, http.MethodGet, url, nil)
}

func (r *RTDB) request(ctx context.Context, method, url string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call catalog store: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read store response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("catalog store returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

func firstToken(raw json.RawMessage) byte {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return 0
	}
	return trimmed[0]
}
