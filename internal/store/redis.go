package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jooba/jooba/internal/model"
)

const (
	// redisProductPrefix keys one hash per product.
	redisProductPrefix = "product:"
	// redisIDSet holds the set of catalog ids.
	redisIDSet = "product:ids"
)

// Redis is a catalog backend storing one hash per product.
type Redis struct {
	client *redis.Client
}

// NewRedis connects a client from a Redis URL.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// Get returns a single product by id.
func (s *Redis) Get(ctx context.Context, id string) (*model.Product, error) {
	values, err := s.client.HGetAll(ctx, redisProductPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}
	return productFromHash(id, values)
}

// List returns the whole catalog in id order.
func (s *Redis) List(ctx context.Context) ([]*model.Product, error) {
	ids, err := s.client.SMembers(ctx, redisIDSet).Result()
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	sort.Strings(ids)

	out := make([]*model.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(ctx, id)
		if err != nil {
			// An id whose hash vanished mid-scan was deleted
			// concurrently; skip it.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Push stores a new product under a generated key.
func (s *Redis) Push(ctx context.Context, p *model.Product) (string, error) {
	id := NewKey()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisProductPrefix+id, hashFromProduct(p))
	pipe.SAdd(ctx, redisIDSet, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("push product: %w", err)
	}
	return id, nil
}

// Update merges fields into one product hash.
func (s *Redis) Update(ctx context.Context, id string, fields map[string]any) error {
	exists, err := s.client.Exists(ctx, redisProductPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	values := make(map[string]any, len(fields))
	for key, value := range fields {
		switch key {
		case model.FieldName, model.FieldCategory, model.FieldDescription:
			values[key] = value
		case model.FieldPrice:
			if v, ok := toFloat(value); ok {
				values[key] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		case model.FieldUpdatedAt:
			if v, ok := toTime(value); ok {
				values[key] = v.UTC().Format(time.RFC3339Nano)
			}
		}
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, redisProductPrefix+id, values).Err(); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes one product hash and its id-set entry.
func (s *Redis) Delete(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, redisProductPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if err := s.client.SRem(ctx, redisIDSet, id).Err(); err != nil {
		return fmt.Errorf("delete product id: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *Redis) Close() error {
	return s.client.Close()
}

func hashFromProduct(p *model.Product) map[string]any {
	return map[string]any{
		model.FieldName:        p.Name,
		model.FieldPrice:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		model.FieldCategory:    p.Category,
		model.FieldDescription: p.Description,
		"created_by":           p.CreatedBy,
		"created_at":           p.CreatedAt.UTC().Format(time.RFC3339Nano),
		model.FieldUpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func productFromHash(id string, values map[string]string) (*model.Product, error) {
	price, err := strconv.ParseFloat(values[model.FieldPrice], 64)
	if err != nil {
		return nil, fmt.Errorf("parse price for %s: %w", id, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, values["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", id, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, values[model.FieldUpdatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for %s: %w", id, err)
	}

	return &model.Product{
		ID:          id,
		Name:        values[model.FieldName],
		Price:       price,
		Category:    values[model.FieldCategory],
		Description: values[model.FieldDescription],
		CreatedBy:   values["created_by"],
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}
