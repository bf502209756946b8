// Command seed-catalog loads a set of sample products into a catalog
// store backend. Useful for local development and demo environments.
//
// Usage:
//
//	go run ./scripts/seed-catalog.go -driver rtdb -database-url https://... -owner dev@example.com
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jooba/jooba/internal/model"
	"github.com/jooba/jooba/internal/store"
)

type seeded struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

var samples = []model.Product{
	{Name: "Claw Hammer", Price: 12.50, Category: "Tools", Description: "16oz fiberglass handle"},
	{Name: "Cordless Drill", Price: 89.99, Category: "Tools", Description: "18V with two batteries"},
	{Name: "Garden Hose", Price: 24.00, Category: "Garden", Description: "15m expandable"},
	{Name: "Desk Lamp", Price: 18.75, Category: "Home", Description: "adjustable arm, warm white"},
	{Name: "Ceramic Mug", Price: 6.99, Category: "Home", Description: "350ml, dishwasher safe"},
}

func main() {
	var (
		driver      = flag.String("driver", os.Getenv("STORE_DRIVER"), "Catalog store driver: rtdb, postgres, redis or memory")
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "Document-tree database URL (rtdb driver)")
		catalogPath = flag.String("path", "products", "Catalog node in the document tree (rtdb driver)")
		postgresURL = flag.String("postgres-url", os.Getenv("POSTGRES_URL"), "PostgreSQL connection string (postgres driver)")
		redisURL    = flag.String("redis-url", os.Getenv("REDIS_URL"), "Redis URL (redis driver)")
		owner       = flag.String("owner", "dev@example.com", "Email stamped as created_by on the seeded products")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	catalog, err := openCatalog(ctx, *driver, *databaseURL, *catalogPath, *postgresURL, *redisURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	created := make([]seeded, 0, len(samples))
	for _, sample := range samples {
		now := time.Now().UTC()
		product := sample
		product.CreatedBy = *owner
		product.CreatedAt = now
		product.UpdatedAt = now

		id, err := catalog.Push(ctx, &product)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed %q: %v\n", product.Name, err)
			os.Exit(1)
		}
		created = append(created, seeded{ID: id, Name: product.Name, Category: product.Category})
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(created); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
	default:
		for _, p := range created {
			fmt.Printf("%s  %-16s %s\n", p.ID, p.Category, p.Name)
		}
		fmt.Printf("seeded %d products as %s\n", len(created), *owner)
	}
}

func openCatalog(ctx context.Context, driver, databaseURL, catalogPath, postgresURL, redisURL string) (store.Catalog, error) {
	switch driver {
	case "rtdb":
		if databaseURL == "" {
			return nil, fmt.Errorf("-database-url is required for the rtdb driver")
		}
		return store.NewRTDB(databaseURL, catalogPath), nil
	case "postgres":
		if postgresURL == "" {
			return nil, fmt.Errorf("-postgres-url is required for the postgres driver")
		}
		return store.NewPostgres(ctx, postgresURL)
	case "redis":
		if redisURL == "" {
			return nil, fmt.Errorf("-redis-url is required for the redis driver")
		}
		return store.NewRedis(ctx, redisURL)
	case "memory":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown driver %q", driver)
}
