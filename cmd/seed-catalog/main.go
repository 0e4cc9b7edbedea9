// Command seed-catalog loads a products JSON dump into PostgreSQL.
// The dump may be gzip-compressed (detected by the .gz extension).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/postgres"
)

// insertWorkers bounds concurrent INSERTs against the pool.
const insertWorkers = 8

type productJSON struct {
	ID               string          `json:"productId"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	PreviewImage     string          `json:"previewImage"`
	StockLevel       *int            `json:"stockLevel"`
	ReorderThreshold *int            `json:"reorderThreshold"`
	CustomOptions    []struct {
		Type    string `json:"type"`
		Options []struct {
			Label         string          `json:"label"`
			PriceModifier decimal.Decimal `json:"priceModifier"`
		} `json:"options"`
	} `json:"customOptions"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.json or .json.gz)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	products, err := readProducts(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products")
	}
	slog.Info("loaded products file", "path", productsFile, "count", len(products))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(insertWorkers)
	for _, p := range products {
		g.Go(func() error {
			if err := repo.Create(ctx, p); err != nil {
				return errors.Wrapf(err, "seed product %q", p.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("seed complete", "count", len(products))
	return nil
}

func readProducts(path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer zr.Close()
		r = zr
	}

	var rows []productJSON
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}

	products := make([]product.Product, len(rows))
	for i, row := range rows {
		p := product.Product{
			ID:               row.ID,
			Name:             row.Name,
			Description:      row.Description,
			Category:         row.Category,
			BasePrice:        row.BasePrice,
			PreviewImage:     row.PreviewImage,
			ReorderThreshold: row.ReorderThreshold,
		}
		if row.StockLevel != nil {
			p.Stock = product.TrackedStock(*row.StockLevel)
		}
		for _, g := range row.CustomOptions {
			group := product.OptionGroup{Kind: product.GroupKind(g.Type)}
			for _, o := range g.Options {
				group.Options = append(group.Options, product.Option{
					Label:         o.Label,
					PriceModifier: o.PriceModifier,
				})
			}
			p.OptionGroups = append(p.OptionGroups, group)
		}
		products[i] = p
	}
	return products, nil
}
