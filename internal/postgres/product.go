package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/inventory"
)

var _ inventory.Repository = (*ProductRepository)(nil)

// ProductRepository implements the catalog read and inventory write
// operations backed by PostgreSQL. Option groups live in a JSONB column;
// a NULL stock_level means the product is not inventory-tracked.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, description, category, base_price, preview_image, stock_level, reorder_threshold, custom_options`

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByID returns a single product by its identifier, or product.ErrNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Create inserts a new catalog product. Used by the seed tool and the
// admin add-product flow.
func (r *ProductRepository) Create(ctx context.Context, p product.Product) error {
	opts, err := marshalOptionGroups(p.OptionGroups)
	if err != nil {
		return fmt.Errorf("marshaling option groups: %w", err)
	}

	var level *int
	if n, ok := p.Stock.Units(); ok {
		level = &n
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO products (id, name, description, category, base_price, preview_image, stock_level, reorder_threshold, custom_options)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			base_price = EXCLUDED.base_price,
			preview_image = EXCLUDED.preview_image,
			stock_level = EXCLUDED.stock_level,
			reorder_threshold = EXCLUDED.reorder_threshold,
			custom_options = EXCLUDED.custom_options`,
		p.ID, p.Name, p.Description, p.Category, p.BasePrice, p.PreviewImage,
		level, p.ReorderThreshold, opts,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// UpdateStock replaces the tracked stock level of a product.
func (r *ProductRepository) UpdateStock(ctx context.Context, id string, level int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET stock_level = $2 WHERE id = $1`, id, level)
	if err != nil {
		return fmt.Errorf("updating stock for %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// UpdateReorderThreshold replaces the reorder threshold of a product.
func (r *ProductRepository) UpdateReorderThreshold(ctx context.Context, id string, threshold int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET reorder_threshold = $2 WHERE id = $1`, id, threshold)
	if err != nil {
		return fmt.Errorf("updating reorder threshold for %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// optionGroupRow is the JSONB shape of one option group.
type optionGroupRow struct {
	Type    string           `json:"type"`
	Options []optionValueRow `json:"options"`
}

type optionValueRow struct {
	Label         string          `json:"label"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
}

func marshalOptionGroups(groups []product.OptionGroup) ([]byte, error) {
	rows := make([]optionGroupRow, len(groups))
	for i, g := range groups {
		row := optionGroupRow{Type: string(g.Kind), Options: make([]optionValueRow, len(g.Options))}
		for j, o := range g.Options {
			row.Options[j] = optionValueRow{Label: o.Label, PriceModifier: o.PriceModifier}
		}
		rows[i] = row
	}
	return json.Marshal(rows)
}

func unmarshalOptionGroups(data []byte) ([]product.OptionGroup, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []optionGroupRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	groups := make([]product.OptionGroup, len(rows))
	for i, row := range rows {
		g := product.OptionGroup{Kind: product.GroupKind(row.Type), Options: make([]product.Option, len(row.Options))}
		for j, o := range row.Options {
			g.Options[j] = product.Option{Label: o.Label, PriceModifier: o.PriceModifier}
		}
		groups[i] = g
	}
	return groups, nil
}

func scanProduct(row pgx.Row) (product.Product, error) {
	var (
		p         product.Product
		level     *int
		threshold *int
		opts      []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.BasePrice,
		&p.PreviewImage, &level, &threshold, &opts)
	if err != nil {
		return product.Product{}, err
	}

	if level != nil {
		p.Stock = product.TrackedStock(*level)
	} else {
		p.Stock = product.UnboundedStock()
	}
	p.ReorderThreshold = threshold

	p.OptionGroups, err = unmarshalOptionGroups(opts)
	if err != nil {
		return product.Product{}, fmt.Errorf("unmarshaling option groups: %w", err)
	}
	return p, nil
}
