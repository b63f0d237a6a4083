package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

const Schema = `CREATE TABLE IF NOT EXISTS products (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	price       NUMERIC(12, 2) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image       TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	condition   TEXT NOT NULL DEFAULT '',
	size        TEXT NOT NULL DEFAULT '',
	brand       TEXT NOT NULL DEFAULT '',
	width_in    DOUBLE PRECISION,
	height_in   DOUBLE PRECISION,
	length_in   DOUBLE PRECISION,
	weight_lb   DOUBLE PRECISION,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const columns = `id, title, price, description, image, category, condition, size, brand,
	width_in, height_in, length_in, weight_lb, created_at, updated_at`

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return errors.Wrap(err, "create products table")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (domain.Product, error) {
	var (
		p     domain.Product
		id    uuid.UUID
		price decimal.Decimal
	)
	err := row.Scan(&id, &p.Title, &price, &p.Description, &p.Image, &p.Category, &p.Condition, &p.Size, &p.Brand,
		&p.WidthIn, &p.HeightIn, &p.LengthIn, &p.WeightLb, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id.String()
	p.Price = price
	return p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, title, price, description, image, category, condition, size, brand,
			width_in, height_in, length_in, weight_lb)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+columns,
		uuid.New(), p.Title, p.Price, p.Description, p.Image, p.Category, p.Condition, p.Size, p.Brand,
		p.WidthIn, p.HeightIn, p.LengthIn, p.WeightLb)

	created, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, errors.Wrap(err, "insert product")
	}
	return created, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	product, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM products WHERE id = $1`, prodID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, errors.Wrapf(err, "select product %s", id)
	}
	return product, nil
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	var cur uuid.NullUUID
	if strings.TrimSpace(cursor) != "" {
		uid, err := uuid.Parse(strings.TrimSpace(cursor))
		if err != nil {
			return nil, "", app.ErrInvalidInput
		}
		cur = uuid.NullUUID{UUID: uid, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+columns+` FROM products
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		  AND ($2::uuid IS NULL OR id > $2)
		ORDER BY id
		LIMIT $3`,
		strings.TrimSpace(query), cur, limit)
	if err != nil {
		return nil, "", errors.Wrap(err, "list products")
	}
	defer rows.Close()

	out := make([]domain.Product, 0, limit)
	var nextCursor string

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", errors.Wrap(err, "scan product")
		}
		out = append(out, p)
		nextCursor = p.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", errors.Wrap(err, "list products")
	}

	if len(out) < limit {
		nextCursor = ""
	}

	return out, nextCursor, nil
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	prodID, err := uuid.Parse(p.ID)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE products SET title = $2, price = $3, description = $4, image = $5, category = $6,
			condition = $7, size = $8, brand = $9, width_in = $10, height_in = $11,
			length_in = $12, weight_lb = $13, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		prodID, p.Title, p.Price, p.Description, p.Image, p.Category, p.Condition, p.Size, p.Brand,
		p.WidthIn, p.HeightIn, p.LengthIn, p.WeightLb)

	updated, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, errors.Wrapf(err, "update product %s", p.ID)
	}
	return updated, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return app.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, prodID)
	if err != nil {
		return errors.Wrapf(err, "delete product %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete product %s", id)
	}
	if n == 0 {
		return app.ErrNotFound
	}
	return nil
}
