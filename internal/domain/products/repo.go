package products

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/stockbook/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

const productCols = `id, name, category, quantity, price, average_cost, notes, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Price, &p.AverageCost, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, p *Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, category, quantity, price, average_cost, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, p.ID, p.Name, p.Category, p.Quantity, p.Price, p.AverageCost, p.Notes, p.CreatedAt, p.UpdatedAt)
	return db.WrapErr("products.create", err)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productCols+` FROM products WHERE id = $1
	`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, db.WrapErr("products.get", err)
	}
	return p, nil
}

// GetByIDForUpdate блокирует строку товара до конца транзакции,
// чтобы две операции по одному товару не перемешивались.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productCols+` FROM products WHERE id = $1 FOR UPDATE
	`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, db.WrapErr("products.get_for_update", err)
	}
	return p, nil
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+` FROM products ORDER BY name
	`)
	if err != nil {
		return nil, db.WrapErr("products.list", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repo) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+` FROM products WHERE category = $1 ORDER BY name
	`, category)
	if err != nil {
		return nil, db.WrapErr("products.list_by_category", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repo) Update(ctx context.Context, p *Product) error {
	_, err := r.db.Exec(ctx, `
		UPDATE products
		SET name=$2, category=$3, quantity=$4, price=$5, average_cost=$6, notes=$7, updated_at=$8
		WHERE id=$1
	`, p.ID, p.Name, p.Category, p.Quantity, p.Price, p.AverageCost, p.Notes, p.UpdatedAt)
	return db.WrapErr("products.update", err)
}

// Delete удаляет только строку товара; каскад по фото делает store в
// рамках одной транзакции.
func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	return db.WrapErr("products.delete", err)
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM products`)
	return db.WrapErr("products.delete_all", err)
}

func collect(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Price, &p.AverageCost, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, db.WrapErr("products.scan", err)
		}
		out = append(out, p)
	}
	return out, db.WrapErr("products.rows", rows.Err())
}
