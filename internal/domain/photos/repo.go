package photos

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/stockbook/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

const photoCols = `id, product_id, mime_type, width, height, data, thumbnail, created_at`

func (r *Repo) Insert(ctx context.Context, p *Photo) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO photos (id, product_id, mime_type, width, height, data, thumbnail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.ID, p.ProductID, p.MimeType, p.Width, p.Height, p.Data, p.Thumbnail, p.CreatedAt)
	return db.WrapErr("photos.insert", err)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Photo, error) {
	row := r.db.QueryRow(ctx, `SELECT `+photoCols+` FROM photos WHERE id = $1`, id)
	var p Photo
	err := row.Scan(&p.ID, &p.ProductID, &p.MimeType, &p.Width, &p.Height, &p.Data, &p.Thumbnail, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, db.WrapErr("photos.get", err)
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Photo, error) {
	return r.query(ctx, `SELECT `+photoCols+` FROM photos ORDER BY created_at, id`)
}

func (r *Repo) ListByProduct(ctx context.Context, productID string) ([]Photo, error) {
	return r.query(ctx, `
		SELECT `+photoCols+` FROM photos WHERE product_id = $1 ORDER BY created_at, id
	`, productID)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id=$1`, id)
	return db.WrapErr("photos.delete", err)
}

func (r *Repo) DeleteByProduct(ctx context.Context, productID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM photos WHERE product_id=$1`, productID)
	return db.WrapErr("photos.delete_by_product", err)
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM photos`)
	return db.WrapErr("photos.delete_all", err)
}

func (r *Repo) query(ctx context.Context, sql string, args ...any) ([]Photo, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.WrapErr("photos.list", err)
	}
	defer rows.Close()
	var out []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.ProductID, &p.MimeType, &p.Width, &p.Height, &p.Data, &p.Thumbnail, &p.CreatedAt); err != nil {
			return nil, db.WrapErr("photos.scan", err)
		}
		out = append(out, p)
	}
	return out, db.WrapErr("photos.rows", rows.Err())
}
