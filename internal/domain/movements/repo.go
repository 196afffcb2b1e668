package movements

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/stockbook/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

const movementCols = `id, product_id, type, quantity, unit_price, unit_cost,
	total_amount, average_cost_at_time, notes, created_at, product_name, product_category`

func scanMovement(row pgx.Row) (*Movement, error) {
	var m Movement
	err := row.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.UnitPrice, &m.UnitCost,
		&m.TotalAmount, &m.AverageCostAtTime, &m.Notes, &m.CreatedAt,
		&m.ProductSnapshot.Name, &m.ProductSnapshot.Category)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Insert(ctx context.Context, m *Movement) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO movements (id, product_id, type, quantity, unit_price, unit_cost,
			total_amount, average_cost_at_time, notes, created_at, product_name, product_category)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, m.ID, m.ProductID, string(m.Type), m.Quantity, m.UnitPrice, m.UnitCost,
		m.TotalAmount, m.AverageCostAtTime, m.Notes, m.CreatedAt,
		m.ProductSnapshot.Name, m.ProductSnapshot.Category)
	return db.WrapErr("movements.insert", err)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Movement, error) {
	m, err := scanMovement(r.db.QueryRow(ctx, `
		SELECT `+movementCols+` FROM movements WHERE id = $1
	`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, db.WrapErr("movements.get", err)
	}
	return m, nil
}

func (r *Repo) List(ctx context.Context) ([]Movement, error) {
	return r.query(ctx, `SELECT `+movementCols+` FROM movements ORDER BY created_at, id`)
}

func (r *Repo) ListByProduct(ctx context.Context, productID string) ([]Movement, error) {
	return r.query(ctx, `
		SELECT `+movementCols+` FROM movements WHERE product_id = $1 ORDER BY created_at, id
	`, productID)
}

func (r *Repo) ListByType(ctx context.Context, t Type) ([]Movement, error) {
	return r.query(ctx, `
		SELECT `+movementCols+` FROM movements WHERE type = $1 ORDER BY created_at, id
	`, string(t))
}

func (r *Repo) ListBetween(ctx context.Context, from, to time.Time) ([]Movement, error) {
	return r.query(ctx, `
		SELECT `+movementCols+` FROM movements
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, id
	`, from, to)
}

// Update переписывает не-идентификационные поля записи журнала.
// average_cost_at_time не трогаем: зафиксированная себестоимость
// неизменна по определению.
func (r *Repo) Update(ctx context.Context, m *Movement) error {
	_, err := r.db.Exec(ctx, `
		UPDATE movements
		SET quantity=$2, unit_price=$3, unit_cost=$4, total_amount=$5, notes=$6
		WHERE id=$1
	`, m.ID, m.Quantity, m.UnitPrice, m.UnitCost, m.TotalAmount, m.Notes)
	return db.WrapErr("movements.update", err)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM movements WHERE id=$1`, id)
	return db.WrapErr("movements.delete", err)
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM movements`)
	return db.WrapErr("movements.delete_all", err)
}

func (r *Repo) query(ctx context.Context, sql string, args ...any) ([]Movement, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.WrapErr("movements.list", err)
	}
	defer rows.Close()
	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.UnitPrice, &m.UnitCost,
			&m.TotalAmount, &m.AverageCostAtTime, &m.Notes, &m.CreatedAt,
			&m.ProductSnapshot.Name, &m.ProductSnapshot.Category); err != nil {
			return nil, db.WrapErr("movements.scan", err)
		}
		out = append(out, m)
	}
	return out, db.WrapErr("movements.rows", rows.Err())
}
