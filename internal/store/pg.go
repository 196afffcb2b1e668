package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/photos"
	"github.com/Spok95/stockbook/internal/domain/products"
	"github.com/Spok95/stockbook/internal/infra/db"
)

type PG struct {
	pool *pgxpool.Pool

	products  *products.Repo
	movements *movements.Repo
	photos    *photos.Repo
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{
		pool:      pool,
		products:  products.NewRepo(pool),
		movements: movements.NewRepo(pool),
		photos:    photos.NewRepo(pool),
	}
}

func (s *PG) InTx(ctx context.Context, fn func(tx Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.WrapErr("tx.begin", err)
	}
	defer func() { _ = pgtx.Rollback(ctx) }()

	if err := fn(&pgTx{
		products:  products.NewRepo(pgtx),
		movements: movements.NewRepo(pgtx),
		photos:    photos.NewRepo(pgtx),
	}); err != nil {
		return err
	}
	return db.WrapErr("tx.commit", pgtx.Commit(ctx))
}

func (s *PG) ListProducts(ctx context.Context) ([]products.Product, error) {
	return s.products.List(ctx)
}

func (s *PG) ListMovements(ctx context.Context) ([]movements.Movement, error) {
	return s.movements.List(ctx)
}

func (s *PG) ListPhotos(ctx context.Context) ([]photos.Photo, error) {
	return s.photos.List(ctx)
}

// pgTx — репозитории, привязанные к одной pgx-транзакции.
type pgTx struct {
	products  *products.Repo
	movements *movements.Repo
	photos    *photos.Repo
}

func (t *pgTx) ProductByID(ctx context.Context, id string) (*products.Product, error) {
	// FOR UPDATE сериализует события по одному товару
	return t.products.GetByIDForUpdate(ctx, id)
}

func (t *pgTx) SaveProduct(ctx context.Context, p *products.Product) error {
	return t.products.Update(ctx, p)
}

func (t *pgTx) InsertProduct(ctx context.Context, p *products.Product) error {
	return t.products.Create(ctx, p)
}

func (t *pgTx) DeleteProduct(ctx context.Context, id string) error {
	if err := t.photos.DeleteByProduct(ctx, id); err != nil {
		return err
	}
	return t.products.Delete(ctx, id)
}

func (t *pgTx) InsertMovement(ctx context.Context, m *movements.Movement) error {
	return t.movements.Insert(ctx, m)
}

func (t *pgTx) MovementByID(ctx context.Context, id string) (*movements.Movement, error) {
	return t.movements.GetByID(ctx, id)
}

func (t *pgTx) UpdateMovement(ctx context.Context, m *movements.Movement) error {
	return t.movements.Update(ctx, m)
}

func (t *pgTx) DeleteMovement(ctx context.Context, id string) error {
	return t.movements.Delete(ctx, id)
}

func (t *pgTx) InsertPhoto(ctx context.Context, p *photos.Photo) error {
	return t.photos.Insert(ctx, p)
}

func (t *pgTx) Clear(ctx context.Context) error {
	// порядок важен из-за FK photos -> products
	if err := t.photos.DeleteAll(ctx); err != nil {
		return err
	}
	if err := t.movements.DeleteAll(ctx); err != nil {
		return err
	}
	return t.products.DeleteAll(ctx)
}
