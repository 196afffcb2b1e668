// Package store собирает три коллекции (товары, журнал, фото) в единую
// транзакционную область: одно бизнес-событие — одна транзакция.
package store

import (
	"context"

	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/photos"
	"github.com/Spok95/stockbook/internal/domain/products"
)

// Tx — операции, доступные внутри одной транзакции.
type Tx interface {
	// ProductByID возвращает товар под блокировкой до конца транзакции;
	// nil, nil — товара нет.
	ProductByID(ctx context.Context, id string) (*products.Product, error)
	SaveProduct(ctx context.Context, p *products.Product) error
	InsertProduct(ctx context.Context, p *products.Product) error
	// DeleteProduct каскадно убирает фото товара, затем сам товар.
	// Записи журнала не трогает: слабая ссылка остаётся висячей.
	DeleteProduct(ctx context.Context, id string) error

	InsertMovement(ctx context.Context, m *movements.Movement) error
	MovementByID(ctx context.Context, id string) (*movements.Movement, error)
	UpdateMovement(ctx context.Context, m *movements.Movement) error
	DeleteMovement(ctx context.Context, id string) error

	InsertPhoto(ctx context.Context, p *photos.Photo) error

	// Clear опустошает все три коллекции (для импорта бэкапа).
	Clear(ctx context.Context) error
}

// Store — транзакции плюс read-only выборки вне транзакций.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	ListProducts(ctx context.Context) ([]products.Product, error)
	ListMovements(ctx context.Context) ([]movements.Movement, error)
	ListPhotos(ctx context.Context) ([]photos.Photo, error)
}
