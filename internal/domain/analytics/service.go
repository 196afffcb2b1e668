package analytics

import (
	"context"

	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/products"
	"github.com/Spok95/stockbook/internal/store"
)

// Service — тонкая обвязка: достаёт данные и зовёт чистые функции.
type Service struct {
	store     store.Store
	threshold int64
}

func NewService(st store.Store, lowStockThreshold int64) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{store: st, threshold: lowStockThreshold}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	prods, moves, err := s.fetch(ctx)
	if err != nil {
		return Summary{}, err
	}
	return BuildSummary(prods, moves), nil
}

func (s *Service) TopSelling(ctx context.Context, limit int) ([]TopProduct, error) {
	prods, moves, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return TopSelling(prods, moves, limit), nil
}

func (s *Service) ProductStats(ctx context.Context, productID string) (ProductStats, error) {
	prods, moves, err := s.fetch(ctx)
	if err != nil {
		return ProductStats{}, err
	}
	return StatsFor(productID, prods, moves), nil
}

func (s *Service) LowStock(ctx context.Context) ([]products.Product, error) {
	prods, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return LowStock(prods, s.threshold), nil
}

func (s *Service) OutOfStock(ctx context.Context) ([]products.Product, error) {
	prods, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return OutOfStock(prods), nil
}

func (s *Service) fetch(ctx context.Context) ([]products.Product, []movements.Movement, error) {
	prods, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	moves, err := s.store.ListMovements(ctx)
	if err != nil {
		return nil, nil, err
	}
	return prods, moves, nil
}
