// Package ledger превращает одно бизнес-событие в согласованную пару
// записей: строка журнала + обновлённый товар, в одной транзакции.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/stockbook/internal/domain/costing"
	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/products"
	"github.com/Spok95/stockbook/internal/infra/metrics"
	"github.com/Spok95/stockbook/internal/store"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrMovementNotFound = errors.New("movement not found")
)

type Service struct {
	store store.Store
	log   *slog.Logger
}

func NewService(st store.Store, log *slog.Logger) *Service {
	return &Service{store: st, log: log}
}

// RegisterSale списывает продажу. unitPrice == nil — по цене товара.
func (s *Service) RegisterSale(ctx context.Context, productID string, quantity int64, unitPrice *decimal.Decimal, notes string) (*products.Product, *movements.Movement, error) {
	return s.register(ctx, productID, movements.TypeSale, notes, func(p products.Product) (costing.Outcome, error) {
		return costing.Sale(p, quantity, unitPrice)
	})
}

// RegisterProduction оприходует выпуск и пересчитывает среднюю
// себестоимость.
func (s *Service) RegisterProduction(ctx context.Context, productID string, quantity int64, unitCost decimal.Decimal, notes string) (*products.Product, *movements.Movement, error) {
	return s.register(ctx, productID, movements.TypeProduction, notes, func(p products.Product) (costing.Outcome, error) {
		return costing.Production(p, quantity, unitCost)
	})
}

// RegisterAdjustment — ручная корректировка остатка на delta.
func (s *Service) RegisterAdjustment(ctx context.Context, productID string, delta int64, notes string) (*products.Product, *movements.Movement, error) {
	return s.register(ctx, productID, movements.TypeAdjustment, notes, func(p products.Product) (costing.Outcome, error) {
		return costing.Adjustment(p, delta)
	})
}

// Movements возвращает весь журнал в порядке появления записей.
func (s *Service) Movements(ctx context.Context) ([]movements.Movement, error) {
	return s.store.ListMovements(ctx)
}

// register — общий протокол: читаем товар под блокировкой, считаем
// исход, пишем журнал и товар. Любой отказ валидации — до первой
// записи, частичных состояний не бывает.
func (s *Service) register(ctx context.Context, productID string, mtype movements.Type, notes string,
	compute func(products.Product) (costing.Outcome, error)) (*products.Product, *movements.Movement, error) {

	var (
		updated  *products.Product
		movement *movements.Movement
	)

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		p, err := tx.ProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}

		out, err := compute(*p)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		m := &movements.Movement{
			ID:                uuid.NewString(),
			ProductID:         p.ID,
			Type:              mtype,
			Quantity:          out.MovementQuantity,
			UnitPrice:         out.UnitPrice,
			UnitCost:          out.UnitCost,
			TotalAmount:       out.TotalAmount,
			AverageCostAtTime: out.AverageCostAtTime,
			Notes:             notes,
			CreatedAt:         now,
			ProductSnapshot: movements.ProductSnapshot{
				Name:     p.Name,
				Category: p.Category,
			},
		}
		if err := tx.InsertMovement(ctx, m); err != nil {
			return err
		}

		p.Quantity = out.Quantity
		p.AverageCost = out.AverageCost
		p.UpdatedAt = now
		if err := tx.SaveProduct(ctx, p); err != nil {
			return err
		}

		updated, movement = p, m
		return nil
	})
	if err != nil {
		metrics.MovementsRejected.Inc()
		return nil, nil, err
	}

	metrics.MovementsTotal.WithLabelValues(string(mtype)).Inc()
	s.log.Info("movement registered",
		"type", string(mtype), "product_id", productID,
		"qty", movement.Quantity, "total", movement.TotalAmount.String())
	return updated, movement, nil
}

// MovementPatch — правка не-идентификационных полей записи журнала.
type MovementPatch struct {
	Quantity  *int64
	UnitPrice *decimal.Decimal
	UnitCost  *decimal.Decimal
	Notes     *string
}

// UpdateMovement правит запись журнала задним числом. Остаток и среднюю
// себестоимость товара НЕ пересчитывает: вызывающий принимает, что
// текущее состояние товара и история после этого могут разойтись.
func (s *Service) UpdateMovement(ctx context.Context, id string, patch MovementPatch) (*movements.Movement, error) {
	var updated *movements.Movement
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		m, err := tx.MovementByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMovementNotFound
		}

		if patch.Quantity != nil {
			m.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			m.UnitPrice = patch.UnitPrice
		}
		if patch.UnitCost != nil {
			m.UnitCost = patch.UnitCost
		}
		if patch.Notes != nil {
			m.Notes = *patch.Notes
		}
		m.TotalAmount = recomputeTotal(m)

		if err := tx.UpdateMovement(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMovement удаляет запись журнала; остаток товара не трогает.
func (s *Service) DeleteMovement(ctx context.Context, id string) error {
	return s.store.InTx(ctx, func(tx store.Tx) error {
		m, err := tx.MovementByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMovementNotFound
		}
		return tx.DeleteMovement(ctx, id)
	})
}

func recomputeTotal(m *movements.Movement) decimal.Decimal {
	abs := m.Quantity
	if abs < 0 {
		abs = -abs
	}
	switch {
	case m.Type == movements.TypeSale && m.UnitPrice != nil:
		return m.UnitPrice.Mul(decimal.NewFromInt(abs))
	case m.Type == movements.TypeProduction && m.UnitCost != nil:
		return m.UnitCost.Mul(decimal.NewFromInt(abs))
	default:
		return decimal.Zero
	}
}
