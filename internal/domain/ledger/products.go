package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stockbook/internal/domain/costing"
	"github.com/Spok95/stockbook/internal/domain/photos"
	"github.com/Spok95/stockbook/internal/domain/products"
	"github.com/Spok95/stockbook/internal/store"
)

// CreateProduct заводит товар; initialCost (если задана) становится
// стартовой средней себестоимостью.
func (s *Service) CreateProduct(ctx context.Context, name, category string, quantity int64, price decimal.Decimal, initialCost *decimal.Decimal, notes string) (*products.Product, error) {
	p := products.New(name, category, quantity, price, initialCost, notes)
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

// ProductPatch — частичное редактирование карточки. Остаток и средняя
// себестоимость сюда не входят: их меняют только события журнала.
type ProductPatch struct {
	Name     *string
	Category *string
	Price    *decimal.Decimal
	Notes    *string
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*products.Product, error) {
	var updated *products.Product
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		p, err := tx.ProductByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Price != nil {
			if patch.Price.IsNegative() {
				return costing.ErrInvalidPrice
			}
			p.Price = *patch.Price
		}
		if patch.Notes != nil {
			p.Notes = *patch.Notes
		}
		p.UpdatedAt = time.Now().UTC()
		if err := tx.SaveProduct(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("product updated", "product_id", id)
	return updated, nil
}

// DeleteProduct удаляет товар и каскадом его фото. Журнал не трогаем:
// история остаётся читаемой через снимок в самих записях.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		p, err := tx.ProductByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("product deleted", "product_id", id)
	return nil
}

// AttachPhoto сохраняет готовые байты фото (сжатие — забота внешней
// подсистемы).
func (s *Service) AttachPhoto(ctx context.Context, ph *photos.Photo) error {
	return s.store.InTx(ctx, func(tx store.Tx) error {
		p, err := tx.ProductByID(ctx, ph.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		return tx.InsertPhoto(ctx, ph)
	})
}
