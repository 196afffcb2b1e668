// Package costing — чистая арифметика движений склада: без I/O,
// детерминированно, все проверки до единой записи в базу.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/Spok95/stockbook/internal/domain/products"
)

// Точность средней себестоимости (знаков после запятой), как и в
// numeric-колонках схемы.
const costScale = 4

// Outcome — результат расчёта одного события: новое состояние товара
// и поля будущей записи журнала.
type Outcome struct {
	Quantity    int64           // новый остаток
	AverageCost decimal.Decimal // новая средняя себестоимость

	MovementQuantity int64 // со знаком: расход < 0, приход > 0
	TotalAmount      decimal.Decimal
	UnitPrice        *decimal.Decimal
	UnitCost         *decimal.Decimal

	// AverageCostAtTime — что фиксируется в журнале. Для продажи это
	// средняя ДО события (себестоимость отгруженного), для выпуска —
	// НОВАЯ средняя (база, заложенная этим выпуском). Асимметрия
	// намеренная.
	AverageCostAtTime decimal.Decimal
}

// Sale проверяет и считает продажу. unitPrice == nil — берём цену товара.
// Средняя себестоимость продажей не меняется.
func Sale(p products.Product, quantity int64, unitPrice *decimal.Decimal) (Outcome, error) {
	if quantity <= 0 {
		return Outcome{}, ErrInvalidQuantity
	}
	if quantity > p.Quantity {
		return Outcome{}, &InsufficientStockError{Available: p.Quantity, Requested: quantity}
	}
	price := p.Price
	if unitPrice != nil {
		price = *unitPrice
	}
	if !price.IsPositive() {
		return Outcome{}, ErrInvalidPrice
	}
	return Outcome{
		Quantity:          p.Quantity - quantity,
		AverageCost:       p.AverageCost,
		MovementQuantity:  -quantity,
		TotalAmount:       price.Mul(decimal.NewFromInt(quantity)),
		UnitPrice:         &price,
		AverageCostAtTime: p.AverageCost,
	}, nil
}

// Production проверяет и считает выпуск продукции. Новая средняя —
// взвешенное среднее старого остатка и выпуска; при нулевом остатке
// база не размывается: средняя = себестоимость выпуска.
func Production(p products.Product, quantity int64, unitCost decimal.Decimal) (Outcome, error) {
	if quantity <= 0 {
		return Outcome{}, ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return Outcome{}, ErrInvalidCost
	}

	newAvg := unitCost
	if p.Quantity > 0 {
		existing := p.AverageCost.Mul(decimal.NewFromInt(p.Quantity))
		incoming := unitCost.Mul(decimal.NewFromInt(quantity))
		newAvg = existing.Add(incoming).DivRound(decimal.NewFromInt(p.Quantity+quantity), costScale)
	}

	return Outcome{
		Quantity:         p.Quantity + quantity,
		AverageCost:      newAvg,
		MovementQuantity: quantity,
		TotalAmount:      unitCost.Mul(decimal.NewFromInt(quantity)),
		UnitCost:         &unitCost,
		// для выпуска фиксируем именно новую среднюю
		AverageCostAtTime: newAvg,
	}, nil
}

// Adjustment — ручная корректировка остатка. Денег не несёт, среднюю
// не меняет.
func Adjustment(p products.Product, delta int64) (Outcome, error) {
	if delta == 0 {
		return Outcome{}, ErrZeroAdjustment
	}
	if p.Quantity+delta < 0 {
		return Outcome{}, &NegativeStockError{Available: p.Quantity, Delta: delta}
	}
	return Outcome{
		Quantity:          p.Quantity + delta,
		AverageCost:       p.AverageCost,
		MovementQuantity:  delta,
		TotalAmount:       decimal.Zero,
		AverageCostAtTime: p.AverageCost,
	}, nil
}
