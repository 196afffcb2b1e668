package movements

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSale       Type = "sale"
	TypeProduction Type = "production"
	TypeAdjustment Type = "adjustment"
)

// ProductSnapshot — копия отображаемых полей товара на момент записи.
// Хранится значением, а не ссылкой: история читается и после удаления
// товара.
type ProductSnapshot struct {
	Name     string
	Category string
}

// Movement — неизменяемая запись журнала об одном складском событии.
// ProductID — слабая ссылка: товар к этому моменту может быть удалён.
type Movement struct {
	ID        string
	ProductID string
	Type      Type
	Quantity  int64 // со знаком: расход < 0, приход > 0

	UnitPrice *decimal.Decimal // только для sale
	UnitCost  *decimal.Decimal // только для production

	TotalAmount decimal.Decimal

	// AverageCostAtTime — средняя себестоимость на момент записи.
	// После создания не пересчитывается: на ней строится вся
	// историческая аналитика по затратам и прибыли.
	AverageCostAtTime decimal.Decimal

	Notes     string
	CreatedAt time.Time

	ProductSnapshot ProductSnapshot
}
