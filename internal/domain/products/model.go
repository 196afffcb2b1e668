package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SuggestedCategories — подсказки для выбора категории; свободный текст
// тоже допустим, список не ограничивает.
var SuggestedCategories = []string{
	"Свечи",
	"Мыло",
	"Косметика",
	"Аксессуары",
	"Упаковка",
	"Прочее",
}

type Product struct {
	ID          string
	Name        string
	Category    string
	Quantity    int64 // всегда >= 0 после зафиксированной операции
	Price       decimal.Decimal
	AverageCost decimal.Decimal // скользящая средняя себестоимость единицы
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New собирает товар с начальным остатком; начальная себестоимость
// (если задана) становится стартовой средней.
func New(name, category string, quantity int64, price decimal.Decimal, initialCost *decimal.Decimal, notes string) *Product {
	now := time.Now().UTC()
	avg := decimal.Zero
	if initialCost != nil {
		avg = *initialCost
	}
	return &Product{
		ID:          uuid.NewString(),
		Name:        name,
		Category:    category,
		Quantity:    quantity,
		Price:       price,
		AverageCost: avg,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
