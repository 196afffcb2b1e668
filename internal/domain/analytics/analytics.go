// Package analytics — производные финансовые показатели поверх журнала
// и текущих остатков. Ничего не кэшируем: каждый запрос считается
// заново от данных.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/products"
)

// DeletedProductName подставляется вместо имени, когда товара уже нет
// и записи журнала без снимка.
const DeletedProductName = "Удалённый товар"

// DefaultLowStockThreshold — порог «мало», если не задан в конфиге.
const DefaultLowStockThreshold = int64(5)

type Summary struct {
	TotalRevenue     decimal.Decimal // выручка по продажам
	SoldProductsCost decimal.Decimal // себестоимость проданного (по зафиксированной средней)
	InventoryValue   decimal.Decimal // стоимость текущих остатков
	TotalCosts       decimal.Decimal // остатки + себестоимость проданного
	SalesProfit      decimal.Decimal // выручка минус себестоимость проданного
	ProfitMargin     decimal.Decimal // % от выручки; 0 при нулевой выручке
	// NetProfit — грубая «прибыль по всему хозяйству»: выручка минус
	// все затраты, включая замороженные в остатках. Не то же самое,
	// что SalesProfit, обе цифры показываем раздельно.
	NetProfit        decimal.Decimal
	TotalProductions int
}

// BuildSummary собирает сводку по всем товарам и всему журналу.
func BuildSummary(prods []products.Product, moves []movements.Movement) Summary {
	var s Summary
	s.TotalRevenue = decimal.Zero
	s.SoldProductsCost = decimal.Zero
	s.InventoryValue = decimal.Zero

	produced := map[string]bool{} // товары, у которых есть выпуск в журнале

	for _, m := range moves {
		switch m.Type {
		case movements.TypeSale:
			s.TotalRevenue = s.TotalRevenue.Add(m.TotalAmount)
			s.SoldProductsCost = s.SoldProductsCost.Add(m.AverageCostAtTime.Mul(decimal.NewFromInt(absQty(m.Quantity))))
		case movements.TypeProduction:
			s.TotalProductions++
			produced[m.ProductID] = true
		}
	}

	for _, p := range prods {
		s.InventoryValue = s.InventoryValue.Add(p.AverageCost.Mul(decimal.NewFromInt(p.Quantity)))
		// остаток, заведённый при создании без записи в журнале,
		// тоже считаем выпуском
		if p.Quantity > 0 && !produced[p.ID] {
			s.TotalProductions++
		}
	}

	s.TotalCosts = s.InventoryValue.Add(s.SoldProductsCost)
	s.SalesProfit = s.TotalRevenue.Sub(s.SoldProductsCost)
	s.NetProfit = s.TotalRevenue.Sub(s.TotalCosts)

	if s.TotalRevenue.IsZero() {
		s.ProfitMargin = decimal.Zero
	} else {
		s.ProfitMargin = s.SalesProfit.Div(s.TotalRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return s
}

type TopProduct struct {
	ProductID    string
	Name         string
	QuantitySold int64
	Revenue      decimal.Decimal
	Cost         decimal.Decimal
	Profit       decimal.Decimal
}

// TopSelling группирует продажи по товару и ранжирует по количеству.
// Имя берём из живого товара, для удалённых — маркер.
func TopSelling(prods []products.Product, moves []movements.Movement, limit int) []TopProduct {
	names := make(map[string]string, len(prods))
	for _, p := range prods {
		names[p.ID] = p.Name
	}

	byProduct := map[string]*TopProduct{}
	var order []string
	for _, m := range moves {
		if m.Type != movements.TypeSale {
			continue
		}
		tp, ok := byProduct[m.ProductID]
		if !ok {
			name, alive := names[m.ProductID]
			if !alive {
				name = DeletedProductName
			}
			tp = &TopProduct{
				ProductID: m.ProductID,
				Name:      name,
				Revenue:   decimal.Zero,
				Cost:      decimal.Zero,
			}
			byProduct[m.ProductID] = tp
			order = append(order, m.ProductID)
		}
		qty := absQty(m.Quantity)
		tp.QuantitySold += qty
		tp.Revenue = tp.Revenue.Add(m.TotalAmount)
		tp.Cost = tp.Cost.Add(m.AverageCostAtTime.Mul(decimal.NewFromInt(qty)))
	}

	out := make([]TopProduct, 0, len(byProduct))
	for _, id := range order {
		tp := byProduct[id]
		tp.Profit = tp.Revenue.Sub(tp.Cost)
		out = append(out, *tp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QuantitySold > out[j].QuantitySold })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type ProductStats struct {
	ProductID     string
	Name          string
	QuantitySold  int64
	UnitsProduced int64
	Revenue       decimal.Decimal
	Cost          decimal.Decimal
	Profit        decimal.Decimal
}

// StatsFor — та же группировка, но по одному товару, плюс выпуск.
func StatsFor(productID string, prods []products.Product, moves []movements.Movement) ProductStats {
	st := ProductStats{
		ProductID: productID,
		Name:      DeletedProductName,
		Revenue:   decimal.Zero,
		Cost:      decimal.Zero,
	}
	for _, p := range prods {
		if p.ID == productID {
			st.Name = p.Name
			break
		}
	}
	for _, m := range moves {
		if m.ProductID != productID {
			continue
		}
		switch m.Type {
		case movements.TypeSale:
			qty := absQty(m.Quantity)
			st.QuantitySold += qty
			st.Revenue = st.Revenue.Add(m.TotalAmount)
			st.Cost = st.Cost.Add(m.AverageCostAtTime.Mul(decimal.NewFromInt(qty)))
		case movements.TypeProduction:
			st.UnitsProduced += m.Quantity
		}
	}
	st.Profit = st.Revenue.Sub(st.Cost)
	return st
}

// OutOfStock — остаток ровно ноль.
func OutOfStock(prods []products.Product) []products.Product {
	var out []products.Product
	for _, p := range prods {
		if p.Quantity == 0 {
			out = append(out, p)
		}
	}
	return out
}

// LowStock — остаток больше нуля, но ниже порога.
func LowStock(prods []products.Product, threshold int64) []products.Product {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	var out []products.Product
	for _, p := range prods {
		if p.Quantity > 0 && p.Quantity < threshold {
			out = append(out, p)
		}
	}
	return out
}

func absQty(q int64) int64 {
	if q < 0 {
		return -q
	}
	return q
}
