package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/products"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func product(id, name string, qty int64, avgCost string) products.Product {
	return products.Product{
		ID: id, Name: name, Category: "Свечи",
		Quantity: qty, Price: dec("100"), AverageCost: dec(avgCost),
	}
}

func sale(productID string, qty int64, unitPrice, avgCostAtTime string) movements.Movement {
	price := dec(unitPrice)
	return movements.Movement{
		ID: "m-" + productID + "-" + unitPrice, ProductID: productID,
		Type: movements.TypeSale, Quantity: -qty,
		UnitPrice:         &price,
		TotalAmount:       price.Mul(decimal.NewFromInt(qty)),
		AverageCostAtTime: dec(avgCostAtTime),
		CreatedAt:         time.Now().UTC(),
	}
}

func production(productID string, qty int64, unitCost, avgCostAtTime string) movements.Movement {
	cost := dec(unitCost)
	return movements.Movement{
		ID: "mp-" + productID + "-" + unitCost, ProductID: productID,
		Type: movements.TypeProduction, Quantity: qty,
		UnitCost:          &cost,
		TotalAmount:       cost.Mul(decimal.NewFromInt(qty)),
		AverageCostAtTime: dec(avgCostAtTime),
		CreatedAt:         time.Now().UTC(),
	}
}

func TestBuildSummary(t *testing.T) {
	prods := []products.Product{
		product("p1", "Свеча", 7, "4"),   // остаток 7*4 = 28
		product("p2", "Мыло", 10, "2.5"), // остаток 10*2.5 = 25
	}
	moves := []movements.Movement{
		production("p1", 10, "4", "4"),
		sale("p1", 3, "100", "4"), // выручка 300, себестоимость 12
	}

	s := BuildSummary(prods, moves)

	assert.True(t, s.TotalRevenue.Equal(dec("300")), "got %s", s.TotalRevenue)
	assert.True(t, s.SoldProductsCost.Equal(dec("12")))
	assert.True(t, s.InventoryValue.Equal(dec("53")))
	assert.True(t, s.TotalCosts.Equal(dec("65")))
	assert.True(t, s.SalesProfit.Equal(dec("288")))
	assert.True(t, s.NetProfit.Equal(dec("235")), "netProfit считается от всех затрат")
	assert.True(t, s.ProfitMargin.Equal(dec("96")), "got %s", s.ProfitMargin)
	// один production + p2 с остатком без записей о выпуске
	assert.Equal(t, 2, s.TotalProductions)
}

func TestProfitMarginZeroRevenue(t *testing.T) {
	prods := []products.Product{product("p1", "Свеча", 5, "4")}

	s := BuildSummary(prods, nil)

	assert.True(t, s.TotalRevenue.IsZero())
	assert.True(t, s.ProfitMargin.IsZero(), "без деления на ноль")
	assert.True(t, s.NetProfit.Equal(dec("-20")))
}

func TestTotalProductionsSeededStock(t *testing.T) {
	prods := []products.Product{
		product("p1", "Свеча", 5, "4"),  // остаток заведён при создании
		product("p2", "Мыло", 0, "0"),   // пустой — не считается
		product("p3", "Крем", 3, "1.5"), // есть записи о выпуске
	}
	moves := []movements.Movement{production("p3", 3, "1.5", "1.5")}

	s := BuildSummary(prods, moves)
	assert.Equal(t, 2, s.TotalProductions)
}

func TestTopSelling(t *testing.T) {
	prods := []products.Product{
		product("p1", "Свеча", 7, "4"),
		product("p2", "Мыло", 10, "2.5"),
	}
	moves := []movements.Movement{
		sale("p1", 3, "100", "4"),
		sale("p2", 5, "80", "2.5"),
		sale("p1", 1, "120", "4"),
		sale("deleted-1", 10, "50", "1"),
	}

	top := TopSelling(prods, moves, 0)
	require.Len(t, top, 3)

	assert.Equal(t, "deleted-1", top[0].ProductID)
	assert.Equal(t, DeletedProductName, top[0].Name)
	assert.EqualValues(t, 10, top[0].QuantitySold)

	assert.Equal(t, "p2", top[1].ProductID)
	assert.EqualValues(t, 5, top[1].QuantitySold)

	assert.Equal(t, "p1", top[2].ProductID)
	assert.EqualValues(t, 4, top[2].QuantitySold)
	assert.True(t, top[2].Revenue.Equal(dec("420")))
	assert.True(t, top[2].Cost.Equal(dec("16")))
	assert.True(t, top[2].Profit.Equal(dec("404")))

	limited := TopSelling(prods, moves, 2)
	assert.Len(t, limited, 2)
}

func TestStatsFor(t *testing.T) {
	prods := []products.Product{product("p1", "Свеча", 7, "4")}
	moves := []movements.Movement{
		production("p1", 10, "4", "4"),
		sale("p1", 3, "100", "4"),
		sale("p2", 1, "10", "1"), // чужой товар не влияет
	}

	st := StatsFor("p1", prods, moves)
	assert.Equal(t, "Свеча", st.Name)
	assert.EqualValues(t, 3, st.QuantitySold)
	assert.EqualValues(t, 10, st.UnitsProduced)
	assert.True(t, st.Revenue.Equal(dec("300")))
	assert.True(t, st.Cost.Equal(dec("12")))
	assert.True(t, st.Profit.Equal(dec("288")))

	gone := StatsFor("deleted-1", prods, moves)
	assert.Equal(t, DeletedProductName, gone.Name)
}

func TestLowAndOutOfStock(t *testing.T) {
	prods := []products.Product{
		product("p1", "Свеча", 0, "4"),
		product("p2", "Мыло", 3, "2"),
		product("p3", "Крем", 5, "1"),
		product("p4", "Набор", 100, "9"),
	}

	out := OutOfStock(prods)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].ID)

	low := LowStock(prods, 5)
	require.Len(t, low, 1)
	assert.Equal(t, "p2", low[0].ID, "ноль — это out-of-stock, не low; порог не включается")
}
