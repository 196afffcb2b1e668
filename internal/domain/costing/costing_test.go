package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/stockbook/internal/domain/products"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testProduct(qty int64, price, avgCost string) products.Product {
	return products.Product{
		ID:          "p-1",
		Name:        "Свеча",
		Category:    "Свечи",
		Quantity:    qty,
		Price:       dec(price),
		AverageCost: dec(avgCost),
	}
}

func TestSale(t *testing.T) {
	p := testProduct(10, "100", "4")

	out, err := Sale(p, 3, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 7, out.Quantity)
	assert.True(t, out.AverageCost.Equal(dec("4")), "продажа не меняет среднюю")
	assert.EqualValues(t, -3, out.MovementQuantity)
	assert.True(t, out.TotalAmount.Equal(dec("300")))
	assert.True(t, out.AverageCostAtTime.Equal(dec("4")), "фиксируется средняя ДО продажи")
	require.NotNil(t, out.UnitPrice)
	assert.True(t, out.UnitPrice.Equal(dec("100")), "цена по умолчанию — цена товара")
}

func TestSaleExplicitPrice(t *testing.T) {
	p := testProduct(10, "100", "4")
	price := dec("150")

	out, err := Sale(p, 2, &price)
	require.NoError(t, err)
	assert.True(t, out.TotalAmount.Equal(dec("300")))
	assert.True(t, out.UnitPrice.Equal(dec("150")))
}

func TestSaleValidation(t *testing.T) {
	tests := []struct {
		name    string
		product products.Product
		qty     int64
		price   *decimal.Decimal
		wantErr error
	}{
		{"zero quantity", testProduct(10, "100", "4"), 0, nil, ErrInvalidQuantity},
		{"negative quantity", testProduct(10, "100", "4"), -1, nil, ErrInvalidQuantity},
		{"zero default price", testProduct(10, "0", "4"), 1, nil, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sale(tt.product, tt.qty, tt.price)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaleInsufficientStock(t *testing.T) {
	p := testProduct(3, "100", "4")

	_, err := Sale(p, 5, nil)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.EqualValues(t, 3, insufficient.Available)
	assert.EqualValues(t, 5, insufficient.Requested)
	assert.Equal(t, "insufficient stock: available 3, requested 5", err.Error())
}

func TestProductionBlendsAverage(t *testing.T) {
	// остаток 10 по 4.00, выпуск 5 по 7.00 => (10*4 + 5*7)/15 = 5.6667
	p := testProduct(10, "100", "4")

	out, err := Production(p, 5, dec("7"))
	require.NoError(t, err)

	assert.EqualValues(t, 15, out.Quantity)
	assert.True(t, out.AverageCost.Equal(dec("5.6667")), "got %s", out.AverageCost)
	assert.EqualValues(t, 5, out.MovementQuantity)
	assert.True(t, out.TotalAmount.Equal(dec("35")))
	assert.True(t, out.AverageCostAtTime.Equal(dec("5.6667")), "фиксируется НОВАЯ средняя")
}

func TestProductionIntoZeroStock(t *testing.T) {
	// при нулевом остатке средняя = себестоимость выпуска, без смешивания
	p := testProduct(0, "100", "9.99")

	out, err := Production(p, 10, dec("4"))
	require.NoError(t, err)
	assert.EqualValues(t, 10, out.Quantity)
	assert.True(t, out.AverageCost.Equal(dec("4")))
	assert.True(t, out.AverageCostAtTime.Equal(dec("4")))
}

func TestProductionZeroCostAllowed(t *testing.T) {
	p := testProduct(0, "100", "0")

	out, err := Production(p, 5, dec("0"))
	require.NoError(t, err)
	assert.True(t, out.AverageCost.Equal(dec("0")))
	assert.True(t, out.TotalAmount.Equal(dec("0")))
}

func TestProductionValidation(t *testing.T) {
	p := testProduct(10, "100", "4")

	_, err := Production(p, 0, dec("7"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = Production(p, 5, dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidCost)
}

func TestAdjustment(t *testing.T) {
	p := testProduct(7, "100", "4")

	out, err := Adjustment(p, -2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, out.Quantity)
	assert.True(t, out.AverageCost.Equal(dec("4")), "корректировка не меняет среднюю")
	assert.True(t, out.TotalAmount.Equal(dec("0")), "корректировка не несёт денег")
	assert.True(t, out.AverageCostAtTime.Equal(dec("4")))
	assert.EqualValues(t, -2, out.MovementQuantity)
}

func TestAdjustmentValidation(t *testing.T) {
	p := testProduct(3, "100", "4")

	_, err := Adjustment(p, 0)
	assert.ErrorIs(t, err, ErrZeroAdjustment)

	_, err = Adjustment(p, -5)
	var negative *NegativeStockError
	require.ErrorAs(t, err, &negative)
	assert.EqualValues(t, 3, negative.Available)
	assert.EqualValues(t, -5, negative.Delta)
}

func TestQuantityNeverNegativeAfterSequence(t *testing.T) {
	p := testProduct(0, "100", "0")

	apply := func(out Outcome) {
		p.Quantity = out.Quantity
		p.AverageCost = out.AverageCost
	}

	out, err := Production(p, 10, dec("4"))
	require.NoError(t, err)
	apply(out)

	out, err = Sale(p, 3, nil)
	require.NoError(t, err)
	apply(out)

	out, err = Adjustment(p, -7)
	require.NoError(t, err)
	apply(out)

	assert.EqualValues(t, 0, p.Quantity)

	// дальше любой расход обязан отбиваться
	_, err = Sale(p, 1, nil)
	var insufficient *InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)

	_, err = Adjustment(p, -1)
	var negative *NegativeStockError
	assert.ErrorAs(t, err, &negative)

	assert.GreaterOrEqual(t, p.Quantity, int64(0))
}
