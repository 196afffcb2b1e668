package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/stockbook/internal/domain/costing"
	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/photos"
	"github.com/Spok95/stockbook/internal/infra/logger"
	"github.com/Spok95/stockbook/internal/store/storetest"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService() (*Service, *storetest.Mem) {
	mem := storetest.NewMem()
	return NewService(mem, logger.New("dev")), mem
}

// Сквозной сценарий: создание -> выпуск -> продажа -> корректировка.
func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	p, err := svc.CreateProduct(ctx, "Свеча кедровая", "Свечи", 0, dec("100"), nil, "")
	require.NoError(t, err)
	assert.EqualValues(t, 0, p.Quantity)
	assert.True(t, p.AverageCost.Equal(dec("0")))

	// выпуск 10 шт по 4
	p2, m, err := svc.RegisterProduction(ctx, p.ID, 10, dec("4"), "первая партия")
	require.NoError(t, err)
	assert.EqualValues(t, 10, p2.Quantity)
	assert.True(t, p2.AverageCost.Equal(dec("4")))
	assert.True(t, m.AverageCostAtTime.Equal(dec("4")))
	assert.EqualValues(t, 10, m.Quantity)
	assert.True(t, m.TotalAmount.Equal(dec("40")))

	// продажа 3 шт по 100
	p3, m2, err := svc.RegisterSale(ctx, p.ID, 3, nil, "")
	require.NoError(t, err)
	assert.EqualValues(t, 7, p3.Quantity)
	assert.True(t, p3.AverageCost.Equal(dec("4")), "продажа не меняет среднюю")
	assert.True(t, m2.AverageCostAtTime.Equal(dec("4")))
	assert.True(t, m2.TotalAmount.Equal(dec("300")))
	assert.EqualValues(t, -3, m2.Quantity)
	assert.Equal(t, "Свеча кедровая", m2.ProductSnapshot.Name)

	// корректировка -2
	p4, m3, err := svc.RegisterAdjustment(ctx, p.ID, -2, "бой")
	require.NoError(t, err)
	assert.EqualValues(t, 5, p4.Quantity)
	assert.True(t, p4.AverageCost.Equal(dec("4")))
	assert.True(t, m3.TotalAmount.Equal(dec("0")))

	moves, err := mem.ListMovements(ctx)
	require.NoError(t, err)
	assert.Len(t, moves, 3)
}

func TestRegisterSaleProductNotFound(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	_, _, err := svc.RegisterSale(ctx, "no-such-id", 1, nil, "")
	assert.ErrorIs(t, err, ErrProductNotFound)

	moves, _ := mem.ListMovements(ctx)
	assert.Empty(t, moves)
}

// Отказ валидации не оставляет частичных записей.
func TestRejectedSaleWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	p, err := svc.CreateProduct(ctx, "Мыло", "Мыло", 3, dec("50"), nil, "")
	require.NoError(t, err)

	_, _, err = svc.RegisterSale(ctx, p.ID, 5, nil, "")
	var insufficient *costing.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	moves, _ := mem.ListMovements(ctx)
	assert.Empty(t, moves, "журнал не тронут")

	prods, _ := mem.ListProducts(ctx)
	require.Len(t, prods, 1)
	assert.EqualValues(t, 3, prods[0].Quantity, "товар не тронут")
}

func TestInitialCostSeedsAverage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	seed := dec("2.5")
	p, err := svc.CreateProduct(ctx, "Набор", "Прочее", 4, dec("200"), &seed, "")
	require.NoError(t, err)
	assert.True(t, p.AverageCost.Equal(dec("2.5")))

	// выпуск в ненулевой остаток смешивает с посевной средней
	p2, _, err := svc.RegisterProduction(ctx, p.ID, 4, dec("7.5"), "")
	require.NoError(t, err)
	assert.True(t, p2.AverageCost.Equal(dec("5")), "got %s", p2.AverageCost)
}

// Правка журнала не пересчитывает товар: это документированное
// поведение пути коррекции.
func TestCorrectionPathLeavesProductAlone(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	p, err := svc.CreateProduct(ctx, "Свеча", "Свечи", 0, dec("100"), nil, "")
	require.NoError(t, err)
	_, m, err := svc.RegisterProduction(ctx, p.ID, 10, dec("4"), "")
	require.NoError(t, err)

	newQty := int64(8)
	newNotes := "исправлено"
	um, err := svc.UpdateMovement(ctx, m.ID, MovementPatch{Quantity: &newQty, Notes: &newNotes})
	require.NoError(t, err)
	assert.EqualValues(t, 8, um.Quantity)
	assert.Equal(t, "исправлено", um.Notes)
	assert.True(t, um.TotalAmount.Equal(dec("32")), "итог пересчитан от новых полей")
	assert.True(t, um.AverageCostAtTime.Equal(dec("4")), "зафиксированная себестоимость неизменна")

	prods, _ := mem.ListProducts(ctx)
	require.Len(t, prods, 1)
	assert.EqualValues(t, 10, prods[0].Quantity, "остаток товара не пересчитан")

	require.NoError(t, svc.DeleteMovement(ctx, m.ID))
	prods, _ = mem.ListProducts(ctx)
	assert.EqualValues(t, 10, prods[0].Quantity)

	err = svc.DeleteMovement(ctx, m.ID)
	assert.ErrorIs(t, err, ErrMovementNotFound)
}

// Удаление товара: фото уходят каскадом, журнал остаётся со снимком.
func TestDeleteProductCascade(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	p, err := svc.CreateProduct(ctx, "Свеча", "Свечи", 0, dec("100"), nil, "")
	require.NoError(t, err)
	_, _, err = svc.RegisterProduction(ctx, p.ID, 5, dec("3"), "")
	require.NoError(t, err)

	require.NoError(t, svc.AttachPhoto(ctx, &photos.Photo{
		ID:        "ph-1",
		ProductID: p.ID,
		MimeType:  "image/jpeg",
		Data:      []byte{0xff, 0xd8, 0xff},
		Thumbnail: []byte{0x01},
		CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	prods, _ := mem.ListProducts(ctx)
	assert.Empty(t, prods)

	phs, _ := mem.ListPhotos(ctx)
	assert.Empty(t, phs, "фото удалены каскадом")

	moves, _ := mem.ListMovements(ctx)
	require.Len(t, moves, 1, "журнал пережил удаление товара")
	assert.Equal(t, p.ID, moves[0].ProductID)
	assert.Equal(t, "Свеча", moves[0].ProductSnapshot.Name, "имя читается из снимка")

	err = svc.DeleteProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMovementTypes(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	p, err := svc.CreateProduct(ctx, "Свеча", "Свечи", 0, dec("100"), nil, "")
	require.NoError(t, err)

	_, _, err = svc.RegisterProduction(ctx, p.ID, 10, dec("4"), "")
	require.NoError(t, err)
	_, _, err = svc.RegisterSale(ctx, p.ID, 1, nil, "")
	require.NoError(t, err)
	_, _, err = svc.RegisterAdjustment(ctx, p.ID, 1, "")
	require.NoError(t, err)

	moves, _ := mem.ListMovements(ctx)
	require.Len(t, moves, 3)
	assert.Equal(t, movements.TypeProduction, moves[0].Type)
	require.NotNil(t, moves[0].UnitCost)
	assert.Nil(t, moves[0].UnitPrice)
	assert.Equal(t, movements.TypeSale, moves[1].Type)
	require.NotNil(t, moves[1].UnitPrice)
	assert.Nil(t, moves[1].UnitCost)
	assert.Equal(t, movements.TypeAdjustment, moves[2].Type)
	assert.Nil(t, moves[2].UnitPrice)
	assert.Nil(t, moves[2].UnitCost)
}

// Редактирование карточки меняет только цену и заметки; остаток и
// средняя себестоимость остаются событиям журнала.
func TestUpdateProductPatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	p, err := svc.CreateProduct(ctx, "Свеча", "Свечи", 0, dec("100"), nil, "первая партия")
	require.NoError(t, err)
	_, _, err = svc.RegisterProduction(ctx, p.ID, 10, dec("4"), "")
	require.NoError(t, err)

	price := dec("150")
	notes := "цена поднята"
	p2, err := svc.UpdateProduct(ctx, p.ID, ProductPatch{Price: &price, Notes: &notes})
	require.NoError(t, err)
	assert.True(t, p2.Price.Equal(dec("150")))
	assert.Equal(t, "цена поднята", p2.Notes)
	assert.EqualValues(t, 10, p2.Quantity)
	assert.True(t, p2.AverageCost.Equal(dec("4")))

	bad := dec("-1")
	_, err = svc.UpdateProduct(ctx, p.ID, ProductPatch{Price: &bad})
	assert.ErrorIs(t, err, costing.ErrInvalidPrice)

	_, err = svc.UpdateProduct(ctx, "missing", ProductPatch{Notes: &notes})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
