package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/stockbook/internal/domain/ledger"
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

// seed наполняет стор через обычный путь координатора.
func seed(t *testing.T, mem *storetest.Mem) {
	t.Helper()
	ctx := context.Background()
	svc := ledger.NewService(mem, logger.New("dev"))

	p, err := svc.CreateProduct(ctx, "Свеча", "Свечи", 0, dec("100"), nil, "ручная работа")
	require.NoError(t, err)
	_, _, err = svc.RegisterProduction(ctx, p.ID, 10, dec("4"), "")
	require.NoError(t, err)
	_, _, err = svc.RegisterSale(ctx, p.ID, 3, nil, "ярмарка")
	require.NoError(t, err)

	require.NoError(t, svc.AttachPhoto(ctx, &photos.Photo{
		ID:        "ph-1",
		ProductID: p.ID,
		MimeType:  "image/jpeg",
		Width:     640,
		Height:    480,
		Data:      []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10},
		Thumbnail: []byte{0xff, 0xd8, 0x01},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()

	src := storetest.NewMem()
	seed(t, src)
	exporter := NewService(src, logger.New("dev"), 0)

	data, err := exporter.Export(ctx)
	require.NoError(t, err)

	// импорт в пустой стор
	dst := storetest.NewMem()
	importer := NewService(dst, logger.New("dev"), 0)
	env, err := importer.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)

	// повторный экспорт воспроизводит записи байт в байт
	// (ExportedAt меняется, сравниваем коллекции)
	data2, err := importer.Export(ctx)
	require.NoError(t, err)

	var e1, e2 Envelope
	require.NoError(t, json.Unmarshal(data, &e1))
	require.NoError(t, json.Unmarshal(data2, &e2))
	assert.Equal(t, e1.Products, e2.Products)
	assert.Equal(t, e1.Movements, e2.Movements)
	assert.Equal(t, e1.Photos, e2.Photos)

	// бинарные поля фото совпадают побайтно
	phs, err := dst.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, phs, 1)
	assert.True(t, bytes.Equal([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}, phs[0].Data))
	assert.True(t, bytes.Equal([]byte{0xff, 0xd8, 0x01}, phs[0].Thumbnail))
	assert.Equal(t, "image/jpeg", phs[0].MimeType)
}

// Импорт — полная замена, а не слияние.
func TestImportReplacesExisting(t *testing.T) {
	ctx := context.Background()

	src := storetest.NewMem()
	seed(t, src)
	data, err := NewService(src, logger.New("dev"), 0).Export(ctx)
	require.NoError(t, err)

	dst := storetest.NewMem()
	svc := ledger.NewService(dst, logger.New("dev"))
	old, err := svc.CreateProduct(ctx, "Старый товар", "Прочее", 1, dec("1"), nil, "")
	require.NoError(t, err)

	_, err = NewService(dst, logger.New("dev"), 0).Import(ctx, data)
	require.NoError(t, err)

	prods, _ := dst.ListProducts(ctx)
	require.Len(t, prods, 1)
	assert.NotEqual(t, old.ID, prods[0].ID, "старые данные вычищены")
	assert.Equal(t, "Свеча", prods[0].Name)
}

func TestImportFutureSchemaRejected(t *testing.T) {
	ctx := context.Background()

	dst := storetest.NewMem()
	seed(t, dst)
	before, err := NewService(dst, logger.New("dev"), 0).Export(ctx)
	require.NoError(t, err)

	artifact := []byte(`{"schemaVersion": 99, "exportedAt": "2031-01-01T00:00:00Z", "products": [], "movements": [], "photos": []}`)

	svc := NewService(dst, logger.New("dev"), 0)
	_, err = svc.Import(ctx, artifact)
	var future *FutureSchemaError
	require.ErrorAs(t, err, &future)
	assert.Equal(t, 99, future.Version)

	// данные не тронуты
	after, err := svc.Export(ctx)
	require.NoError(t, err)
	var e1, e2 Envelope
	require.NoError(t, json.Unmarshal(before, &e1))
	require.NoError(t, json.Unmarshal(after, &e2))
	assert.Equal(t, e1.Products, e2.Products)
	assert.Equal(t, e1.Movements, e2.Movements)
	assert.Equal(t, e1.Photos, e2.Photos)
}

func TestImportMalformed(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storetest.NewMem(), logger.New("dev"), 0)

	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("garbage")},
		{"array instead of object", []byte(`[1,2,3]`)},
		{"missing schemaVersion", []byte(`{"products": [], "movements": [], "photos": []}`)},
		{"non-numeric schemaVersion", []byte(`{"schemaVersion": "v1", "products": [], "movements": [], "photos": []}`)},
		{"missing photos", []byte(`{"schemaVersion": 1, "products": [], "movements": []}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(ctx, tt.data)
			var malformed *MalformedBackupError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestImportTooLarge(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storetest.NewMem(), logger.New("dev"), 16)

	_, err := svc.Import(ctx, bytes.Repeat([]byte("x"), 17))
	var tooLarge *TooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.EqualValues(t, 17, tooLarge.Size)
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, 2, 3, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "stockbook_backup_20260203_150405.json", FileName(ts))
}
