// Package backup — выгрузка и восстановление всего набора данных одним
// версионированным JSON-артефактом. Вся валидация — до первого
// разрушительного шага.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/photos"
	"github.com/Spok95/stockbook/internal/domain/products"
	"github.com/Spok95/stockbook/internal/infra/metrics"
	"github.com/Spok95/stockbook/internal/store"
)

// SchemaVersion — текущая версия схемы артефакта. Артефакты «из
// будущего» не импортируем: гадать по неизвестной форме нельзя.
const SchemaVersion = 1

// DefaultMaxSize — жёсткий потолок размера артефакта до разбора.
const DefaultMaxSize = int64(50 << 20)

// Envelope — самоописывающий конверт с тремя коллекциями.
// time.Time сериализуется строкой RFC3339, []byte — base64.
type Envelope struct {
	SchemaVersion int              `json:"schemaVersion"`
	ExportedAt    time.Time        `json:"exportedAt"`
	Products      []ProductRecord  `json:"products"`
	Movements     []MovementRecord `json:"movements"`
	Photos        []PhotoRecord    `json:"photos"`
}

type ProductRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	AverageCost decimal.Decimal `json:"averageCost"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type MovementRecord struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"productId"`
	Type              string           `json:"type"`
	Quantity          int64            `json:"quantity"`
	UnitPrice         *decimal.Decimal `json:"unitPrice,omitempty"`
	UnitCost          *decimal.Decimal `json:"unitCost,omitempty"`
	TotalAmount       decimal.Decimal  `json:"totalAmount"`
	AverageCostAtTime decimal.Decimal  `json:"averageCostAtTime"`
	Notes             string           `json:"notes"`
	CreatedAt         time.Time        `json:"createdAt"`
	ProductName       string           `json:"productName"`
	ProductCategory   string           `json:"productCategory"`
}

type PhotoRecord struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	MimeType  string    `json:"mimeType"`
	Width     int32     `json:"width"`
	Height    int32     `json:"height"`
	Data      []byte    `json:"data"`
	Thumbnail []byte    `json:"thumbnail"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	store   store.Store
	log     *slog.Logger
	maxSize int64
}

func NewService(st store.Store, log *slog.Logger, maxSize int64) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{store: st, log: log, maxSize: maxSize}
}

// FileName — имя файла выгрузки с меткой времени; схема содержимого
// важна, имя — нет.
func FileName(now time.Time) string {
	return fmt.Sprintf("stockbook_backup_%s.json", now.Format("20060102_150405"))
}

// Export читает все три коллекции и собирает артефакт.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	prods, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	moves, err := s.store.ListMovements(ctx)
	if err != nil {
		return nil, err
	}
	phs, err := s.store.ListPhotos(ctx)
	if err != nil {
		return nil, err
	}

	env := Envelope{
		SchemaVersion: SchemaVersion,
		ExportedAt:    time.Now().UTC(),
		Products:      make([]ProductRecord, 0, len(prods)),
		Movements:     make([]MovementRecord, 0, len(moves)),
		Photos:        make([]PhotoRecord, 0, len(phs)),
	}
	for _, p := range prods {
		env.Products = append(env.Products, productRecord(p))
	}
	for _, m := range moves {
		env.Movements = append(env.Movements, movementRecord(m))
	}
	for _, ph := range phs {
		env.Photos = append(env.Photos, photoRecord(ph))
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, err
	}

	metrics.BackupExportsTotal.Inc()
	s.log.Info("backup exported",
		"products", len(env.Products), "movements", len(env.Movements),
		"photos", len(env.Photos), "bytes", len(data))
	return data, nil
}

// Parse валидирует артефакт, ничего не меняя: размер, форма, версия.
func (s *Service) Parse(data []byte) (*Envelope, error) {
	if int64(len(data)) > s.maxSize {
		return nil, &TooLargeError{Size: int64(len(data)), Max: s.maxSize}
	}

	var raw struct {
		SchemaVersion *int              `json:"schemaVersion"`
		ExportedAt    *time.Time        `json:"exportedAt"`
		Products      *[]ProductRecord  `json:"products"`
		Movements     *[]MovementRecord `json:"movements"`
		Photos        *[]PhotoRecord    `json:"photos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedBackupError{Reason: err.Error()}
	}
	if raw.SchemaVersion == nil {
		return nil, &MalformedBackupError{Reason: "missing schemaVersion"}
	}
	if raw.Products == nil || raw.Movements == nil || raw.Photos == nil {
		return nil, &MalformedBackupError{Reason: "missing one of products/movements/photos"}
	}
	if *raw.SchemaVersion > SchemaVersion {
		return nil, &FutureSchemaError{Version: *raw.SchemaVersion, Supported: SchemaVersion}
	}

	env := &Envelope{
		SchemaVersion: *raw.SchemaVersion,
		Products:      *raw.Products,
		Movements:     *raw.Movements,
		Photos:        *raw.Photos,
	}
	if raw.ExportedAt != nil {
		env.ExportedAt = *raw.ExportedAt
	}
	return env, nil
}

// Import — разрушительная полная замена: очистить три коллекции и
// вставить всё из артефакта одной транзакцией. Бизнес-валидацию
// записи не проходят: восстанавливаем как есть.
func (s *Service) Import(ctx context.Context, data []byte) (*Envelope, error) {
	env, err := s.Parse(data)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx store.Tx) error {
		if err := tx.Clear(ctx); err != nil {
			return err
		}
		for i := range env.Products {
			p := env.Products[i].toDomain()
			if err := tx.InsertProduct(ctx, &p); err != nil {
				return err
			}
		}
		for i := range env.Movements {
			m := env.Movements[i].toDomain()
			if err := tx.InsertMovement(ctx, &m); err != nil {
				return err
			}
		}
		for i := range env.Photos {
			ph := env.Photos[i].toDomain()
			if err := tx.InsertPhoto(ctx, &ph); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BackupImportsTotal.Inc()
	s.log.Info("backup imported",
		"schema_version", env.SchemaVersion,
		"products", len(env.Products), "movements", len(env.Movements), "photos", len(env.Photos))
	return env, nil
}

func productRecord(p products.Product) ProductRecord {
	return ProductRecord{
		ID: p.ID, Name: p.Name, Category: p.Category,
		Quantity: p.Quantity, Price: p.Price, AverageCost: p.AverageCost,
		Notes: p.Notes, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (r ProductRecord) toDomain() products.Product {
	return products.Product{
		ID: r.ID, Name: r.Name, Category: r.Category,
		Quantity: r.Quantity, Price: r.Price, AverageCost: r.AverageCost,
		Notes: r.Notes, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func movementRecord(m movements.Movement) MovementRecord {
	return MovementRecord{
		ID: m.ID, ProductID: m.ProductID, Type: string(m.Type),
		Quantity: m.Quantity, UnitPrice: m.UnitPrice, UnitCost: m.UnitCost,
		TotalAmount: m.TotalAmount, AverageCostAtTime: m.AverageCostAtTime,
		Notes: m.Notes, CreatedAt: m.CreatedAt,
		ProductName:     m.ProductSnapshot.Name,
		ProductCategory: m.ProductSnapshot.Category,
	}
}

func (r MovementRecord) toDomain() movements.Movement {
	return movements.Movement{
		ID: r.ID, ProductID: r.ProductID, Type: movements.Type(r.Type),
		Quantity: r.Quantity, UnitPrice: r.UnitPrice, UnitCost: r.UnitCost,
		TotalAmount: r.TotalAmount, AverageCostAtTime: r.AverageCostAtTime,
		Notes: r.Notes, CreatedAt: r.CreatedAt,
		ProductSnapshot: movements.ProductSnapshot{
			Name:     r.ProductName,
			Category: r.ProductCategory,
		},
	}
}

func photoRecord(p photos.Photo) PhotoRecord {
	return PhotoRecord{
		ID: p.ID, ProductID: p.ProductID, MimeType: p.MimeType,
		Width: p.Width, Height: p.Height,
		Data: p.Data, Thumbnail: p.Thumbnail, CreatedAt: p.CreatedAt,
	}
}

func (r PhotoRecord) toDomain() photos.Photo {
	return photos.Photo{
		ID: r.ID, ProductID: r.ProductID, MimeType: r.MimeType,
		Width: r.Width, Height: r.Height,
		Data: r.Data, Thumbnail: r.Thumbnail, CreatedAt: r.CreatedAt,
	}
}
