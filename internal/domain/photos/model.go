package photos

import "time"

// Photo — бинарное вложение товара. Ядро байты не интерпретирует:
// сжатие и миниатюры делает внешняя подсистема.
type Photo struct {
	ID        string
	ProductID string
	MimeType  string
	Width     int32
	Height    int32
	Data      []byte
	Thumbnail []byte
	CreatedAt time.Time
}

func (p *Photo) SizeBytes() int64      { return int64(len(p.Data)) }
func (p *Photo) ThumbSizeBytes() int64 { return int64(len(p.Thumbnail)) }
