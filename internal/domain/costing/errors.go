package costing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidCost     = errors.New("unit cost must not be negative")
	ErrInvalidPrice    = errors.New("unit price must be positive")
	ErrZeroAdjustment  = errors.New("adjustment delta must not be zero")
)

// InsufficientStockError несёт контекст для точного сообщения пользователю.
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

// NegativeStockError — корректировка увела бы остаток в минус.
type NegativeStockError struct {
	Available int64
	Delta     int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("adjustment would make stock negative: available %d, delta %d", e.Available, e.Delta)
}
