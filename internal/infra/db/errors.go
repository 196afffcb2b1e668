package db

import "fmt"

// StorageError помечает сбой слоя хранения (квоты, обрывы, повреждение),
// чтобы вызывающий код отличал его от бизнес-отказов.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WrapErr оборачивает ненулевую ошибку в StorageError.
func WrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
