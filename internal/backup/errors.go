package backup

import "fmt"

// MalformedBackupError — артефакт не разбирается или не содержит
// обязательных частей.
type MalformedBackupError struct {
	Reason string
}

func (e *MalformedBackupError) Error() string {
	return fmt.Sprintf("malformed backup: %s", e.Reason)
}

// FutureSchemaError — версия схемы артефакта новее поддерживаемой.
type FutureSchemaError struct {
	Version   int
	Supported int
}

func (e *FutureSchemaError) Error() string {
	return fmt.Sprintf("backup schema version %d is newer than supported %d", e.Version, e.Supported)
}

// TooLargeError — артефакт превышает потолок размера; отклоняем до
// разбора, чтобы не раздувать память.
type TooLargeError struct {
	Size int64
	Max  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("backup is too large: %d bytes, limit %d", e.Size, e.Max)
}
