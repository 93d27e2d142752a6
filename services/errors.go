package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind - категория доменной ошибки
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindConflict          ErrorKind = "conflict"
	KindInternal          ErrorKind = "internal"
)

// DomainError - ожидаемая ошибка бизнес-правил с понятным пользователю сообщением
type DomainError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string // поле -> нарушенное правило, только для ошибок валидации запроса
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError создает ошибку некорректных входных данных
func NewValidationError(format string, args ...any) error {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError создает ошибку отсутствующей сущности
func NewNotFoundError(format string, args ...any) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientStockError создает ошибку нехватки остатка
func NewInsufficientStockError(format string, args ...any) error {
	return &DomainError{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError создает ошибку нарушения уникальности
func NewConflictError(format string, args ...any) error {
	return &DomainError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewFieldValidationError создает ошибку валидации с перечнем нарушенных правил по полям
func NewFieldValidationError(fields map[string]string, format string, args ...any) error {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Fields: fields}
}

// FieldsOf возвращает нарушенные правила по полям, если они есть
func FieldsOf(err error) map[string]string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// KindOf возвращает категорию ошибки; всё, что не DomainError, считается внутренней ошибкой
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind проверяет категорию ошибки
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// translateDBError превращает нарушение уникального ключа в ConflictError,
// остальные ошибки хранилища оборачивает с контекстом
func translateDBError(err error, action string) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewConflictError("%s: duplicate value violates a unique constraint", action)
	}
	return fmt.Errorf("%s: %w", action, err)
}
