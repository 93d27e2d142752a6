package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator возвращает общий экземпляр валидатора
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// В ошибках поля называются так же, как в JSON запроса
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct проверяет теги validate у структуры запроса
func ValidateStruct(s interface{}) error {
	return Validator().Struct(s)
}

// ProcessValidationErrors превращает ошибки валидатора в карту поле -> правило.
// Для вложенных структур ключом служит путь без имени корневой структуры: items[0].quantity
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errorResponse
	}

	for _, ve := range validationErrors {
		errorResponse[fieldPath(ve)] = ve.Tag()
	}
	return errorResponse
}

func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ve.Field()
}

// ValidationMessage формирует короткое сообщение по первым ошибкам валидатора
func ValidationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		if ve.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed '%s=%s'", ve.Field(), ve.Tag(), ve.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed '%s'", ve.Field(), ve.Tag()))
		}
	}
	return "invalid request: " + strings.Join(parts, ", ")
}
