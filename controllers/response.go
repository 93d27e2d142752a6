package controllers

import (
	"strconv"

	"bakery-backend/config"
	"bakery-backend/services"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// APIResponse - общий формат успешного ответа
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse - общий формат ответа с ошибкой
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// StatusForKind сопоставляет категорию доменной ошибки с HTTP статусом
func StatusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindInsufficientStock:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError отправляет ошибку сервиса; внутренние ошибки логируются, а клиенту
// уходит общее сообщение
func respondError(c *fiber.Ctx, err error) error {
	kind := services.KindOf(err)
	status := StatusForKind(kind)

	if status == fiber.StatusInternalServerError {
		config.GetLogger().WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		}).WithError(err).Error("request failed")

		return c.Status(status).JSON(ErrorResponse{
			Success: false,
			Error:   string(services.KindInternal),
			Message: "internal error",
		})
	}

	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   string(kind),
		Message: err.Error(),
		Fields:  services.FieldsOf(err),
	})
}

// respondOK отправляет успешный ответ
func respondOK(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// parseBody разбирает JSON тело и проверяет теги validate
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return services.NewValidationError("invalid request body")
	}
	if err := utils.ValidateStruct(out); err != nil {
		return services.NewFieldValidationError(utils.ProcessValidationErrors(err), "%s", utils.ValidationMessage(err))
	}
	return nil
}

// parseID читает числовой параметр пути
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, services.NewValidationError("invalid %s '%s'", name, c.Params(name))
	}
	return uint(id), nil
}
