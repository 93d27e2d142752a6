package controllers

import (
	"bakery-backend/services"

	"github.com/gofiber/fiber/v2"
)

// DailyStockController контроллер дневных остатков изделий
type DailyStockController struct {
	daily *services.DailyStockService
}

// NewDailyStockController создает новый экземпляр DailyStockController
func NewDailyStockController(daily *services.DailyStockService) *DailyStockController {
	return &DailyStockController{daily: daily}
}

// DailyStockRequest - выпуск изделий на дату
type DailyStockRequest struct {
	Date  string                    `json:"date" validate:"required"`
	Items []services.DailyStockItem `json:"items" validate:"required,min=1,dive"`
}

// GetDailyStock возвращает остатки за дату (по умолчанию сегодня)
func (dc *DailyStockController) GetDailyStock(c *fiber.Ctx) error {
	date := c.Query("date", dc.daily.Today())

	stocks, err := dc.daily.GetByDate(date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Daily stock",
		"date":    date,
		"data":    stocks,
	})
}

// UpdateDailyStock задает выпуск изделий на сегодня или будущую дату
func (dc *DailyStockController) UpdateDailyStock(c *fiber.Ctx) error {
	var req DailyStockRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	stocks, err := dc.daily.ApplyUpdate(req.Date, req.Items)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Daily stock updated", stocks)
}
