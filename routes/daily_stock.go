package routes

import (
	"bakery-backend/controllers"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupDailyStockRoutes настраивает маршруты дневных остатков
func SetupDailyStockRoutes(app *fiber.App, dailyStockController *controllers.DailyStockController) {
	daily := app.Group("/api/daily-stock", utils.AuthMiddleware)

	// GET /api/daily-stock?date=YYYY-MM-DD - остатки за дату, по умолчанию сегодня
	daily.Get("/", dailyStockController.GetDailyStock)

	// POST /api/daily-stock - задать выпуск на сегодня или будущую дату
	daily.Post("/", dailyStockController.UpdateDailyStock)
}
