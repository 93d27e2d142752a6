package routes

import (
	"bakery-backend/controllers"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupDashboardRoutes настраивает маршруты для дашборда
func SetupDashboardRoutes(app *fiber.App, dashboardController *controllers.DashboardController) {
	api := app.Group("/api/dashboard", utils.AuthMiddleware)

	// Сводка на сегодня
	api.Get("/", dashboardController.GetDashboardData)
}
