package routes

import (
	"bakery-backend/controllers"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupOrderRoutes настраивает маршруты заказов
func SetupOrderRoutes(app *fiber.App, orderController *controllers.OrderController) {
	orders := app.Group("/api/orders", utils.AuthMiddleware)

	// GET /api/orders - список заказов (status, page, size)
	orders.Get("/", orderController.ListOrders)

	// POST /api/orders - создать заказ
	orders.Post("/", orderController.CreateOrder)

	// GET /api/orders/:id - получить заказ
	orders.Get("/:id", orderController.GetOrder)

	// PUT /api/orders/:id/status - завершить или отменить заказ
	orders.Put("/:id/status", orderController.UpdateStatus)

	// DELETE /api/orders/:id - удалить заказ
	orders.Delete("/:id", orderController.DeleteOrder)
}
