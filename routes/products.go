package routes

import (
	"bakery-backend/controllers"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupProductRoutes настраивает маршруты изделий
func SetupProductRoutes(app *fiber.App, productController *controllers.ProductController) {
	products := app.Group("/api/products", utils.AuthMiddleware)

	// GET /api/products - поиск изделий (id, keyword, category, sort, page, size)
	products.Get("/", productController.FilterProducts)

	// POST /api/products/production-plan - потребность в ингредиентах (должен быть перед параметрическим маршрутом)
	products.Post("/production-plan", productController.ProductionPlan)

	// POST /api/products - создать изделие
	products.Post("/", productController.CreateProduct)

	// GET /api/products/:id - получить изделие с рецептом
	products.Get("/:id", productController.GetProduct)

	// PUT /api/products/:id - изменить изделие
	products.Put("/:id", productController.UpdateProduct)

	// DELETE /api/products/:id - удалить изделие
	products.Delete("/:id", productController.DeleteProduct)

	// POST /api/products/:id/toggle-visibility - скрыть или показать изделие
	products.Post("/:id/toggle-visibility", productController.ToggleVisibility)

	// POST /api/products/:id/discount - задать скидку
	products.Post("/:id/discount", productController.UpdateDiscount)
}
