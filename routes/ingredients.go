package routes

import (
	"bakery-backend/controllers"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupIngredientRoutes настраивает маршруты склада ингредиентов
func SetupIngredientRoutes(app *fiber.App, ingredientController *controllers.IngredientController) {
	// Все маршруты склада требуют авторизации
	ingredients := app.Group("/api/ingredients", utils.AuthMiddleware)

	// GET /api/ingredients - поиск ингредиентов (keyword, status, page, size)
	ingredients.Get("/", ingredientController.FilterIngredients)

	// GET /api/ingredients/low-stock - закончившиеся и заканчивающиеся (должен быть перед параметрическим маршрутом)
	ingredients.Get("/low-stock", ingredientController.LowStock)

	// POST /api/ingredients/import - приход партии
	ingredients.Post("/import", ingredientController.ImportStock)

	// POST /api/ingredients/export - расход партии
	ingredients.Post("/export", ingredientController.ExportStock)

	// POST /api/ingredients - создать ингредиент
	ingredients.Post("/", ingredientController.CreateIngredient)

	// GET /api/ingredients/:id - получить ингредиент
	ingredients.Get("/:id", ingredientController.GetIngredient)

	// PUT /api/ingredients/:id - изменить ингредиент и остаток
	ingredients.Put("/:id", ingredientController.UpdateIngredient)

	// DELETE /api/ingredients/:id - удалить ингредиент вместе с журналом
	ingredients.Delete("/:id", ingredientController.DeleteIngredient)

	// GET /api/ingredients/:id/history - журнал изменений остатка
	ingredients.Get("/:id/history", ingredientController.History)

	// GET /api/ingredients/:id/history.xlsx - журнал в формате Excel
	ingredients.Get("/:id/history.xlsx", ingredientController.HistoryXLSX)
}
