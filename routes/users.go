package routes

import (
	"bakery-backend/controllers"
	"bakery-backend/models"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes настраивает маршруты управления сотрудниками (только для администраторов)
func SetupUserRoutes(app *fiber.App, userController *controllers.UserController) {
	users := app.Group("/api/users", utils.AuthMiddleware, utils.RequireRole(models.RoleAdmin))

	users.Get("/", userController.ListUsers)        // GET /api/users - список сотрудников
	users.Post("/", userController.CreateUser)      // POST /api/users - завести сотрудника
	users.Get("/:id", userController.GetProfile)    // GET /api/users/:id - получить сотрудника
	users.Put("/:id", userController.UpdateProfile) // PUT /api/users/:id - изменить или заблокировать сотрудника
}
