package main

import (
	"errors"
	"strings"
	"time"

	"bakery-backend/config"
	"bakery-backend/controllers"
	"bakery-backend/models"
	"bakery-backend/routes"
	"bakery-backend/services"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)
	log := config.GetLogger()

	// Инициализация базы данных
	db, err := models.InitDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Автомиграция
	if err := models.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// Создание администратора из окружения
	if err := seedAdmin(db, cfg); err != nil {
		config.LogError(log, "main", "seedAdmin", "seed admin account", cfg.AdminEmail, err)
	}

	// Инициализация WebSocket хаба
	hub := services.NewHub()
	go hub.Run()

	app := newApp(db, cfg, hub)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// newApp собирает Fiber приложение со всеми маршрутами; hub может быть nil
func newApp(db *gorm.DB, cfg *config.Config, hub *services.Hub) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				config.LogError(config.GetLogger(), "main", "ErrorHandler", c.Path(), c.Locals("requestid"), err)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"code":    code,
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// CORS настройки
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Публикация событий склада; без хаба события не рассылаются
	var notifier services.StockNotifier
	if hub != nil {
		notifier = hub
	}

	// Инициализация сервисов
	ledger := services.NewLedgerService(db, notifier)
	daily := services.NewDailyStockService(db, notifier, cfg.Location)
	catalog := services.NewCatalogService(db, cfg.PageSize)
	products := services.NewProductService(db)
	orders := services.NewOrderService(db, daily, cfg.PageSize)

	// Инициализация контроллеров
	authController := controllers.NewAuthController(db)
	ingredientController := controllers.NewIngredientController(ledger, catalog)
	dailyStockController := controllers.NewDailyStockController(daily)
	productController := controllers.NewProductController(products, catalog)
	orderController := controllers.NewOrderController(orders)
	dashboardController := controllers.NewDashboardController(db, ledger, daily)
	userController := controllers.NewUserController(db)

	// Настройка маршрутов
	routes.SetupAuthRoutes(app, authController)
	routes.SetupIngredientRoutes(app, ingredientController)
	routes.SetupDailyStockRoutes(app, dailyStockController)
	routes.SetupProductRoutes(app, productController)
	routes.SetupOrderRoutes(app, orderController)
	routes.SetupDashboardRoutes(app, dashboardController)
	routes.SetupUserRoutes(app, userController)

	// WebSocket маршрут
	if hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(hub.HandleWebSocket))
	}

	// Общий health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		wsClients := 0
		if hub != nil {
			wsClients = hub.ClientCount()
		}
		return c.JSON(fiber.Map{
			"success":    true,
			"status":     "ok",
			"message":    "Bakery backend is running",
			"ws_clients": wsClients,
			"timestamp":  time.Now().Unix(),
		})
	})

	return app
}

// seedAdmin создает администратора из ADMIN_EMAIL/ADMIN_PASSWORD, если его еще нет
func seedAdmin(db *gorm.DB, cfg *config.Config) error {
	log := config.GetLogger()
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Info("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.WithField("email", cfg.AdminEmail).Info("admin account already exists")
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         strings.Split(cfg.AdminEmail, "@")[0],
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.WithField("email", admin.Email).Info("admin account created")
	return nil
}
