package models

import (
	"time"

	"bakery-backend/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB инициализирует подключение к базе данных
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.New(config.GetLogger(), logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      false,
		}),
		TranslateError: true,
	}

	// Используем PostgreSQL для продакшена
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
	}

	// Используем SQLite для разработки
	return gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig)
}

// AutoMigrate создает и обновляет схему всех таблиц
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Ingredient{},
		&IngredientStock{},
		&IngredientStockHistory{},
		&Product{},
		&ProductImage{},
		&Recipe{},
		&DailyStock{},
		&Order{},
		&OrderDetail{},
	)
}
