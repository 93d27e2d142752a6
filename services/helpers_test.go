package services

import (
	"sync"
	"testing"
	"time"

	"bakery-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB создает тестовую базу данных в памяти
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Одно соединение, иначе каждое новое получит пустую базу
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// fixedClock возвращает часы, всегда показывающие указанный момент
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(v int) *int {
	return &v
}

// recordingNotifier запоминает все опубликованные события
type recordingNotifier struct {
	mu         sync.Mutex
	stock      []StockEvent
	dailyDates []string
}

func (n *recordingNotifier) StockChanged(event StockEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stock = append(n.stock, event)
}

func (n *recordingNotifier) DailyStockChanged(date string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dailyDates = append(n.dailyDates, date)
}

// createIngredient создает ингредиент и задает ему остаток
func createIngredient(t *testing.T, ledger *LedgerService, name, unit, min, qty string) *models.Ingredient {
	t.Helper()
	ing, err := ledger.CreateIngredient("tester", IngredientInput{Name: name, Unit: unit, MinQuantity: dec(min)})
	require.NoError(t, err)
	if qty != "0" {
		require.NoError(t, ledger.ImportStock("tester", []StockItem{{IngredientID: ing.ID, Quantity: dec(qty)}}))
	}
	reloaded, err := ledger.GetIngredient(ing.ID)
	require.NoError(t, err)
	return reloaded
}

// createProduct создает видимое изделие без рецепта
func createProduct(t *testing.T, db *gorm.DB, name, price string) *models.Product {
	t.Helper()
	product := models.Product{
		Name:      name,
		Category:  "bread",
		Price:     decimal.RequireFromString(price),
		IsVisible: true,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func historyCount(t *testing.T, db *gorm.DB, ingredientID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.IngredientStockHistory{}).Where("ingredient_id = ?", ingredientID).Count(&count).Error)
	return count
}
