package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bakery-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultActor       = "Admin"
	defaultExportNote  = "Manual export"
	noteIngredientInit = "New ingredient initialized"
	noteAdminUpdate    = "Updated by admin"
)

// defaultMinQuantity используется, если у ингредиента почему-то не оказалось записи остатка
var defaultMinQuantity = decimal.NewFromInt(10)

// IngredientInput - данные для создания ингредиента
type IngredientInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Unit        string           `json:"unit" validate:"required,max=50"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
}

// UpdateIngredientInput - данные для изменения ингредиента.
// Незаданные Quantity/MinQuantity остаются прежними.
type UpdateIngredientInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Unit        string           `json:"unit" validate:"required,max=50"`
	Quantity    *decimal.Decimal `json:"quantity"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
}

// StockItem - строка прихода или расхода
type StockItem struct {
	IngredientID uint             `json:"ingredient_id" validate:"required"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Note         string           `json:"note" validate:"max=500"`
}

// LedgerService управляет остатками ингредиентов и журналом их изменений
type LedgerService struct {
	db       *gorm.DB
	notifier StockNotifier
	now      func() time.Time
}

// NewLedgerService создает новый сервис склада; notifier может быть nil
func NewLedgerService(db *gorm.DB, notifier StockNotifier) *LedgerService {
	return &LedgerService{db: db, notifier: notifier, now: time.Now}
}

// ClassifyStatus определяет состояние остатка: out, warning или ok
func ClassifyStatus(stock models.IngredientStock) models.StockStatus {
	if !stock.Quantity.IsPositive() {
		return models.StockStatusOut
	}
	if stock.Quantity.LessThanOrEqual(stock.MinQuantity) {
		return models.StockStatusWarning
	}
	return models.StockStatusOK
}

// CreateIngredient создает ингредиент с нулевым остатком и первой записью журнала
func (s *LedgerService) CreateIngredient(actor string, input IngredientInput) (*models.Ingredient, error) {
	name := strings.TrimSpace(input.Name)
	unit := strings.TrimSpace(input.Unit)
	if name == "" {
		return nil, NewValidationError("ingredient name is required")
	}
	if unit == "" {
		return nil, NewValidationError("unit of measure is required")
	}
	if input.MinQuantity == nil || !input.MinQuantity.IsPositive() {
		return nil, NewValidationError("minimum quantity must be greater than 0")
	}
	minQty := *input.MinQuantity

	var ingredient models.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := ingredientNameTaken(tx, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return NewValidationError("ingredient '%s' already exists", name)
		}

		now := s.now()
		ingredient = models.Ingredient{Name: name, Unit: unit, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(&ingredient).Error; err != nil {
			return translateDBError(err, "create ingredient")
		}

		stock := models.IngredientStock{
			IngredientID: ingredient.ID,
			Quantity:     decimal.Zero,
			MinQuantity:  minQty,
			UpdatedAt:    now,
		}
		if err := tx.Create(&stock).Error; err != nil {
			return translateDBError(err, "create ingredient stock")
		}
		ingredient.Stock = &stock

		return s.appendHistory(tx, ingredient.ID, decimal.Zero, decimal.Zero, minQty, minQty, noteIngredientInit, actor)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ingredient)
	return &ingredient, nil
}

// UpdateIngredient меняет название, единицу, остаток и порог ингредиента.
// Журнал пишется всегда, даже если значения не изменились.
func (s *LedgerService) UpdateIngredient(actor string, id uint, input UpdateIngredientInput) (*models.Ingredient, error) {
	name := strings.TrimSpace(input.Name)
	unit := strings.TrimSpace(input.Unit)
	if name == "" {
		return nil, NewValidationError("ingredient name is required")
	}
	if unit == "" {
		return nil, NewValidationError("unit of measure is required")
	}
	if input.MinQuantity != nil && input.MinQuantity.IsNegative() {
		return nil, NewValidationError("minimum quantity cannot be negative")
	}
	if input.Quantity != nil && input.Quantity.IsNegative() {
		return nil, NewValidationError("quantity cannot be negative")
	}

	var ingredient *models.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ingredient, err = loadIngredient(tx, id)
		if err != nil {
			return err
		}

		if !strings.EqualFold(ingredient.Name, name) {
			taken, err := ingredientNameTaken(tx, name, id)
			if err != nil {
				return err
			}
			if taken {
				return NewValidationError("ingredient name '%s' is already in use", name)
			}
		}

		stock, err := s.ensureStock(tx, ingredient)
		if err != nil {
			return err
		}

		newQty := stock.Quantity
		if input.Quantity != nil {
			newQty = *input.Quantity
		}
		newMin := stock.MinQuantity
		if input.MinQuantity != nil {
			newMin = *input.MinQuantity
		}

		now := s.now()
		if err := tx.Model(&models.Ingredient{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":       name,
			"unit":       unit,
			"updated_at": now,
		}).Error; err != nil {
			return translateDBError(err, "update ingredient")
		}
		ingredient.Name = name
		ingredient.Unit = unit
		ingredient.UpdatedAt = now

		return s.applyStockChange(tx, ingredient, stock, newQty, newMin, noteAdminUpdate, actor)
	})
	if err != nil {
		return nil, err
	}

	s.publish(*ingredient)
	return ingredient, nil
}

// ImportStock оприходует ингредиенты. Строки без количества или с количеством <= 0
// пропускаются; неизвестный ингредиент отменяет всю партию.
func (s *LedgerService) ImportStock(actor string, items []StockItem) error {
	var changed []models.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		changed = changed[:0]
		for _, item := range items {
			if item.Quantity == nil || !item.Quantity.IsPositive() {
				continue
			}

			ingredient, err := loadIngredient(tx, item.IngredientID)
			if err != nil {
				return err
			}
			if ingredient.Stock == nil {
				return NewNotFoundError("no stock record for ingredient id %d", item.IngredientID)
			}

			stock := *ingredient.Stock
			newQty := stock.Quantity.Add(*item.Quantity)
			note := fmt.Sprintf("Import: +%s %s", item.Quantity.String(), ingredient.Unit)
			if err := s.applyStockChange(tx, ingredient, &stock, newQty, stock.MinQuantity, note, actor); err != nil {
				return err
			}
			changed = append(changed, *ingredient)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ingredient := range changed {
		s.publish(ingredient)
	}
	return nil
}

// ExportStock списывает ингредиенты. Если хотя бы одной строки не хватает остатка,
// вся партия отменяется.
func (s *LedgerService) ExportStock(actor string, items []StockItem) error {
	var changed []models.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		changed = changed[:0]
		for _, item := range items {
			if item.Quantity == nil || !item.Quantity.IsPositive() {
				return NewValidationError("export quantity for ingredient id %d must be greater than 0", item.IngredientID)
			}

			ingredient, err := loadIngredient(tx, item.IngredientID)
			if err != nil {
				return err
			}
			if ingredient.Stock == nil {
				return NewNotFoundError("no stock record for ingredient id %d", item.IngredientID)
			}

			stock := *ingredient.Stock
			if stock.Quantity.LessThan(*item.Quantity) {
				return NewInsufficientStockError("ingredient '%s' has only %s left, cannot export %s",
					ingredient.Name, stock.Quantity.String(), item.Quantity.String())
			}

			note := strings.TrimSpace(item.Note)
			if note == "" {
				note = defaultExportNote
			}
			newQty := stock.Quantity.Sub(*item.Quantity)
			if err := s.applyStockChange(tx, ingredient, &stock, newQty, stock.MinQuantity, note, actor); err != nil {
				return err
			}
			changed = append(changed, *ingredient)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ingredient := range changed {
		s.publish(ingredient)
	}
	return nil
}

// DeleteIngredient удаляет ингредиент вместе с журналом, остатком и строками рецептов
func (s *LedgerService) DeleteIngredient(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadIngredient(tx, id); err != nil {
			return err
		}
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.IngredientStockHistory{}).Error; err != nil {
			return fmt.Errorf("delete stock history: %w", err)
		}
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.Recipe{}).Error; err != nil {
			return fmt.Errorf("delete recipe lines: %w", err)
		}
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.IngredientStock{}).Error; err != nil {
			return fmt.Errorf("delete ingredient stock: %w", err)
		}
		if err := tx.Delete(&models.Ingredient{}, id).Error; err != nil {
			return fmt.Errorf("delete ingredient: %w", err)
		}
		return nil
	})
}

// GetIngredient возвращает ингредиент с остатком
func (s *LedgerService) GetIngredient(id uint) (*models.Ingredient, error) {
	return loadIngredient(s.db, id)
}

// ListIngredients возвращает все ингредиенты с остатками
func (s *LedgerService) ListIngredients() ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.db.Preload("Stock").Order("id ASC").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

// History возвращает журнал ингредиента, новые записи первыми
func (s *LedgerService) History(id uint) ([]models.IngredientStockHistory, error) {
	if _, err := loadIngredient(s.db, id); err != nil {
		return nil, err
	}
	var history []models.IngredientStockHistory
	err := s.db.Where("ingredient_id = ?", id).
		Order("updated_at DESC").Order("id DESC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("load stock history: %w", err)
	}
	return history, nil
}

// LowStock возвращает ингредиенты в состоянии out или warning
func (s *LedgerService) LowStock() ([]models.Ingredient, error) {
	ingredients, err := s.ListIngredients()
	if err != nil {
		return nil, err
	}

	low := make([]models.Ingredient, 0)
	for _, ing := range ingredients {
		if ing.Stock == nil {
			continue
		}
		if ClassifyStatus(*ing.Stock) != models.StockStatusOK {
			low = append(low, ing)
		}
	}

	// Сначала закончившиеся, затем по названию
	sort.SliceStable(low, func(i, j int) bool {
		si, sj := ClassifyStatus(*low[i].Stock), ClassifyStatus(*low[j].Stock)
		if si != sj {
			return si == models.StockStatusOut
		}
		return strings.ToLower(low[i].Name) < strings.ToLower(low[j].Name)
	})
	return low, nil
}

// applyStockChange обновляет остаток и пишет ровно одну запись журнала
func (s *LedgerService) applyStockChange(tx *gorm.DB, ingredient *models.Ingredient, stock *models.IngredientStock,
	newQty, newMin decimal.Decimal, note, actor string) error {
	oldQty, oldMin := stock.Quantity, stock.MinQuantity
	now := s.now()

	err := tx.Model(&models.IngredientStock{}).
		Where("ingredient_id = ?", stock.IngredientID).
		Updates(map[string]interface{}{
			"quantity":     newQty,
			"min_quantity": newMin,
			"updated_at":   now,
		}).Error
	if err != nil {
		return fmt.Errorf("update ingredient stock: %w", err)
	}

	stock.Quantity = newQty
	stock.MinQuantity = newMin
	stock.UpdatedAt = now
	ingredient.Stock = stock

	return s.appendHistory(tx, stock.IngredientID, oldQty, newQty, oldMin, newMin, note, actor)
}

func (s *LedgerService) appendHistory(tx *gorm.DB, ingredientID uint, oldQty, newQty, oldMin, newMin decimal.Decimal, note, actor string) error {
	if strings.TrimSpace(actor) == "" {
		actor = defaultActor
	}
	record := models.IngredientStockHistory{
		IngredientID:   ingredientID,
		OldQuantity:    oldQty,
		NewQuantity:    newQty,
		OldMinQuantity: oldMin,
		NewMinQuantity: newMin,
		Note:           note,
		UpdatedBy:      actor,
		UpdatedAt:      s.now(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("append stock history: %w", err)
	}
	return nil
}

// ensureStock возвращает запись остатка, создавая пустую при ее отсутствии
func (s *LedgerService) ensureStock(tx *gorm.DB, ingredient *models.Ingredient) (*models.IngredientStock, error) {
	if ingredient.Stock != nil {
		stock := *ingredient.Stock
		return &stock, nil
	}
	stock := models.IngredientStock{
		IngredientID: ingredient.ID,
		Quantity:     decimal.Zero,
		MinQuantity:  defaultMinQuantity,
		UpdatedAt:    s.now(),
	}
	if err := tx.Create(&stock).Error; err != nil {
		return nil, translateDBError(err, "create ingredient stock")
	}
	return &stock, nil
}

func (s *LedgerService) publish(ingredient models.Ingredient) {
	if s.notifier == nil || ingredient.Stock == nil {
		return
	}
	s.notifier.StockChanged(StockEvent{
		IngredientID: ingredient.ID,
		Name:         ingredient.Name,
		Unit:         ingredient.Unit,
		Quantity:     ingredient.Stock.Quantity,
		MinQuantity:  ingredient.Stock.MinQuantity,
		Status:       ClassifyStatus(*ingredient.Stock),
	})
}

func loadIngredient(db *gorm.DB, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := db.Preload("Stock").First(&ingredient, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("ingredient id %d not found", id)
		}
		return nil, fmt.Errorf("load ingredient %d: %w", id, err)
	}
	return &ingredient, nil
}

// ingredientNameTaken проверяет название без учета регистра, исключая exceptID
func ingredientNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	taken, err := nameTaken(db.Model(&models.Ingredient{}), name, exceptID)
	if err != nil {
		return false, fmt.Errorf("check ingredient name: %w", err)
	}
	return taken, nil
}

// nameTaken сравнивает названия в Go: LOWER в SQLite приводит к нижнему регистру только ASCII
func nameTaken(query *gorm.DB, name string, exceptID uint) (bool, error) {
	var rows []struct {
		ID   uint
		Name string
	}
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Select("id", "name").Scan(&rows).Error; err != nil {
		return false, err
	}
	for _, row := range rows {
		if strings.EqualFold(row.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
