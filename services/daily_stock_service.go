package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bakery-backend/models"

	"gorm.io/gorm"
)

// DailyStockItem - заданный выпуск изделия на день; пустое количество означает 0
type DailyStockItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  *int `json:"quantity"`
}

// DailyStockService ведет дневные остатки изделий на витрине
type DailyStockService struct {
	db       *gorm.DB
	notifier StockNotifier
	location *time.Location
	now      func() time.Time
}

// NewDailyStockService создает новый сервис дневных остатков.
// location определяет, какая дата считается сегодняшней.
func NewDailyStockService(db *gorm.DB, notifier StockNotifier, location *time.Location) *DailyStockService {
	if location == nil {
		location = time.Local
	}
	return &DailyStockService{db: db, notifier: notifier, location: location, now: time.Now}
}

// Today возвращает сегодняшнюю дату в формате YYYY-MM-DD
func (s *DailyStockService) Today() string {
	return s.now().In(s.location).Format(models.DateLayout)
}

// GetByDate возвращает дневные остатки за дату вместе с изделиями
func (s *DailyStockService) GetByDate(date string) ([]models.DailyStock, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}

	stocks := make([]models.DailyStock, 0)
	err = s.db.Preload("Product").
		Where("stock_date = ?", day).
		Order("product_id ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, fmt.Errorf("load daily stock for %s: %w", day, err)
	}
	return stocks, nil
}

// ApplyUpdate задает выпуск изделий на дату. Для существующей записи доступный остаток
// сдвигается на разницу между новым и прежним выпуском; прошедшие даты запрещены.
func (s *DailyStockService) ApplyUpdate(date string, items []DailyStockItem) ([]models.DailyStock, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	if day < s.Today() {
		return nil, NewValidationError("cannot update stock for a past date (%s)", day)
	}

	for _, item := range items {
		if item.Quantity != nil && *item.Quantity < 0 {
			return nil, NewValidationError("quantity for product id %d cannot be negative", item.ProductID)
		}
	}

	touched := make([]uint, 0, len(items))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			newInitial := 0
			if item.Quantity != nil {
				newInitial = *item.Quantity
			}

			var stock models.DailyStock
			err := tx.Where("product_id = ? AND stock_date = ?", item.ProductID, day).First(&stock).Error
			switch {
			case err == nil:
				available := stock.AvailableQuantity + newInitial - stock.InitialQuantity
				if err := tx.Model(&models.DailyStock{}).Where("id = ?", stock.ID).Updates(map[string]interface{}{
					"initial_quantity":   newInitial,
					"available_quantity": available,
					"updated_at":         s.now(),
				}).Error; err != nil {
					return fmt.Errorf("update daily stock: %w", err)
				}

			case errors.Is(err, gorm.ErrRecordNotFound):
				var product models.Product
				if err := tx.Select("id").First(&product, item.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return NewNotFoundError("product id %d not found", item.ProductID)
					}
					return fmt.Errorf("load product %d: %w", item.ProductID, err)
				}
				stock = models.DailyStock{
					ProductID:         item.ProductID,
					StockDate:         day,
					InitialQuantity:   newInitial,
					AvailableQuantity: newInitial,
					UpdatedAt:         s.now(),
				}
				if err := tx.Create(&stock).Error; err != nil {
					return translateDBError(err, "create daily stock")
				}

			default:
				return fmt.Errorf("load daily stock: %w", err)
			}
			touched = append(touched, item.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(touched) > 0 {
		s.notifyDate(day)
	}

	result := make([]models.DailyStock, 0, len(touched))
	if len(touched) == 0 {
		return result, nil
	}
	err = s.db.Preload("Product").
		Where("stock_date = ? AND product_id IN ?", day, touched).
		Order("product_id ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("reload daily stock: %w", err)
	}
	return result, nil
}

// Consume уменьшает доступный остаток изделия за дату внутри транзакции tx
func (s *DailyStockService) Consume(tx *gorm.DB, productID uint, date string, qty int) error {
	var stock models.DailyStock
	err := tx.Where("product_id = ? AND stock_date = ?", productID, date).First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewInsufficientStockError("product id %d has no stock for %s", productID, date)
		}
		return fmt.Errorf("load daily stock: %w", err)
	}
	if stock.AvailableQuantity < qty {
		return NewInsufficientStockError("product id %d has only %d available on %s, requested %d",
			productID, stock.AvailableQuantity, date, qty)
	}

	return s.shiftAvailable(tx, stock.ID, -qty)
}

// Restore возвращает количество в доступный остаток; отсутствие записи не является ошибкой
func (s *DailyStockService) Restore(tx *gorm.DB, productID uint, date string, qty int) error {
	var stock models.DailyStock
	err := tx.Where("product_id = ? AND stock_date = ?", productID, date).First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load daily stock: %w", err)
	}
	return s.shiftAvailable(tx, stock.ID, qty)
}

func (s *DailyStockService) shiftAvailable(tx *gorm.DB, id uint, delta int) error {
	err := tx.Model(&models.DailyStock{}).Where("id = ?", id).Updates(map[string]interface{}{
		"available_quantity": gorm.Expr("available_quantity + ?", delta),
		"updated_at":         s.now(),
	}).Error
	if err != nil {
		return fmt.Errorf("update available quantity: %w", err)
	}
	return nil
}

// notifyDate рассылает событие об изменении остатков за дату
func (s *DailyStockService) notifyDate(date string) {
	if s.notifier != nil {
		s.notifier.DailyStockChanged(date)
	}
}

// parseDate проверяет формат YYYY-MM-DD и возвращает нормализованную дату
func (s *DailyStockService) parseDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", NewValidationError("date is required")
	}
	t, err := time.ParseInLocation(models.DateLayout, date, s.location)
	if err != nil {
		return "", NewValidationError("invalid date '%s', expected YYYY-MM-DD", date)
	}
	return t.Format(models.DateLayout), nil
}
