package services

import (
	"errors"
	"fmt"
	"strings"

	"bakery-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItemInput - позиция нового заказа
type OrderItemInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

// OrderInput - данные нового заказа; пустая дата означает сегодня
type OrderInput struct {
	CustomerName string           `json:"customer_name" validate:"required,max=150"`
	Phone        string           `json:"phone" validate:"max=30"`
	OrderDate    string           `json:"order_date"`
	Items        []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderService ведет заказы и списывает изделия с дневного остатка
type OrderService struct {
	db          *gorm.DB
	daily       *DailyStockService
	defaultSize int
}

// NewOrderService создает новый сервис заказов
func NewOrderService(db *gorm.DB, daily *DailyStockService, defaultSize int) *OrderService {
	if defaultSize <= 0 {
		defaultSize = 5
	}
	return &OrderService{db: db, daily: daily, defaultSize: defaultSize}
}

// CreateOrder создает заказ по текущим ценам со скидкой и уменьшает доступный остаток дня
func (s *OrderService) CreateOrder(actor string, input OrderInput) (*models.Order, error) {
	customer := strings.TrimSpace(input.CustomerName)
	if customer == "" {
		return nil, NewValidationError("customer name is required")
	}
	if len(input.Items) == 0 {
		return nil, NewValidationError("order must contain at least one item")
	}

	date := input.OrderDate
	if strings.TrimSpace(date) == "" {
		date = s.daily.Today()
	}
	day, err := s.daily.parseDate(date)
	if err != nil {
		return nil, err
	}

	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, NewValidationError("quantity for product id %d must be greater than 0", item.ProductID)
		}
	}

	var orderID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		details := make([]models.OrderDetail, 0, len(input.Items))
		total := decimal.Zero

		for _, item := range input.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return NewNotFoundError("product id %d not found", item.ProductID)
				}
				return fmt.Errorf("load product: %w", err)
			}
			if !product.IsVisible {
				return NewValidationError("product '%s' is not available for sale", product.Name)
			}

			if err := s.daily.Consume(tx, product.ID, day, item.Quantity); err != nil {
				return err
			}

			price := product.SalePrice()
			total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			details = append(details, models.OrderDetail{
				ProductID: product.ID,
				Price:     price,
				Quantity:  item.Quantity,
			})
		}

		order := models.Order{
			CustomerName: customer,
			Phone:        strings.TrimSpace(input.Phone),
			OrderDate:    day,
			Status:       models.OrderStatusPending,
			TotalAmount:  total.Round(2),
			CreatedBy:    actor,
		}
		if err := tx.Create(&order).Error; err != nil {
			return translateDBError(err, "create order")
		}

		for i := range details {
			details[i].OrderID = order.ID
		}
		if err := tx.Create(&details).Error; err != nil {
			return fmt.Errorf("create order details: %w", err)
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.daily.notifyDate(day)
	return s.GetOrder(orderID)
}

// ListOrders возвращает страницу заказов, новые первыми; status фильтрует по статусу
func (s *OrderService) ListOrders(status string, page, size int) (Page[models.Order], error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = s.defaultSize
	}

	query := s.db.Model(&models.Order{})
	if status = strings.TrimSpace(status); status != "" && status != StatusAll {
		if !validOrderStatus(models.OrderStatus(status)) {
			return Page[models.Order]{}, NewValidationError("unknown order status '%s'", status)
		}
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.Order]{}, fmt.Errorf("count orders: %w", err)
	}

	orders := make([]models.Order, 0)
	if int64(page*size) < total {
		err := query.Preload("Details").Order("id DESC").Offset(page * size).Limit(size).Find(&orders).Error
		if err != nil {
			return Page[models.Order]{}, fmt.Errorf("list orders: %w", err)
		}
	}

	return Page[models.Order]{
		Items:      orders,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages(total, size),
	}, nil
}

// GetOrder возвращает заказ с позициями и изделиями
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Details.Product").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order id %d not found", id)
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

// UpdateStatus переводит заказ из pending в completed или cancelled.
// При отмене изделия возвращаются в доступный остаток.
func (s *OrderService) UpdateStatus(id uint, status models.OrderStatus) (*models.Order, error) {
	if status != models.OrderStatusCompleted && status != models.OrderStatusCancelled {
		return nil, NewValidationError("cannot change order status to '%s'", status)
	}

	var date string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusPending {
			return NewValidationError("order id %d is already %s", id, order.Status)
		}

		if status == models.OrderStatusCancelled {
			if err := s.restoreDetails(tx, order); err != nil {
				return err
			}
			date = order.OrderDate
		}

		if err := tx.Model(order).Update("status", status).Error; err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if date != "" {
		s.daily.notifyDate(date)
	}
	return s.GetOrder(id)
}

// DeleteOrder удаляет заказ; для незавершенного заказа изделия возвращаются в остаток
func (s *OrderService) DeleteOrder(id uint) error {
	var date string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}

		if order.Status == models.OrderStatusPending {
			if err := s.restoreDetails(tx, order); err != nil {
				return err
			}
			date = order.OrderDate
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderDetail{}).Error; err != nil {
			return fmt.Errorf("delete order details: %w", err)
		}
		if err := tx.Delete(&models.Order{}, id).Error; err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if date != "" {
		s.daily.notifyDate(date)
	}
	return nil
}

func (s *OrderService) restoreDetails(tx *gorm.DB, order *models.Order) error {
	for _, detail := range order.Details {
		if err := s.daily.Restore(tx, detail.ProductID, order.OrderDate, detail.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func loadOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Preload("Details").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order id %d not found", id)
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

func validOrderStatus(status models.OrderStatus) bool {
	switch status {
	case models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusCancelled:
		return true
	}
	return false
}
