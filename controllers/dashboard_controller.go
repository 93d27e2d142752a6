package controllers

import (
	"bakery-backend/models"
	"bakery-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardController контроллер сводки для главного экрана админки
type DashboardController struct {
	db     *gorm.DB
	ledger *services.LedgerService
	daily  *services.DailyStockService
}

// NewDashboardController создает новый экземпляр DashboardController
func NewDashboardController(db *gorm.DB, ledger *services.LedgerService, daily *services.DailyStockService) *DashboardController {
	return &DashboardController{db: db, ledger: ledger, daily: daily}
}

// OrderSummary - заказы за день
type OrderSummary struct {
	Pending   int64           `json:"pending"`
	Completed int64           `json:"completed"`
	Cancelled int64           `json:"cancelled"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// GetDashboardData возвращает сводку на сегодня: нехватка ингредиентов,
// витрина и заказы
func (dc *DashboardController) GetDashboardData(c *fiber.Ctx) error {
	today := dc.daily.Today()

	lowStock, err := dc.ledger.LowStock()
	if err != nil {
		return respondError(c, err)
	}

	showcase, err := dc.daily.GetByDate(today)
	if err != nil {
		return respondError(c, err)
	}

	var orders OrderSummary
	for status, count := range map[models.OrderStatus]*int64{
		models.OrderStatusPending:   &orders.Pending,
		models.OrderStatusCompleted: &orders.Completed,
		models.OrderStatusCancelled: &orders.Cancelled,
	} {
		if err := dc.db.Model(&models.Order{}).Where("order_date = ? AND status = ?", today, status).Count(count).Error; err != nil {
			return respondError(c, err)
		}
	}

	// Выручка считается только по завершенным заказам
	var completed []models.Order
	if err := dc.db.Select("total_amount").
		Where("order_date = ? AND status = ?", today, models.OrderStatusCompleted).
		Find(&completed).Error; err != nil {
		return respondError(c, err)
	}
	orders.Revenue = decimal.Zero
	for _, o := range completed {
		orders.Revenue = orders.Revenue.Add(o.TotalAmount)
	}

	outOfStock := 0
	for _, ing := range lowStock {
		if services.ClassifyStatus(*ing.Stock) == models.StockStatusOut {
			outOfStock++
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"date":         today,
			"low_stock":    withStatus(lowStock...),
			"out_of_stock": outOfStock,
			"showcase":     showcase,
			"orders":       orders,
		},
	})
}
