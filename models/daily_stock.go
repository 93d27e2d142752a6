package models

import "time"

// DateLayout - формат даты дневного остатка
const DateLayout = "2006-01-02"

// DailyStock - выпуск и остаток изделия на витрине за конкретный день.
// AvailableQuantity меняется только на разницу InitialQuantity, а не перезаписывается.
type DailyStock struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ProductID         uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_daily_stock_product_date"`
	StockDate         string    `json:"date" gorm:"column:stock_date;size:10;not null;index;uniqueIndex:idx_daily_stock_product_date"`
	InitialQuantity   int       `json:"initial_quantity" gorm:"not null;default:0"`
	AvailableQuantity int       `json:"available_quantity" gorm:"not null;default:0"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Связи
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
