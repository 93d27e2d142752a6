package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus представляет состояние остатка ингредиента
type StockStatus string

const (
	StockStatusOut     StockStatus = "out"
	StockStatusWarning StockStatus = "warning"
	StockStatusOK      StockStatus = "ok"
)

// Ingredient представляет ингредиент на складе пекарни.
// Временные метки и остаток выставляются сервисом склада явно.
type Ingredient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:255;index"`
	Unit      string    `json:"unit" gorm:"not null;size:50"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связи
	Stock *IngredientStock `json:"stock,omitempty" gorm:"foreignKey:IngredientID"`
}

// IngredientStock хранит текущий остаток ингредиента (1:1 с Ingredient)
type IngredientStock struct {
	IngredientID uint            `json:"ingredient_id" gorm:"primaryKey;autoIncrement:false"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:decimal(10,2);not null;default:0"`
	MinQuantity  decimal.Decimal `json:"min_quantity" gorm:"type:decimal(10,2);not null;default:10"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IngredientStockHistory - неизменяемая запись журнала движения остатка.
// IngredientID не является внешним ключом: журнал принадлежит складу.
type IngredientStockHistory struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	IngredientID   uint            `json:"ingredient_id" gorm:"not null;index"`
	OldQuantity    decimal.Decimal `json:"old_quantity" gorm:"type:decimal(10,2)"`
	NewQuantity    decimal.Decimal `json:"new_quantity" gorm:"type:decimal(10,2);not null"`
	OldMinQuantity decimal.Decimal `json:"old_min_quantity" gorm:"type:decimal(10,2)"`
	NewMinQuantity decimal.Decimal `json:"new_min_quantity" gorm:"type:decimal(10,2)"`
	Note           string          `json:"note" gorm:"size:500"`
	UpdatedBy      string          `json:"updated_by" gorm:"size:255"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"index"`
}
