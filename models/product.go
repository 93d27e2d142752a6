package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product представляет изделие пекарни (торт, хлеб и т.д.)
type Product struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"not null;size:150;uniqueIndex"`
	Category        string          `json:"category" gorm:"size:100;index"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Description     string          `json:"description" gorm:"type:text"`
	IsVisible       bool            `json:"is_visible" gorm:"not null"`
	DiscountPercent int             `json:"discount_percent" gorm:"not null;default:0"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Связи
	Images  []ProductImage `json:"images" gorm:"foreignKey:ProductID"`
	Recipes []Recipe       `json:"recipes" gorm:"foreignKey:ProductID"`
}

// ProductImage - ссылка на изображение изделия (файл хранится вне приложения)
type ProductImage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID uint   `json:"product_id" gorm:"not null;index"`
	ImageURL  string `json:"image_url" gorm:"not null;size:500"`
	IsMain    bool   `json:"is_main" gorm:"default:false"`
}

// Recipe - строка рецепта: сколько ингредиента уходит на одно изделие
type Recipe struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	ProductID    uint            `json:"product_id" gorm:"not null;index"`
	IngredientID uint            `json:"ingredient_id" gorm:"not null;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(10,4);not null"`

	// Связи
	Ingredient *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
}

// MainImage возвращает главное изображение, либо первое, если главное не выбрано
func (p *Product) MainImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// SalePrice возвращает цену с учетом скидки, округленную до копеек
func (p *Product) SalePrice() decimal.Decimal {
	if p.DiscountPercent <= 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(int64(100 - p.DiscountPercent)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

// BeforeCreate хук для установки времени создания
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (p *Product) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}
