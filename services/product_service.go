package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"bakery-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput - данные для создания или изменения изделия.
// Recipes и RecipesJSON взаимозаменяемы; если не передано ни то, ни другое,
// рецепт существующего изделия не меняется.
type ProductInput struct {
	Name            string           `json:"name" validate:"required,min=3,max=150"`
	Category        string           `json:"category" validate:"required,max=100"`
	Price           *decimal.Decimal `json:"price" validate:"required"`
	Description     string           `json:"description"`
	IsVisible       *bool            `json:"is_visible"`
	DiscountPercent int              `json:"discount_percent" validate:"min=0,max=100"`
	Recipes         []RecipeLine     `json:"recipes"`
	RecipesJSON     string           `json:"recipes_json"`
	NewImageURLs    []string         `json:"new_image_urls" validate:"dive,max=500"`
	DeleteImageIDs  []uint           `json:"delete_image_ids"`
	MainImageID     *uint            `json:"main_image_id"`
}

// PlanItem - запланированный выпуск изделия
type PlanItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=0"`
}

// PlanLine - потребность в одном ингредиенте
type PlanLine struct {
	IngredientID uint            `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Required     decimal.Decimal `json:"required"`
	OnHand       decimal.Decimal `json:"on_hand"`
	Shortage     decimal.Decimal `json:"shortage"`
	Sufficient   bool            `json:"sufficient"`
}

// ProductionPlan - сводная потребность в ингредиентах на запланированный выпуск
type ProductionPlan struct {
	Lines    []PlanLine `json:"lines"`
	Feasible bool       `json:"feasible"`
}

// ProductService управляет изделиями, их рецептами и изображениями
type ProductService struct {
	db *gorm.DB
}

// NewProductService создает новый сервис изделий
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// CreateProduct создает изделие
func (s *ProductService) CreateProduct(input ProductInput) (*models.Product, error) {
	return s.SaveProduct(nil, input)
}

// UpdateProduct изменяет изделие
func (s *ProductService) UpdateProduct(id uint, input ProductInput) (*models.Product, error) {
	return s.SaveProduct(&id, input)
}

// SaveProduct создает (id == nil) или изменяет изделие вместе с рецептом и изображениями
func (s *ProductService) SaveProduct(id *uint, input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	category := strings.TrimSpace(input.Category)

	if n := utf8.RuneCountInString(name); n < 3 || n > 150 {
		return nil, NewValidationError("product name must be between 3 and 150 characters")
	}
	if n := utf8.RuneCountInString(category); n < 1 || n > 100 {
		return nil, NewValidationError("category must be between 1 and 100 characters")
	}
	if input.Price == nil || !input.Price.IsPositive() {
		return nil, NewValidationError("price must be greater than 0")
	}
	if !input.Price.Equal(input.Price.Round(2)) {
		return nil, NewValidationError("price must have at most 2 decimal places")
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return nil, NewValidationError("discount must be between 0 and 100")
	}

	recipes := input.Recipes
	recipeGiven := input.Recipes != nil
	if !recipeGiven && strings.TrimSpace(input.RecipesJSON) != "" {
		parsed, err := ParseRecipesJSON(input.RecipesJSON)
		if err != nil {
			return nil, err
		}
		recipes = parsed
		recipeGiven = true
	}
	if err := ValidateRecipe(recipes); err != nil {
		return nil, err
	}

	var productID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var except uint
		var product models.Product
		if id != nil {
			if err := tx.First(&product, *id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return NewNotFoundError("product id %d not found", *id)
				}
				return fmt.Errorf("load product: %w", err)
			}
			except = product.ID
		}

		taken, err := productNameTaken(tx, name, except)
		if err != nil {
			return err
		}
		if taken {
			return NewValidationError("product name '%s' already exists", name)
		}

		if err := ensureRecipeIngredients(tx, recipes); err != nil {
			return err
		}

		visible := true
		if input.IsVisible != nil {
			visible = *input.IsVisible
		} else if id != nil {
			visible = product.IsVisible
		}

		if id == nil {
			product = models.Product{
				Name:            name,
				Category:        category,
				Price:           *input.Price,
				Description:     input.Description,
				IsVisible:       visible,
				DiscountPercent: input.DiscountPercent,
			}
			if err := tx.Create(&product).Error; err != nil {
				return translateDBError(err, "create product")
			}
		} else {
			if err := tx.Model(&product).Updates(map[string]interface{}{
				"name":             name,
				"category":         category,
				"price":            *input.Price,
				"description":      input.Description,
				"is_visible":       visible,
				"discount_percent": input.DiscountPercent,
			}).Error; err != nil {
				return translateDBError(err, "update product")
			}
		}
		productID = product.ID

		if id == nil || recipeGiven {
			if err := ReplaceRecipe(tx, product.ID, recipes); err != nil {
				return err
			}
		}

		return syncProductImages(tx, product.ID, input)
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(productID)
}

// GetProduct возвращает изделие с изображениями и рецептом
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Recipes.Ingredient").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product id %d not found", id)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return &product, nil
}

// DeleteProduct удаляет изделие вместе с изображениями, рецептом и дневными остатками.
// Изделие, которое уже есть в заказах, удалить нельзя.
func (s *ProductService) DeleteProduct(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id").First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("product id %d not found", id)
			}
			return fmt.Errorf("load product: %w", err)
		}

		var ordered int64
		if err := tx.Model(&models.OrderDetail{}).Where("product_id = ?", id).Count(&ordered).Error; err != nil {
			return fmt.Errorf("check product orders: %w", err)
		}
		if ordered > 0 {
			return NewValidationError("product id %d is used in %d order lines and cannot be deleted", id, ordered)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("delete product images: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Recipe{}).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.DailyStock{}).Error; err != nil {
			return fmt.Errorf("delete daily stock: %w", err)
		}
		if err := tx.Delete(&models.Product{}, id).Error; err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
}

// ToggleVisibility переключает видимость изделия и возвращает новое значение
func (s *ProductService) ToggleVisibility(id uint) (bool, error) {
	var visible bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("product id %d not found", id)
			}
			return fmt.Errorf("load product: %w", err)
		}
		visible = !product.IsVisible
		if err := tx.Model(&product).Update("is_visible", visible).Error; err != nil {
			return fmt.Errorf("update visibility: %w", err)
		}
		return nil
	})
	return visible, err
}

// UpdateDiscount задает скидку изделия в процентах
func (s *ProductService) UpdateDiscount(id uint, percent int) (*models.Product, error) {
	if percent < 0 || percent > 100 {
		return nil, NewValidationError("discount must be between 0 and 100")
	}
	result := s.db.Model(&models.Product{}).Where("id = ?", id).Update("discount_percent", percent)
	if result.Error != nil {
		return nil, fmt.Errorf("update discount: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, NewNotFoundError("product id %d not found", id)
	}
	return s.GetProduct(id)
}

// ProductionPlan считает, сколько каждого ингредиента нужно на запланированный выпуск,
// и сравнивает с остатком на складе
func (s *ProductService) ProductionPlan(items []PlanItem) (*ProductionPlan, error) {
	if len(items) == 0 {
		return nil, NewValidationError("production plan is empty")
	}

	planned := make(map[uint]int, len(items))
	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Quantity < 0 {
			return nil, NewValidationError("planned quantity for product id %d cannot be negative", item.ProductID)
		}
		if _, ok := planned[item.ProductID]; !ok {
			productIDs = append(productIDs, item.ProductID)
		}
		planned[item.ProductID] += item.Quantity
	}

	var products []models.Product
	if err := s.db.Preload("Recipes").Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if len(products) != len(productIDs) {
		known := make(map[uint]bool, len(products))
		for _, p := range products {
			known[p.ID] = true
		}
		for _, id := range productIDs {
			if !known[id] {
				return nil, NewNotFoundError("product id %d not found", id)
			}
		}
	}

	required := make(map[uint]decimal.Decimal)
	for _, product := range products {
		qty := decimal.NewFromInt(int64(planned[product.ID]))
		for _, recipe := range product.Recipes {
			required[recipe.IngredientID] = required[recipe.IngredientID].Add(recipe.Amount.Mul(qty))
		}
	}

	plan := &ProductionPlan{Lines: make([]PlanLine, 0, len(required)), Feasible: true}
	if len(required) == 0 {
		return plan, nil
	}

	ingredientIDs := make([]uint, 0, len(required))
	for id := range required {
		ingredientIDs = append(ingredientIDs, id)
	}
	sort.Slice(ingredientIDs, func(i, j int) bool { return ingredientIDs[i] < ingredientIDs[j] })

	var ingredients []models.Ingredient
	if err := s.db.Preload("Stock").Where("id IN ?", ingredientIDs).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	byID := make(map[uint]models.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	for _, id := range ingredientIDs {
		ing := byID[id]
		onHand := decimal.Zero
		if ing.Stock != nil {
			onHand = ing.Stock.Quantity
		}
		need := required[id]
		shortage := need.Sub(onHand)
		if shortage.IsNegative() {
			shortage = decimal.Zero
		}
		line := PlanLine{
			IngredientID: id,
			Name:         ing.Name,
			Unit:         ing.Unit,
			Required:     need,
			OnHand:       onHand,
			Shortage:     shortage,
			Sufficient:   shortage.IsZero(),
		}
		if !line.Sufficient {
			plan.Feasible = false
		}
		plan.Lines = append(plan.Lines, line)
	}
	return plan, nil
}

// syncProductImages удаляет отмеченные изображения, добавляет новые и выбирает главное
func syncProductImages(tx *gorm.DB, productID uint, input ProductInput) error {
	if len(input.DeleteImageIDs) > 0 {
		err := tx.Where("product_id = ? AND id IN ?", productID, input.DeleteImageIDs).
			Delete(&models.ProductImage{}).Error
		if err != nil {
			return fmt.Errorf("delete product images: %w", err)
		}
	}

	for _, url := range input.NewImageURLs {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		image := models.ProductImage{ProductID: productID, ImageURL: url}
		if err := tx.Create(&image).Error; err != nil {
			return fmt.Errorf("add product image: %w", err)
		}
	}

	var images []models.ProductImage
	if err := tx.Where("product_id = ?", productID).Order("id ASC").Find(&images).Error; err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	if len(images) == 0 {
		return nil
	}

	mainID := images[0].ID
	if input.MainImageID != nil {
		for _, img := range images {
			if img.ID == *input.MainImageID {
				mainID = img.ID
				break
			}
		}
	} else {
		for _, img := range images {
			if img.IsMain {
				mainID = img.ID
				break
			}
		}
	}

	if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", productID).
		Update("is_main", false).Error; err != nil {
		return fmt.Errorf("reset main image: %w", err)
	}
	if err := tx.Model(&models.ProductImage{}).Where("id = ?", mainID).
		Update("is_main", true).Error; err != nil {
		return fmt.Errorf("set main image: %w", err)
	}
	return nil
}

// productNameTaken проверяет название изделия без учета регистра, исключая exceptID
func productNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	taken, err := nameTaken(db.Model(&models.Product{}), name, exceptID)
	if err != nil {
		return false, fmt.Errorf("check product name: %w", err)
	}
	return taken, nil
}
