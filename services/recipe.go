package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"bakery-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecipeLine - строка рецепта во входных данных
type RecipeLine struct {
	IngredientID uint             `json:"ingredient_id"`
	Amount       *decimal.Decimal `json:"amount"`
}

// ParseRecipesJSON разбирает рецепт, переданный строкой JSON. Пустая строка - пустой рецепт.
func ParseRecipesJSON(raw string) ([]RecipeLine, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var lines []RecipeLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, NewValidationError("invalid recipes_json: %v", err)
	}
	return lines, nil
}

// ValidateRecipe проверяет, что все количества положительны и ингредиенты не повторяются
func ValidateRecipe(lines []RecipeLine) error {
	seen := make(map[uint]bool, len(lines))
	for _, line := range lines {
		if line.IngredientID == 0 {
			return NewValidationError("recipe line is missing ingredient_id")
		}
		if line.Amount == nil || !line.Amount.IsPositive() {
			return NewValidationError("recipe amount for ingredient id %d must be greater than 0", line.IngredientID)
		}
		if seen[line.IngredientID] {
			return NewValidationError("ingredient id %d appears more than once in the recipe", line.IngredientID)
		}
		seen[line.IngredientID] = true
	}
	return nil
}

// ensureRecipeIngredients проверяет, что все ингредиенты рецепта существуют
func ensureRecipeIngredients(tx *gorm.DB, lines []RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}

	var found []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("check recipe ingredients: %w", err)
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return NewValidationError("recipe references unknown ingredient id %d", id)
		}
	}
	return nil
}

// ReplaceRecipe удаляет все строки рецепта изделия и записывает новые
func ReplaceRecipe(tx *gorm.DB, productID uint, lines []RecipeLine) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.Recipe{}).Error; err != nil {
		return fmt.Errorf("clear recipe: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	recipes := make([]models.Recipe, 0, len(lines))
	for _, line := range lines {
		recipes = append(recipes, models.Recipe{
			ProductID:    productID,
			IngredientID: line.IngredientID,
			Amount:       *line.Amount,
		})
	}
	if err := tx.Create(&recipes).Error; err != nil {
		return translateDBError(err, "save recipe")
	}
	return nil
}
