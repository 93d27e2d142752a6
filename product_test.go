package main

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decimalField разбирает денежное поле ответа (decimal сериализуется строкой)
func decimalField(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "expected decimal string, got %T", v)
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func createProductViaAPI(t *testing.T, app *fiber.App, token string, body map[string]interface{}) uint {
	t.Helper()
	status, resp := doJSON(t, app, "POST", "/api/products", token, body)
	require.Equal(t, 201, status, resp)
	data := resp["data"].(map[string]interface{})
	return uint(data["id"].(float64))
}

func TestCreateProductWithRecipe(t *testing.T) {
	app, db := setupTestApp(t)
	token := adminToken(t, db)
	flour := createIngredientViaAPI(t, app, token, "Flour", 5)

	id := createProductViaAPI(t, app, token, map[string]interface{}{
		"name":           "Rye bread",
		"category":       "bread",
		"price":          "3.50",
		"recipes":        []map[string]interface{}{{"ingredient_id": flour, "amount": "0.5"}},
		"new_image_urls": []string{"https://cdn.test/rye-1.jpg", "https://cdn.test/rye-2.jpg"},
	})

	status, body := doJSON(t, app, "GET", fmt.Sprintf("/api/products/%d", id), token, nil)
	assert.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Rye bread", data["name"])
	assert.Equal(t, true, data["is_visible"])
	assert.True(t, decimalField(t, data["price"]).Equal(decimal.RequireFromString("3.5")))

	recipes := data["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	assert.Equal(t, float64(flour), recipes[0].(map[string]interface{})["ingredient_id"])

	images := data["images"].([]interface{})
	require.Len(t, images, 2)
	assert.Equal(t, true, images[0].(map[string]interface{})["is_main"])
	assert.Equal(t, false, images[1].(map[string]interface{})["is_main"])
}

func TestCreateProductErrors(t *testing.T) {
	app, db := setupTestApp(t)
	token := adminToken(t, db)
	createProductViaAPI(t, app, token, map[string]interface{}{"name": "Baguette", "category": "bread", "price": "2.00"})

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
	}{
		{"Короткое название", map[string]interface{}{"name": "Ab", "category": "bread", "price": "1.00"}, 400},
		{"Нулевая цена", map[string]interface{}{"name": "Bun", "category": "bread", "price": "0"}, 400},
		{"Три знака после запятой", map[string]interface{}{"name": "Bun", "category": "bread", "price": "1.005"}, 400},
		{"Дубликат названия", map[string]interface{}{"name": "BAGUETTE", "category": "bread", "price": "2.00"}, 400},
		{"Неизвестный ингредиент в рецепте", map[string]interface{}{
			"name": "Bun", "category": "bread", "price": "1.00",
			"recipes": []map[string]interface{}{{"ingredient_id": 99, "amount": "1"}},
		}, 400},
		{"Некорректный recipes_json", map[string]interface{}{
			"name": "Bun", "category": "bread", "price": "1.00", "recipes_json": "[{",
		}, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, "POST", "/api/products", token, tt.body)
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestProductVisibilityAndDiscount(t *testing.T) {
	app, db := setupTestApp(t)
	token := adminToken(t, db)
	id := createProductViaAPI(t, app, token, map[string]interface{}{"name": "Croissant", "category": "pastry", "price": "3.50"})

	status, body := doJSON(t, app, "POST", fmt.Sprintf("/api/products/%d/toggle-visibility", id), token, nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["data"].(map[string]interface{})["is_visible"])

	status, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/products/%d/discount", id), token, map[string]interface{}{"discount_percent": 20})
	assert.Equal(t, 200, status)

	status, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/products/%d/discount", id), token, map[string]interface{}{"discount_percent": 120})
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "POST", "/api/products/999/discount", token, map[string]interface{}{"discount_percent": 10})
	assert.Equal(t, 404, status)

	status, body = doJSON(t, app, "GET", fmt.Sprintf("/api/products/%d", id), token, nil)
	assert.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_visible"])
	assert.Equal(t, float64(20), data["discount_percent"])
}

func TestFilterProductsViaAPI(t *testing.T) {
	app, db := setupTestApp(t)
	token := adminToken(t, db)
	cheap := createProductViaAPI(t, app, token, map[string]interface{}{"name": "Bagel", "category": "bread", "price": "1.20"})
	createProductViaAPI(t, app, token, map[string]interface{}{"name": "Sourdough", "category": "bread", "price": "4.80"})
	createProductViaAPI(t, app, token, map[string]interface{}{"name": "Eclair", "category": "pastry", "price": "2.40"})

	status, body := doJSON(t, app, "GET", "/api/products?category=bread&sort=price_asc", token, nil)
	assert.Equal(t, 200, status)
	items := body["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "Bagel", items[0].(map[string]interface{})["name"])

	status, body = doJSON(t, app, "GET", fmt.Sprintf("/api/products?id=%d&category=pastry", cheap), token, nil)
	assert.Equal(t, 200, status)
	items = body["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Bagel", items[0].(map[string]interface{})["name"])

	status, body = doJSON(t, app, "GET", "/api/products?keyword=SOUR", token, nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(1), body["data"].(map[string]interface{})["total"])

	status, _ = doJSON(t, app, "GET", "/api/products?id=abc", token, nil)
	assert.Equal(t, 400, status)
}

func TestProductionPlanViaAPI(t *testing.T) {
	app, db := setupTestApp(t)
	token := adminToken(t, db)
	flour := createIngredientViaAPI(t, app, token, "Flour", 1)

	status, _ := doJSON(t, app, "POST", "/api/ingredients/import", token, map[string]interface{}{
		"items": []map[string]interface{}{{"ingredient_id": flour, "quantity": 2}},
	})
	require.Equal(t, 200, status)

	bread := createProductViaAPI(t, app, token, map[string]interface{}{
		"name": "White bread", "category": "bread", "price": "2.00",
		"recipes_json": fmt.Sprintf(`[{"ingredient_id":%d,"amount":"0.5"}]`, flour),
	})

	status, body := doJSON(t, app, "POST", "/api/products/production-plan", token, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": bread, "quantity": 6}},
	})
	assert.Equal(t, 200, status)
	plan := body["data"].(map[string]interface{})
	assert.Equal(t, false, plan["feasible"])
	lines := plan["lines"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.True(t, decimalField(t, line["required"]).Equal(decimal.NewFromInt(3)))
	assert.True(t, decimalField(t, line["shortage"]).Equal(decimal.NewFromInt(1)))

	status, _ = doJSON(t, app, "POST", "/api/products/production-plan", token, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 999, "quantity": 1}},
	})
	assert.Equal(t, 404, status)
}

func TestDeleteProductViaAPI(t *testing.T) {
	app, db := setupTestApp(t)
	token := adminToken(t, db)
	id := createProductViaAPI(t, app, token, map[string]interface{}{"name": "Muffin", "category": "pastry", "price": "1.90"})

	status, _ := doJSON(t, app, "DELETE", fmt.Sprintf("/api/products/%d", id), token, nil)
	assert.Equal(t, 200, status)

	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/api/products/%d", id), token, nil)
	assert.Equal(t, 404, status)
}
