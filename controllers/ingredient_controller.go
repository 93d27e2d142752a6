package controllers

import (
	"bytes"

	"bakery-backend/models"
	"bakery-backend/services"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// IngredientController контроллер склада ингредиентов
type IngredientController struct {
	ledger   *services.LedgerService
	catalog  *services.CatalogService
	exporter *services.HistoryExporter
}

// NewIngredientController создает новый экземпляр IngredientController
func NewIngredientController(ledger *services.LedgerService, catalog *services.CatalogService) *IngredientController {
	return &IngredientController{
		ledger:   ledger,
		catalog:  catalog,
		exporter: services.NewHistoryExporter(ledger),
	}
}

// StockItemsRequest - партия прихода или расхода
type StockItemsRequest struct {
	Items []services.StockItem `json:"items" validate:"required,min=1,dive"`
}

// FilterIngredients ищет ингредиенты с разбиением на страницы
func (ic *IngredientController) FilterIngredients(c *fiber.Ctx) error {
	page, err := ic.catalog.FilterIngredients(
		c.Query("keyword"),
		c.Query("status"),
		c.QueryInt("page", 0),
		c.QueryInt("size", 0),
	)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Ingredients", page)
}

// LowStock возвращает закончившиеся и заканчивающиеся ингредиенты
func (ic *IngredientController) LowStock(c *fiber.Ctx) error {
	ingredients, err := ic.ledger.LowStock()
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Low stock ingredients", withStatus(ingredients...))
}

// GetIngredient возвращает ингредиент по ID
func (ic *IngredientController) GetIngredient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ingredient, err := ic.ledger.GetIngredient(id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Ingredient", withStatus(*ingredient)[0])
}

// CreateIngredient создает ингредиент
func (ic *IngredientController) CreateIngredient(c *fiber.Ctx) error {
	var req services.IngredientInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	ingredient, err := ic.ledger.CreateIngredient(utils.CurrentActor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, "Ingredient created", withStatus(*ingredient)[0])
}

// UpdateIngredient изменяет ингредиент и его остаток
func (ic *IngredientController) UpdateIngredient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req services.UpdateIngredientInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	ingredient, err := ic.ledger.UpdateIngredient(utils.CurrentActor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Ingredient updated", withStatus(*ingredient)[0])
}

// DeleteIngredient удаляет ингредиент вместе с журналом
func (ic *IngredientController) DeleteIngredient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := ic.ledger.DeleteIngredient(id); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Ingredient deleted", nil)
}

// ImportStock оприходует партию ингредиентов
func (ic *IngredientController) ImportStock(c *fiber.Ctx) error {
	var req StockItemsRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := ic.ledger.ImportStock(utils.CurrentActor(c), req.Items); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Stock imported", nil)
}

// ExportStock списывает партию ингредиентов
func (ic *IngredientController) ExportStock(c *fiber.Ctx) error {
	var req StockItemsRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := ic.ledger.ExportStock(utils.CurrentActor(c), req.Items); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Stock exported", nil)
}

// History возвращает журнал изменений остатка ингредиента
func (ic *IngredientController) History(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	history, err := ic.ledger.History(id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Stock history", history)
}

// HistoryXLSX отдает журнал ингредиента файлом Excel
func (ic *IngredientController) HistoryXLSX(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := ic.exporter.ExportHistoryXLSX(id, &buf); err != nil {
		return respondError(c, err)
	}

	c.Attachment(services.HistoryFileName(id))
	c.Set(fiber.HeaderContentType, services.XLSXContentType)
	return c.Send(buf.Bytes())
}

// withStatus добавляет к ингредиентам вычисленное состояние остатка
func withStatus(ingredients ...models.Ingredient) []services.IngredientRow {
	rows := make([]services.IngredientRow, 0, len(ingredients))
	for _, ing := range ingredients {
		row := services.IngredientRow{Ingredient: ing}
		if ing.Stock != nil {
			row.Status = services.ClassifyStatus(*ing.Stock)
		}
		rows = append(rows, row)
	}
	return rows
}
