package controllers

import (
	"strconv"

	"bakery-backend/services"

	"github.com/gofiber/fiber/v2"
)

// ProductController контроллер изделий
type ProductController struct {
	products *services.ProductService
	catalog  *services.CatalogService
}

// NewProductController создает новый экземпляр ProductController
func NewProductController(products *services.ProductService, catalog *services.CatalogService) *ProductController {
	return &ProductController{products: products, catalog: catalog}
}

// DiscountRequest - новая скидка в процентах
type DiscountRequest struct {
	DiscountPercent *int `json:"discount_percent" validate:"required"`
}

// ProductionPlanRequest - запланированный выпуск
type ProductionPlanRequest struct {
	Items []services.PlanItem `json:"items" validate:"required,min=1,dive"`
}

// FilterProducts ищет изделия с разбиением на страницы
func (pc *ProductController) FilterProducts(c *fiber.Ctx) error {
	filter := services.ProductFilter{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page", 0),
		Size:     c.QueryInt("size", 0),
	}
	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return respondError(c, services.NewValidationError("invalid id '%s'", raw))
		}
		productID := uint(id)
		filter.ID = &productID
	}

	page, err := pc.catalog.FilterProducts(filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Products", page)
}

// GetProduct возвращает изделие по ID
func (pc *ProductController) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	product, err := pc.products.GetProduct(id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Product", product)
}

// CreateProduct создает изделие
func (pc *ProductController) CreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := pc.products.CreateProduct(req)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, "Product created", product)
}

// UpdateProduct изменяет изделие
func (pc *ProductController) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req services.ProductInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := pc.products.UpdateProduct(id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Product updated", product)
}

// DeleteProduct удаляет изделие
func (pc *ProductController) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := pc.products.DeleteProduct(id); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Product deleted", nil)
}

// ToggleVisibility скрывает или показывает изделие
func (pc *ProductController) ToggleVisibility(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	visible, err := pc.products.ToggleVisibility(id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Visibility updated", fiber.Map{"id": id, "is_visible": visible})
}

// UpdateDiscount задает скидку изделия
func (pc *ProductController) UpdateDiscount(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req DiscountRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := pc.products.UpdateDiscount(id, *req.DiscountPercent)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Discount updated", product)
}

// ProductionPlan считает потребность в ингредиентах на выпуск
func (pc *ProductController) ProductionPlan(c *fiber.Ctx) error {
	var req ProductionPlanRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	plan, err := pc.products.ProductionPlan(req.Items)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Production plan", plan)
}
