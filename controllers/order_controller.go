package controllers

import (
	"bakery-backend/models"
	"bakery-backend/services"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// OrderController контроллер заказов
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController создает новый экземпляр OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// OrderStatusRequest - новый статус заказа
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

// ListOrders возвращает страницу заказов
func (oc *OrderController) ListOrders(c *fiber.Ctx) error {
	page, err := oc.orders.ListOrders(c.Query("status"), c.QueryInt("page", 0), c.QueryInt("size", 0))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Orders", page)
}

// CreateOrder создает заказ
func (oc *OrderController) CreateOrder(c *fiber.Ctx) error {
	var req services.OrderInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := oc.orders.CreateOrder(utils.CurrentActor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, "Order created", order)
}

// GetOrder возвращает заказ по ID
func (oc *OrderController) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	order, err := oc.orders.GetOrder(id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Order", order)
}

// UpdateStatus завершает или отменяет заказ
func (oc *OrderController) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req OrderStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := oc.orders.UpdateStatus(id, models.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Order status updated", order)
}

// DeleteOrder удаляет заказ
func (oc *OrderController) DeleteOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := oc.orders.DeleteOrder(id); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Order deleted", nil)
}
