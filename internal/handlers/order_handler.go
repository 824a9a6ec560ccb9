package handlers

import (
	"errors"

	"kasuwa/internal/middleware"
	"kasuwa/internal/models"
	"kasuwa/internal/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *services.OrderService
	authService  *services.AuthService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, authService *services.AuthService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		authService:  authService,
	}
}

// RegisterRoutes registers the order routes with the Fiber app. Reads are
// scoped to the authenticated customer; every mutation is admin-only,
// including the readiness update.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.AuthRequired(h.authService))
	orderRoutes.Get("/:orderNumber", h.HandleGetOrder)

	adminRoutes := orderRoutes.Group("", middleware.AdminRequired())
	adminRoutes.Patch("/:orderNumber/readiness", h.HandleSetReadiness)
	adminRoutes.Patch("/:orderNumber/fulfill", h.HandleFulfill)
	adminRoutes.Patch("/:orderNumber/cancel", h.HandleCancel)
}

// orderResponse is an order with its stored item text normalized to a
// structured list.
type orderResponse struct {
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
	Items       []models.OrderItem `json:"items"`
	TotalAmount int64              `json:"total_amount"`
	ReadyInDays int                `json:"ready_in_days"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	return orderResponse{
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Items:       order.ParsedItems(),
		TotalAmount: order.TotalAmount,
		ReadyInDays: order.ReadyInDays,
		CreatedAt:   order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   order.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleGetOrder returns the caller's own order. An order number belonging
// to someone else is a 404, indistinguishable from a miss.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	customerID, ok := c.Locals("user_id").(string)
	if !ok || customerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	orderNumber := c.Params("orderNumber")
	order, err := h.orderService.GetOrderForCustomer(orderNumber, customerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.WithError(err).Error("failed to load order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
		})
	}

	return c.JSON(toOrderResponse(order))
}

// ReadinessRequest is the request body for a readiness update. The pointer
// distinguishes a missing field from an explicit zero; both are rejected.
type ReadinessRequest struct {
	ReadyInDays *int `json:"ready_in_days"`
}

// HandleSetReadiness moves a paid order to ready with a positive day
// estimate.
func (h *OrderHandler) HandleSetReadiness(c *fiber.Ctx) error {
	var req ReadinessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ReadyInDays == nil || *req.ReadyInDays <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "ready_in_days must be a positive integer",
		})
	}

	orderNumber := c.Params("orderNumber")
	if err := h.orderService.SetReadiness(orderNumber, *req.ReadyInDays); err != nil {
		return h.transitionError(c, orderNumber, err)
	}

	return c.JSON(fiber.Map{
		"message":       "Order readiness updated",
		"order_number":  orderNumber,
		"ready_in_days": *req.ReadyInDays,
	})
}

// HandleFulfill moves a ready order to its terminal fulfilled state.
func (h *OrderHandler) HandleFulfill(c *fiber.Ctx) error {
	orderNumber := c.Params("orderNumber")
	if err := h.orderService.Fulfill(orderNumber); err != nil {
		return h.transitionError(c, orderNumber, err)
	}
	return c.JSON(fiber.Map{
		"message":      "Order fulfilled",
		"order_number": orderNumber,
	})
}

// HandleCancel cancels a pending or paid order.
func (h *OrderHandler) HandleCancel(c *fiber.Ctx) error {
	orderNumber := c.Params("orderNumber")
	if err := h.orderService.Cancel(orderNumber); err != nil {
		return h.transitionError(c, orderNumber, err)
	}
	return c.JSON(fiber.Map{
		"message":      "Order cancelled",
		"order_number": orderNumber,
	})
}

func (h *OrderHandler) transitionError(c *fiber.Ctx, orderNumber string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
		})
	case errors.Is(err, models.ErrStateConflict):
		// Likely a replay or a race; logged as such and reported, never
		// silently accepted.
		log.WithError(err).WithField("order_number", orderNumber).
			Warn("rejected illegal order transition")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Order is not in a state that allows this change",
		})
	default:
		log.WithError(err).WithField("order_number", orderNumber).
			Error("order update failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update order",
		})
	}
}
