package handlers

import (
	"errors"

	"kasuwa/internal/middleware"
	"kasuwa/internal/models"
	"kasuwa/internal/services"
	"kasuwa/pkg/paystack"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// PaymentHandler handles HTTP requests for the payment pipeline.
type PaymentHandler struct {
	paymentService *services.PaymentService
	authService    *services.AuthService
	validate       *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *services.PaymentService, authService *services.AuthService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		authService:    authService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the payment routes with the Fiber app. The
// webhook is authenticated by signature, not by session, so it sits outside
// the auth middleware.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/initialize", middleware.AuthRequired(h.authService), h.HandleInitialize)
	paymentRoutes.Get("/verify", h.HandleVerify)
	paymentRoutes.Post("/webhook", h.HandleWebhook)
}

// InitializeItem is one cart line in an initialization request. Amounts are
// in major units (naira) and are converted to kobo at this boundary.
type InitializeItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

// InitializeRequest is the request body for payment initialization.
type InitializeRequest struct {
	Email string           `json:"email" validate:"required,email"`
	Items []InitializeItem `json:"items" validate:"required,min=1,dive"`
}

// HandleInitialize opens a provider transaction for the caller's cart and
// returns the authorization URL and reference.
func (h *PaymentHandler) HandleInitialize(c *fiber.Ctx) error {
	var req InitializeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	customerID, ok := c.Locals("user_id").(string)
	if !ok || customerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	cart := models.CartSnapshot{Items: make([]models.CartItem, 0, len(req.Items))}
	for _, item := range req.Items {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Amount:    paystack.ToKobo(item.Amount),
		})
	}

	auth, err := h.paymentService.InitializePayment(c.Context(), customerID, req.Email, cart)
	if err != nil {
		if errors.Is(err, models.ErrProviderRejected) {
			// Provider detail is already logged server-side.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Payment initialization was rejected by the payment provider",
			})
		}
		log.WithError(err).Error("payment initialization failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not initialize payment",
		})
	}

	return c.JSON(fiber.Map{
		"authorization_url": auth.AuthorizationURL,
		"access_code":       auth.AccessCode,
		"reference":         auth.Reference,
	})
}

// HandleVerify is the synchronous client poll. It returns "success",
// "pending" or "error"; "pending" means the provider has not settled the
// charge yet and the client should poll again.
func (h *PaymentHandler) HandleVerify(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "reference query parameter is required",
		})
	}

	status, result, err := h.paymentService.VerifyPayment(c.Context(), reference)
	if err != nil {
		log.WithError(err).WithField("reference", reference).Warn("payment verification failed")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  services.VerifyStatusError,
			"message": "Payment could not be verified",
		})
	}

	response := fiber.Map{"status": status}
	if result != nil {
		response["order_number"] = result.OrderNumber
		response["reference"] = result.Reference
	}
	return c.JSON(response)
}

// HandleWebhook receives asynchronous provider deliveries. The contract
// with the provider is 200 for anything understood or irrelevant, 401 on a
// signature mismatch, 500 on an internal processing error; anything non-2xx
// triggers provider-side retries.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	// The raw body, exactly as received. Re-serializing would invalidate
	// the signature.
	body := c.Body()
	signature := c.Get("x-paystack-signature")

	result, err := h.paymentService.HandleWebhook(body, signature)
	if err != nil {
		if errors.Is(err, models.ErrSignatureInvalid) {
			log.Warn("webhook rejected: signature mismatch")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid signature",
			})
		}
		log.WithError(err).Error("webhook processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process event",
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
