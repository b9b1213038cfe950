package payment

import (
	"log"

	"ringwin/helpers"
	"ringwin/models"
	"ringwin/services"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Svc *services.Service
}

func NewHandler(svc *services.Service) *Handler {
	return &Handler{Svc: svc}
}

type sessionRequest struct {
	OrderID  uint  `json:"orderId"`
	Quantity int64 `json:"quantity"`
}

// CreateSession opens a hosted payment session for a pending gateway order
// and returns the redirect URL for the checkout page.
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	res, err := h.Svc.CreatePaymentSession(c.UserContext(), u.ID, req.OrderID, req.Quantity)
	if err != nil {
		log.Printf("[PAYMENT] orderId=%d userId=%d failed to create session: %v", req.OrderID, u.ID, err)
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Payment session created", fiber.Map{
		"redirectUrl": res.RedirectURL,
		"sessionId":   res.SessionID,
	})
}

type confirmRequest struct {
	SessionID string `json:"sessionId"`
}

// Confirm reconciles a payment session after the client returns from the
// hosted page. Duplicate confirmations are safe.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	res, err := h.Svc.ConfirmPurchase(c.UserContext(), req.SessionID)
	if err != nil {
		log.Printf("[PAYMENT] sessionId=%s confirmation failed: %v", req.SessionID, err)
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	if res.AlreadyCompleted {
		return helpers.JSONSuccess(c, "Order already completed", fiber.Map{
			"orderId":        res.OrderID,
			"ticketsCreated": 0,
		})
	}

	return helpers.JSONSuccess(c, "Purchase confirmed", fiber.Map{
		"orderId":        res.OrderID,
		"ticketsCreated": len(res.Tickets),
	})
}

// Fail handles the failed/cancelled return paths; the order moves to failed
// and nothing touches the ledger.
func (h *Handler) Fail(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	order, err := h.Svc.FailPurchase(c.UserContext(), req.SessionID)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Order marked as failed", fiber.Map{
		"orderId": order.ID,
		"status":  order.Status,
	})
}

// Callback is the asynchronous provider notification. It runs the same
// canonical confirmation path as client-initiated confirms: the session
// reference is looked up with the provider and the provider's metadata is
// the source of truth.
func (h *Handler) Callback(c *fiber.Ctx) error {
	var req struct {
		Reference string `json:"reference"`
		SessionID string `json:"sessionId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	ref := req.Reference
	if ref == "" {
		ref = req.SessionID
	}

	res, err := h.Svc.ConfirmPurchase(c.UserContext(), ref)
	if err != nil {
		log.Printf("[PAYMENT] callback reference=%s not applied: %v", ref, err)
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Callback processed", fiber.Map{
		"orderId":        res.OrderID,
		"ticketsCreated": len(res.Tickets),
	})
}
