package user

import (
	"ringwin/helpers"
	"ringwin/models"
	"ringwin/services"

	"github.com/gofiber/fiber/v2"
)

type purchaseRequest struct {
	CompetitionID uint  `json:"competitionId"`
	Quantity      int64 `json:"quantity"`
}

// Purchase creates an order. Wallet-funded orders settle in the same call
// and return their tickets; gateway orders come back pending with a flag
// telling the client to open a payment session.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	res, err := h.Svc.Purchase(c.UserContext(), u.ID, req.CompetitionID, req.Quantity)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	data := fiber.Map{
		"orderId":       res.Order.ID,
		"paymentMethod": res.Order.PaymentMethod,
		"totalAmount":   res.Order.TotalAmount,
		"status":        res.Order.Status,
	}
	if res.Order.PaymentMethod == models.PaymentWallet {
		data["tickets"] = ticketNumbers(res.Tickets)
		return helpers.JSONSuccess(c, "Purchase completed", data)
	}

	data["paymentRequired"] = true
	return helpers.JSONSuccess(c, "Order created, payment required", data)
}

func ticketNumbers(tickets []models.Ticket) []string {
	numbers := make([]string, 0, len(tickets))
	for _, t := range tickets {
		numbers = append(numbers, t.TicketNumber)
	}
	return numbers
}
