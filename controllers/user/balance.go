package user

import (
	"ringwin/helpers"
	"ringwin/models"
	"ringwin/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func (h *Handler) Balance(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	return helpers.JSONSuccess(c, "Balance retrieved successfully", fiber.Map{
		"userId":         u.ID,
		"balance":        u.Balance,
		"ringtonePoints": u.RingtonePoints,
		"currency":       u.Currency,
	})
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

func (h *Handler) Deposit(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	updated, err := h.Svc.Deposit(c.UserContext(), u.ID, req.Amount, req.Note)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Deposit completed", fiber.Map{
		"balance":  updated.Balance,
		"currency": updated.Currency,
	})
}

func (h *Handler) Transactions(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	trxs, err := h.Svc.Transactions(c.UserContext(), u.ID)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Transactions retrieved successfully", fiber.Map{
		"transactions": trxs,
	})
}

func (h *Handler) Winners(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	winners, err := h.Svc.Winners(c.UserContext(), u.ID)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Winners retrieved successfully", fiber.Map{
		"winners": winners,
	})
}
