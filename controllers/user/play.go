package user

import (
	"context"

	"ringwin/helpers"
	"ringwin/models"
	"ringwin/services"

	"github.com/gofiber/fiber/v2"
)

type playRequest struct {
	CompetitionID uint         `json:"competitionId"`
	DeclaredPrize models.Prize `json:"declaredPrize"`
}

func (h *Handler) PlaySpin(c *fiber.Ctx) error {
	return h.play(c, h.Svc.PlaySpin)
}

func (h *Handler) PlayScratch(c *fiber.Ctx) error {
	return h.play(c, h.Svc.PlayScratch)
}

func (h *Handler) play(c *fiber.Ctx, settle func(ctx context.Context, userID, compID uint, declared models.Prize) (*services.PlayResult, error)) error {
	u := c.Locals("user").(models.User)

	var req playRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	res, err := settle(c.UserContext(), u.ID, req.CompetitionID, req.DeclaredPrize)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Play settled", fiber.Map{
		"prize":          res.Prize,
		"balance":        res.Balance,
		"ringtonePoints": res.Points,
	})
}

type convertRequest struct {
	Points int64 `json:"points"`
}

func (h *Handler) ConvertPoints(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	var req convertRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	res, err := h.Svc.ConvertPoints(c.UserContext(), u.ID, req.Points)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Points converted", fiber.Map{
		"convertedPoints": res.ConvertedPoints,
		"currencyAmount":  res.CurrencyAmount,
		"newBalance":      res.NewBalance,
		"newPoints":       res.NewPoints,
	})
}
