package user

import (
	"ringwin/helpers"
	"ringwin/services"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Svc *services.Service
}

func NewHandler(svc *services.Service) *Handler {
	return &Handler{Svc: svc}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	user, err := h.Svc.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "User registered successfully", fiber.Map{
		"userId":   user.ID,
		"username": user.Username,
		"currency": user.Currency,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	session, user, err := h.Svc.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Logged in successfully", fiber.Map{
		"sessionId": session.SID,
		"expiresAt": session.ExpiresAt,
		"userId":    user.ID,
		"balance":   user.Balance,
	})
}
