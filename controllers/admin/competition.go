package admin

import (
	"ringwin/helpers"
	"ringwin/models"
	"ringwin/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Handler struct {
	Svc *services.Service
}

func NewHandler(svc *services.Service) *Handler {
	return &Handler{Svc: svc}
}

type createCompetitionRequest struct {
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	TicketPrice decimal.Decimal `json:"ticketPrice"`
	MaxTickets  int64           `json:"maxTickets"`
	PrizeData   datatypes.JSON  `json:"prizeData"`
	ImageURL    string          `json:"imageUrl"`
}

func (h *Handler) CreateCompetition(c *fiber.Ctx) error {
	var req createCompetitionRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	comp := models.Competition{
		Title:       req.Title,
		Type:        req.Type,
		TicketPrice: req.TicketPrice,
		MaxTickets:  req.MaxTickets,
		PrizeData:   req.PrizeData,
		ImageURL:    req.ImageURL,
	}
	if err := h.Svc.CreateCompetition(c.UserContext(), &comp); err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Competition created", fiber.Map{
		"competitionId": comp.ID,
		"title":         comp.Title,
		"type":          comp.Type,
		"ticketPrice":   comp.TicketPrice,
		"maxTickets":    comp.MaxTickets,
	})
}

func (h *Handler) ListCompetitions(c *fiber.Ctx) error {
	comps, err := h.Svc.Competitions(c.UserContext())
	if err != nil {
		status, msg := services.HTTPError(err)
		return helpers.JSONErrorStatus(c, status, msg)
	}

	return helpers.JSONSuccess(c, "Competitions retrieved successfully", fiber.Map{
		"competitions": comps,
	})
}
