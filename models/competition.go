package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CompetitionSpin    = "spin"
	CompetitionScratch = "scratch"
	CompetitionInstant = "instant"
)

type Competition struct {
	gorm.Model

	Title       string          `gorm:"size:128" json:"title"`
	Type        string          `gorm:"size:16;index" json:"type"`
	TicketPrice decimal.Decimal `gorm:"type:numeric(12,2)" json:"ticket_price"`

	// MaxTickets/SoldTickets only apply to instant competitions. MaxTickets 0
	// means uncapped.
	MaxTickets  int64 `json:"max_tickets"`
	SoldTickets int64 `json:"sold_tickets"`

	// PrizeData holds the server-side prize table for spin/scratch games.
	PrizeData datatypes.JSON `gorm:"type:jsonb" json:"prize_data"`
	ImageURL  string         `gorm:"size:255" json:"image_url"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
}

type Ticket struct {
	gorm.Model

	CompetitionID uint   `gorm:"index"`
	UserID        uint   `gorm:"index"`
	OrderID       uint   `gorm:"index"`
	TicketNumber  string `gorm:"size:32;uniqueIndex" json:"ticket_number"`

	IsWinner    bool             `gorm:"default:false" json:"is_winner"`
	PrizeAmount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"prize_amount,omitempty"`
}
