package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderFailed    = "failed"
	OrderExpired   = "expired"
)

const (
	PaymentWallet  = "wallet"
	PaymentGateway = "gateway"
)

// Order is one purchase attempt. Status moves one way from pending to
// completed, failed or expired; tickets exist only for completed orders.
type Order struct {
	gorm.Model

	UserID        uint            `gorm:"index"`
	CompetitionID uint            `gorm:"index"`
	Quantity      int64           `json:"quantity"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_amount"`
	PaymentMethod string          `gorm:"size:16" json:"payment_method"`
	Status        string          `gorm:"size:16;index" json:"status"`

	// SessionRef is the payment provider's session reference for
	// gateway-routed orders.
	SessionRef string `gorm:"size:64;index" json:"session_ref"`
	Currency   string `gorm:"size:8" json:"currency"`
	Note       string `gorm:"size:255"`
}
