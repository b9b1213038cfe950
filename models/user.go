package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Username       string          `gorm:"uniqueIndex;size:32" json:"username"`
	PasswordHash   string          `gorm:"size:128" json:"-"`
	Balance        decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"balance"`
	RingtonePoints int64           `gorm:"default:0" json:"ringtone_points"`
	Currency       string          `gorm:"size:8" json:"currency"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`

	Transactions []Transaction `gorm:"foreignKey:UserID"`
	Tickets      []Ticket      `gorm:"foreignKey:UserID"`
}

// Transaction units. Currency rows reconstruct Balance, points rows
// reconstruct RingtonePoints.
const (
	UnitCurrency = "currency"
	UnitPoints   = "points"
)

const (
	TrxDeposit    = "deposit"
	TrxWithdrawal = "withdrawal"
	TrxPurchase   = "purchase"
	TrxPrize      = "prize"
)

// Transaction is an append-only ledger row. Amount is signed; rows are never
// updated or deleted after creation.
type Transaction struct {
	gorm.Model

	UserID        uint            `gorm:"index"`
	OrderID       *uint           `gorm:"index"`
	TrxType       string          `gorm:"size:16;index"`
	Unit          string          `gorm:"size:8;index;default:currency"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:numeric(12,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(12,2)" json:"balance_after"`
	Currency      string          `gorm:"size:8" json:"currency"`
	Note          string          `gorm:"size:255"`
	RefID         string          `gorm:"size:64;index"`
}
