package models

import "gorm.io/gorm"

type Winner struct {
	gorm.Model

	UserID           uint   `gorm:"index"`
	CompetitionID    *uint  `gorm:"index"`
	PrizeDescription string `gorm:"size:255" json:"prize_description"`
	PrizeValue       string `gorm:"size:64" json:"prize_value"`
	ImageURL         string `gorm:"size:255" json:"image_url"`
}
