package models

import "github.com/shopspring/decimal"

// Rank is a referral-count checkpoint paying a one-time fixed bonus. A rank
// unlocks on the exact RequiredReferrals count, not on crossing it.
type Rank struct {
	ID                string          `gorm:"primaryKey;type:uuid" json:"id"`
	Name              string          `gorm:"not null" json:"name"`
	RequiredReferrals int             `gorm:"uniqueIndex;not null" json:"required_referrals"`
	RewardDescription string          `json:"reward_description"`
	RewardAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"reward_amount"`
	IsActive          bool            `gorm:"not null;default:true" json:"is_active"`

	Timestamps
}
