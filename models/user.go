package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User owns a ledger and sits in the referral graph. ReferralCount and
// RankID are written only by the referral rank engine.
type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Role      string `gorm:"not null;default:'user'" json:"role"`

	ReferralCode  string  `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferredByID  *string `gorm:"index" json:"referred_by_id,omitempty"`
	ReferralCount int     `gorm:"not null;default:0" json:"referral_count"`
	RankID        *string `gorm:"index" json:"rank_id,omitempty"`

	IsFraud       bool `gorm:"not null;default:false" json:"is_fraud"`
	IsTestAccount bool `gorm:"not null;default:false" json:"is_test_account"` // excluded from real-money reporting

	Timestamps
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
