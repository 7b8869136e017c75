package models

import "github.com/shopspring/decimal"

type SubscriptionStatus string

const (
	SubscriptionStatusPendingVerification SubscriptionStatus = "pending_verification"
	SubscriptionStatusActive              SubscriptionStatus = "active"
	SubscriptionStatusRejected            SubscriptionStatus = "rejected"
)

// Subscription is one investment commitment against a plan. ContractType is
// copied from the plan at creation and may diverge from it later (a
// subscription can be switched to a closed contract mid-flight).
type Subscription struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string `gorm:"index;not null" json:"user_id"`
	PlanID     string `gorm:"index;not null" json:"plan_id"`
	SequenceID int    `gorm:"not null" json:"sequence_id"` // ordinal per user

	InitialInvestment decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"initial_investment"`
	ContractType      ContractType       `gorm:"not null" json:"contract_type"`
	Status            SubscriptionStatus `gorm:"not null;default:'pending_verification';index" json:"status"`

	// ProfitAmount is a derived cache: overwritten every time the payment
	// schedule is (re)generated, never authoritative on its own.
	ProfitAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"profit_amount"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Plan     *Plan     `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Payments []Payment `gorm:"foreignKey:SubscriptionID" json:"payments,omitempty"`

	Timestamps
}
