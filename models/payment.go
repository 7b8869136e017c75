package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	// Paid: cash delivered outside the ledger, no balance effect.
	PaymentStatusPaid PaymentStatus = "paid"
	// Accredited: amount credited into the owner's spendable balance.
	PaymentStatusAccredited PaymentStatus = "accredited"
	// Corrected: superseded when a subscription's schedule was regenerated.
	PaymentStatusCorrected PaymentStatus = "corrected"
)

// Payment is one scheduled obligation of a subscription. Created in a batch
// by the schedule generator; rows are never deleted.
type Payment struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	SubscriptionID string `gorm:"index;not null" json:"subscription_id"`

	Amount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	// Percentage is nil for blended installments where no single rate applies.
	Percentage     *decimal.Decimal `gorm:"type:decimal(5,2)" json:"percentage,omitempty"`
	Status         PaymentStatus    `gorm:"not null;default:'pending';index" json:"status"`
	PaymentDueDate time.Time        `gorm:"type:date;index;not null" json:"payment_due_date"`

	Subscription *Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`

	Timestamps
}
