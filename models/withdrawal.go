package models

import "github.com/shopspring/decimal"

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

// Withdrawal is a cash-out request. The matching ledger debit is posted at
// request time; rejection posts the reversing credit. A withdrawal is
// resolved at most once.
type Withdrawal struct {
	ID     string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string           `gorm:"index;not null" json:"user_id"`
	Amount decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status WithdrawalStatus `gorm:"not null;default:'pending';index" json:"status"`
	Code   string           `gorm:"uniqueIndex;not null" json:"code"` // lookup key quoted on receipts

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Timestamps
}
