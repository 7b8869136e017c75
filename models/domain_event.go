package models

import "time"

// Domain event types handed to the notification collaborators.
const (
	EventSubscriptionActivated = "subscription.activated"
	EventNewInvestmentPending  = "subscription.pending"
	EventRankAchieved          = "rank.achieved"
	EventTransferCompleted     = "transfer.completed"
	EventNewWithdrawalRequest  = "withdrawal.requested"
	EventPaymentsDue           = "payments.due"
)

// DomainEvent is a transactional outbox row: appended inside the same
// transaction as the state change it describes and delivered by the
// dispatcher worker only after that transaction committed.
type DomainEvent struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	Type    string `gorm:"index;not null" json:"type"`
	Payload string `gorm:"type:text;not null" json:"payload"`

	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	DispatchedAt *time.Time `gorm:"index" json:"dispatched_at,omitempty"`
}
