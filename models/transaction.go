package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType keeps the ledger's historical wire values: "abono" is a
// credit, "retiro" a debit. Amounts are always positive; the type carries
// the sign.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "abono"
	TransactionTypeDebit  TransactionType = "retiro"
)

// Transaction is one append-only ledger entry. The transaction log is the
// sole source of truth for a user's spendable balance; rows are never
// updated or deleted.
type Transaction struct {
	ID     string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string          `gorm:"index;not null" json:"user_id"`
	Type   TransactionType `gorm:"not null;index" json:"type"`
	Amount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Note   string          `gorm:"type:text" json:"note"`

	// SubscriptionID links accreditation and reinvestment entries back to
	// their source subscription.
	SubscriptionID *string `gorm:"index" json:"subscription_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TypeDetail classifies an entry for statements from its note text.
func (t *Transaction) TypeDetail() string {
	note := strings.ToLower(t.Note)

	if t.Type == TransactionTypeDebit {
		switch {
		case strings.Contains(note, "balance sent"):
			return "Transfer Sent"
		case strings.Contains(note, "withdrawal request"):
			return "Withdrawal Request"
		}
		return "Reinvested in Plan"
	}

	if t.Type == TransactionTypeCredit {
		switch {
		case strings.Contains(note, "rank reward"):
			return "Rank Reward"
		case strings.Contains(note, "balance received"):
			return "Transfer Received"
		case strings.Contains(note, "reversal"):
			return "Withdrawal Reversal"
		}
		return "Installment Credit"
	}

	return "Other"
}
