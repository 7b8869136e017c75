package models

import "github.com/shopspring/decimal"

// ContractType selects the schedule branch for a subscription.
type ContractType string

const (
	ContractTypeClosed ContractType = "closed"
	ContractTypeOpen   ContractType = "open"
)

// CalculationType selects how open-contract installments are laid out.
type CalculationType string

const (
	CalculationFixedPlusFinal    CalculationType = "fixed_plus_final"
	CalculationEqualInstallments CalculationType = "equal_installments"
)

// Plan is an immutable contract template. Closed plans carry a profit
// percentage plus a duration; open plans carry a per-installment fixed
// percentage and a calculation type.
type Plan struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	ContractType    ContractType    `gorm:"not null" json:"contract_type"`
	CalculationType CalculationType `json:"calculation_type,omitempty"`

	ClosedProfitPercentage decimal.Decimal `gorm:"type:decimal(5,2)" json:"closed_profit_percentage"`
	ClosedDurationDays     int             `json:"closed_duration_days"`
	FixedPercentage        decimal.Decimal `gorm:"type:decimal(5,2)" json:"fixed_percentage"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	Timestamps
}
