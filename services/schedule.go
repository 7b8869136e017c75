package services

import (
	"fmt"
	"time"

	"investment-platform/models"

	"github.com/shopspring/decimal"
)

// Schedule layout constants. The closed-contract multiplier is a business
// constant (three months of base profit), not derived from the plan's
// duration — the duration only moves the due date.
const (
	openInstallments     = 6
	openIntervalDays     = 15
	closedProfitMultiple = 3
)

var hundred = decimal.NewFromInt(100)

// ContractTerms is the closed set of contract configurations a payment
// schedule can be generated from.
type ContractTerms interface {
	contractTerms()
}

type ClosedContract struct {
	ProfitPercentage decimal.Decimal
	DurationDays     int
}

type OpenFixedPlusFinal struct {
	FixedPercentage decimal.Decimal
}

type OpenEqualInstallments struct {
	FixedPercentage decimal.Decimal
}

func (ClosedContract) contractTerms()        {}
func (OpenFixedPlusFinal) contractTerms()    {}
func (OpenEqualInstallments) contractTerms() {}

// TermsFromPlan maps a subscription's contract type and its plan's
// parameters onto a ContractTerms variant. An unknown or incomplete
// combination is a ValidationError, never a silent empty schedule.
func TermsFromPlan(contractType models.ContractType, plan *models.Plan) (ContractTerms, error) {
	if plan == nil {
		return nil, &ValidationError{Field: "plan", Reason: "missing plan"}
	}

	switch contractType {
	case models.ContractTypeClosed:
		if !plan.ClosedProfitPercentage.IsPositive() || plan.ClosedDurationDays <= 0 {
			return nil, &ValidationError{Field: "plan", Reason: "closed contract requires a profit percentage and a duration"}
		}
		return ClosedContract{
			ProfitPercentage: plan.ClosedProfitPercentage,
			DurationDays:     plan.ClosedDurationDays,
		}, nil

	case models.ContractTypeOpen:
		if !plan.FixedPercentage.IsPositive() {
			return nil, &ValidationError{Field: "plan", Reason: "open contract requires a fixed percentage"}
		}
		switch plan.CalculationType {
		case models.CalculationFixedPlusFinal:
			return OpenFixedPlusFinal{FixedPercentage: plan.FixedPercentage}, nil
		case models.CalculationEqualInstallments:
			return OpenEqualInstallments{FixedPercentage: plan.FixedPercentage}, nil
		}
		return nil, &ValidationError{Field: "plan", Reason: fmt.Sprintf("unknown calculation type %q", plan.CalculationType)}
	}

	return nil, &ValidationError{Field: "subscription", Reason: fmt.Sprintf("unknown contract type %q", contractType)}
}

// GenerateSchedule turns contract terms, a principal and a reference start
// instant into the ordered batch of payment obligations plus the total
// profit over the contract. Pure and deterministic: the caller supplies the
// start instant (activation time), there is no hidden clock.
//
// Per-payment amounts are rounded to 2 places at creation; the returned
// total profit is the unrounded component sum, so it may drift from the sum
// of rounded amounts by a few cents.
func GenerateSchedule(terms ContractTerms, principal decimal.Decimal, start time.Time) ([]models.Payment, decimal.Decimal, error) {
	if !principal.IsPositive() {
		return nil, decimal.Zero, &ValidationError{Field: "initial_investment", Reason: "must be positive"}
	}

	switch t := terms.(type) {
	case ClosedContract:
		// One lump payment at maturity: capital plus three months of base
		// profit. The duration only sets the due date.
		baseProfit := principal.Mul(t.ProfitPercentage).Div(hundred)
		totalProfit := baseProfit.Mul(decimal.NewFromInt(closedProfitMultiple))
		pct := t.ProfitPercentage
		payment := models.Payment{
			Amount:         principal.Add(totalProfit).Round(2),
			Percentage:     &pct,
			Status:         models.PaymentStatusPending,
			PaymentDueDate: start.AddDate(0, 0, t.DurationDays),
		}
		return []models.Payment{payment}, totalProfit, nil

	case OpenFixedPlusFinal:
		// Five pure-profit installments every 15 days, then capital plus the
		// final profit slice as a blended sixth payment.
		fixedPayment := principal.Mul(t.FixedPercentage).Div(hundred)
		payments := make([]models.Payment, 0, openInstallments)
		due := start
		for i := 1; i < openInstallments; i++ {
			due = due.AddDate(0, 0, openIntervalDays)
			pct := t.FixedPercentage
			payments = append(payments, models.Payment{
				Amount:         fixedPayment.Round(2),
				Percentage:     &pct,
				Status:         models.PaymentStatusPending,
				PaymentDueDate: due,
			})
		}
		due = due.AddDate(0, 0, openIntervalDays)
		payments = append(payments, models.Payment{
			Amount:         principal.Add(fixedPayment).Round(2),
			Percentage:     nil, // blended: no single rate applies
			Status:         models.PaymentStatusPending,
			PaymentDueDate: due,
		})
		totalProfit := fixedPayment.Mul(decimal.NewFromInt(openInstallments))
		return payments, totalProfit, nil

	case OpenEqualInstallments:
		// Capital plus total profit spread evenly across six installments.
		fixedPayment := principal.Mul(t.FixedPercentage).Div(hundred)
		totalProfit := fixedPayment.Mul(decimal.NewFromInt(openInstallments))
		installment := principal.Add(totalProfit).Div(decimal.NewFromInt(openInstallments))

		payments := make([]models.Payment, 0, openInstallments)
		due := start
		for i := 0; i < openInstallments; i++ {
			due = due.AddDate(0, 0, openIntervalDays)
			payments = append(payments, models.Payment{
				Amount:         installment.Round(2),
				Percentage:     nil,
				Status:         models.PaymentStatusPending,
				PaymentDueDate: due,
			})
		}
		return payments, totalProfit, nil
	}

	return nil, decimal.Zero, &ValidationError{Field: "contract_terms", Reason: fmt.Sprintf("unsupported terms %T", terms)}
}
