package services

import (
	"errors"
	"testing"
	"time"

	"investment-platform/models"

	"github.com/shopspring/decimal"
)

var scheduleStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestClosedContractSingleLumpPayment(t *testing.T) {
	terms := ClosedContract{
		ProfitPercentage: decimal.NewFromInt(50),
		DurationDays:     90,
	}
	principal := decimal.NewFromInt(1_000_000)

	payments, totalProfit, err := GenerateSchedule(terms, principal, scheduleStart)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}

	if len(payments) != 1 {
		t.Fatalf("payments: got %d, want 1", len(payments))
	}
	// capital + 3 months of base profit: 1,000,000 + 3*500,000
	if want := decimal.NewFromInt(2_500_000); !payments[0].Amount.Equal(want) {
		t.Errorf("amount: got %s, want %s", payments[0].Amount, want)
	}
	if want := decimal.NewFromInt(1_500_000); !totalProfit.Equal(want) {
		t.Errorf("total profit: got %s, want %s", totalProfit, want)
	}
	if payments[0].Percentage == nil || !payments[0].Percentage.Equal(decimal.NewFromInt(50)) {
		t.Errorf("percentage: got %v, want 50", payments[0].Percentage)
	}
	if want := scheduleStart.AddDate(0, 0, 90); !payments[0].PaymentDueDate.Equal(want) {
		t.Errorf("due date: got %s, want %s", payments[0].PaymentDueDate, want)
	}
	if payments[0].Status != models.PaymentStatusPending {
		t.Errorf("status: got %s, want pending", payments[0].Status)
	}
}

func TestClosedContractDurationOnlyMovesDueDate(t *testing.T) {
	// The 3x profit multiple is a business constant: a 30-day closed plan
	// pays the same amount as a 90-day one, just earlier.
	terms := ClosedContract{ProfitPercentage: decimal.NewFromInt(50), DurationDays: 30}
	payments, _, err := GenerateSchedule(terms, decimal.NewFromInt(1_000_000), scheduleStart)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	if want := decimal.NewFromInt(2_500_000); !payments[0].Amount.Equal(want) {
		t.Errorf("amount: got %s, want %s", payments[0].Amount, want)
	}
	if want := scheduleStart.AddDate(0, 0, 30); !payments[0].PaymentDueDate.Equal(want) {
		t.Errorf("due date: got %s, want %s", payments[0].PaymentDueDate, want)
	}
}

func TestFixedPlusFinalSchedule(t *testing.T) {
	terms := OpenFixedPlusFinal{FixedPercentage: decimal.NewFromInt(15)}
	principal := decimal.NewFromInt(1_000_000)

	payments, totalProfit, err := GenerateSchedule(terms, principal, scheduleStart)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	if len(payments) != 6 {
		t.Fatalf("payments: got %d, want 6", len(payments))
	}

	fixed := decimal.NewFromInt(150_000)
	for i := 0; i < 5; i++ {
		p := payments[i]
		if !p.Amount.Equal(fixed) {
			t.Errorf("payment %d amount: got %s, want %s", i+1, p.Amount, fixed)
		}
		if p.Percentage == nil || !p.Percentage.Equal(decimal.NewFromInt(15)) {
			t.Errorf("payment %d percentage: got %v, want 15", i+1, p.Percentage)
		}
		if want := scheduleStart.AddDate(0, 0, 15*(i+1)); !p.PaymentDueDate.Equal(want) {
			t.Errorf("payment %d due date: got %s, want %s", i+1, p.PaymentDueDate, want)
		}
	}

	final := payments[5]
	if want := decimal.NewFromInt(1_150_000); !final.Amount.Equal(want) {
		t.Errorf("final amount: got %s, want %s", final.Amount, want)
	}
	if final.Percentage != nil {
		t.Errorf("final percentage: got %s, want nil (blended)", final.Percentage)
	}
	if want := scheduleStart.AddDate(0, 0, 90); !final.PaymentDueDate.Equal(want) {
		t.Errorf("final due date: got %s, want %s", final.PaymentDueDate, want)
	}

	if want := decimal.NewFromInt(900_000); !totalProfit.Equal(want) {
		t.Errorf("total profit: got %s, want %s", totalProfit, want)
	}
}

func TestEqualInstallmentsSumWithinRoundingTolerance(t *testing.T) {
	terms := OpenEqualInstallments{FixedPercentage: decimal.NewFromInt(15)}
	principal := decimal.NewFromInt(1000)

	payments, totalProfit, err := GenerateSchedule(terms, principal, scheduleStart)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	if len(payments) != 6 {
		t.Fatalf("payments: got %d, want 6", len(payments))
	}

	sum := decimal.Zero
	for i, p := range payments {
		sum = sum.Add(p.Amount)
		if p.Percentage != nil {
			t.Errorf("payment %d percentage: got %s, want nil", i+1, p.Percentage)
		}
		if want := scheduleStart.AddDate(0, 0, 15*(i+1)); !p.PaymentDueDate.Equal(want) {
			t.Errorf("payment %d due date: got %s, want %s", i+1, p.PaymentDueDate, want)
		}
	}

	// P + 6*P*r/100 = 1900; six 1-cent roundings tolerated
	target := principal.Add(totalProfit)
	tolerance := decimal.RequireFromString("0.06")
	if sum.Sub(target).Abs().GreaterThan(tolerance) {
		t.Errorf("installment sum %s drifts more than %s from %s", sum, tolerance, target)
	}
	if want := decimal.NewFromInt(900); !totalProfit.Equal(want) {
		t.Errorf("total profit: got %s, want %s", totalProfit, want)
	}
}

func TestGenerateScheduleIsDeterministic(t *testing.T) {
	terms := OpenFixedPlusFinal{FixedPercentage: decimal.RequireFromString("12.5")}
	principal := decimal.RequireFromString("333333.33")

	first, firstProfit, err := GenerateSchedule(terms, principal, scheduleStart)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	second, secondProfit, err := GenerateSchedule(terms, principal, scheduleStart)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}

	if !firstProfit.Equal(secondProfit) {
		t.Errorf("profit differs between runs: %s vs %s", firstProfit, secondProfit)
	}
	if len(first) != len(second) {
		t.Fatalf("payment count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Amount.Equal(second[i].Amount) || !first[i].PaymentDueDate.Equal(second[i].PaymentDueDate) {
			t.Errorf("payment %d differs between runs", i+1)
		}
	}
}

func TestGenerateScheduleRejectsNonPositivePrincipal(t *testing.T) {
	terms := ClosedContract{ProfitPercentage: decimal.NewFromInt(50), DurationDays: 90}
	var verr *ValidationError
	if _, _, err := GenerateSchedule(terms, decimal.Zero, scheduleStart); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTermsFromPlanRejectsUnknownConfigurations(t *testing.T) {
	cases := []struct {
		name         string
		contractType models.ContractType
		plan         models.Plan
	}{
		{
			name:         "unknown contract type",
			contractType: models.ContractType("perpetual"),
			plan:         models.Plan{FixedPercentage: decimal.NewFromInt(15)},
		},
		{
			name:         "unknown calculation type",
			contractType: models.ContractTypeOpen,
			plan: models.Plan{
				CalculationType: models.CalculationType("mystery"),
				FixedPercentage: decimal.NewFromInt(15),
			},
		},
		{
			name:         "open contract without percentage",
			contractType: models.ContractTypeOpen,
			plan:         models.Plan{CalculationType: models.CalculationFixedPlusFinal},
		},
		{
			name:         "closed contract without duration",
			contractType: models.ContractTypeClosed,
			plan:         models.Plan{ClosedProfitPercentage: decimal.NewFromInt(50)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var verr *ValidationError
			if _, err := TermsFromPlan(tc.contractType, &tc.plan); !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}
