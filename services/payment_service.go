package services

import (
	"fmt"
	"time"

	"investment-platform/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{DB: db}
}

// Settle matures one due payment. Outcome "paid" records cash delivered
// outside the ledger; "accredited" additionally credits the amount into the
// subscription owner's spendable balance. Preconditions: the payment is
// still pending and its due date has passed. The status change is a
// compare-and-swap, so a payment settles at most once.
func (s *PaymentService) Settle(paymentID string, outcome models.PaymentStatus, now time.Time) (*models.Payment, error) {
	if outcome != models.PaymentStatusPaid && outcome != models.PaymentStatusAccredited {
		return nil, &ValidationError{Field: "outcome", Reason: fmt.Sprintf("must be %q or %q", models.PaymentStatusPaid, models.PaymentStatusAccredited)}
	}

	var settled models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.Preload("Subscription").First(&p, "id = ?", paymentID).Error; err != nil {
			return err
		}
		if p.PaymentDueDate.After(now) {
			return &ValidationError{Field: "payment_due_date", Reason: "payment is not due yet"}
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentStatusPending).
			Update("status", outcome)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		if outcome == models.PaymentStatusAccredited {
			if p.Subscription == nil {
				return gorm.ErrRecordNotFound
			}
			credit := models.Transaction{
				ID:             uuid.NewString(),
				UserID:         p.Subscription.UserID,
				Type:           models.TransactionTypeCredit,
				Amount:         p.Amount,
				SubscriptionID: &p.SubscriptionID,
				Note:           fmt.Sprintf("Installment credit for subscription #%d", p.Subscription.SequenceID),
			}
			if err := tx.Create(&credit).Error; err != nil {
				return err
			}
		}

		p.Status = outcome
		settled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settled, nil
}

// DuePayments returns pending payments at or past their due date, oldest
// first. Feeds the maturity digest and the admin settlement queue.
func (s *PaymentService) DuePayments(now time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.Preload("Subscription").
		Where("status = ? AND payment_due_date <= ?", models.PaymentStatusPending, now).
		Order("payment_due_date ASC").
		Find(&payments).Error
	return payments, err
}

// PaymentCorrection records one closed-contract payment whose amount
// drifted from capital + total profit.
type PaymentCorrection struct {
	PaymentID      string          `json:"payment_id"`
	SubscriptionID string          `json:"subscription_id"`
	OldAmount      decimal.Decimal `json:"old_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
}

// FixClosedPayments audits pending closed-contract payments against
// capital + total profit and, unless dryRun, rewrites the drifted amounts.
// Drift within one cent is left alone (rounding tolerance).
func (s *PaymentService) FixClosedPayments(dryRun bool) ([]PaymentCorrection, error) {
	var subs []models.Subscription
	err := s.DB.Preload("Payments", "status = ?", models.PaymentStatusPending).
		Where("contract_type = ?", models.ContractTypeClosed).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}

	tolerance := decimal.NewFromFloat(0.01)
	var corrections []PaymentCorrection

	for i := range subs {
		sub := &subs[i]
		if len(sub.Payments) == 0 {
			continue
		}
		payment := sub.Payments[0] // closed contracts carry a single payment
		correct := sub.InitialInvestment.Add(sub.ProfitAmount).Round(2)
		if payment.Amount.Sub(correct).Abs().LessThanOrEqual(tolerance) {
			continue
		}

		corrections = append(corrections, PaymentCorrection{
			PaymentID:      payment.ID,
			SubscriptionID: sub.ID,
			OldAmount:      payment.Amount,
			NewAmount:      correct,
		})
		if !dryRun {
			if err := s.DB.Model(&models.Payment{}).
				Where("id = ?", payment.ID).
				Update("amount", correct).Error; err != nil {
				return corrections, err
			}
		}
	}

	return corrections, nil
}
