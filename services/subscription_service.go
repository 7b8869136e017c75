package services

import (
	"database/sql"
	"fmt"
	"time"

	"investment-platform/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	DB        *gorm.DB
	Referrals *ReferralService
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{DB: db, Referrals: NewReferralService(db)}
}

// Create registers a new commitment in pending_verification. The plan's
// contract type is copied onto the subscription at this point. When
// reinvest is set the principal is funded from the user's ledger balance:
// the sufficiency check and the debit post atomically with the insert.
func (s *SubscriptionService) Create(userID, planID string, amount decimal.Decimal, reinvest bool) (*models.Subscription, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	var sub *models.Subscription
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if user.IsFraud {
			return &ValidationError{Field: "user", Reason: "account is blocked"}
		}

		var plan models.Plan
		if err := tx.First(&plan, "id = ? AND is_active = ?", planID, true).Error; err != nil {
			return err
		}
		// Reject malformed plan configurations before any money moves.
		if _, err := TermsFromPlan(plan.ContractType, &plan); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return err
		}

		sub = &models.Subscription{
			ID:                uuid.NewString(),
			UserID:            user.ID,
			PlanID:            plan.ID,
			SequenceID:        int(existing) + 1,
			InitialInvestment: amount,
			ContractType:      plan.ContractType,
			Status:            models.SubscriptionStatusPendingVerification,
		}
		if err := tx.Create(sub).Error; err != nil {
			return err
		}

		if reinvest {
			balance, err := BalanceOf(tx, user.ID)
			if err != nil {
				return err
			}
			if balance.LessThan(amount) {
				return ErrInsufficientBalance
			}
			debit := models.Transaction{
				ID:             uuid.NewString(),
				UserID:         user.ID,
				Type:           models.TransactionTypeDebit,
				Amount:         amount,
				SubscriptionID: &sub.ID,
				Note:           fmt.Sprintf("Reinvested in plan %s", plan.Name),
			}
			if err := tx.Create(&debit).Error; err != nil {
				return err
			}
		}

		return appendEvent(tx, models.EventNewInvestmentPending, map[string]interface{}{
			"subscription_id": sub.ID,
			"user_id":         user.ID,
			"plan_id":         plan.ID,
			"amount":          amount,
			"reinvested":      reinvest,
		})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Approve flips a subscription from pending_verification to active and, on
// that specific edge only, generates the payment schedule and evaluates the
// sponsor's referral bonus. The transition is a compare-and-swap on the
// current status, so concurrent approvals cannot produce two payment
// batches; everything runs in one transaction, so the subscription can
// never end up active with no payments.
func (s *SubscriptionService) Approve(subscriptionID string, now time.Time) (*models.Subscription, error) {
	var approved models.Subscription
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Subscription{}).
			Where("id = ? AND status = ?", subscriptionID, models.SubscriptionStatusPendingVerification).
			Update("status", models.SubscriptionStatusActive)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var found int64
			if err := tx.Model(&models.Subscription{}).Where("id = ?", subscriptionID).Count(&found).Error; err != nil {
				return err
			}
			if found == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrAlreadyProcessed
		}

		var sub models.Subscription
		if err := tx.Preload("Plan").First(&sub, "id = ?", subscriptionID).Error; err != nil {
			return err
		}

		if err := generateScheduleTx(tx, &sub, now); err != nil {
			return err
		}

		// Referral bonus fires only when this is the user's first-ever
		// subscription to reach active, so reinvestments and renewals never
		// re-trigger it.
		var activeCount int64
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND status = ?", sub.UserID, models.SubscriptionStatusActive).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount == 1 {
			var user models.User
			if err := tx.First(&user, "id = ?", sub.UserID).Error; err != nil {
				return err
			}
			if user.ReferredByID != nil {
				if err := s.Referrals.AwardFirstActivation(tx, *user.ReferredByID, &user); err != nil {
					return err
				}
			}
		}

		if err := appendEvent(tx, models.EventSubscriptionActivated, map[string]interface{}{
			"subscription_id": sub.ID,
			"user_id":         sub.UserID,
			"amount":          sub.InitialInvestment,
		}); err != nil {
			return err
		}

		approved = sub
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &approved, nil
}

// Reject closes an unverified subscription. Same CAS guard as Approve.
func (s *SubscriptionService) Reject(subscriptionID string) error {
	res := s.DB.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", subscriptionID, models.SubscriptionStatusPendingVerification).
		Update("status", models.SubscriptionStatusRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var found int64
		if err := s.DB.Model(&models.Subscription{}).Where("id = ?", subscriptionID).Count(&found).Error; err != nil {
			return err
		}
		if found == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrAlreadyProcessed
	}
	return nil
}

// SwitchToClosed converts an active open subscription to the closed
// contract. Payments are never deleted: the still-pending installments are
// marked corrected and a fresh closed schedule is generated from the switch
// instant, all in one transaction.
func (s *SubscriptionService) SwitchToClosed(subscriptionID string, now time.Time) (*models.Subscription, error) {
	var switched models.Subscription
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.Preload("Plan").First(&sub, "id = ?", subscriptionID).Error; err != nil {
			return err
		}
		if sub.Status != models.SubscriptionStatusActive {
			return ErrAlreadyProcessed
		}
		if sub.ContractType == models.ContractTypeClosed {
			return &ValidationError{Field: "contract_type", Reason: "subscription is already on a closed contract"}
		}
		// The plan must carry closed parameters for the switch to be possible.
		if _, err := TermsFromPlan(models.ContractTypeClosed, sub.Plan); err != nil {
			return err
		}

		if err := tx.Model(&models.Payment{}).
			Where("subscription_id = ? AND status = ?", sub.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusCorrected).Error; err != nil {
			return err
		}

		if err := tx.Model(&sub).Update("contract_type", models.ContractTypeClosed).Error; err != nil {
			return err
		}
		sub.ContractType = models.ContractTypeClosed

		if err := generateScheduleTx(tx, &sub, now); err != nil {
			return err
		}

		switched = sub
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &switched, nil
}

// generateScheduleTx builds and persists the payment batch for a
// subscription and overwrites its derived ProfitAmount cache.
func generateScheduleTx(tx *gorm.DB, sub *models.Subscription, start time.Time) error {
	terms, err := TermsFromPlan(sub.ContractType, sub.Plan)
	if err != nil {
		return err
	}
	payments, totalProfit, err := GenerateSchedule(terms, sub.InitialInvestment, start)
	if err != nil {
		return err
	}
	for i := range payments {
		payments[i].ID = uuid.NewString()
		payments[i].SubscriptionID = sub.ID
	}
	if err := tx.Create(&payments).Error; err != nil {
		return err
	}
	sub.ProfitAmount = totalProfit
	return tx.Model(sub).Update("profit_amount", totalProfit).Error
}
