package services

import (
	"database/sql"
	"fmt"

	"investment-platform/models"
	"investment-platform/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WithdrawalService struct {
	DB *gorm.DB
}

func NewWithdrawalService(db *gorm.DB) *WithdrawalService {
	return &WithdrawalService{DB: db}
}

// Request opens a pending withdrawal and posts the matching ledger debit as
// one atomic unit, guarded by a balance-sufficiency check inside the same
// serializable transaction.
func (s *WithdrawalService) Request(userID string, amount decimal.Decimal) (*models.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	var w *models.Withdrawal
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if user.IsFraud {
			return &ValidationError{Field: "user", Reason: "account is blocked"}
		}

		balance, err := BalanceOf(tx, user.ID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		w = &models.Withdrawal{
			ID:     uuid.NewString(),
			UserID: user.ID,
			Amount: amount,
			Status: models.WithdrawalStatusPending,
			Code:   utils.ShortCode(10),
		}
		if err := tx.Create(w).Error; err != nil {
			return err
		}

		debit := models.Transaction{
			ID:     uuid.NewString(),
			UserID: user.ID,
			Type:   models.TransactionTypeDebit,
			Amount: amount,
			Note:   fmt.Sprintf("Withdrawal request %s", w.Code),
		}
		if err := tx.Create(&debit).Error; err != nil {
			return err
		}

		return appendEvent(tx, models.EventNewWithdrawalRequest, map[string]interface{}{
			"withdrawal_id": w.ID,
			"user_id":       user.ID,
			"amount":        amount,
			"code":          w.Code,
		})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Complete marks a pending withdrawal paid out externally. Terminal, no
// ledger effect. Only one resolver ever observes pending.
func (s *WithdrawalService) Complete(withdrawalID string) error {
	res := s.DB.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", withdrawalID, models.WithdrawalStatusPending).
		Update("status", models.WithdrawalStatusCompleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.resolveConflict(withdrawalID)
	}
	return nil
}

// Reject refuses a pending withdrawal and posts exactly one reversing
// credit for the original amount. The status compare-and-swap makes a
// double reversal impossible even under concurrent duplicate calls.
func (s *WithdrawalService) Reject(withdrawalID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, models.WithdrawalStatusPending).
			Update("status", models.WithdrawalStatusRejected)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.resolveConflictTx(tx, withdrawalID)
		}

		var w models.Withdrawal
		if err := tx.First(&w, "id = ?", withdrawalID).Error; err != nil {
			return err
		}

		reversal := models.Transaction{
			ID:     uuid.NewString(),
			UserID: w.UserID,
			Type:   models.TransactionTypeCredit,
			Amount: w.Amount,
			Note:   fmt.Sprintf("Reversal for rejected withdrawal (code %s)", w.Code),
		}
		return tx.Create(&reversal).Error
	})
}

func (s *WithdrawalService) resolveConflict(withdrawalID string) error {
	return s.resolveConflictTx(s.DB, withdrawalID)
}

func (s *WithdrawalService) resolveConflictTx(tx *gorm.DB, withdrawalID string) error {
	var found int64
	if err := tx.Model(&models.Withdrawal{}).Where("id = ?", withdrawalID).Count(&found).Error; err != nil {
		return err
	}
	if found == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrAlreadyProcessed
}

// Pending lists unresolved withdrawals for the admin queue, optionally
// filtered by lookup code.
func (s *WithdrawalService) Pending(code string) ([]models.Withdrawal, error) {
	query := s.DB.Preload("User").Where("status = ?", models.WithdrawalStatusPending)
	if code != "" {
		query = query.Where("code = ?", code)
	}
	var withdrawals []models.Withdrawal
	err := query.Order("created_at DESC").Find(&withdrawals).Error
	return withdrawals, err
}
