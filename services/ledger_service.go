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

type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// BalanceOf derives a user's spendable balance from the transaction log:
// credits minus debits, summed in decimal so the result is exact and
// order-independent. The log is the sole source of truth — there is no
// cached balance column. Passing a transaction handle makes the read part
// of that transaction's snapshot.
func BalanceOf(tx *gorm.DB, userID string) (decimal.Decimal, error) {
	var rows []models.Transaction
	if err := tx.Select("type", "amount").Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, r := range rows {
		if r.Type == models.TransactionTypeCredit {
			balance = balance.Add(r.Amount)
		} else {
			balance = balance.Sub(r.Amount)
		}
	}
	return balance, nil
}

func (s *LedgerService) BalanceOf(userID string) (decimal.Decimal, error) {
	return BalanceOf(s.DB, userID)
}

// Post appends one ledger entry. Entries are append-only: Post is the only
// write path and nothing ever updates or deletes a row.
func (s *LedgerService) Post(entry *models.Transaction) error {
	if entry.UserID == "" {
		return &ValidationError{Field: "user_id", Reason: "missing owner"}
	}
	if entry.Type != models.TransactionTypeCredit && entry.Type != models.TransactionTypeDebit {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", entry.Type)}
	}
	if !entry.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return s.DB.Create(entry).Error
}

// Transfer moves balance between two users as one all-or-nothing unit: the
// sufficiency check and the debit/credit pair run in a serializable
// transaction scoped to the sender, so two concurrent transfers cannot both
// pass the check against a stale balance. A failed transfer leaves zero
// ledger rows behind.
func (s *LedgerService) Transfer(senderID, recipientCode string, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	var recipient models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var sender models.User
		if err := tx.First(&sender, "id = ?", senderID).Error; err != nil {
			return err
		}
		if err := tx.First(&recipient, "referral_code = ?", recipientCode).Error; err != nil {
			return err
		}
		if sender.ID == recipient.ID {
			return ErrSelfTransfer
		}

		balance, err := BalanceOf(tx, sender.ID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		debit := models.Transaction{
			ID:     uuid.NewString(),
			UserID: sender.ID,
			Type:   models.TransactionTypeDebit,
			Amount: amount,
			Note:   fmt.Sprintf("Balance sent to %s", recipient.FullName()),
		}
		credit := models.Transaction{
			ID:     uuid.NewString(),
			UserID: recipient.ID,
			Type:   models.TransactionTypeCredit,
			Amount: amount,
			Note:   fmt.Sprintf("Balance received from %s", sender.FullName()),
		}
		if err := tx.Create(&debit).Error; err != nil {
			return err
		}
		if err := tx.Create(&credit).Error; err != nil {
			return err
		}

		return appendEvent(tx, models.EventTransferCompleted, map[string]interface{}{
			"sender_id":    sender.ID,
			"recipient_id": recipient.ID,
			"amount":       amount,
		})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &recipient, nil
}

// AccountSummary is the per-user dashboard aggregate. Missing plan
// parameters are tolerated as zero contributions instead of failing.
type AccountSummary struct {
	TotalInvestment  decimal.Decimal `json:"total_investment"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TotalGain        decimal.Decimal `json:"total_gain"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

func (s *LedgerService) AccountSummary(userID string) (*AccountSummary, error) {
	var subs []models.Subscription
	if err := s.DB.Preload("Plan").
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Find(&subs).Error; err != nil {
		return nil, err
	}

	totalInvestment := decimal.Zero
	totalProfit := decimal.Zero
	for _, sub := range subs {
		totalInvestment = totalInvestment.Add(sub.InitialInvestment)
		if sub.Plan == nil {
			continue
		}
		switch sub.ContractType {
		case models.ContractTypeClosed:
			if sub.Plan.ClosedProfitPercentage.IsPositive() {
				base := sub.InitialInvestment.Mul(sub.Plan.ClosedProfitPercentage).Div(hundred)
				totalProfit = totalProfit.Add(base.Mul(decimal.NewFromInt(closedProfitMultiple)))
			}
		case models.ContractTypeOpen:
			if sub.Plan.FixedPercentage.IsPositive() {
				base := sub.InitialInvestment.Mul(sub.Plan.FixedPercentage).Div(hundred)
				totalProfit = totalProfit.Add(base.Mul(decimal.NewFromInt(openInstallments)))
			}
		}
	}

	balance, err := BalanceOf(s.DB, userID)
	if err != nil {
		return nil, err
	}

	return &AccountSummary{
		TotalInvestment:  totalInvestment,
		TotalProfit:      totalProfit,
		TotalGain:        totalInvestment.Add(totalProfit),
		AvailableBalance: balance,
	}, nil
}

// StatementLine is one classified ledger entry for account statements.
type StatementLine struct {
	ID         string          `json:"id"`
	Type       models.TransactionType `json:"type"`
	TypeDetail string          `json:"type_detail"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (s *LedgerService) Statement(userID string) ([]StatementLine, error) {
	var rows []models.Transaction
	if err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]StatementLine, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		lines = append(lines, StatementLine{
			ID:         r.ID,
			Type:       r.Type,
			TypeDetail: r.TypeDetail(),
			Amount:     r.Amount,
			Note:       r.Note,
			CreatedAt:  r.CreatedAt,
		})
	}
	return lines, nil
}
