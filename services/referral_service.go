package services

import (
	"errors"
	"fmt"
	"log"

	"investment-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// AwardFirstActivation credits a sponsor for a referred user's first-ever
// subscription activation. It runs inside the caller's transaction: the
// count increment, the rank lookup, the rank assignment and the bonus
// posting commit or roll back together.
//
// Ranks are one-shot checkpoints matched on the exact new count, not on
// crossing a threshold. A count that jumps past a checkpoint never unlocks
// it; that case is logged so operations can spot it.
func (s *ReferralService) AwardFirstActivation(tx *gorm.DB, sponsorID string, referred *models.User) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", sponsorID).
		UpdateColumn("referral_count", gorm.Expr("referral_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	var sponsor models.User
	if err := tx.First(&sponsor, "id = ?", sponsorID).Error; err != nil {
		return err
	}

	var rank models.Rank
	err := tx.Where("required_referrals = ? AND is_active = ?", sponsor.ReferralCount, true).
		First(&rank).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[REFERRAL] sponsor %s now at %d referrals, no rank at this exact count", sponsor.ID, sponsor.ReferralCount)
		return nil
	}
	if err != nil {
		return err
	}

	if err := tx.Model(&sponsor).Update("rank_id", rank.ID).Error; err != nil {
		return err
	}

	bonus := models.Transaction{
		ID:     uuid.NewString(),
		UserID: sponsor.ID,
		Type:   models.TransactionTypeCredit,
		Amount: rank.RewardAmount,
		Note:   fmt.Sprintf("Rank reward for reaching %s (referred: %s)", rank.Name, referred.FullName()),
	}
	if err := tx.Create(&bonus).Error; err != nil {
		return err
	}

	return appendEvent(tx, models.EventRankAchieved, map[string]interface{}{
		"user_id":       sponsor.ID,
		"rank_id":       rank.ID,
		"rank":          rank.Name,
		"reward_amount": rank.RewardAmount,
		"referred_id":   referred.ID,
	})
}
