package services

import (
	"testing"
	"time"

	"investment-platform/models"
	"investment-platform/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db handle: %v", err)
	}
	// one shared in-memory database across the pool
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Rank{},
		&models.Plan{},
		&models.Subscription{},
		&models.Payment{},
		&models.Transaction{},
		&models.Withdrawal{},
		&models.DomainEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, referredByID *string) *models.User {
	t.Helper()
	id := uuid.NewString()
	user := &models.User{
		ID:           id,
		FirstName:    "Test",
		LastName:     "User-" + id[:8],
		Email:        id[:8] + "@example.com",
		Role:         "user",
		ReferralCode: utils.ShortCode(8),
		ReferredByID: referredByID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedClosedPlan(t *testing.T, db *gorm.DB, percentage int64, durationDays int) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		ID:                     uuid.NewString(),
		Name:                   "Closed " + uuid.NewString()[:8],
		Slug:                   "closed-" + uuid.NewString()[:8],
		ContractType:           models.ContractTypeClosed,
		ClosedProfitPercentage: decimal.NewFromInt(percentage),
		ClosedDurationDays:     durationDays,
		IsActive:               true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("seed closed plan: %v", err)
	}
	return plan
}

func seedOpenPlan(t *testing.T, db *gorm.DB, calc models.CalculationType, percentage int64) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		ID:              uuid.NewString(),
		Name:            "Open " + uuid.NewString()[:8],
		Slug:            "open-" + uuid.NewString()[:8],
		ContractType:    models.ContractTypeOpen,
		CalculationType: calc,
		FixedPercentage: decimal.NewFromInt(percentage),
		// closed parameters kept alongside for contract switches
		ClosedProfitPercentage: decimal.NewFromInt(40),
		ClosedDurationDays:     90,
		IsActive:               true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("seed open plan: %v", err)
	}
	return plan
}

func creditUser(t *testing.T, db *gorm.DB, userID, amount string) {
	t.Helper()
	entry := models.Transaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   models.TransactionTypeCredit,
		Amount: decimal.RequireFromString(amount),
		Note:   "Seed balance",
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed credit: %v", err)
	}
}

func transactionCount(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}

func mustBalance(t *testing.T, db *gorm.DB, userID string) decimal.Decimal {
	t.Helper()
	balance, err := BalanceOf(db, userID)
	if err != nil {
		t.Fatalf("BalanceOf(%s): %v", userID, err)
	}
	return balance
}

// activeSubscription creates and approves a subscription, activating it at
// the given instant.
func activeSubscription(t *testing.T, svc *SubscriptionService, userID, planID, amount string, now time.Time) *models.Subscription {
	t.Helper()
	sub, err := svc.Create(userID, planID, decimal.RequireFromString(amount), false)
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	approved, err := svc.Approve(sub.ID, now)
	if err != nil {
		t.Fatalf("approve subscription: %v", err)
	}
	return approved
}
