package services

import (
	"sort"
	"time"

	"investment-platform/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

// FinancialReport are the admin money-flow aggregates. Test accounts are
// excluded from every figure; the core bookkeeping itself never branches on
// that flag.
type FinancialReport struct {
	TotalInTransfers     decimal.Decimal     `json:"total_in_transfers"`
	TotalInReinvestments decimal.Decimal     `json:"total_in_reinvestments"`
	TotalOutWithdrawals  decimal.Decimal     `json:"total_out_withdrawals"`
	TotalOutProfits      decimal.Decimal     `json:"total_out_profits"`
	NetFlow              decimal.Decimal     `json:"net_flow"`
	Projections          []MonthlyProjection `json:"projections"`
}

// MonthlyProjection sums pending future obligations per calendar month.
type MonthlyProjection struct {
	Month    string          `json:"month"` // YYYY-MM
	TotalDue decimal.Decimal `json:"total_due"`
}

// Financial builds the money-flow report for an optional date range.
// Inflows are active subscription principal, split into fresh capital and
// ledger-funded reinvestments (a reinvestment leaves a linked debit entry).
func (s *ReportService) Financial(start, end *time.Time) (*FinancialReport, error) {
	report := &FinancialReport{
		TotalInTransfers:     decimal.Zero,
		TotalInReinvestments: decimal.Zero,
		TotalOutWithdrawals:  decimal.Zero,
		TotalOutProfits:      decimal.Zero,
	}

	var subs []models.Subscription
	query := s.DB.Joins("JOIN users ON users.id = subscriptions.user_id").
		Where("users.is_test_account = ?", false).
		Where("subscriptions.status = ?", models.SubscriptionStatusActive)
	if start != nil {
		query = query.Where("subscriptions.created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("subscriptions.created_at <= ?", *end)
	}
	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}

	// Subscriptions funded from the ledger carry a linked debit entry.
	reinvested := map[string]bool{}
	var funding []models.Transaction
	if err := s.DB.Where("type = ? AND subscription_id IS NOT NULL", models.TransactionTypeDebit).
		Find(&funding).Error; err != nil {
		return nil, err
	}
	for _, f := range funding {
		reinvested[*f.SubscriptionID] = true
	}

	for _, sub := range subs {
		if reinvested[sub.ID] {
			report.TotalInReinvestments = report.TotalInReinvestments.Add(sub.InitialInvestment)
		} else {
			report.TotalInTransfers = report.TotalInTransfers.Add(sub.InitialInvestment)
		}
	}

	var entries []models.Transaction
	query = s.DB.Joins("JOIN users ON users.id = transactions.user_id").
		Where("users.is_test_account = ?", false)
	if start != nil {
		query = query.Where("transactions.created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("transactions.created_at <= ?", *end)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Type == models.TransactionTypeDebit {
			report.TotalOutWithdrawals = report.TotalOutWithdrawals.Add(e.Amount)
		} else {
			report.TotalOutProfits = report.TotalOutProfits.Add(e.Amount)
		}
	}

	report.NetFlow = report.TotalInTransfers.Add(report.TotalInReinvestments).
		Sub(report.TotalOutWithdrawals).Sub(report.TotalOutProfits)

	projections, err := s.projections(time.Now())
	if err != nil {
		return nil, err
	}
	report.Projections = projections

	return report, nil
}

// projections groups pending future payments by due month, next 12 months.
func (s *ReportService) projections(now time.Time) ([]MonthlyProjection, error) {
	var payments []models.Payment
	err := s.DB.Joins("JOIN subscriptions ON subscriptions.id = payments.subscription_id").
		Joins("JOIN users ON users.id = subscriptions.user_id").
		Where("users.is_test_account = ?", false).
		Where("payments.status = ? AND payments.payment_due_date >= ?", models.PaymentStatusPending, now).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	byMonth := map[string]decimal.Decimal{}
	for _, p := range payments {
		month := p.PaymentDueDate.Format("2006-01")
		byMonth[month] = byMonth[month].Add(p.Amount)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) > 12 {
		months = months[:12]
	}

	projections := make([]MonthlyProjection, 0, len(months))
	for _, m := range months {
		projections = append(projections, MonthlyProjection{Month: m, TotalDue: byMonth[m]})
	}
	return projections, nil
}
