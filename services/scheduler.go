// services/scheduler.go
package services

import (
	"log"
	"time"

	"investment-platform/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StartMaturityScheduler runs the periodic maintenance jobs: a due-payment
// digest for the notifier and a dry-run audit of closed-contract payment
// amounts. Settlement itself stays an explicit admin action.
func (s *PaymentService) StartMaturityScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 6 hours: digest of matured, still-pending payments.
	_, _ = sched.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(func() {
			due, err := s.DuePayments(time.Now())
			if err != nil {
				log.Printf("[Scheduler] due payment scan failed: %v", err)
				return
			}
			if len(due) == 0 {
				return
			}

			total := decimal.Zero
			ids := make([]string, 0, len(due))
			for _, p := range due {
				total = total.Add(p.Amount)
				ids = append(ids, p.ID)
			}

			err = s.DB.Transaction(func(tx *gorm.DB) error {
				return appendEvent(tx, models.EventPaymentsDue, map[string]interface{}{
					"count":        len(due),
					"total_amount": total,
					"payment_ids":  ids,
				})
			})
			if err != nil {
				log.Printf("[Scheduler] failed to record due payment digest: %v", err)
				return
			}
			log.Printf("[Scheduler] %d payments due, %s total", len(due), total)
		}),
	)

	// Daily: closed-contract amount audit. Dry run only — corrections go
	// through the maintenance endpoint.
	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			corrections, err := s.FixClosedPayments(true)
			if err != nil {
				log.Printf("[Audit] closed payment audit failed: %v", err)
				return
			}
			for _, c := range corrections {
				log.Printf("[Audit] payment %s on subscription %s is %s, should be %s",
					c.PaymentID, c.SubscriptionID, c.OldAmount, c.NewAmount)
			}
		}),
	)
}
