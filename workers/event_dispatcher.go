package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"investment-platform/models"

	"gorm.io/gorm"
)

// EventDispatcher delivers committed domain events to the notification
// service. Events are written to the outbox table inside the transaction
// that produced them; this worker only ever sees committed rows, so nothing
// is announced before it is durable. Delivery is at-least-once.
type EventDispatcher struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
	BatchSize  int
}

func NewEventDispatcher(db *gorm.DB) *EventDispatcher {
	baseURL := os.Getenv("NOTIFY_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("NOTIFY_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("INVEST_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("INVEST_SERVICE_TOKEN environment variable is required for event dispatch")
	}

	return &EventDispatcher{
		BaseURL:   baseURL,
		Token:     token,
		DB:        db,
		BatchSize: 50,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (d *EventDispatcher) deliver(ctx context.Context, event *models.DomainEvent) error {
	body, err := json.Marshal(map[string]interface{}{
		"id":          event.ID,
		"type":        event.Type,
		"payload":     json.RawMessage(event.Payload),
		"occurred_at": event.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.BaseURL+"/api/v1/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", d.Token)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call notify service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notify service returned status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

// DispatchPending sends undelivered events oldest-first and marks each one
// dispatched on success. Stops at the first failure so ordering is kept and
// the failed event is retried next tick.
func (d *EventDispatcher) DispatchPending(ctx context.Context) (int, error) {
	var events []models.DomainEvent
	if err := d.DB.Where("dispatched_at IS NULL").
		Order("created_at ASC").
		Limit(d.BatchSize).
		Find(&events).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range events {
		event := &events[i]
		if err := d.deliver(ctx, event); err != nil {
			return sent, fmt.Errorf("event %s (%s): %w", event.ID, event.Type, err)
		}
		now := time.Now().UTC()
		if err := d.DB.Model(event).Update("dispatched_at", now).Error; err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// PollEvents drains the outbox on a fixed interval until ctx is cancelled.
func PollEvents(ctx context.Context, dispatcher *EventDispatcher, pollInterval time.Duration) {
	log.Println("Starting domain event dispatcher...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Event dispatcher stopped.")
			return
		case <-ticker.C:
			sent, err := dispatcher.DispatchPending(ctx)
			if err != nil {
				log.Printf("Event dispatch error after %d event(s): %v", sent, err)
				continue
			}
			if sent > 0 {
				log.Printf("Dispatched %d domain event(s).", sent)
			}
		}
	}
}
