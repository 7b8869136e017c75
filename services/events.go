package services

import (
	"encoding/json"

	"investment-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// appendEvent writes an outbox row inside the caller's transaction so the
// event becomes visible to the dispatcher only after the state change it
// describes has committed.
func appendEvent(tx *gorm.DB, eventType string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&models.DomainEvent{
		ID:      uuid.NewString(),
		Type:    eventType,
		Payload: string(body),
	}).Error
}
