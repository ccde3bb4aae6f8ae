package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SecurityEventAuthFailure           = "auth_failure"
	SecurityEventProcessingError       = "processing_error"
	SecurityEventSignatureUnconfigured = "signature_unconfigured"
)

// SecurityEvent is a PII-redacted audit record. Details never contain raw
// emails, names or documents.
type SecurityEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	EventType string         `gorm:"type:varchar(50);not null;index" json:"event_type"`
	Source    string         `gorm:"type:varchar(20);not null;default:'';index" json:"source"`
	ClientIP  string         `gorm:"type:varchar(64)" json:"client_ip"`
	Message   string         `gorm:"type:varchar(255)" json:"message"`
	Details   datatypes.JSON `gorm:"type:json" json:"details"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}
