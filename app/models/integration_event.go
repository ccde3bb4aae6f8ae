package models

import "time"

// IntegrationEvent is the append-only raw log of every accepted inbound
// webhook request, written before the canonical transaction so that payloads
// that fail to parse stay recoverable. Payload is stored unredacted.
type IntegrationEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventType  string    `gorm:"type:varchar(100);not null;default:'';index" json:"event_type"`
	Source     string    `gorm:"type:varchar(20);not null;index" json:"source"`
	SourceID   string    `gorm:"type:varchar(191);not null;default:'';index" json:"source_id"`
	Payload    string    `gorm:"type:longtext;not null" json:"payload"`
	ClientIP   string    `gorm:"type:varchar(64)" json:"client_ip"`
	ReceivedAt time.Time `gorm:"not null;index" json:"received_at"`
}
