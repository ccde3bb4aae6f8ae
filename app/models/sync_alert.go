package models

import "time"

const SyncAlertKindDirectory = "directory_sync"

const (
	SyncAlertSeverityInfo    = "info"
	SyncAlertSeverityWarning = "warning"
	SyncAlertSeverityError   = "error"
)

const (
	SyncOutcomeDone    = "done"
	SyncOutcomeAborted = "aborted"
)

// SyncAlert is the single aggregate notification emitted per sync run.
type SyncAlert struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RunID         string    `gorm:"type:char(36);not null;index" json:"run_id"`
	Kind          string    `gorm:"type:varchar(50);not null;index" json:"kind"`
	Severity      string    `gorm:"type:varchar(20);not null" json:"severity"`
	Outcome       string    `gorm:"type:varchar(20);not null" json:"outcome"`
	Pages         int       `gorm:"not null;default:0" json:"pages"`
	Synced        int       `gorm:"not null;default:0" json:"synced"`
	Created       int       `gorm:"not null;default:0" json:"created"`
	Updated       int       `gorm:"not null;default:0" json:"updated"`
	Failed        int       `gorm:"not null;default:0" json:"failed"`
	Discrepancies int       `gorm:"not null;default:0" json:"discrepancies"`
	Error         string    `gorm:"type:text" json:"error"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
