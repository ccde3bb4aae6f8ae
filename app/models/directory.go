package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AccessStatusActive   = "active"
	AccessStatusNoAccess = "no_access"
)

const DiscrepancyAccessWithoutPayment = "access_without_payment"

const (
	ResolutionRemoved = "removed"
	ResolutionNone    = "none"
)

// DirectoryMirrorEntry is the local copy of one remote directory user.
type DirectoryMirrorEntry struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	RemoteUserID     string         `gorm:"type:varchar(191);not null;index:ux_directory_mirror_remote_user,unique" json:"remote_user_id"`
	Email            string         `gorm:"type:varchar(191);not null;index" json:"email"`
	DisplayName      string         `gorm:"type:varchar(255)" json:"display_name"`
	Groups           datatypes.JSON `gorm:"type:json" json:"groups"`
	PaymentConfirmed bool           `gorm:"not null;default:false;index" json:"payment_confirmed"`
	AccessStatus     string         `gorm:"type:varchar(20);not null;default:'no_access'" json:"access_status"`
	LastSyncedAt     time.Time      `gorm:"not null" json:"last_synced_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Discrepancy flags a user holding elevated access without a confirmed
// payment. There is one record per email; resolution is only ever set manually.
type Discrepancy struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Email           string         `gorm:"type:varchar(191);not null;index:ux_discrepancies_email,unique" json:"email"`
	RemoteUserID    string         `gorm:"type:varchar(191);not null" json:"remote_user_id"`
	DiscrepancyType string         `gorm:"type:varchar(50);not null" json:"discrepancy_type"`
	DetectedGroups  datatypes.JSON `gorm:"type:json" json:"detected_groups"`
	DetectedAt      time.Time      `gorm:"not null" json:"detected_at"`
	Resolution      *string        `gorm:"type:varchar(20);default:null;index" json:"resolution,omitempty"`
	ResolvedAt      *time.Time     `gorm:"type:timestamp;default:null" json:"resolved_at,omitempty"`
}

// IsOpen reports whether nobody has resolved the discrepancy yet.
func (d *Discrepancy) IsOpen() bool {
	return d.Resolution == nil
}
