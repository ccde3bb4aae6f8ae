package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a directory mirror repository backed by GORM.
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

// UpsertMirrorEntry reports true when the remote user was seen for the first time.
func (r *directoryRepository) UpsertMirrorEntry(ctx context.Context, entry *models.DirectoryMirrorEntry) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "remote_user_id"}},
		DoNothing: true,
	}).Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	err := db.Model(&models.DirectoryMirrorEntry{}).
		Where("remote_user_id = ?", entry.RemoteUserID).
		Updates(map[string]interface{}{
			"email":             entry.Email,
			"display_name":      entry.DisplayName,
			"groups":            entry.Groups,
			"payment_confirmed": entry.PaymentConfirmed,
			"access_status":     entry.AccessStatus,
			"last_synced_at":    entry.LastSyncedAt,
		}).Error
	return false, err
}

// UpsertDiscrepancy keeps one record per email. Re-detection refreshes the
// detection data but never touches the resolution.
func (r *directoryRepository) UpsertDiscrepancy(ctx context.Context, d *models.Discrepancy) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(d)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	err := db.Model(&models.Discrepancy{}).
		Where("email = ?", d.Email).
		Updates(map[string]interface{}{
			"remote_user_id":   d.RemoteUserID,
			"discrepancy_type": d.DiscrepancyType,
			"detected_groups":  d.DetectedGroups,
			"detected_at":      d.DetectedAt,
		}).Error
	return false, err
}

func (r *directoryRepository) ResolveDiscrepancy(ctx context.Context, email, resolution string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Discrepancy{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"resolution":  resolution,
			"resolved_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *directoryRepository) ListDiscrepancies(ctx context.Context, openOnly bool, offset, limit int) ([]models.Discrepancy, error) {
	q := r.db.WithContext(ctx).Model(&models.Discrepancy{})
	if openOnly {
		q = q.Where("resolution IS NULL")
	}
	var rows []models.Discrepancy
	err := q.Order("detected_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}
