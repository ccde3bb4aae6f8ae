package repository

import (
	"context"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"gorm.io/gorm"
)

type securityEventRepository struct {
	db *gorm.DB
}

// NewSecurityEventRepository creates a security event repository backed by GORM.
func NewSecurityEventRepository(db *gorm.DB) SecurityEventRepository {
	return &securityEventRepository{db: db}
}

func (r *securityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

type syncAlertRepository struct {
	db *gorm.DB
}

// NewSyncAlertRepository creates a sync alert repository backed by GORM.
func NewSyncAlertRepository(db *gorm.DB) SyncAlertRepository {
	return &syncAlertRepository{db: db}
}

func (r *syncAlertRepository) Create(ctx context.Context, alert *models.SyncAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *syncAlertRepository) Latest(ctx context.Context, kind string, limit int) ([]models.SyncAlert, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.SyncAlert
	err := r.db.WithContext(ctx).Where("kind = ?", kind).Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
