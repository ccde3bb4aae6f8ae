package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type metricRepository struct {
	db *gorm.DB
}

// NewMetricRepository creates a daily metric repository backed by GORM.
func NewMetricRepository(db *gorm.DB) MetricRepository {
	return &metricRepository{db: db}
}

// Increment adds delta to the counter in one statement
// (INSERT ... ON DUPLICATE KEY UPDATE value = value + delta).
func (r *metricRepository) Increment(ctx context.Context, metricName, category string, day time.Time, delta int64) error {
	now := time.Now()
	row := &models.DailyMetric{
		MetricName:    metricName,
		Category:      category,
		ReferenceDate: day,
		Value:         delta,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "metric_name"},
			{Name: "category"},
			{Name: "reference_date"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      gorm.Expr("value + ?", delta),
			"updated_at": now,
		}),
	}).Create(row).Error
}

func (r *metricRepository) ListRange(ctx context.Context, from, to time.Time) ([]models.DailyMetric, error) {
	var rows []models.DailyMetric
	err := r.db.WithContext(ctx).
		Where("reference_date BETWEEN ? AND ?", from, to).
		Order("reference_date ASC, metric_name ASC, category ASC").
		Find(&rows).Error
	return rows, err
}
