package models

import "time"

const (
	MetricRevenue    = "revenue"
	MetricSalesCount = "sales_count"
)

// DailyMetric is a running counter keyed by (metric, category, day). It is
// only ever changed through an atomic increment-on-upsert.
type DailyMetric struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MetricName    string    `gorm:"type:varchar(64);not null;index:ux_daily_metrics_key,unique,priority:1" json:"metric_name"`
	Category      string    `gorm:"type:varchar(64);not null;index:ux_daily_metrics_key,unique,priority:2" json:"category"`
	ReferenceDate time.Time `gorm:"type:date;not null;index:ux_daily_metrics_key,unique,priority:3" json:"reference_date"`
	Value         int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
