package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"gorm.io/gorm"
)

// StoredTransaction is the result of an idempotent transaction upsert.
// StatusChanged is true for exactly one delivery per status transition,
// including the insert that created the row.
type StoredTransaction struct {
	Transaction   *models.Transaction
	Created       bool
	StatusChanged bool
}

// TransactionRepository defines canonical transaction persistence.
type TransactionRepository interface {
	Upsert(ctx context.Context, tx *models.Transaction) (*StoredTransaction, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Transaction, error)
	HasApprovedForEmail(ctx context.Context, email string) (bool, error)
}

// IntegrationEventRepository appends raw inbound events.
type IntegrationEventRepository interface {
	Create(ctx context.Context, event *models.IntegrationEvent) error
}

// AffiliateRepository defines affiliate lookups and commission bookkeeping.
type AffiliateRepository interface {
	FindByCouponCode(ctx context.Context, code string) (*models.Affiliate, error)
	FindByPlatformAffiliateID(ctx context.Context, platformID string) (*models.Affiliate, error)
	RecordCommission(ctx context.Context, commission *models.Commission) (bool, error)
}

// MetricRepository defines atomic daily counters.
type MetricRepository interface {
	Increment(ctx context.Context, metricName, category string, day time.Time, delta int64) error
	ListRange(ctx context.Context, from, to time.Time) ([]models.DailyMetric, error)
}

// DirectoryRepository defines mirror and discrepancy persistence.
type DirectoryRepository interface {
	UpsertMirrorEntry(ctx context.Context, entry *models.DirectoryMirrorEntry) (bool, error)
	UpsertDiscrepancy(ctx context.Context, d *models.Discrepancy) (bool, error)
	ResolveDiscrepancy(ctx context.Context, email, resolution string, at time.Time) error
	ListDiscrepancies(ctx context.Context, openOnly bool, offset, limit int) ([]models.Discrepancy, error)
}

// SecurityEventRepository persists redacted audit events.
type SecurityEventRepository interface {
	Create(ctx context.Context, event *models.SecurityEvent) error
}

// SyncAlertRepository persists aggregate sync notifications.
type SyncAlertRepository interface {
	Create(ctx context.Context, alert *models.SyncAlert) error
	Latest(ctx context.Context, kind string, limit int) ([]models.SyncAlert, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Transaction      TransactionRepository
	IntegrationEvent IntegrationEventRepository
	Affiliate        AffiliateRepository
	Metric           MetricRepository
	Directory        DirectoryRepository
	SecurityEvent    SecurityEventRepository
	SyncAlert        SyncAlertRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Transaction:      NewTransactionRepository(db),
		IntegrationEvent: NewIntegrationEventRepository(db),
		Affiliate:        NewAffiliateRepository(db),
		Metric:           NewMetricRepository(db),
		Directory:        NewDirectoryRepository(db),
		SecurityEvent:    NewSecurityEventRepository(db),
		SyncAlert:        NewSyncAlertRepository(db),
	}
}
