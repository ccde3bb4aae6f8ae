package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory lazily builds the repository set for one injected database handle.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns the repositories bound to the factory's handle
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetTransactionRepository returns the transaction repository instance
func (f *Factory) GetTransactionRepository() TransactionRepository {
	return f.GetRepositories().Transaction
}

// GetIntegrationEventRepository returns the integration event repository instance
func (f *Factory) GetIntegrationEventRepository() IntegrationEventRepository {
	return f.GetRepositories().IntegrationEvent
}

// GetAffiliateRepository returns the affiliate repository instance
func (f *Factory) GetAffiliateRepository() AffiliateRepository {
	return f.GetRepositories().Affiliate
}

// GetMetricRepository returns the metric repository instance
func (f *Factory) GetMetricRepository() MetricRepository {
	return f.GetRepositories().Metric
}

// GetDirectoryRepository returns the directory repository instance
func (f *Factory) GetDirectoryRepository() DirectoryRepository {
	return f.GetRepositories().Directory
}

// GetSecurityEventRepository returns the security event repository instance
func (f *Factory) GetSecurityEventRepository() SecurityEventRepository {
	return f.GetRepositories().SecurityEvent
}

// GetSyncAlertRepository returns the sync alert repository instance
func (f *Factory) GetSyncAlertRepository() SyncAlertRepository {
	return f.GetRepositories().SyncAlert
}
