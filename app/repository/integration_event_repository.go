package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"gorm.io/gorm"
)

type integrationEventRepository struct {
	db *gorm.DB
}

// NewIntegrationEventRepository creates an append-only event repository.
func NewIntegrationEventRepository(db *gorm.DB) IntegrationEventRepository {
	return &integrationEventRepository{db: db}
}

func (r *integrationEventRepository) Create(ctx context.Context, event *models.IntegrationEvent) error {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(event).Error
}
