package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/audit"
)

var (
	// ErrInvalidResolution is returned for resolutions other than removed or none.
	ErrInvalidResolution = errors.New("resolution must be removed or none")
	// ErrDiscrepancyNotFound is returned when no discrepancy exists for the email.
	ErrDiscrepancyNotFound = errors.New("discrepancy not found")
)

// Resolve records an operator decision for the discrepancy of email.
// Resolutions are only ever set here; a sync never clears or sets them.
func (s *Service) Resolve(ctx context.Context, email, resolution string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrDiscrepancyNotFound
	}
	if resolution != models.ResolutionRemoved && resolution != models.ResolutionNone {
		return ErrInvalidResolution
	}

	err := s.directory.ResolveDiscrepancy(ctx, email, resolution, s.now().UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDiscrepancyNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve discrepancy: %w", err)
	}
	log.Infof("[DirectorySync] Discrepancy for %s resolved as %s", audit.RedactEmail(email), resolution)
	return nil
}

// Discrepancies lists discrepancies, newest first.
func (s *Service) Discrepancies(ctx context.Context, openOnly bool, page, perPage int) ([]models.Discrepancy, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	return s.directory.ListDiscrepancies(ctx, openOnly, (page-1)*perPage, perPage)
}

// RecentAlerts returns the latest sync alerts.
func (s *Service) RecentAlerts(ctx context.Context, limit int) ([]models.SyncAlert, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.alerts.Latest(ctx, models.SyncAlertKindDirectory, limit)
}
