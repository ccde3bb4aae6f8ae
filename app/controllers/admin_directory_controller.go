package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/directory"
)

// ============================================================================
// ADMIN DIRECTORY CONTROLLER
// ============================================================================

// DirectoryService is the directory sync surface used by the admin API.
type DirectoryService interface {
	Run(ctx context.Context, trigger string) (*directory.Summary, error)
	Resolve(ctx context.Context, email, resolution string) error
	Discrepancies(ctx context.Context, openOnly bool, page, perPage int) ([]models.Discrepancy, error)
	RecentAlerts(ctx context.Context, limit int) ([]models.SyncAlert, error)
	State() (directory.State, int)
}

// SyncTrigger queues a background sync.
type SyncTrigger interface {
	TriggerSync() bool
}

// AdminDirectoryController handles manual syncs and discrepancy review.
type AdminDirectoryController struct {
	service  DirectoryService
	trigger  SyncTrigger
	validate *validator.Validate
}

// NewAdminDirectoryController creates the controller. trigger may be nil, in
// which case every sync request runs inline.
func NewAdminDirectoryController(service DirectoryService, trigger SyncTrigger) *AdminDirectoryController {
	return &AdminDirectoryController{service: service, trigger: trigger, validate: validator.New()}
}

type resolveDiscrepancyRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Resolution string `json:"resolution" validate:"required,oneof=removed none"`
}

// HandleSync serves POST /api/admin/directory/sync. With ?wait=true the run
// happens inline and the summary is returned.
func (dc *AdminDirectoryController) HandleSync(c *fiber.Ctx) error {
	if dc.trigger != nil && !c.QueryBool("wait", false) {
		if !dc.trigger.TriggerSync() {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "A sync is already queued"})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "queued": true})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Minute)
	defer cancel()

	summary, err := dc.service.Run(ctx, "admin")
	switch {
	case errors.Is(err, directory.ErrSyncInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "A sync is already running"})
	case err != nil && summary == nil:
		log.Errorf("[AdminDirectory] Sync failed to start: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Sync failed"})
	case err != nil:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "summary": summary})
	}
	return c.JSON(fiber.Map{"success": true, "summary": summary})
}

// HandleStatus serves GET /api/admin/directory/status.
func (dc *AdminDirectoryController) HandleStatus(c *fiber.Ctx) error {
	state, page := dc.service.State()
	alerts, err := dc.service.RecentAlerts(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		log.Errorf("[AdminDirectory] Failed to load sync alerts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load status"})
	}
	return c.JSON(fiber.Map{"success": true, "state": state, "page": page, "recent_runs": alerts})
}

// HandleListDiscrepancies serves GET /api/admin/discrepancies.
func (dc *AdminDirectoryController) HandleListDiscrepancies(c *fiber.Ctx) error {
	openOnly := c.QueryBool("open", true)
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 50)

	rows, err := dc.service.Discrepancies(c.UserContext(), openOnly, page, perPage)
	if err != nil {
		log.Errorf("[AdminDirectory] Failed to list discrepancies: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to list discrepancies"})
	}
	return c.JSON(fiber.Map{"success": true, "page": page, "discrepancies": rows})
}

// HandleResolveDiscrepancy serves POST /api/admin/discrepancies/resolve.
func (dc *AdminDirectoryController) HandleResolveDiscrepancy(c *fiber.Ctx) error {
	var req resolveDiscrepancyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := dc.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "email and resolution (removed|none) are required"})
	}

	err := dc.service.Resolve(c.UserContext(), req.Email, req.Resolution)
	switch {
	case errors.Is(err, directory.ErrDiscrepancyNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Discrepancy not found"})
	case errors.Is(err, directory.ErrInvalidResolution):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	case err != nil:
		log.Errorf("[AdminDirectory] Failed to resolve discrepancy: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to resolve discrepancy"})
	}
	return c.JSON(fiber.Map{"success": true})
}
