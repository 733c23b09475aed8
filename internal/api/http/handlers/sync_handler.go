package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-service/internal/api/dto"
	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/service"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// SyncHandler exposes the simulated OpenLDAP sync panel.
type SyncHandler struct {
	service *service.SyncService
}

// NewSyncHandler constructs handler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{service: syncService}
}

// Status GET /api/v1/sync/status.
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewSyncStatusResponse(h.service.Status(c.UserContext()))})
}

// Configure PUT /api/v1/sync/config/:side.
func (h *SyncHandler) Configure(c *fiber.Ctx) error {
	var req dto.ConnectionConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	side := domain.DirectorySide(strings.ToLower(c.Params("side")))
	status, err := h.service.Configure(c.UserContext(), side, req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSyncStatusResponse(status)})
}

// Connect POST /api/v1/sync/connect.
func (h *SyncHandler) Connect(c *fiber.Ctx) error {
	status, err := h.service.Connect(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewSyncStatusResponse(status),
		"message": "Successfully connected to OpenLDAP server",
	})
}

// Entries GET /api/v1/sync/entries?q=.
func (h *SyncHandler) Entries(c *fiber.Ctx) error {
	views, err := h.service.Entries(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	items := make([]dto.DirectoryEntryResponse, 0, len(views))
	for _, v := range views {
		items = append(items, dto.NewDirectoryEntryResponse(v))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Refresh POST /api/v1/sync/refresh.
func (h *SyncHandler) Refresh(c *fiber.Ctx) error {
	count := h.service.Refresh(c.UserContext())
	return c.JSON(fiber.Map{
		"data":    fiber.Map{"entries": count},
		"message": "Refreshed directory entries",
	})
}

// Run POST /api/v1/sync/run.
func (h *SyncHandler) Run(c *fiber.Ctx) error {
	status, err := h.service.Sync(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewSyncStatusResponse(status),
		"message": "Directory synchronization completed successfully",
	})
}
