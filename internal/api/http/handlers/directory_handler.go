package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-service/internal/api/dto"
	"github.com/spec-kit/directory-service/internal/service"
)

// DirectoryHandler serves the internal directory.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: directoryService}
}

// ListUsers GET /api/v1/directory/users?q=.
func (h *DirectoryHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	items := make([]dto.DirectoryUserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewDirectoryUserResponse(u))
	}
	return c.JSON(fiber.Map{"data": dto.DirectoryListResponse{
		Total:   h.service.Count(),
		Matched: len(items),
		Users:   items,
	}})
}

// GetUser GET /api/v1/directory/users/:employeeId.
func (h *DirectoryHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), c.Params("employeeId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDirectoryUserResponse(*user)})
}
