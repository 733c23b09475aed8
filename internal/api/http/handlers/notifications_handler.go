package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-service/internal/api/dto"
	"github.com/spec-kit/directory-service/internal/service"
)

// NotificationsHandler serves the notification feed.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// List GET /api/v1/notifications?limit=.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	notes := h.service.Recent(c.QueryInt("limit", 0))
	items := make([]dto.NotificationResponse, 0, len(notes))
	for _, n := range notes {
		items = append(items, dto.NewNotificationResponse(n))
	}
	return c.JSON(fiber.Map{"data": items})
}
