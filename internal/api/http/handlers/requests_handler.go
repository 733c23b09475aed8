package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-service/internal/api/dto"
	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/service"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// RequestsHandler manages account request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// Submit POST /api/v1/requests.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.service.Submit(c.UserContext(), service.RequestSubmitInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Department:    req.Department,
		Justification: req.Justification,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAccountRequestResponse(created, false)})
}

// List GET /api/v1/requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	var statuses []domain.RequestStatus
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				statuses = append(statuses, domain.RequestStatus(strings.ToLower(part)))
			}
		}
	}
	requests, err := h.service.List(c.UserContext(), statuses)
	if err != nil {
		return err
	}
	items := make([]dto.AccountRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewAccountRequestResponse(&requests[i], false))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/v1/requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountRequestResponse(req, true)})
}

// Approve POST /api/v1/requests/:id/approve.
func (h *RequestsHandler) Approve(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Approve(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": dto.NewAccountRequestResponse(req, false)})
}

// Reject POST /api/v1/requests/:id/reject.
func (h *RequestsHandler) Reject(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Reject(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountRequestResponse(req, false)})
}

// Retry POST /api/v1/requests/:id/retry.
func (h *RequestsHandler) Retry(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Retry(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": dto.NewAccountRequestResponse(req, false)})
}

func requestID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid request id", map[string]any{"id": c.Params("id")})
	}
	return int64(id), nil
}
