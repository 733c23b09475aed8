package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/config"
	"github.com/spec-kit/directory-service/internal/events"
)

// NotificationLevel is the severity shown to the user.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationInfo    NotificationLevel = "info"
	NotificationError   NotificationLevel = "error"
)

// Notification is a user-visible message derived from a domain event.
type Notification struct {
	ID        string
	Level     NotificationLevel
	Message   string
	EventType events.EventType
	RequestID int64
	CreatedAt time.Time
}

// NotificationService turns domain events into notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig

	mu   sync.Mutex
	feed []Notification
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if cfg.FeedSize <= 0 {
		cfg.FeedSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestSubmitted, n.handleRequestSubmitted)
	n.dispatcher.Subscribe(events.EventRequestApproved, n.handleRequestApproved)
	n.dispatcher.Subscribe(events.EventRequestRejected, n.handleRequestRejected)
	n.dispatcher.Subscribe(events.EventRequestProvisioned, n.handleRequestProvisioned)
	n.dispatcher.Subscribe(events.EventRequestProvisioningFailed, n.handleProvisioningFailed)
	n.dispatcher.Subscribe(events.EventDirectoryConnected, n.handleDirectoryConnected)
	n.dispatcher.Subscribe(events.EventDirectoryRefreshed, n.handleDirectoryRefreshed)
	n.dispatcher.Subscribe(events.EventDirectorySynced, n.handleDirectorySynced)
}

// Recent returns up to limit notifications, newest first.
func (n *NotificationService) Recent(limit int) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if limit <= 0 || limit > len(n.feed) {
		limit = len(n.feed)
	}
	out := make([]Notification, 0, limit)
	for i := len(n.feed) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, n.feed[i])
	}
	return out
}

func (n *NotificationService) handleRequestSubmitted(ctx context.Context, event events.Event) error {
	n.notify(event, NotificationSuccess, "Account request submitted successfully!")
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRequestApproved(ctx context.Context, event events.Event) error {
	n.notify(event, NotificationInfo, fmt.Sprintf("Account request #%d approved", event.RequestID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRequestRejected(ctx context.Context, event events.Event) error {
	n.notify(event, NotificationInfo, fmt.Sprintf("Account request #%d rejected", event.RequestID))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRequestProvisioned(ctx context.Context, event events.Event) error {
	employeeID := ""
	if payload, ok := event.Payload.(events.RequestProvisionedPayload); ok {
		employeeID = payload.EmployeeID
	}
	n.notify(event, NotificationSuccess, fmt.Sprintf("Account %s provisioned for request #%d", employeeID, event.RequestID))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProvisioningFailed(ctx context.Context, event events.Event) error {
	reason := ""
	if payload, ok := event.Payload.(events.RequestStatusChangedPayload); ok {
		reason = payload.Reason
	}
	n.notify(event, NotificationError, fmt.Sprintf("Provisioning failed for request #%d: %s", event.RequestID, reason))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDirectoryConnected(ctx context.Context, event events.Event) error {
	n.notify(event, NotificationSuccess, "Successfully connected to OpenLDAP server")
	return nil
}

func (n *NotificationService) handleDirectoryRefreshed(ctx context.Context, event events.Event) error {
	n.notify(event, NotificationSuccess, "Refreshed directory entries")
	return nil
}

func (n *NotificationService) handleDirectorySynced(ctx context.Context, event events.Event) error {
	n.notify(event, NotificationSuccess, "Directory synchronization completed successfully")
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) notify(event events.Event, level NotificationLevel, message string) {
	created := event.Timestamp
	if created.IsZero() {
		created = time.Now()
	}
	note := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		EventType: event.Type,
		RequestID: event.RequestID,
		CreatedAt: created,
	}

	n.mu.Lock()
	n.feed = append(n.feed, note)
	if over := len(n.feed) - n.cfg.FeedSize; over > 0 {
		n.feed = append([]Notification(nil), n.feed[over:]...)
	}
	n.mu.Unlock()

	n.logger.Info("notification",
		zap.String("level", string(level)),
		zap.String("event_type", string(event.Type)),
		zap.String("message", message))
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}
