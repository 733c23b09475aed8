package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/events"
	"github.com/spec-kit/directory-service/internal/observability"
	"github.com/spec-kit/directory-service/internal/repository"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// Enqueuer accepts provisioning jobs for asynchronous execution.
type Enqueuer interface {
	Enqueue(requestID int64) error
}

// Provisioner materializes directory users from approved requests.
type Provisioner struct {
	requests   repository.RequestRepository
	directory  repository.DirectoryRepository
	delay      Delay
	queue      Enqueuer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        Clock
	newID      func() string
	title      string
}

// ProvisionerDependencies bundles collaborators for the provisioner.
// Queue runs jobs asynchronously; when nil, Start runs the job inline.
type ProvisionerDependencies struct {
	RequestRepo   repository.RequestRepository
	DirectoryRepo repository.DirectoryRepository
	Delay         Delay
	Queue         Enqueuer
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Clock         Clock
	IDGenerator   func() string
	DefaultTitle  string
}

// NewProvisioner constructs the provisioner.
func NewProvisioner(deps ProvisionerDependencies) *Provisioner {
	p := &Provisioner{
		requests:   deps.RequestRepo,
		directory:  deps.DirectoryRepo,
		delay:      deps.Delay,
		queue:      deps.Queue,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        clockOrDefault(deps.Clock),
		newID:      deps.IDGenerator,
		title:      deps.DefaultTitle,
	}
	if p.delay == nil {
		p.delay = Immediate
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	if p.title == "" {
		p.title = domain.DefaultTitle
	}
	return p
}

// Start moves an approved request to provisioning and schedules the job.
func (p *Provisioner) Start(ctx context.Context, id int64) (*domain.AccountRequest, error) {
	const reason = "provisioning started"
	req, previous, err := transitionRequest(ctx, p.requests, id, domain.RequestStatusApproved, domain.RequestStatusProvisioning, reason, p.now(), func(r *domain.AccountRequest) {
		r.FailureReason = ""
	})
	if err != nil {
		return nil, err
	}
	p.metrics.RecordTransition(string(previous), string(req.Status))
	publish(ctx, p.dispatcher, p.now, statusChangedEvent(events.EventRequestProvisioningStarted, req, previous, reason))
	p.logger.Info("provisioning started", zap.Int64("request_id", id))

	if p.queue == nil {
		if err := p.Run(ctx, id); err != nil {
			p.logger.Warn("inline provisioning failed", zap.Int64("request_id", id), zap.Error(err))
		}
		return p.requests.GetByID(ctx, id)
	}
	if err := p.queue.Enqueue(id); err != nil {
		p.fail(ctx, id, fmt.Sprintf("could not schedule provisioning: %v", err), p.now())
		return nil, apperrors.NewUnavailable("provisioning queue unavailable", err)
	}
	return req, nil
}

// Run waits for the simulated latency, then adds the directory user and
// marks the request provisioned in one step. On any failure the request
// returns to approved with the reason recorded.
func (p *Provisioner) Run(ctx context.Context, id int64) error {
	started := p.now()
	if err := p.delay.Wait(ctx); err != nil {
		p.fail(ctx, id, fmt.Sprintf("provisioning interrupted: %v", err), started)
		return err
	}

	const reason = "provisioning completed"
	var user domain.DirectoryUser
	req, err := p.requests.Update(ctx, id, func(r *domain.AccountRequest) error {
		now := p.now()
		if !domain.CanTransition(r.Status, domain.RequestStatusProvisioned) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.Status, domain.RequestStatusProvisioned)
		}
		user = domain.NewDirectoryUserFromRequest(*r, p.title, p.newID(), now)
		if err := p.directory.Add(ctx, user); err != nil {
			return err
		}
		r.FailureReason = ""
		return r.Transition(domain.RequestStatusProvisioned, reason, now)
	})
	if err != nil {
		p.fail(ctx, id, err.Error(), started)
		return err
	}

	p.metrics.RecordTransition(string(domain.RequestStatusProvisioning), string(domain.RequestStatusProvisioned))
	p.metrics.RecordProvisioning("success", p.now().Sub(started))
	p.metrics.SetDirectorySize(p.directory.Count())
	publish(ctx, p.dispatcher, p.now, events.Event{
		Type:      events.EventRequestProvisioned,
		RequestID: req.ID,
		Payload: events.RequestProvisionedPayload{
			EmployeeID: user.EmployeeID,
			Email:      user.Email,
		},
	})
	p.logger.Info("request provisioned",
		zap.Int64("request_id", req.ID),
		zap.String("employee_id", user.EmployeeID))
	return nil
}

// fail rolls a provisioning request back to approved.
func (p *Provisioner) fail(ctx context.Context, id int64, reason string, started time.Time) {
	ctx = context.WithoutCancel(ctx)
	p.metrics.RecordProvisioning("failure", p.now().Sub(started))

	req, previous, err := transitionRequest(ctx, p.requests, id, domain.RequestStatusProvisioning, domain.RequestStatusApproved, "provisioning failed", p.now(), func(r *domain.AccountRequest) {
		r.FailureReason = reason
	})
	if err != nil {
		p.logger.Error("provisioning rollback failed", zap.Int64("request_id", id), zap.Error(err))
		return
	}
	p.metrics.RecordTransition(string(previous), string(req.Status))
	publish(ctx, p.dispatcher, p.now, statusChangedEvent(events.EventRequestProvisioningFailed, req, previous, reason))
	p.logger.Warn("provisioning failed", zap.Int64("request_id", id), zap.String("reason", reason))
}
