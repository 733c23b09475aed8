package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/config"
	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/repository"
	"github.com/spec-kit/directory-service/internal/worker"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// flakySnapshot fails the first failures saves.
type flakySnapshot struct {
	mu       sync.Mutex
	failures int
	inner    *repository.MemorySnapshotStore
}

func (f *flakySnapshot) Load(ctx context.Context) ([]domain.DirectoryUser, error) {
	return f.inner.Load(ctx)
}

func (f *flakySnapshot) Save(ctx context.Context, users []domain.DirectoryUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("snapshot unavailable")
	}
	return f.inner.Save(ctx, users)
}

type rejectingQueue struct{}

func (rejectingQueue) Enqueue(int64) error { return worker.ErrQueueFull }

func TestProvisioner_EmployeeIDCollisionRollsBack(t *testing.T) {
	taken := domain.NewDirectoryUserFromRequest(domain.AccountRequest{ID: 1, FirstName: "Old", LastName: "Hire", Email: "old@example.com"}, "", "old", fixedNow)
	taken.RequestID = 99
	h := newHarness(t, withSnapshot(repository.NewMemorySnapshotStore(taken)))
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)

	got, err := h.service.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, got.Status)
	assert.Contains(t, got.FailureReason, "employee id already in use")
	assert.Equal(t, 1, h.directory.Count())

	latest := h.notifications.Recent(1)
	require.Len(t, latest, 1)
	assert.Equal(t, NotificationError, latest[0].Level)
	assert.Contains(t, latest[0].Message, "Provisioning failed for request #1")

	again, err := h.service.Retry(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, again.Status)
	assert.NotEmpty(t, again.FailureReason)
}

func TestProvisioner_RetryAfterSnapshotFailure(t *testing.T) {
	snapshot := &flakySnapshot{failures: 1, inner: repository.NewMemorySnapshotStore()}
	h := newHarness(t, withSnapshot(snapshot))
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)

	failed, err := h.service.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, failed.Status)
	assert.Contains(t, failed.FailureReason, "snapshot unavailable")
	assert.Equal(t, 0, h.directory.Count())

	done, err := h.service.Retry(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusProvisioned, done.Status)
	assert.Empty(t, done.FailureReason)
	assert.Len(t, done.History, 5)
	assert.Equal(t, 1, h.directory.Count())
	assert.Equal(t, 1, snapshot.inner.Saves())
}

func TestProvisioner_RetryRequiresApproved(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)

	_, err = h.service.Retry(ctx, req.ID)
	requireCode(t, err, "INVALID_TRANSITION", http.StatusConflict)

	_, err = h.service.Approve(ctx, req.ID)
	require.NoError(t, err)
	_, err = h.service.Retry(ctx, req.ID)
	requireCode(t, err, "INVALID_TRANSITION", http.StatusConflict)
	assert.Equal(t, 1, h.directory.Count())
}

func TestProvisioner_AsyncThroughWorker(t *testing.T) {
	gate := NewGate()
	w := worker.NewProvisioningWorker(config.ProvisioningConfig{Workers: 1, QueueSize: 4}, zap.NewNop())
	h := (&harness{snapshot: repository.NewMemorySnapshotStore()}).build(t, func(d *ProvisionerDependencies) {
		d.Delay = gate
		d.Queue = w
	})
	w.Start(context.Background(), h.provisioner)
	t.Cleanup(w.Stop)
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)

	started, err := h.service.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusProvisioning, started.Status)
	assert.Equal(t, 0, h.directory.Count())

	gate.Release()
	require.Eventually(t, func() bool {
		current, err := h.service.Get(ctx, req.ID)
		return err == nil && current.Status == domain.RequestStatusProvisioned
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.directory.Count())
}

func TestProvisioner_StopRollsBackPendingJobs(t *testing.T) {
	w := worker.NewProvisioningWorker(config.ProvisioningConfig{Workers: 1, QueueSize: 4}, zap.NewNop())
	h := (&harness{snapshot: repository.NewMemorySnapshotStore()}).build(t, func(d *ProvisionerDependencies) {
		d.Delay = NewGate()
		d.Queue = w
	})
	w.Start(context.Background(), h.provisioner)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		in := adaInput()
		in.Email = email
		req, err := h.service.Submit(ctx, in)
		require.NoError(t, err)
		_, err = h.service.Approve(ctx, req.ID)
		require.NoError(t, err)
	}

	w.Stop()

	for _, id := range []int64{1, 2} {
		req, err := h.service.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusApproved, req.Status, "request %d", id)
		assert.Contains(t, req.FailureReason, "provisioning interrupted")
	}
	assert.Equal(t, 0, h.directory.Count())
}

func TestProvisioner_EnqueueFailure(t *testing.T) {
	h := (&harness{snapshot: repository.NewMemorySnapshotStore()}).build(t, func(d *ProvisionerDependencies) {
		d.Queue = rejectingQueue{}
	})
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)

	_, err = h.service.Approve(ctx, req.ID)
	requireCode(t, err, "UNAVAILABLE", http.StatusServiceUnavailable)

	stored, err := h.service.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, stored.Status)
	assert.Contains(t, stored.FailureReason, "could not schedule provisioning")
}

func TestProvisioner_CustomTitle(t *testing.T) {
	h := (&harness{snapshot: repository.NewMemorySnapshotStore()}).build(t, func(d *ProvisionerDependencies) {
		d.DefaultTitle = "Contractor"
	})
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)
	_, err = h.service.Approve(ctx, req.ID)
	require.NoError(t, err)

	user, err := h.directory.GetByEmployeeID(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, "Contractor", user.Title)
}

// countingRunner counts jobs the worker hands to the provisioner.
type countingRunner struct {
	inner *Provisioner
	runs  atomic.Int32
}

func (c *countingRunner) Run(ctx context.Context, id int64) error {
	c.runs.Add(1)
	return c.inner.Run(ctx, id)
}

// recordingQueue accepts every job and keeps the ids.
type recordingQueue struct {
	mu  sync.Mutex
	ids []int64
}

func (q *recordingQueue) Enqueue(id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
	return nil
}

func (q *recordingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}

func TestProvisioner_ApproveWhileProvisioningRefused(t *testing.T) {
	gate := NewGate()
	w := worker.NewProvisioningWorker(config.ProvisioningConfig{Workers: 1, QueueSize: 4}, zap.NewNop())
	h := (&harness{snapshot: repository.NewMemorySnapshotStore()}).build(t, func(d *ProvisionerDependencies) {
		d.Delay = gate
		d.Queue = w
	})
	runner := &countingRunner{inner: h.provisioner}
	w.Start(context.Background(), runner)
	t.Cleanup(w.Stop)
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)
	started, err := h.service.Approve(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusProvisioning, started.Status)

	_, err = h.service.Approve(ctx, req.ID)
	domainErr := requireCode(t, err, "INVALID_TRANSITION", http.StatusConflict)
	assert.Equal(t, "provisioning", domainErr.Details["from"])
	assert.Equal(t, "approved", domainErr.Details["to"])

	stored, err := h.service.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusProvisioning, stored.Status)
	assert.Len(t, stored.History, 2)

	gate.Release()
	require.Eventually(t, func() bool {
		current, err := h.service.Get(ctx, req.ID)
		return err == nil && current.Status == domain.RequestStatusProvisioned
	}, 2*time.Second, 5*time.Millisecond)

	done, err := h.service.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, done.History, 3)
	assert.Equal(t, int32(1), runner.runs.Load())
	assert.Equal(t, 1, h.directory.Count())

	approvals := 0
	for _, n := range h.notifications.Recent(0) {
		if n.Message == "Account request #1 approved" {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals)
}

func TestProvisioner_ApproveAfterFailedAttemptRefused(t *testing.T) {
	taken := domain.NewDirectoryUserFromRequest(domain.AccountRequest{ID: 1, FirstName: "Old", LastName: "Hire", Email: "old@example.com"}, "", "old", fixedNow)
	taken.RequestID = 99
	h := newHarness(t, withSnapshot(repository.NewMemorySnapshotStore(taken)))
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)
	failed, err := h.service.Approve(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusApproved, failed.Status)

	_, err = h.service.Approve(ctx, req.ID)
	domainErr := requireCode(t, err, "INVALID_TRANSITION", http.StatusConflict)
	assert.Equal(t, "approved", domainErr.Details["from"])

	stored, err := h.service.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, failed.History, stored.History)
}

func TestProvisioner_ApproveProvisionedRefused(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)
	_, err = h.service.Approve(ctx, req.ID)
	require.NoError(t, err)

	_, err = h.service.Approve(ctx, req.ID)
	domainErr := requireCode(t, err, "INVALID_TRANSITION", http.StatusConflict)
	assert.Equal(t, "provisioned", domainErr.Details["from"])
	assert.Equal(t, 1, h.directory.Count())
}

func TestProvisioner_ConcurrentApprovesStartOnce(t *testing.T) {
	queue := &recordingQueue{}
	h := (&harness{snapshot: repository.NewMemorySnapshotStore()}).build(t, func(d *ProvisionerDependencies) {
		d.Queue = queue
	})
	ctx := context.Background()

	const requests, callers = 20, 3
	for i := 0; i < requests; i++ {
		in := adaInput()
		in.Email = fmt.Sprintf("user%d@example.com", i)
		_, err := h.service.Submit(ctx, in)
		require.NoError(t, err)
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		refused   atomic.Int32
	)
	for id := int64(1); id <= requests; id++ {
		for c := 0; c < callers; c++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := h.service.Approve(ctx, id)
				switch {
				case err == nil:
					succeeded.Add(1)
				case apperrors.ToDomainError(err).Code == "INVALID_TRANSITION":
					refused.Add(1)
				}
			}(id)
		}
	}
	wg.Wait()

	assert.Equal(t, int32(requests), succeeded.Load())
	assert.Equal(t, int32(requests*(callers-1)), refused.Load())
	assert.Equal(t, requests, queue.len())
}

func TestProvisioner_UnstartedWorkerRollsBack(t *testing.T) {
	w := worker.NewProvisioningWorker(config.ProvisioningConfig{Workers: 1, QueueSize: 4}, zap.NewNop())
	h := (&harness{snapshot: repository.NewMemorySnapshotStore()}).build(t, func(d *ProvisionerDependencies) {
		d.Queue = w
	})
	t.Cleanup(w.Stop)
	ctx := context.Background()

	req, err := h.service.Submit(ctx, adaInput())
	require.NoError(t, err)
	_, err = h.service.Approve(ctx, req.ID)
	requireCode(t, err, "UNAVAILABLE", http.StatusServiceUnavailable)

	stored, err := h.service.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, stored.Status)
	assert.Contains(t, stored.FailureReason, worker.ErrWorkerNotStarted.Error())
}
