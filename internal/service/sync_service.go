package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/events"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// SyncStatus is a snapshot of the sync panel state.
type SyncStatus struct {
	Connected   bool
	ConnectedAt *time.Time
	LastSyncAt  *time.Time
	Source      *domain.ConnectionConfig
	Target      *domain.ConnectionConfig
}

// EntryView is a source entry enriched with its parsed RDN and scope.
type EntryView struct {
	Entry   domain.DirectoryEntry
	RDN     string
	InScope bool
}

// SyncService simulates connecting to and synchronizing with an OpenLDAP server.
// No network traffic is generated.
type SyncService struct {
	mu          sync.RWMutex
	source      *domain.ConnectionConfig
	target      *domain.ConnectionConfig
	connected   bool
	connectedAt *time.Time
	lastSyncAt  *time.Time
	entries     []domain.DirectoryEntry

	delay      Delay
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// SyncDependencies bundles collaborators for the sync service.
type SyncDependencies struct {
	Delay      Delay
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
	Entries    []domain.DirectoryEntry
}

// NewSyncService constructs the service. Without Entries it serves the sample entries.
func NewSyncService(deps SyncDependencies) *SyncService {
	s := &SyncService{
		entries:    deps.Entries,
		delay:      deps.Delay,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        clockOrDefault(deps.Clock),
	}
	if s.entries == nil {
		s.entries = domain.SampleEntries()
	}
	if s.delay == nil {
		s.delay = Immediate
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Configure validates and stores the connection config of one side.
func (s *SyncService) Configure(ctx context.Context, side domain.DirectorySide, cfg domain.ConnectionConfig) (SyncStatus, error) {
	if !side.Valid() {
		return SyncStatus{}, apperrors.NewValidationError("unknown directory side", map[string]any{"side": side})
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		details := map[string]any{"reason": err.Error()}
		var fieldErr *domain.FieldError
		if errors.As(err, &fieldErr) {
			details["field"] = fieldErr.Field
		}
		return SyncStatus{}, apperrors.NewValidationError("invalid connection config", details)
	}

	s.mu.Lock()
	if side == domain.DirectorySideSource {
		s.source = &cfg
	} else {
		s.target = &cfg
		s.connected = false
		s.connectedAt = nil
	}
	s.mu.Unlock()

	s.logger.Info("directory config updated", zap.String("side", string(side)), zap.String("url", cfg.URL))
	return s.Status(ctx), nil
}

// Connect waits for the simulated handshake and marks the target connected.
func (s *SyncService) Connect(ctx context.Context) (SyncStatus, error) {
	if err := s.delay.Wait(ctx); err != nil {
		return SyncStatus{}, apperrors.NewUnavailable("connect interrupted", err)
	}

	now := s.now()
	s.mu.Lock()
	s.connected = true
	s.connectedAt = &now
	target := ""
	if s.target != nil {
		target = s.target.URL
	}
	s.mu.Unlock()

	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:    events.EventDirectoryConnected,
		Payload: events.DirectoryActionPayload{Target: target},
	})
	s.logger.Info("connected to directory server", zap.String("target", target))
	return s.Status(ctx), nil
}

// Status returns the current panel state.
func (s *SyncService) Status(ctx context.Context) SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SyncStatus{
		Connected:   s.connected,
		ConnectedAt: copyTime(s.connectedAt),
		LastSyncAt:  copyTime(s.lastSyncAt),
		Source:      copyConfig(s.source),
		Target:      copyConfig(s.target),
	}
}

// Entries lists the source entries matching query.
func (s *SyncService) Entries(ctx context.Context, query string) ([]EntryView, error) {
	s.mu.RLock()
	baseDN := ""
	if s.source != nil {
		baseDN = s.source.BaseDN
	}
	entries := append([]domain.DirectoryEntry(nil), s.entries...)
	s.mu.RUnlock()

	views := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		if !entry.Matches(query) {
			continue
		}
		rdn, err := entry.RDNValue()
		if err != nil {
			s.logger.Warn("skipping unparsable entry", zap.String("dn", entry.DN), zap.Error(err))
			continue
		}
		inScope, err := domain.InScope(baseDN, entry.DN)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		views = append(views, EntryView{Entry: entry, RDN: rdn, InScope: inScope})
	}
	return views, nil
}

// Refresh re-reads the source entry list and returns its size.
func (s *SyncService) Refresh(ctx context.Context) int {
	s.mu.RLock()
	count := len(s.entries)
	s.mu.RUnlock()

	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:    events.EventDirectoryRefreshed,
		Payload: events.DirectoryActionPayload{Entries: count},
	})
	return count
}

// Sync runs the simulated synchronization. The target must be connected.
func (s *SyncService) Sync(ctx context.Context) (SyncStatus, error) {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	if !connected {
		return SyncStatus{}, apperrors.NewNotConnected()
	}

	if err := s.delay.Wait(ctx); err != nil {
		return SyncStatus{}, apperrors.NewUnavailable("sync interrupted", err)
	}

	now := s.now()
	s.mu.Lock()
	s.lastSyncAt = &now
	count := len(s.entries)
	s.mu.Unlock()

	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:    events.EventDirectorySynced,
		Payload: events.DirectoryActionPayload{Entries: count},
	})
	s.logger.Info("directory synchronization completed", zap.Int("entries", count))
	return s.Status(ctx), nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}

func copyConfig(c *domain.ConnectionConfig) *domain.ConnectionConfig {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
