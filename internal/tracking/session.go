// Package tracking records browsing sessions, page visits, searches and
// property views. Callers embedding tracking in a user-facing flow log and
// discard its errors.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/repository"
)

// Handle identifies the caller's current browsing session. It travels with
// the request instead of living in process memory.
type Handle struct {
	StartedAt time.Time
	ID        uuid.UUID
}

// Empty reports whether no session has been started.
func (h Handle) Empty() bool {
	return h.ID == uuid.Nil
}

// SessionMeta describes the caller when a new session must be created.
type SessionMeta struct {
	UserID         *uuid.UUID
	ViewerLocation *string
	UserAgent      string
	Referrer       string
}

// SessionStore is the persistence used by SessionTracker.
type SessionStore interface {
	Insert(ctx context.Context, s *models.UserSession) error
	End(ctx context.Context, id uuid.UUID) error
	IncrementSearchCount(ctx context.Context, id uuid.UUID) error
	IncrementFunnel(ctx context.Context, id uuid.UUID, stage repository.FunnelStage) error
}

// SearchStore is the persistence for captured searches.
type SearchStore interface {
	Insert(ctx context.Context, q *models.SearchQuery) error
	MarkLatestConverted(ctx context.Context, sessionID uuid.UUID, inquiry bool) error
}

// SessionTracker creates, reuses and ends browsing sessions.
type SessionTracker struct {
	sessions SessionStore
	searches SearchStore
	log      *logger.Logger
	now      func() time.Time
	timeout  time.Duration
}

// NewSessionTracker creates a SessionTracker that reuses a session for timeout
// after it started.
func NewSessionTracker(sessions SessionStore, searches SearchStore, timeout time.Duration, log *logger.Logger) *SessionTracker {
	return &SessionTracker{
		sessions: sessions,
		searches: searches,
		log:      log.Component("session_tracker"),
		now:      time.Now,
		timeout:  timeout,
	}
}

// WithClock replaces the tracker's time source.
func (t *SessionTracker) WithClock(now func() time.Time) *SessionTracker {
	t.now = now
	return t
}

// GetOrCreate returns h unchanged while it is younger than the timeout.
// Otherwise the stale session is ended and a new one is inserted.
func (t *SessionTracker) GetOrCreate(ctx context.Context, h Handle, meta SessionMeta) (Handle, error) {
	now := t.now()
	if !h.Empty() && now.Sub(h.StartedAt) < t.timeout {
		return h, nil
	}

	if !h.Empty() {
		if err := t.sessions.End(ctx, h.ID); err != nil {
			t.log.Warn("Failed to end stale session", map[string]interface{}{
				"session_id": h.ID.String(),
				"error":      err.Error(),
			})
		}
	}

	session := &models.UserSession{
		ID:             uuid.New(),
		UserID:         meta.UserID,
		StartedAt:      now,
		DeviceType:     SniffDevice(meta.UserAgent),
		ViewerLocation: meta.ViewerLocation,
	}
	if meta.Referrer != "" {
		ref := meta.Referrer
		session.Referrer = &ref
	}

	if err := t.sessions.Insert(ctx, session); err != nil {
		return Handle{}, fmt.Errorf("failed to start session: %w", err)
	}

	t.log.Debug("Started browsing session", map[string]interface{}{
		"session_id":  session.ID.String(),
		"device_type": session.DeviceType,
	})
	return Handle{ID: session.ID, StartedAt: now}, nil
}

// End finalizes a session.
func (t *SessionTracker) End(ctx context.Context, id uuid.UUID) error {
	if err := t.sessions.End(ctx, id); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// SearchInput is one captured search.
type SearchInput struct {
	SessionID   *uuid.UUID
	UserID      *uuid.UUID
	Params      map[string]interface{}
	Text        string
	ResultCount int
}

// TrackSearchQuery stores a search and bumps the session's search counter.
// A missing counter procedure is tolerated; only the insert can fail.
func (t *SessionTracker) TrackSearchQuery(ctx context.Context, in SearchInput) error {
	q := &models.SearchQuery{
		SessionID:   in.SessionID,
		UserID:      in.UserID,
		QueryText:   in.Text,
		Params:      in.Params,
		ResultCount: in.ResultCount,
	}
	if err := t.searches.Insert(ctx, q); err != nil {
		return fmt.Errorf("failed to record search query: %w", err)
	}

	if in.SessionID == nil {
		return nil
	}
	if err := t.sessions.IncrementSearchCount(ctx, *in.SessionID); err != nil {
		if errors.Is(err, repository.ErrFunctionNotFound) {
			t.log.Debug("Search counter procedure not installed", nil)
		} else {
			t.log.Warn("Failed to increment session search count", map[string]interface{}{
				"session_id": in.SessionID.String(),
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// RecordFunnel bumps one of the session's funnel counters and, for detail
// views and inquiries, flags the session's latest search as converted.
func (t *SessionTracker) RecordFunnel(ctx context.Context, sessionID uuid.UUID, stage repository.FunnelStage) error {
	if err := t.sessions.IncrementFunnel(ctx, sessionID, stage); err != nil {
		return err
	}
	switch stage {
	case repository.FunnelDetailViews:
		return t.searches.MarkLatestConverted(ctx, sessionID, false)
	case repository.FunnelInquiries:
		return t.searches.MarkLatestConverted(ctx, sessionID, true)
	}
	return nil
}
