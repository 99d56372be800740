package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/tracking"
)

// SessionLifecycle starts and ends browsing sessions.
type SessionLifecycle interface {
	GetOrCreate(ctx context.Context, h tracking.Handle, meta tracking.SessionMeta) (tracking.Handle, error)
	End(ctx context.Context, id uuid.UUID) error
}

// VisitRecorder records page visits.
type VisitRecorder interface {
	Track(ctx context.Context, state tracking.VisitState, in tracking.VisitInput) (tracking.VisitResult, error)
}

// TrackingService exposes the tracking writers to the HTTP layer.
type TrackingService interface {
	// StartSession returns the caller's current session, creating one when
	// the handle is empty or stale.
	StartSession(ctx context.Context, h tracking.Handle, meta tracking.SessionMeta) (tracking.Handle, error)
	// EndSession finalizes a session's duration.
	EndSession(ctx context.Context, id uuid.UUID) error
	// TrackVisit records a page load against the browser's visit state.
	TrackVisit(ctx context.Context, state tracking.VisitState, in tracking.VisitInput) (tracking.VisitResult, error)
}

type trackingService struct {
	sessions SessionLifecycle
	visits   VisitRecorder
}

// NewTrackingService creates a new instance of TrackingService.
func NewTrackingService(sessions SessionLifecycle, visits VisitRecorder) TrackingService {
	return &trackingService{sessions: sessions, visits: visits}
}

func (s *trackingService) StartSession(ctx context.Context, h tracking.Handle, meta tracking.SessionMeta) (tracking.Handle, error) {
	return s.sessions.GetOrCreate(ctx, h, meta)
}

func (s *trackingService) EndSession(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	return s.sessions.End(ctx, id)
}

func (s *trackingService) TrackVisit(ctx context.Context, state tracking.VisitState, in tracking.VisitInput) (tracking.VisitResult, error) {
	return s.visits.Track(ctx, state, in)
}
