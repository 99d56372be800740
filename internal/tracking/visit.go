package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/models"
)

// VisitState is the per-browser visit bookkeeping: the traffic session id and
// when a visit was last recorded for it.
type VisitState struct {
	LastTrackedAt time.Time
	SessionID     string
}

// VisitInput describes one page load.
type VisitInput struct {
	Referrer    string
	LandingPage string
	UserAgent   string
}

// VisitResult reports what Track did.
type VisitResult struct {
	State    VisitState
	Inserted bool
}

// TrafficStore is the persistence used by VisitTracker.
type TrafficStore interface {
	Insert(ctx context.Context, t *models.TrafficSource) error
	IncrementPageViews(ctx context.Context, sessionID string) (int64, error)
}

// VisitTracker records first-touch traffic rows and counts later page views.
type VisitTracker struct {
	store  TrafficStore
	now    func() time.Time
	window time.Duration
}

// NewVisitTracker creates a VisitTracker that folds page loads within window
// of the previous one into the same traffic row.
func NewVisitTracker(store TrafficStore, window time.Duration) *VisitTracker {
	return &VisitTracker{store: store, now: time.Now, window: window}
}

// WithClock replaces the tracker's time source.
func (t *VisitTracker) WithClock(now func() time.Time) *VisitTracker {
	t.now = now
	return t
}

// Track records a page load. A recent visit for the same session increments
// its page-view counter; anything else starts a new traffic session.
func (t *VisitTracker) Track(ctx context.Context, state VisitState, in VisitInput) (VisitResult, error) {
	now := t.now()

	if state.SessionID != "" && !state.LastTrackedAt.IsZero() && now.Sub(state.LastTrackedAt) < t.window {
		updated, err := t.store.IncrementPageViews(ctx, state.SessionID)
		if err != nil {
			return VisitResult{State: state}, fmt.Errorf("failed to count page view: %w", err)
		}
		if updated > 0 {
			return VisitResult{State: VisitState{SessionID: state.SessionID, LastTrackedAt: now}}, nil
		}
		return t.insert(ctx, state.SessionID, in, now)
	}

	return t.insert(ctx, uuid.NewString(), in, now)
}

func (t *VisitTracker) insert(ctx context.Context, sessionID string, in VisitInput, now time.Time) (VisitResult, error) {
	source, medium := ClassifyTraffic(in.Referrer, in.LandingPage)
	row := &models.TrafficSource{
		SessionID:   sessionID,
		Source:      source,
		Medium:      medium,
		LandingPage: LandingPath(in.LandingPage),
		DeviceType:  SniffDevice(in.UserAgent),
		Browser:     SniffBrowser(in.UserAgent),
		OS:          SniffOS(in.UserAgent),
		PageViews:   1,
	}
	if c := Campaign(in.LandingPage); c != "" {
		row.Campaign = &c
	}
	if in.Referrer != "" {
		ref := in.Referrer
		row.Referrer = &ref
	}

	if err := t.store.Insert(ctx, row); err != nil {
		return VisitResult{}, fmt.Errorf("failed to record visit: %w", err)
	}
	return VisitResult{State: VisitState{SessionID: sessionID, LastTrackedAt: now}, Inserted: true}, nil
}
