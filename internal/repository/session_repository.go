package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const sessionColumns = `id, user_id, started_at, ended_at, duration_seconds, device_type,
	referrer, viewer_location, funnel`

// FunnelStage names a counter inside user_sessions.funnel.
type FunnelStage string

const (
	FunnelSearches    FunnelStage = "searches"
	FunnelViews       FunnelStage = "views"
	FunnelDetailViews FunnelStage = "detail_views"
	FunnelInquiries   FunnelStage = "inquiries"
)

func (s FunnelStage) valid() bool {
	switch s {
	case FunnelSearches, FunnelViews, FunnelDetailViews, FunnelInquiries:
		return true
	}
	return false
}

// SessionRepository defines data access for browsing sessions.
type SessionRepository interface {
	// Insert stores a new session; ID and StartedAt are filled in when unset.
	Insert(ctx context.Context, s *models.UserSession) error
	// GetByID returns nil, nil if no session exists.
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error)
	// End finalizes a session through the end_user_session procedure.
	End(ctx context.Context, id uuid.UUID) error
	// IncrementSearchCount calls update_user_session_search_count. It returns
	// ErrFunctionNotFound when the procedure is not installed.
	IncrementSearchCount(ctx context.Context, id uuid.UUID) error
	IncrementFunnel(ctx context.Context, id uuid.UUID, stage FunnelStage) error
	List(ctx context.Context) ([]models.UserSession, error)
}

type sessionRepository struct {
	db *database.Database
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *database.Database) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, s *models.UserSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		err := r.db.Pool.QueryRow(ctx, `
			INSERT INTO user_sessions (id, user_id, device_type, referrer, viewer_location, funnel)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING started_at`,
			s.ID, s.UserID, s.DeviceType, s.Referrer, s.ViewerLocation, s.Funnel,
		).Scan(&s.StartedAt)
		if err != nil {
			return fmt.Errorf("failed to insert user session: %w", err)
		}
		return nil
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO user_sessions (id, user_id, started_at, device_type, referrer, viewer_location, funnel)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.StartedAt, s.DeviceType, s.Referrer, s.ViewerLocation, s.Funnel)
	if err != nil {
		return fmt.Errorf("failed to insert user session: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error) {
	s, err := queryOne[models.UserSession](ctx, r.db,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query user session %s: %w", id, err)
	}
	return s, nil
}

func (r *sessionRepository) End(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx, `SELECT end_user_session($1)`, id); err != nil {
		if isUndefinedFunction(err) {
			return fmt.Errorf("end_user_session: %w", ErrFunctionNotFound)
		}
		return fmt.Errorf("failed to end user session %s: %w", id, err)
	}
	return nil
}

func (r *sessionRepository) IncrementSearchCount(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx, `SELECT update_user_session_search_count($1)`, id); err != nil {
		if isUndefinedFunction(err) {
			return fmt.Errorf("update_user_session_search_count: %w", ErrFunctionNotFound)
		}
		return fmt.Errorf("failed to increment search count for session %s: %w", id, err)
	}
	return nil
}

func (r *sessionRepository) IncrementFunnel(ctx context.Context, id uuid.UUID, stage FunnelStage) error {
	if !stage.valid() {
		return fmt.Errorf("unknown funnel stage %q", stage)
	}
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE user_sessions
		SET funnel = jsonb_set(funnel, ARRAY[$2::text],
			to_jsonb(COALESCE((funnel->>$2::text)::INTEGER, 0) + 1))
		WHERE id = $1`, id, string(stage))
	if err != nil {
		return fmt.Errorf("failed to increment %s for session %s: %w", stage, id, err)
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context) ([]models.UserSession, error) {
	sessions, err := queryAll[models.UserSession](ctx, r.db,
		`SELECT `+sessionColumns+` FROM user_sessions ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user sessions: %w", err)
	}
	return sessions, nil
}
