package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const searchQueryColumns = `id, session_id, user_id, query_text, params, result_count,
	resulted_in_view, resulted_in_inquiry, created_at`

// SearchQueryRepository defines data access for captured searches.
type SearchQueryRepository interface {
	Insert(ctx context.Context, q *models.SearchQuery) error
	List(ctx context.Context) ([]models.SearchQuery, error)
	// MarkLatestConverted flags the session's most recent search as having led
	// to a detail view or, when inquiry is true, to an inquiry.
	MarkLatestConverted(ctx context.Context, sessionID uuid.UUID, inquiry bool) error
}

type searchQueryRepository struct {
	db *database.Database
}

// NewSearchQueryRepository creates a new instance of SearchQueryRepository.
func NewSearchQueryRepository(db *database.Database) SearchQueryRepository {
	return &searchQueryRepository{db: db}
}

func (r *searchQueryRepository) Insert(ctx context.Context, q *models.SearchQuery) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Params == nil {
		q.Params = map[string]interface{}{}
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO search_queries (id, session_id, user_id, query_text, params, result_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		q.ID, q.SessionID, q.UserID, q.QueryText, q.Params, q.ResultCount,
	).Scan(&q.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert search query: %w", err)
	}
	return nil
}

func (r *searchQueryRepository) List(ctx context.Context) ([]models.SearchQuery, error) {
	queries, err := queryAll[models.SearchQuery](ctx, r.db,
		`SELECT `+searchQueryColumns+` FROM search_queries ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list search queries: %w", err)
	}
	return queries, nil
}

func (r *searchQueryRepository) MarkLatestConverted(ctx context.Context, sessionID uuid.UUID, inquiry bool) error {
	column := "resulted_in_view"
	if inquiry {
		column = "resulted_in_inquiry"
	}
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE search_queries SET `+column+` = TRUE
		WHERE id = (
			SELECT id FROM search_queries
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT 1
		)`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to mark search conversion for session %s: %w", sessionID, err)
	}
	return nil
}
