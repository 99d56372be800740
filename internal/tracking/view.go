package tracking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/models"
)

// ViewStore is the persistence for property view events.
type ViewStore interface {
	Insert(ctx context.Context, v *models.PropertyView) error
}

// ViewInput describes a listing impression or detail view.
type ViewInput struct {
	Viewer     *models.Profile
	SessionID  *uuid.UUID
	UserAgent  string
	PropertyID uuid.UUID
	Detail     bool
}

// TrackPropertyView appends a view event, copying origin metadata from the
// viewer's profile when one is known.
func TrackPropertyView(ctx context.Context, store ViewStore, in ViewInput) (*models.PropertyView, error) {
	view := &models.PropertyView{
		PropertyID:   in.PropertyID,
		SessionID:    in.SessionID,
		DeviceType:   SniffDevice(in.UserAgent),
		IsDetailView: in.Detail,
	}
	if p := in.Viewer; p != nil {
		id := p.ID
		view.ViewerID = &id
		view.ViewerLocation = p.Location
		view.ViewerCountry = p.Country
		if p.IsDiaspora {
			origin := models.OriginDiaspora
			view.OriginType = &origin
		}
	}

	if err := store.Insert(ctx, view); err != nil {
		return nil, fmt.Errorf("failed to record property view: %w", err)
	}
	return view, nil
}
