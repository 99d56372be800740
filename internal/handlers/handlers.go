package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/auth"
	apierrors "github.com/nyumba-homes/marketplace/internal/errors"
	"github.com/nyumba-homes/marketplace/internal/middleware"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/services"
	"github.com/nyumba-homes/marketplace/internal/storage"
	"github.com/nyumba-homes/marketplace/internal/tracking"
)

// StateStore loads and saves the tracking cookie.
type StateStore interface {
	Load(r *http.Request) tracking.State
	Save(r *http.Request, w http.ResponseWriter, st tracking.State) error
}

// respondError maps a service, storage or auth failure onto the API error
// format. message is used for failures the client cannot act on.
func respondError(c *gin.Context, err error, message string) {
	if !respondKnownError(c, err, message) {
		apierrors.InternalServerError(c, message, err)
	}
}

// respondMutationError is respondError for writes. Unrecognised failures come
// from the database and are returned with their text so the form can show
// why the write was rejected.
func respondMutationError(c *gin.Context, err error, message string) {
	if !respondKnownError(c, err, message) {
		apierrors.UpstreamError(c, message, err)
	}
}

// respondKnownError writes the response for sentinel errors and reports
// whether err was one.
func respondKnownError(c *gin.Context, err error, message string) bool {
	switch {
	case errors.Is(err, services.ErrPropertyNotFound),
		errors.Is(err, services.ErrInquiryNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInquiryRequired):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, storage.ErrInvalidPath),
		errors.Is(err, storage.ErrInvalidTTL):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrListingClosed), errors.Is(err, services.ErrInvalidTransition):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, storage.ErrNotConfigured):
		apierrors.ServiceUnavailable(c, "Object storage is not configured", err)
	case errors.Is(err, storage.ErrOperationFailed):
		apierrors.UpstreamError(c, message, err)
	default:
		return false
	}
	return true
}

// currentProfile returns the authenticated caller or writes a 401.
func currentProfile(c *gin.Context) (*models.Profile, bool) {
	p, ok := auth.CurrentProfile(c)
	if !ok {
		apierrors.Unauthorized(c, "Unauthorized")
		return nil, false
	}
	return p, true
}

// optionalProfile returns the caller's profile when OptionalAuth found one.
func optionalProfile(c *gin.Context) *models.Profile {
	p, _ := auth.CurrentProfile(c)
	return p
}

// idParam parses a UUID path parameter or writes a 400.
func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name, map[string]interface{}{name: c.Param(name)})
		return uuid.Nil, false
	}
	return id, true
}

// visitor identifies the browser from its tracking cookie, falling back to
// the session header for clients without cookies.
func visitor(c *gin.Context, states StateStore) services.Visitor {
	v := services.Visitor{UserAgent: c.Request.UserAgent()}
	if states != nil {
		if st := states.Load(c.Request); !st.Session.Empty() {
			id := st.Session.ID
			v.SessionID = &id
			return v
		}
	}
	if id, err := uuid.Parse(c.GetHeader(middleware.SessionIDHeader)); err == nil && id != uuid.Nil {
		v.SessionID = &id
	}
	return v
}
