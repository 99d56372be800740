package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/nyumba-homes/marketplace/internal/errors"
	"github.com/nyumba-homes/marketplace/internal/middleware"
	"github.com/nyumba-homes/marketplace/internal/services"
	"github.com/nyumba-homes/marketplace/internal/tracking"
)

// TrackingHandler handles the anonymous tracking endpoints. The browser's
// session and visit handles travel in a signed cookie.
type TrackingHandler struct {
	service services.TrackingService
	states  StateStore
}

// NewTrackingHandler creates a new TrackingHandler instance.
func NewTrackingHandler(service services.TrackingService, states StateStore) *TrackingHandler {
	return &TrackingHandler{service: service, states: states}
}

// TrackVisitRequest describes a page load. GET requests pass the same
// fields as query parameters. An omitted referrer falls back to the Referer
// header; an explicit empty one means a direct visit.
type TrackVisitRequest struct {
	Referrer    *string `json:"referrer" form:"referrer"`
	LandingPage string  `json:"landingPage" form:"landingPage"`
}

// TrackVisitResponse is returned by /api/track-visit.
type TrackVisitResponse struct {
	SessionID string `json:"sessionId"`
	Success   bool   `json:"success"`
	Inserted  bool   `json:"inserted"`
}

// StartSessionRequest is the optional body of POST /api/sessions.
type StartSessionRequest struct {
	Referrer *string `json:"referrer"`
}

// SessionResponse is returned by POST /api/sessions.
type SessionResponse struct {
	StartedAt time.Time `json:"startedAt"`
	SessionID uuid.UUID `json:"sessionId"`
}

// EndSessionRequest is the body of POST /api/end-session.
type EndSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required,uuid"`
}

// TrackVisit handles GET and POST /api/track-visit.
func (h *TrackingHandler) TrackVisit(c *gin.Context) {
	var req TrackVisitRequest
	var err error
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		apierrors.BindError(c, err, "Invalid tracking payload")
		return
	}
	if req.LandingPage == "" {
		req.LandingPage = "/"
	}

	state := h.states.Load(c.Request)
	result, err := h.service.TrackVisit(c.Request.Context(), state.Visit, tracking.VisitInput{
		Referrer:    referrerOf(c, req.Referrer),
		LandingPage: req.LandingPage,
		UserAgent:   c.Request.UserAgent(),
	})
	if err != nil {
		apierrors.InternalServerError(c, "Failed to track visit", err)
		return
	}

	state.Visit = result.State
	h.save(c, state)
	c.JSON(http.StatusOK, TrackVisitResponse{
		Success:   true,
		SessionID: result.State.SessionID,
		Inserted:  result.Inserted,
	})
}

// StartSession handles POST /api/sessions. The current session is reused
// while it is younger than the session timeout.
func (h *TrackingHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BindError(c, err, "Invalid request body")
			return
		}
	}

	meta := tracking.SessionMeta{
		UserAgent: c.Request.UserAgent(),
		Referrer:  referrerOf(c, req.Referrer),
	}
	if p := optionalProfile(c); p != nil {
		id := p.ID
		meta.UserID = &id
		meta.ViewerLocation = p.Location
	}

	state := h.states.Load(c.Request)
	handle, err := h.service.StartSession(c.Request.Context(), state.Session, meta)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to start session", err)
		return
	}

	state.Session = handle
	h.save(c, state)
	c.Header(middleware.SessionIDHeader, handle.ID.String())
	c.JSON(http.StatusOK, SessionResponse{SessionID: handle.ID, StartedAt: handle.StartedAt})
}

// EndSession handles POST /api/end-session.
func (h *TrackingHandler) EndSession(c *gin.Context) {
	var req EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err, "Invalid request body")
		return
	}
	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid sessionId", nil)
		return
	}

	if err := h.service.EndSession(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to end session")
		return
	}

	state := h.states.Load(c.Request)
	if state.Session.ID == id {
		state.Session = tracking.Handle{}
		h.save(c, state)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// save writes the tracking cookie. A failure only costs deduplication on
// the next request.
func (h *TrackingHandler) save(c *gin.Context, state tracking.State) {
	if err := h.states.Save(c.Request, c.Writer, state); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Warn("Failed to save tracking cookie", map[string]interface{}{"error": err.Error()})
		}
	}
}

// referrerOf returns the payload referrer when the client sent one, even if
// empty, and the Referer header otherwise.
func referrerOf(c *gin.Context, sent *string) string {
	if sent != nil {
		return *sent
	}
	return c.Request.Referer()
}
