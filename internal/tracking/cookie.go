package tracking

import (
	"crypto/rand"
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// CookieName is the signed cookie carrying the tracking handles.
const CookieName = "nyumba_tracking"

const (
	keySessionID    = "sid"
	keySessionStart = "sstart"
	keyVisitID      = "vid"
	keyVisitLast    = "vlast"
)

// State bundles the browsing session handle and the visit bookkeeping that a
// browser carries between requests.
type State struct {
	Visit   VisitState
	Session Handle
}

// HandleStore persists State in a signed cookie.
type HandleStore struct {
	store *sessions.CookieStore
}

// NewHandleStore creates a HandleStore signing cookies with a key derived from
// secret. An empty secret yields a random key, so cookies do not survive a
// restart.
func NewHandleStore(secret string, secure bool) *HandleStore {
	var key []byte
	if secret == "" {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	} else {
		sum := sha256.Sum256([]byte(secret))
		key = sum[:]
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &HandleStore{store: store}
}

// Load reads the tracking state from r. A missing or tampered cookie yields
// an empty State.
func (s *HandleStore) Load(r *http.Request) State {
	session, err := s.store.Get(r, CookieName)
	if err != nil {
		return State{}
	}

	var st State
	if raw, ok := session.Values[keySessionID].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			st.Session.ID = id
		}
	}
	if unix, ok := session.Values[keySessionStart].(int64); ok && !st.Session.Empty() {
		st.Session.StartedAt = time.Unix(unix, 0)
	}
	if raw, ok := session.Values[keyVisitID].(string); ok {
		st.Visit.SessionID = raw
	}
	if unix, ok := session.Values[keyVisitLast].(int64); ok && st.Visit.SessionID != "" {
		st.Visit.LastTrackedAt = time.Unix(unix, 0)
	}
	return st
}

// Save writes st to the response.
func (s *HandleStore) Save(r *http.Request, w http.ResponseWriter, st State) error {
	session, _ := s.store.Get(r, CookieName)

	if st.Session.Empty() {
		delete(session.Values, keySessionID)
		delete(session.Values, keySessionStart)
	} else {
		session.Values[keySessionID] = st.Session.ID.String()
		session.Values[keySessionStart] = st.Session.StartedAt.Unix()
	}
	if st.Visit.SessionID == "" {
		delete(session.Values, keyVisitID)
		delete(session.Values, keyVisitLast)
	} else {
		session.Values[keyVisitID] = st.Visit.SessionID
		session.Values[keyVisitLast] = st.Visit.LastTrackedAt.Unix()
	}
	return session.Save(r, w)
}
