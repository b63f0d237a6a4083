package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookie = "sf_session"
	sessionMaxAge = 30 * 24 * time.Hour
)

// existingSession returns the session carried by the request, if any.
func existingSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// sessionID returns the caller's cart session, issuing a new cookie when the
// request carries none or an unparseable one. Only handlers that store
// something for the caller should use it.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := existingSession(r); ok {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
