package common

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/seaward/sailfinder/pkg/tracking"
)

const sessionCookieName = "sid"

func generateSessionId() int {
	return int(time.Now().UnixNano())
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionId int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    fmt.Sprintf("%d", sessionId),
		Domain:   strings.TrimPrefix(r.Host, "."),
		SameSite: http.SameSiteNoneMode,
		HttpOnly: true,
		MaxAge:   2592000,
		Path:     "/",
	})
}

// HandleSessionCookie reads or establishes the session id for a request. New
// sessions are reported to tracking when enabled.
func HandleSessionCookie(trk tracking.Tracking, w http.ResponseWriter, r *http.Request) int {
	sessionId := generateSessionId()
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		if trk != nil {
			go trk.TrackSession(sessionId, r)
		}
		setSessionCookie(w, r, sessionId)
		return sessionId
	}
	parsed, err := strconv.Atoi(c.Value)
	if err != nil {
		setSessionCookie(w, r, sessionId)
		return sessionId
	}
	return parsed
}
