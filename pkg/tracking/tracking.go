package tracking

import (
	"net/http"

	"github.com/seaward/sailfinder/pkg/types"
)

// Tracking receives behavioural events from the listing gateway. A nil
// implementation disables tracking entirely.
type Tracking interface {
	TrackSession(sessionId int, r *http.Request)
	TrackSearch(sessionId int, state types.FilterState, resultCount int, r *http.Request)
	TrackAlertCreated(sessionId int, name string)
	Close() error
}
