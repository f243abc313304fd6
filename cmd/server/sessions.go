package main

import (
	"sync"
	"time"

	"github.com/seaward/sailfinder/pkg/listing"
)

type sessionEntry struct {
	controller *listing.Controller
	lastSeen   time.Time
}

// SessionRegistry keeps one listing controller per browser session so rapid
// re-filtering by the same visitor supersedes their previous upstream fetch.
type SessionRegistry struct {
	mu       sync.Mutex
	client   listing.SearchClient
	opts     listing.Options
	sessions map[int]*sessionEntry
	ttl      time.Duration
}

func NewSessionRegistry(client listing.SearchClient, opts listing.Options, ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRegistry{
		client:   client,
		opts:     opts,
		sessions: map[int]*sessionEntry{},
		ttl:      ttl,
	}
}

// Controller returns the session's controller, creating it on first use.
func (r *SessionRegistry) Controller(sessionId int) *listing.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sessionId]
	if !ok {
		entry = &sessionEntry{controller: listing.NewController(r.client, r.opts)}
		r.sessions[sessionId] = entry
	}
	entry.lastSeen = time.Now()
	return entry.controller
}

// StartJanitor evicts idle sessions periodically until stop is closed.
func (r *SessionRegistry) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-stop:
				return
			}
		}
	}()
}

func (r *SessionRegistry) sweep() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			entry.controller.Close()
			delete(r.sessions, id)
		}
	}
}

// CloseAll tears down every session, cancelling in-flight fetches.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.sessions {
		entry.controller.Close()
		delete(r.sessions, id)
	}
}
