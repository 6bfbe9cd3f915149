package workflow

import (
	"sync"
	"time"
)

// pendingKind tags what input a multi-step dialog is waiting for.
type pendingKind int

const (
	pendingProjectName pendingKind = iota
	pendingClientContact
	pendingEditorContact
	pendingReassignContact
)

// reassignRole selects which contact slot a reassign dialog replaces.
type reassignRole string

const (
	roleEditor reassignRole = "editor"
	roleClient reassignRole = "client"
)

// session is the transient per-actor state of a multi-step dialog. It is
// never persisted; restarting the process cancels open dialogs.
type session struct {
	kind pendingKind

	// partial create-project payload
	projectName string
	clientID    string

	// reassign target
	projectID int
	role      reassignRole

	expiresAt time.Time
}

// sessionManager holds at most one open dialog per actor with an
// absolute expiry.
type sessionManager struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]*session
}

func newSessionManager(ttl time.Duration) *sessionManager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &sessionManager{ttl: ttl, m: make(map[string]*session)}
}

// get returns the actor's open session, dropping it if expired.
func (sm *sessionManager) get(actor string) *session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.m[actor]
	if !ok {
		return nil
	}
	if time.Now().After(s.expiresAt) {
		delete(sm.m, actor)
		return nil
	}
	return s
}

// set installs (or advances) the actor's session and refreshes its expiry.
func (sm *sessionManager) set(actor string, s *session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s.expiresAt = time.Now().Add(sm.ttl)
	sm.m[actor] = s
}

// clear cancels the actor's session. Returns whether one was open.
func (sm *sessionManager) clear(actor string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, ok := sm.m[actor]
	delete(sm.m, actor)
	return ok
}
