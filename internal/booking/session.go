// Package booking implements the multi-pet booking construction flow:
// a session state machine for the booking-in-progress and the assignment
// validator that gates submission.
package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"pawresort/internal/model"
)

// State represents the current state of a booking-in-progress.
type State string

const (
	StateEmpty                State = "empty"
	StatePetsSelected         State = "pets_selected"
	StateServiceSelected      State = "service_selected"
	StateAssignmentIncomplete State = "assignment_incomplete"
	StateAssignmentValid      State = "assignment_valid"
	StateSubmitted            State = "submitted"
)

// AutoAssign is the sentinel for "no specific resource chosen, let the
// system pick". It is a valid assignment, unlike an unset slot.
const AutoAssign = "AUTO"

// Pet identifies one pet in the booking selection.
type Pet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Draft holds the data collected while a booking is being built. It is
// request/session-scoped and discarded once the reservations are persisted.
type Draft struct {
	Pets              Pets
	ServiceCategory   model.ServiceCategory
	ServiceName       string
	StartDate         string
	EndDate           string
	Assignments       map[string]string // pet id -> resource id, AutoAssign, or absent
	EditReservationID string            // set when editing an existing reservation
}

// Pets is the ordered pet selection.
type Pets []Pet

// Session is one booking dialog in progress.
type Session struct {
	ID        string
	State     State
	Draft     Draft
	StartedAt time.Time
	UpdatedAt time.Time
	mu        sync.Mutex
}

// NewSession creates a session in the initial state.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		State:     StateEmpty,
		Draft:     Draft{Assignments: make(map[string]string)},
		StartedAt: now,
		UpdatedAt: now,
	}
}

// GetState returns the current state.
func (s *Session) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State
}

func (s *Session) setState(state State) {
	s.State = state
	s.UpdatedAt = time.Now()
}

// IsExpired checks whether the session has been idle past the timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

// FSM holds the allowed state transitions of the booking flow.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates the booking flow FSM.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateEmpty:        {StatePetsSelected},
			StatePetsSelected: {StateServiceSelected, StateEmpty},
			StateServiceSelected: {
				StateAssignmentIncomplete, StateAssignmentValid, StatePetsSelected,
			},
			StateAssignmentIncomplete: {
				StateAssignmentIncomplete, StateAssignmentValid, StateServiceSelected,
			},
			StateAssignmentValid: {
				StateSubmitted, StateAssignmentIncomplete, StateServiceSelected,
			},
			StateSubmitted: {},
		},
	}
}

// CanTransition checks if a transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	for _, s := range f.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition updates the session state if allowed.
func (f *FSM) Transition(session *Session, to State) bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	if !f.CanTransition(session.State, to) {
		return false
	}
	session.setState(to)
	return true
}

// SessionStore manages booking sessions in memory, keyed by session id.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewSessionStore creates a session store with the given idle timeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// Get returns a live session, or nil if unknown or expired.
func (ss *SessionStore) Get(id string) *Session {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	session, ok := ss.sessions[id]
	if !ok || session.IsExpired(ss.timeout) {
		return nil
	}
	return session
}

// Create starts a new session and registers it.
func (ss *SessionStore) Create() *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session := NewSession()
	ss.sessions[session.ID] = session
	return session
}

// Delete removes a session.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
}

// Cleanup removes expired sessions and returns how many were dropped.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}
