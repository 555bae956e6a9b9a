package auditlog

import (
	"sync"
	"time"
)

// RequestState carries everything captured about one intercepted request between the moment it
// enters the middleware and the moment its entry is built.
//
// The lifecycle is PENDING -> CAPTURING_PRIOR -> AWAITING_RESPONSE -> LOGGED. Completion is
// guarded by an explicit flag so several emission paths can race to finish the request and only
// the first one produces an entry.
type RequestState struct {
	Method    string
	Path      string
	Module    string
	Params    map[string]string
	Query     map[string][]string
	StartedAt time.Time

	// Only populated for updates.
	RequestBody map[string]any
	Prior       map[string]any

	mu        sync.Mutex
	phase     Phase
	completed bool
}

// Phase is the position of a RequestState in its lifecycle.
type Phase int

const (
	PhasePending Phase = iota
	PhaseCapturingPrior
	PhaseAwaitingResponse
	PhaseLogged
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseCapturingPrior:
		return "capturing_prior"
	case PhaseAwaitingResponse:
		return "awaiting_response"
	case PhaseLogged:
		return "logged"
	default:
		return "unknown"
	}
}

// NewRequestState returns a pending state for the request.
func NewRequestState(method, path string) *RequestState {
	return &RequestState{
		Method:    method,
		Path:      stripQuery(path),
		StartedAt: time.Now(),
		phase:     PhasePending,
	}
}

// Advance moves the state to phase unless it has already completed.
func (s *RequestState) Advance(phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed || phase <= s.phase {
		return
	}
	s.phase = phase
}

// Phase reports the current lifecycle phase.
func (s *RequestState) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Completed reports whether Complete has already run.
func (s *RequestState) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Complete marks the request as logged and runs finish. Only the first call runs finish; later
// calls return false.
func (s *RequestState) Complete(finish func()) bool {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return false
	}
	s.completed = true
	s.phase = PhaseLogged
	s.mu.Unlock()

	if finish != nil {
		finish()
	}
	return true
}
