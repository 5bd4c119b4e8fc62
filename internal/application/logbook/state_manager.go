package logbook

import (
	"sync"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/observability/metrics"
)

// Phase is the card life cycle state
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseConfigured
	PhaseLoading
	PhaseRendered
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseConfigured:
		return "configured"
	case PhaseLoading:
		return "loading"
	case PhaseRendered:
		return "rendered"
	default:
		return "unknown"
	}
}

// StateManager manages application state in a thread-safe manner.
// Results are sequenced by request token: a result is applied only when its
// token is newer than the last applied one.
type StateManager struct {
	mu sync.RWMutex

	phase Phase

	// Timeline state
	active    *card.Result
	previous  *card.Result
	lastToken uint64
	stale     int

	// Loading state
	inFlight       int
	loadingMessage string
	lastError      error

	// Interaction state
	interactionState model.InteractionState

	lastDataUpdate time.Time

	subscribers map[int]chan card.Result
	nextSubID   int
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{
		phase:       PhaseUninitialized,
		subscribers: make(map[int]chan card.Result),
	}
}

// Phase returns the current life cycle phase
func (sm *StateManager) Phase() Phase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.phase
}

// MarkConfigured records that a valid configuration is in place. A reload
// keeps the rendered timeline until the next result arrives.
func (sm *StateManager) MarkConfigured() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.phase == PhaseUninitialized {
		sm.phase = PhaseConfigured
	}
}

// BeginLoading marks a refresh as in flight.
func (sm *StateManager) BeginLoading(message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.inFlight++
	sm.loadingMessage = message
	sm.phase = PhaseLoading
}

// Apply stores a result if its token is newer than the last applied one.
// It returns false for a stale result, which is discarded and counted.
func (sm *StateManager) Apply(token uint64, result card.Result) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.endLoadingLocked()

	if token <= sm.lastToken {
		sm.stale++
		metrics.IncStaleResponse()
		return false
	}

	sm.lastToken = token
	sm.previous = sm.active
	sm.active = &result
	sm.lastError = nil
	sm.lastDataUpdate = result.RenderedAt
	sm.phase = PhaseRendered

	for _, ch := range sm.subscribers {
		// keep only the newest result for slow subscribers
		select {
		case <-ch:
		default:
		}
		ch <- result
	}
	return true
}

// Fail records a failed refresh. Errors from requests older than the last
// applied result are ignored. The displayed timeline is kept.
func (sm *StateManager) Fail(token uint64, err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.endLoadingLocked()
	if token > sm.lastToken {
		sm.lastError = err
	}
}

func (sm *StateManager) endLoadingLocked() {
	if sm.inFlight > 0 {
		sm.inFlight--
	}
	if sm.inFlight == 0 {
		sm.loadingMessage = ""
		if sm.phase == PhaseLoading {
			if sm.active != nil {
				sm.phase = PhaseRendered
			} else {
				sm.phase = PhaseConfigured
			}
		}
	}
}

// Current returns the applied timeline, if any
func (sm *StateManager) Current() (*card.Result, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.active, sm.active != nil
}

// Previous returns the timeline applied before the current one
func (sm *StateManager) Previous() *card.Result {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.previous
}

// LastToken returns the token of the applied result
func (sm *StateManager) LastToken() uint64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastToken
}

// StaleCount returns how many results were discarded as stale
func (sm *StateManager) StaleCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.stale
}

// LastError returns the error of the latest failed refresh, cleared by the next applied result
func (sm *StateManager) LastError() error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastError
}

// GetLoadingState returns current loading state and message
func (sm *StateManager) GetLoadingState() (bool, string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.inFlight > 0, sm.loadingMessage
}

// GetInteractionState returns a copy of the interaction state with loading details filled in
func (sm *StateManager) GetInteractionState() model.InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	state := sm.interactionState
	state.IsLoading = sm.inFlight > 0
	state.LoadingMessage = sm.loadingMessage
	state.LastUpdated = sm.lastDataUpdate
	if sm.lastError != nil {
		state.LastError = sm.lastError.Error()
	}
	return state
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*model.InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	updateFunc(&sm.interactionState)
}

// Subscribe returns a channel receiving every applied result, and a function
// to stop the subscription.
func (sm *StateManager) Subscribe() (<-chan card.Result, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	id := sm.nextSubID
	sm.nextSubID++
	ch := make(chan card.Result, 1)
	sm.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, id)
			close(ch)
		})
	}
}
