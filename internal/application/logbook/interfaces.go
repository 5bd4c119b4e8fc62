package logbook

import (
	"context"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/presentation/interaction"
)

// HistorySource fetches the state samples of an entity, oldest first
type HistorySource interface {
	FetchHistory(ctx context.Context, entityID string, since, until time.Time) ([]model.RawStateSample, error)
}

// LogSource fetches the logbook entries of an entity
type LogSource interface {
	FetchLogs(ctx context.Context, entityID string, since, until time.Time) ([]model.RawLogEntry, error)
}

// StateSource fetches the current state of an entity. (nil, nil) means the
// entity does not exist.
type StateSource interface {
	FetchState(ctx context.Context, entityID string) (*model.RawStateSample, error)
}

// Source is a backend serving all three lookups
type Source interface {
	HistorySource
	LogSource
	StateSource
}

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// Render draws the timeline with the given interaction state
	Render(result *card.Result, state model.InteractionState)
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	Events() <-chan interaction.KeyEvent
	Close() error
}

// FileMonitor watches for file changes
type FileMonitor interface {
	Events() <-chan model.FileEvent
	Close() error
}
