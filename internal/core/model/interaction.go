package model

import "time"

// InteractionState is the watch-mode view state shared between the runtime and the display.
type InteractionState struct {
	IsPaused       bool
	ForceRefresh   bool
	Expanded       bool // collapsed items are shown
	ScrollOffset   int
	IsLoading      bool
	LoadingMessage string
	LastError      string
	LastUpdated    time.Time
}

// FileEvent is a change notification for a watched file.
type FileEvent struct {
	Path      string
	Operation string
}
