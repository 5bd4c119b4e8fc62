package constants

import "time"

const (
	// Card refresh cadence
	DefaultRefreshInterval = 5 * time.Second
	MinRefreshInterval     = time.Second

	// UI redraw cadence in watch mode (relative dates age between refreshes)
	DisplayTickInterval = time.Second

	// HTTP
	DefaultHTTPTimeout  = 10 * time.Second
	DefaultListenAddr   = ":8099"
	ShutdownGracePeriod = 5 * time.Second

	// Config hot reload debounce
	ConfigReloadDebounce = 250 * time.Millisecond
)
