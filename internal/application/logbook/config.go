package logbook

import (
	"fmt"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/constants"
)

// RunConfig contains configuration for the card runtime
type RunConfig struct {
	// Card configuration file
	CardFile string

	// Home Assistant connection
	HAURL   string
	HAToken string

	// Recorded responses used instead of a live instance
	HistoryFile string
	LogbookFile string

	// Display settings
	Timezone string
	Language string

	// Refresh settings
	RefreshInterval time.Duration
	HTTPTimeout     time.Duration

	// Hot reload of the card file
	WatchConfig bool
}

// Validate checks the configuration and fills defaults
func (c *RunConfig) Validate() error {
	if c.CardFile == "" {
		return fmt.Errorf("card configuration file is required")
	}
	if c.HAURL == "" && !c.Recorded() {
		return fmt.Errorf("either a Home Assistant url or recorded history/logbook files are required")
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = constants.DefaultRefreshInterval
	}
	if c.RefreshInterval < constants.MinRefreshInterval {
		c.RefreshInterval = constants.MinRefreshInterval
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = constants.DefaultHTTPTimeout
	}
	return nil
}

// Recorded reports whether recorded files replace the live API.
func (c *RunConfig) Recorded() bool {
	return c.HistoryFile != "" || c.LogbookFile != ""
}
