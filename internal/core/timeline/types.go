package timeline

import (
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/model"
)

// Options control ordering and truncation of the merged timeline.
type Options struct {
	Desc     bool
	MaxItems int // <= 0 keeps everything
}

// DayGroup is a run of consecutive items that fall on the same calendar day.
type DayGroup struct {
	Day   time.Time            `json:"day"`
	Items []model.TimelineItem `json:"items"`
}

// Window is the lookback window both sources are fetched for.
type Window struct {
	Since time.Time
	Until time.Time
}
