package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/model"
)

// Assembler merges per-entity history and custom log streams into one timeline
type Assembler struct {
	location *time.Location
}

// NewAssemblerIn creates an assembler bound to a location
func NewAssemblerIn(loc *time.Location) *Assembler {
	if loc == nil {
		loc = time.Local
	}
	return &Assembler{location: loc}
}

// LookbackWindow returns [now - lookback, now]
func LookbackWindow(now time.Time, lookback time.Duration) Window {
	return Window{Since: now.Add(-lookback), Until: now}
}

// MergeTimelines flattens the streams and sorts ascending by start.
// Items with equal starts keep their input order.
func (a *Assembler) MergeTimelines(streams ...[]model.TimelineItem) []model.TimelineItem {
	var totalSize int
	for _, s := range streams {
		totalSize += len(s)
	}

	merged := make([]model.TimelineItem, 0, totalSize)
	for _, s := range streams {
		merged = append(merged, s...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.Before(merged[j].Start)
	})

	return merged
}

// Assemble merges, orders and truncates. Truncation drops the tail for this
// cycle only; nothing is kept for later.
func (a *Assembler) Assemble(streams [][]model.TimelineItem, opts Options) []model.TimelineItem {
	merged := a.MergeTimelines(streams...)

	if opts.Desc {
		for i, j := 0, len(merged)-1; i < j; i, j = i+1, j-1 {
			merged[i], merged[j] = merged[j], merged[i]
		}
	}

	if opts.MaxItems > 0 && len(merged) > opts.MaxItems {
		merged = merged[:opts.MaxItems:opts.MaxItems]
	}
	return merged
}

// GroupByDay splits items into groups of consecutive same-day items.
func (a *Assembler) GroupByDay(items []model.TimelineItem) []DayGroup {
	var groups []DayGroup
	for _, item := range items {
		day := a.dayOf(item.Start)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Items = append(groups[n-1].Items, item)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Items: []model.TimelineItem{item}})
	}
	return groups
}

func (a *Assembler) dayOf(t time.Time) time.Time {
	local := t.In(a.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.location)
}

// Collapse splits items into the always-visible head and the collapsed tail.
// n <= 0 or a list no longer than n leaves everything visible.
func Collapse(items []model.TimelineItem, n int) (visible, hidden []model.TimelineItem) {
	if n <= 0 || len(items) <= n {
		return items, nil
	}
	return items[:n], items[n:]
}
