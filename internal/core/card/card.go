// Package card holds the two card composition roots. Both map a compiled
// configuration to per-entity pipeline runs and share the same pipeline code.
package card

import (
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/customlog"
	"github.com/penwyp/go-ha-logbook/internal/core/history"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/core/timeline"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// Card renders a timeline from fetched entity data.
type Card interface {
	Kind() config.CardKind
	Config() *config.TimelineConfig
	Render(inputs map[string]EntityInput, f locale.Formatter, clock util.Clock) Result
}

// EntityInput is what one refresh fetched for an entity.
// State is nil when the entity does not exist.
type EntityInput struct {
	EntityID string
	State    *model.RawStateSample
	History  []model.RawStateSample
	Logs     []model.RawLogEntry
}

// Result is one rendered card.
type Result struct {
	Kind        config.CardKind      `json:"type"`
	Title       string               `json:"title,omitempty"`
	Items       []model.TimelineItem `json:"items"`
	NoEvent     string               `json:"no_event"`
	Missing     []string             `json:"missing,omitempty"`
	Unavailable bool                 `json:"unavailable,omitempty"`
	RenderedAt  time.Time            `json:"rendered_at"`
}

// Empty reports whether the timeline has nothing to show
func (r Result) Empty() bool {
	return len(r.Items) == 0
}

// entityItems runs the history and custom log pipelines for one entity.
func entityItems(cfg *config.TimelineConfig, plan config.EntityPlan, in EntityInput, f locale.Formatter, clock util.Clock) []model.TimelineItem {
	name := history.EntityName(plan, in.State)

	var items []model.TimelineItem
	if cfg.ShowHistory {
		opts := history.Options{DateFormat: cfg.DateFormat, MinimalDuration: cfg.MinimalDuration}
		items = append(items, model.FromHistory(history.ToHistory(in.History, plan, name, opts, f, clock))...)
	}
	if plan.CustomLogs {
		items = append(items, model.FromCustomLogs(customlog.ToCustomLogs(plan, name, in.Logs))...)
	}
	return items
}

func assemble(cfg *config.TimelineConfig, streams [][]model.TimelineItem, loc *time.Location) []model.TimelineItem {
	return timeline.NewAssemblerIn(loc).Assemble(streams, timeline.Options{
		Desc:     cfg.Desc,
		MaxItems: cfg.MaxItems,
	})
}

func noEventText(cfg *config.TimelineConfig, f locale.Formatter) string {
	if cfg.NoEvent != "" {
		return cfg.NoEvent
	}
	return f.Text(locale.TextDefaultNoEvent)
}

type locator interface {
	Location() *time.Location
}

func locationOf(f locale.Formatter) *time.Location {
	if l, ok := f.(locator); ok {
		return l.Location()
	}
	return time.Local
}
