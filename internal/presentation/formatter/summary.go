package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
)

// EntitySummary aggregates the timeline of one entity
type EntitySummary struct {
	Entity     string
	Name       string
	Changes    int
	CustomLogs int
	States     []StateTotal
}

// StateTotal is the time spent in one displayed state
type StateTotal struct {
	Label      string
	DurationMs int64
	Count      int
}

// SummaryFormatter outputs time spent per state for every entity.
type SummaryFormatter struct {
	view *View
}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter(view *View) *SummaryFormatter {
	return &SummaryFormatter{view: view}
}

// Summarize aggregates items per entity, in order of first appearance.
// States are sorted by total duration, longest first.
func Summarize(items []model.TimelineItem) []EntitySummary {
	var order []string
	byEntity := make(map[string]*EntitySummary)
	stateIndex := make(map[string]map[string]int)

	get := func(id, name string) *EntitySummary {
		s, ok := byEntity[id]
		if !ok {
			s = &EntitySummary{Entity: id, Name: name}
			byEntity[id] = s
			stateIndex[id] = make(map[string]int)
			order = append(order, id)
		}
		return s
	}

	for _, item := range items {
		switch item.Kind {
		case model.KindHistory:
			h := item.History
			s := get(h.EntityID, h.EntityName)
			s.Changes++
			idx, ok := stateIndex[h.EntityID][h.Label]
			if !ok {
				idx = len(s.States)
				stateIndex[h.EntityID][h.Label] = idx
				s.States = append(s.States, StateTotal{Label: h.Label})
			}
			s.States[idx].DurationMs += h.DurationMs
			s.States[idx].Count++
		case model.KindCustomLog:
			c := item.CustomLog
			get(c.Entity, c.EntityName).CustomLogs++
		}
	}

	out := make([]EntitySummary, 0, len(order))
	for _, id := range order {
		s := byEntity[id]
		sort.SliceStable(s.States, func(i, j int) bool {
			return s.States[i].DurationMs > s.States[j].DurationMs
		})
		out = append(out, *s)
	}
	return out
}

// Format formats and outputs the summary information of a timeline.
func (f *SummaryFormatter) Format(w io.Writer, res *card.Result) error {
	loc := f.view.locale
	var b strings.Builder

	b.WriteString(strings.Repeat("=", 60) + "\n")
	if res.Title != "" {
		b.WriteString(res.Title + "\n")
		b.WriteString(strings.Repeat("=", 60) + "\n")
	}
	b.WriteString("\n")

	if res.Empty() {
		b.WriteString(res.NoEvent + "\n\n")
		b.WriteString(strings.Repeat("=", 60) + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	first, last := period(res.Items)
	fmt.Fprintf(&b, "Period: %s to %s\n\n", loc.FormatDate(first, ""), loc.FormatDate(last, ""))

	for _, s := range Summarize(res.Items) {
		name := s.Name
		if name == "" {
			name = s.Entity
		}
		fmt.Fprintf(&b, "%s (%s):\n", name, s.Entity)
		fmt.Fprintf(&b, "  State changes:        %d\n", s.Changes)
		if s.CustomLogs > 0 {
			fmt.Fprintf(&b, "  Logbook entries:      %d\n", s.CustomLogs)
		}
		for _, st := range s.States {
			fmt.Fprintf(&b, "  %-20s  %s (%d×)\n",
				st.Label+":", loc.FormatDuration(st.DurationMs, f.view.cfg.Duration), st.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("=", 60) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// period returns the earliest start and the latest end of the items
func period(items []model.TimelineItem) (time.Time, time.Time) {
	var first, last time.Time
	for _, item := range items {
		end := item.Start
		if item.History != nil {
			end = item.History.End
		}
		if first.IsZero() || item.Start.Before(first) {
			first = item.Start
		}
		if end.After(last) {
			last = end
		}
	}
	return first, last
}
