// Package history turns raw state samples of one entity into display-ready runs.
//
// The pipeline order is fixed: build intervals, drop short ones, squash
// same-state runs, then apply hidden rules to the squashed runs.
package history

import (
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/model"
)

// Annotator fills the display fields of an interval from its sample.
type Annotator func(sample model.RawStateSample) Annotation

// Annotation is what the state mapper and attribute extractor contribute to an interval.
type Annotation struct {
	Label      string
	Icon       *model.IconDescriptor
	Attributes []model.DisplayAttribute
}

// Clock is the source of the processing time used to close the last interval.
type Clock interface {
	Now() time.Time
}

// BuildIntervals pairs each sample with the next one. The last interval ends at
// clock.Now(). Samples must be in ascending order; a sample observed after now
// yields a zero duration rather than a negative one.
func BuildIntervals(samples []model.RawStateSample, entityName string, annotate Annotator, clock Clock) []model.HistoryItem {
	if len(samples) == 0 {
		return nil
	}

	now := clock.Now()
	items := make([]model.HistoryItem, len(samples))
	for i, s := range samples {
		end := now
		if i+1 < len(samples) {
			end = samples[i+1].ObservedAt
		}
		if end.Before(s.ObservedAt) {
			end = s.ObservedAt
		}

		item := model.HistoryItem{
			EntityID:   s.EntityID,
			EntityName: entityName,
			State:      s.State,
			Label:      s.State,
			Start:      s.ObservedAt,
			End:        end,
			DurationMs: end.Sub(s.ObservedAt).Milliseconds(),
			Source:     s,
		}
		if annotate != nil {
			a := annotate(s)
			item.Label = a.Label
			item.Icon = a.Icon
			item.Attributes = a.Attributes
		}
		items[i] = item
	}
	return items
}
