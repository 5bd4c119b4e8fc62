package history

import (
	"github.com/penwyp/go-ha-logbook/internal/core/attributes"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/core/statemap"
)

// Formatter is the locale capability the history pipeline needs.
type Formatter interface {
	statemap.Formatter
	attributes.Formatter
}

// Options are the card-wide settings that affect history runs.
type Options struct {
	DateFormat      string
	MinimalDuration float64
}

// ToHistory runs the full pipeline for one entity.
func ToHistory(samples []model.RawStateSample, plan config.EntityPlan, entityName string, opts Options, f Formatter, clock Clock) []model.HistoryItem {
	annotate := func(s model.RawStateSample) Annotation {
		return Annotation{
			Label:      statemap.ResolveLabel(s, plan.StateMap, f),
			Icon:       statemap.ResolveIcon(s, plan.StateMap, f),
			Attributes: attributes.Extract(s, plan.Attributes, opts.DateFormat, f),
		}
	}

	items := BuildIntervals(samples, entityName, annotate, clock)
	items = FilterMinimalDuration(items, opts.MinimalDuration)
	items = Squash(items)
	return FilterHidden(items, plan.Hidden)
}

// EntityName picks the display name of an entity: the configured override,
// then the friendly_name of the latest sample, then the entity id.
func EntityName(plan config.EntityPlan, latest *model.RawStateSample) string {
	if plan.Name != "" {
		return plan.Name
	}
	if latest != nil {
		if name := latest.FriendlyName(); name != "" {
			return name
		}
	}
	return plan.EntityID
}
