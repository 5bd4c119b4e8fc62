package card

import (
	"fmt"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// Multiple is the card merging the timelines of several entities.
type Multiple struct {
	cfg *config.TimelineConfig
}

// NewMultiple creates the multiple entity card.
func NewMultiple(cfg *config.TimelineConfig) (*Multiple, error) {
	if cfg == nil || len(cfg.Entities) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one entity", config.ErrInvalidConfig, config.KindMultiple)
	}
	return &Multiple{cfg: cfg}, nil
}

func (c *Multiple) Kind() config.CardKind { return config.KindMultiple }

func (c *Multiple) Config() *config.TimelineConfig { return c.cfg }

// Render merges every existing entity into one timeline. Entities that do not
// exist are skipped and reported in Missing.
func (c *Multiple) Render(inputs map[string]EntityInput, f locale.Formatter, clock util.Clock) Result {
	result := Result{
		Kind:       config.KindMultiple,
		Title:      c.cfg.Title,
		NoEvent:    noEventText(c.cfg, f),
		RenderedAt: clock.Now(),
	}

	streams := make([][]model.TimelineItem, 0, len(c.cfg.Entities))
	for _, plan := range c.cfg.Entities {
		in, ok := inputs[plan.EntityID]
		if !ok || in.State == nil {
			result.Missing = append(result.Missing, plan.EntityID)
			continue
		}
		streams = append(streams, entityItems(c.cfg, plan, in, f, clock))
	}

	result.Items = assemble(c.cfg, streams, locationOf(f))
	return result
}
