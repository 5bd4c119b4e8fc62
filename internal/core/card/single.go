package card

import (
	"fmt"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/history"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// Single is the one-entity logbook card.
type Single struct {
	cfg  *config.TimelineConfig
	plan config.EntityPlan
}

// NewSingle creates the single entity card. The configuration must hold exactly one entity.
func NewSingle(cfg *config.TimelineConfig) (*Single, error) {
	if cfg == nil || len(cfg.Entities) != 1 {
		return nil, fmt.Errorf("%w: %s needs exactly one entity", config.ErrInvalidConfig, config.KindSingle)
	}
	return &Single{cfg: cfg, plan: cfg.Entities[0]}, nil
}

func (c *Single) Kind() config.CardKind { return config.KindSingle }

func (c *Single) Config() *config.TimelineConfig { return c.cfg }

// Render builds the entity timeline. A missing entity renders as unavailable.
func (c *Single) Render(inputs map[string]EntityInput, f locale.Formatter, clock util.Clock) Result {
	in := inputs[c.plan.EntityID]

	result := Result{
		Kind:       config.KindSingle,
		Title:      c.title(in.State, f),
		NoEvent:    noEventText(c.cfg, f),
		RenderedAt: clock.Now(),
	}
	if in.State == nil {
		result.Unavailable = true
		result.Missing = []string{c.plan.EntityID}
		return result
	}

	items := entityItems(c.cfg, c.plan, in, f, clock)
	result.Items = assemble(c.cfg, [][]model.TimelineItem{items}, locationOf(f))
	return result
}

// title defaults to "<entity name> History".
func (c *Single) title(state *model.RawStateSample, f locale.Formatter) string {
	if c.cfg.Title != "" {
		return c.cfg.Title
	}
	return history.EntityName(c.plan, state) + " " + f.Text(locale.TextHistorySuffix)
}
