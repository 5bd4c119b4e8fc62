package config

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-ha-logbook/internal/core/pattern"
)

var durationUnits = map[string]bool{
	"y": true, "mo": true, "w": true, "d": true, "h": true, "m": true, "s": true, "ms": true,
}

// Validate checks the configuration and returns the first problem found.
func (c *CardConfig) Validate() error {
	kind, err := c.kind()
	if err != nil {
		return err
	}

	switch kind {
	case KindSingle:
		if c.Single.Entity == "" {
			return invalidf("please define an entity")
		}
		if err := validateEntity("", c.Single); err != nil {
			return err
		}
	case KindMultiple:
		if len(c.Entities) == 0 {
			return invalidf("please define at least one entity in entities")
		}
		for i, e := range c.Entities {
			if e.Entity == "" {
				return invalidf("entities[%d]: please define an entity", i)
			}
			if err := validateEntity(fmt.Sprintf("entities[%d].", i), e); err != nil {
				return err
			}
		}
	}

	if c.HoursToShow != nil && *c.HoursToShow <= 0 {
		return invalidf("hours_to_show must be a positive number")
	}
	if c.History != nil && *c.History <= 0 {
		return invalidf("history must be a positive number")
	}
	if c.Collapse != nil && *c.Collapse < 0 {
		return invalidf("collapse must be a positive number")
	}
	if c.Collapse != nil && c.MaxItems != nil && *c.MaxItems > 0 && *c.Collapse > *c.MaxItems {
		return invalidf("collapse must be lower than max_items")
	}
	if c.MinimalDuration != nil && *c.MinimalDuration < 0 {
		return invalidf("minimal_duration should be a positive number")
	}
	for _, u := range c.Duration.Units {
		if !durationUnits[u] {
			return invalidf("duration.units: unknown unit %q", u)
		}
	}
	if l := c.Duration.Largest; l != nil && !l.Full && l.N <= 0 {
		return invalidf("duration.largest should be a number or `full`")
	}
	return nil
}

// kind resolves the card type. An empty type is inferred from the presence of entities.
func (c *CardConfig) kind() (CardKind, error) {
	if strings.TrimSpace(c.Type) == "" {
		if len(c.Entities) > 0 {
			return KindMultiple, nil
		}
		return KindSingle, nil
	}
	return ParseKind(c.Type)
}

func validateEntity(prefix string, e EntityConfig) error {
	for i, a := range e.Attributes {
		if a.Value == "" {
			return invalidf("%sattributes[%d]: value is required", prefix, i)
		}
	}
	for i, sm := range e.StateMap {
		for j, a := range sm.Attributes {
			if a.Name == "" {
				return invalidf("%sstate_map[%d].attributes[%d]: name is required", prefix, i, j)
			}
		}
	}
	for i, h := range e.HiddenState {
		if h.State == nil && h.Attribute == nil {
			return invalidf("%shidden_state[%d]: define a state or an attribute", prefix, i)
		}
		if h.Attribute != nil && h.Attribute.Name == "" {
			return invalidf("%shidden_state[%d].attribute: name is required", prefix, i)
		}
	}
	return nil
}

// Compile validates the configuration and builds the immutable TimelineConfig.
func (c *CardConfig) Compile() (*TimelineConfig, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	kind, _ := c.kind()

	tc := &TimelineConfig{
		Kind:        kind,
		Title:       c.Title,
		HoursToShow: DefaultHoursToShow,
		Desc:        boolOr(c.Desc, true),
		MaxItems:    DefaultMaxItems,
		NoEvent:     c.NoEvent,
		DateFormat:  c.DateFormat,
		GroupByDay:  c.GroupByDay,
		ShowHistory: boolOr(c.ShowHistory, true),
		Scroll:      boolOr(c.Scroll, true),
		Show: ShowOptions{
			State:      boolOr(c.Show.State, true),
			Duration:   boolOr(c.Show.Duration, true),
			StartDate:  boolOr(c.Show.StartDate, true),
			EndDate:    boolOr(c.Show.EndDate, true),
			Icon:       boolOr(c.Show.Icon, true),
			Separator:  boolOr(c.Show.Separator, false),
			EntityName: boolOr(c.Show.EntityName, true),
		},
		Duration: DurationOptions{
			Units:     c.Duration.Units,
			Largest:   DefaultLargest,
			Delimiter: c.Duration.Delimiter,
			Labels:    c.Duration.Labels,
		},
		SeparatorStyle: SeparatorStyleConfig{
			Width: DefaultSeparatorWidth,
			Style: DefaultSeparatorStyle,
			Color: DefaultSeparatorColor,
		},
	}

	switch {
	case c.HoursToShow != nil:
		tc.HoursToShow = *c.HoursToShow
	case c.History != nil:
		tc.HoursToShow = *c.History * 24
	}
	if c.MaxItems != nil {
		tc.MaxItems = *c.MaxItems
	}
	if c.MinimalDuration != nil {
		tc.MinimalDuration = *c.MinimalDuration
	}
	if c.Collapse != nil {
		tc.Collapse = *c.Collapse
	}
	if l := c.Duration.Largest; l != nil {
		if l.Full {
			tc.Duration.Largest = 0
		} else {
			tc.Duration.Largest = l.N
		}
	}
	if c.SeparatorStyle.Width > 0 {
		tc.SeparatorStyle.Width = c.SeparatorStyle.Width
	}
	if c.SeparatorStyle.Style != "" {
		tc.SeparatorStyle.Style = c.SeparatorStyle.Style
	}
	if c.SeparatorStyle.Color != "" {
		tc.SeparatorStyle.Color = c.SeparatorStyle.Color
	}

	cardCustomLogs := boolOr(c.Single.CustomLogs, false)
	entities := c.Entities
	if kind == KindSingle {
		entities = []EntityConfig{c.Single}
	}
	for _, e := range entities {
		tc.Entities = append(tc.Entities, compileEntity(e, cardCustomLogs))
	}
	return tc, nil
}

func compileEntity(e EntityConfig, cardCustomLogs bool) EntityPlan {
	plan := EntityPlan{
		EntityID:   e.Entity,
		Name:       e.DisplayName(),
		CustomLogs: boolOr(e.CustomLogs, cardCustomLogs),
	}

	for _, a := range e.Attributes {
		plan.Attributes = append(plan.Attributes, AttributeProjection{
			Key:       a.Value,
			Label:     a.Label,
			Type:      a.Type,
			LinkLabel: a.LinkLabel,
		})
	}

	for _, sm := range e.StateMap {
		value := ""
		if sm.Value != nil {
			value = *sm.Value
		}
		rule := StateMapRule{
			Value:     pattern.Compile(value),
			Label:     sm.Label,
			Icon:      sm.Icon,
			IconColor: sm.IconColor,
		}
		for _, a := range sm.Attributes {
			rule.Attributes = append(rule.Attributes, AttributeCondition{
				Name:  a.Name,
				Value: pattern.CompileOptional(a.Value),
			})
		}
		plan.StateMap = append(plan.StateMap, rule)
	}

	for _, h := range e.HiddenState {
		rule := HiddenRule{State: pattern.CompileOptional(h.State)}
		if h.Attribute != nil {
			rule.Attribute = &HiddenAttributeRule{
				Name:          h.Attribute.Name,
				Value:         pattern.CompileOptional(h.Attribute.Value),
				HideIfMissing: h.Attribute.HideIfMissing,
			}
		}
		plan.Hidden = append(plan.Hidden, rule)
	}

	for _, m := range e.CustomLogMap {
		plan.CustomLogMap = append(plan.CustomLogMap, CustomLogRule{
			Name:      pattern.CompileOptional(m.Name),
			Message:   pattern.CompileOptional(m.Message),
			Icon:      m.Icon,
			IconColor: m.IconColor,
			Hidden:    m.Hidden,
		})
	}
	return plan
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// LoadTimeline reads, validates and compiles a card configuration file.
func LoadTimeline(path string) (*TimelineConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	tc, err := cfg.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to validate card config %s: %w", path, err)
	}
	return tc, nil
}
