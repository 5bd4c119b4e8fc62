// Package statemap resolves state samples to display labels and icons
// using the ordered state_map rules of an entity.
package statemap

import (
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/core/pattern"
)

// Formatter supplies the locale-aware fallbacks used when no rule applies.
type Formatter interface {
	StateDisplay(sample model.RawStateSample) string
	EntityIcon(sample model.RawStateSample) string
}

// FindRule returns the first rule whose value pattern matches the state and
// whose every attribute condition matches. A condition on an absent attribute fails.
func FindRule(sample model.RawStateSample, rules []config.StateMapRule) *config.StateMapRule {
	for i := range rules {
		if matches(sample, rules[i]) {
			return &rules[i]
		}
	}
	return nil
}

func matches(sample model.RawStateSample, rule config.StateMapRule) bool {
	if !rule.Value.Test(sample.State) {
		return false
	}
	for _, cond := range rule.Attributes {
		v, ok := sample.Attribute(cond.Name)
		if !ok || !cond.Value.Test(pattern.Stringify(v)) {
			return false
		}
	}
	return true
}

// ResolveLabel returns the label of the matching rule, the formatter's
// display of the state, or the raw state, in that order of preference.
func ResolveLabel(sample model.RawStateSample, rules []config.StateMapRule, f Formatter) string {
	if rule := FindRule(sample, rules); rule != nil && rule.Label != "" {
		return rule.Label
	}
	if f != nil {
		return f.StateDisplay(sample)
	}
	return sample.State
}

// ResolveIcon returns the icon of the matching rule. It returns nil when no rule
// matches or the rule sets neither icon nor color. The state is matched in its
// escaped form, as hidden_state rules do, so a value such as `line\nbreak`
// selects a multi-line state.
func ResolveIcon(sample model.RawStateSample, rules []config.StateMapRule, f Formatter) *model.IconDescriptor {
	escaped := sample
	escaped.State = pattern.EscapeSlashes(sample.State)
	rule := FindRule(escaped, rules)
	if rule == nil || (rule.Icon == "" && rule.IconColor == "") {
		return nil
	}

	icon := rule.Icon
	if icon == "" && f != nil {
		icon = f.EntityIcon(sample)
	}
	return &model.IconDescriptor{Icon: icon, Color: rule.IconColor}
}
