package history

import (
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/core/pattern"
)

// FilterMinimalDuration drops items shorter than seconds. A threshold of zero
// or less keeps everything.
func FilterMinimalDuration(items []model.HistoryItem, seconds float64) []model.HistoryItem {
	if seconds <= 0 {
		return items
	}
	minMs := seconds * 1000
	out := make([]model.HistoryItem, 0, len(items))
	for _, item := range items {
		if float64(item.DurationMs) >= minMs {
			out = append(out, item)
		}
	}
	return out
}

// IsHidden reports whether any rule hides the item.
func IsHidden(item model.HistoryItem, rules []config.HiddenRule) bool {
	for _, rule := range rules {
		if hiddenBy(item, rule) {
			return true
		}
	}
	return false
}

func hiddenBy(item model.HistoryItem, rule config.HiddenRule) bool {
	if rule.Attribute != nil {
		value, ok := item.Source.Attribute(rule.Attribute.Name)
		if !ok {
			return rule.Attribute.HideIfMissing
		}
		attrMatch := rule.Attribute.Value.Test(pattern.EscapeSlashes(value))
		if rule.State != nil {
			return attrMatch && rule.State.Test(pattern.EscapeSlashes(item.State))
		}
		return attrMatch
	}
	return rule.State.Test(pattern.EscapeSlashes(item.State))
}

// FilterHidden removes every item hidden by the rules.
func FilterHidden(items []model.HistoryItem, rules []config.HiddenRule) []model.HistoryItem {
	if len(rules) == 0 {
		return items
	}
	out := make([]model.HistoryItem, 0, len(items))
	for _, item := range items {
		if !IsHidden(item, rules) {
			out = append(out, item)
		}
	}
	return out
}
