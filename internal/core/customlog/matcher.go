// Package customlog selects logbook entries worth showing next to state history
// and styles them with the entity's custom_log_map rules.
package customlog

import (
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
)

const (
	contextServiceLog      = "log"
	contextEventAutomation = "automation_triggered"
	contextDomainScript    = "script"
	domainAutomation       = "automation"
)

// IsLoggable reports whether an entry is a logbook.log call, an automation
// trigger, or something a script did.
func IsLoggable(e model.RawLogEntry) bool {
	return e.ContextService == contextServiceLog ||
		e.ContextEventType == contextEventAutomation ||
		e.ContextDomain == contextDomainScript ||
		e.Domain == domainAutomation
}

// Matches reports whether the rule applies to an entry. When both patterns are
// set both must match; a missing message is tested as "". A rule without
// patterns matches nothing.
func Matches(rule config.CustomLogRule, e model.RawLogEntry) bool {
	switch {
	case rule.Name != nil && rule.Message != nil:
		return rule.Name.Test(e.Name) && rule.Message.Test(e.MessageOrEmpty())
	case rule.Message != nil:
		return rule.Message.Test(e.MessageOrEmpty())
	default:
		return rule.Name.Test(e.Name)
	}
}

// FindRule returns the first matching rule in declaration order.
func FindRule(rules []config.CustomLogRule, e model.RawLogEntry) *config.CustomLogRule {
	for i := range rules {
		if Matches(rules[i], e) {
			return &rules[i]
		}
	}
	return nil
}

// IsHidden reports whether any hidden rule matches the entry.
func IsHidden(rules []config.CustomLogRule, e model.RawLogEntry) bool {
	for _, r := range rules {
		if r.Hidden && Matches(r, e) {
			return true
		}
	}
	return false
}

// ToCustomLogs maps the loggable entries of one entity to display items, styled by
// the first matching rule, then drops the ones matched by a hidden rule.
// entityName falls back to the entity id.
func ToCustomLogs(plan config.EntityPlan, entityName string, entries []model.RawLogEntry) []model.CustomLogItem {
	if entityName == "" {
		entityName = plan.EntityID
	}

	out := make([]model.CustomLogItem, 0, len(entries))
	for _, e := range entries {
		if !IsLoggable(e) || IsHidden(plan.CustomLogMap, e) {
			continue
		}
		item := model.CustomLogItem{
			Entity:     plan.EntityID,
			EntityName: entityName,
			Start:      e.When.Time,
			Name:       e.Name,
			Message:    e.MessageOrEmpty(),
		}
		if rule := FindRule(plan.CustomLogMap, e); rule != nil {
			item.Icon = rule.Icon
			item.IconColor = rule.IconColor
		}
		out = append(out, item)
	}
	return out
}
