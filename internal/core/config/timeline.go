package config

import (
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/pattern"
)

// Defaults applied when the card configuration leaves a setting out.
const (
	DefaultHistoryDays    = 5
	DefaultHoursToShow    = DefaultHistoryDays * 24
	DefaultMaxItems       = -1
	DefaultLargest        = 1
	DefaultSeparatorWidth = 1
	DefaultSeparatorStyle = "solid"
	DefaultSeparatorColor = "var(--divider-color)"
)

// TimelineConfig is the validated and compiled card configuration.
// It is immutable once built; reconfiguration replaces it wholesale.
type TimelineConfig struct {
	Kind            CardKind
	Title           string
	Entities        []EntityPlan
	HoursToShow     float64
	Desc            bool
	MaxItems        int
	NoEvent         string
	MinimalDuration float64
	DateFormat      string
	Collapse        int
	GroupByDay      bool
	Show            ShowOptions
	Duration        DurationOptions
	SeparatorStyle  SeparatorStyleConfig
	ShowHistory     bool
	Scroll          bool
}

// Lookback returns the fetch window length.
func (c *TimelineConfig) Lookback() time.Duration {
	return time.Duration(c.HoursToShow * float64(time.Hour))
}

// EntityIDs lists the configured entities in declaration order.
func (c *TimelineConfig) EntityIDs() []string {
	ids := make([]string, len(c.Entities))
	for i, e := range c.Entities {
		ids[i] = e.EntityID
	}
	return ids
}

// EntityPlan is everything the pipeline needs for one entity.
type EntityPlan struct {
	EntityID     string
	Name         string
	Attributes   []AttributeProjection
	StateMap     []StateMapRule
	Hidden       []HiddenRule
	CustomLogs   bool
	CustomLogMap []CustomLogRule
}

// AttributeProjection selects one attribute for display.
type AttributeProjection struct {
	Key       string
	Label     string
	Type      string
	LinkLabel string
}

// StateMapRule is a compiled state_map entry.
type StateMapRule struct {
	Value      *pattern.Matcher
	Label      string
	Icon       string
	IconColor  string
	Attributes []AttributeCondition
}

// AttributeCondition requires an attribute value to match.
type AttributeCondition struct {
	Name  string
	Value *pattern.Matcher
}

// HiddenRule is a compiled hidden_state entry. At least one part is set.
type HiddenRule struct {
	State     *pattern.Matcher
	Attribute *HiddenAttributeRule
}

// HiddenAttributeRule is the attribute part of a hidden rule.
type HiddenAttributeRule struct {
	Name          string
	Value         *pattern.Matcher
	HideIfMissing bool
}

// CustomLogRule is a compiled custom_log_map entry.
type CustomLogRule struct {
	Name      *pattern.Matcher
	Message   *pattern.Matcher
	Icon      string
	IconColor string
	Hidden    bool
}

// ShowOptions are the resolved show flags.
type ShowOptions struct {
	State      bool `json:"state"`
	Duration   bool `json:"duration"`
	StartDate  bool `json:"start_date"`
	EndDate    bool `json:"end_date"`
	Icon       bool `json:"icon"`
	Separator  bool `json:"separator"`
	EntityName bool `json:"entity_name"`
}

// DurationOptions are the resolved duration settings. Largest 0 means full precision.
type DurationOptions struct {
	Units     []string
	Largest   int
	Delimiter *string
	Labels    *DurationLabels
}
