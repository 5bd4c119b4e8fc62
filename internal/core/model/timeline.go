package model

import "time"

// ItemKind discriminates timeline items
type ItemKind string

const (
	KindHistory   ItemKind = "history"
	KindCustomLog ItemKind = "customLog"
)

// IconDescriptor is the icon resolved for a history run
type IconDescriptor struct {
	Icon  string `json:"icon"`
	Color string `json:"color,omitempty"`
}

// DisplayAttribute is one projected attribute. Href is set when the value
// is a link rendered with a link label.
type DisplayAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Href  string `json:"href,omitempty"`
}

// HistoryItem is an interval of one state, or after squashing, a run of them.
type HistoryItem struct {
	EntityID   string             `json:"entity"`
	EntityName string             `json:"entity_name"`
	State      string             `json:"state"`
	Label      string             `json:"label"`
	Icon       *IconDescriptor    `json:"icon,omitempty"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	DurationMs int64              `json:"duration"`
	Attributes []DisplayAttribute `json:"attributes"`
	Source     RawStateSample     `json:"-"`
}

// CustomLogItem is a loggable logbook entry ready for display.
type CustomLogItem struct {
	Entity     string    `json:"entity"`
	EntityName string    `json:"entity_name"`
	Start      time.Time `json:"start"`
	Name       string    `json:"name"`
	Message    string    `json:"message"`
	Icon       string    `json:"icon,omitempty"`
	IconColor  string    `json:"icon_color,omitempty"`
}

// TimelineItem is either a history run or a custom log.
type TimelineItem struct {
	Kind      ItemKind       `json:"type"`
	Start     time.Time      `json:"start"`
	History   *HistoryItem   `json:"history,omitempty"`
	CustomLog *CustomLogItem `json:"custom_log,omitempty"`
}

// FromHistory wraps history runs as timeline items.
func FromHistory(items []HistoryItem) []TimelineItem {
	out := make([]TimelineItem, len(items))
	for i := range items {
		h := items[i]
		out[i] = TimelineItem{Kind: KindHistory, Start: h.Start, History: &h}
	}
	return out
}

// FromCustomLogs wraps custom logs as timeline items.
func FromCustomLogs(items []CustomLogItem) []TimelineItem {
	out := make([]TimelineItem, len(items))
	for i := range items {
		c := items[i]
		out[i] = TimelineItem{Kind: KindCustomLog, Start: c.Start, CustomLog: &c}
	}
	return out
}

// EntityID returns the entity the item belongs to.
func (t TimelineItem) EntityID() string {
	switch {
	case t.History != nil:
		return t.History.EntityID
	case t.CustomLog != nil:
		return t.CustomLog.Entity
	default:
		return ""
	}
}
