package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Well-known state values
const (
	StateUnknown     = "unknown"
	StateUnavailable = "unavailable"
)

// RawStateSample is one state record as returned by the history endpoint.
type RawStateSample struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	ObservedAt  time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated,omitempty"`
}

// Attribute returns the named attribute and whether it is present at all.
// A present attribute may still hold nil.
func (s RawStateSample) Attribute(name string) (any, bool) {
	if s.Attributes == nil {
		return nil, false
	}
	v, ok := s.Attributes[name]
	return v, ok
}

// FriendlyName returns the friendly_name attribute when it is a non-empty string.
func (s RawStateSample) FriendlyName() string {
	if v, ok := s.Attributes["friendly_name"].(string); ok {
		return v
	}
	return ""
}

// Domain returns the part of the entity id before the first dot.
func (s RawStateSample) Domain() string {
	if i := strings.IndexByte(s.EntityID, '.'); i > 0 {
		return s.EntityID[:i]
	}
	return ""
}

// LogTime is the timestamp of a logbook entry. The REST API sends ISO strings,
// the websocket API sends epoch seconds with fractional millis, and some
// recordings carry epoch milliseconds.
type LogTime struct {
	time.Time
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e11 seconds is in the year 5138; 1e11 ms is in 1973.
const epochMillisThreshold = 1e11

// UnmarshalJSON accepts either an ISO-8601 string or a number.
func (t *LogTime) UnmarshalJSON(data []byte) error {
	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		parsed, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return fmt.Errorf("invalid logbook time %q: %w", str, err)
		}
		t.Time = parsed
		return nil
	}

	var num float64
	if err := sonic.Unmarshal(data, &num); err == nil {
		t.Time = FromEpoch(num)
		return nil
	}

	return fmt.Errorf("logbook time must be either string or number, got %s", string(data))
}

// MarshalJSON writes the time as RFC 3339 with millisecond precision.
func (t LogTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format("2006-01-02T15:04:05.000Z07:00") + `"`), nil
}

// FromEpoch converts an epoch number to a time, keeping millisecond precision.
func FromEpoch(v float64) time.Time {
	if v >= epochMillisThreshold {
		return time.UnixMilli(int64(math.Round(v))).UTC()
	}
	return time.UnixMilli(int64(math.Round(v * 1000))).UTC()
}

// RawLogEntry is one logbook record.
type RawLogEntry struct {
	When     LogTime `json:"when"`
	Name     string  `json:"name"`
	Message  *string `json:"message,omitempty"`
	EntityID string  `json:"entity_id,omitempty"`
	Icon     string  `json:"icon,omitempty"`
	Source   string  `json:"source,omitempty"`
	Domain   string  `json:"domain,omitempty"`
	State    string  `json:"state,omitempty"`

	ContextID           string `json:"context_id,omitempty"`
	ContextUserID       string `json:"context_user_id,omitempty"`
	ContextEventType    string `json:"context_event_type,omitempty"`
	ContextDomain       string `json:"context_domain,omitempty"`
	ContextService      string `json:"context_service,omitempty"`
	ContextEntityID     string `json:"context_entity_id,omitempty"`
	ContextEntityIDName string `json:"context_entity_id_name,omitempty"`
	ContextName         string `json:"context_name,omitempty"`
	ContextState        string `json:"context_state,omitempty"`
	ContextSource       string `json:"context_source,omitempty"`
	ContextMessage      string `json:"context_message,omitempty"`
}

// MessageOrEmpty returns the message, or "" when the entry has none.
func (e RawLogEntry) MessageOrEmpty() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}
