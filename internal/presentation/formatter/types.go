// Package formatter renders a card result as text: a table for terminals,
// JSON and CSV for scripts, and a per-entity summary.
package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
)

// Formatter writes one rendered card
type Formatter interface {
	Format(w io.Writer, res *card.Result) error
}

// DateFormatter is the locale surface the formatters need
type DateFormatter interface {
	locale.Formatter
	FormatDay(t time.Time) string
	Location() *time.Location
}

// Row is a timeline item flattened for output. Fields hidden by the show
// flags are left empty.
type Row struct {
	Type       model.ItemKind           `json:"type"`
	Entity     string                   `json:"entity"`
	EntityName string                   `json:"entity_name,omitempty"`
	Icon       string                   `json:"icon,omitempty"`
	IconColor  string                   `json:"icon_color,omitempty"`
	State      string                   `json:"state,omitempty"`
	Message    string                   `json:"message,omitempty"`
	Start      string                   `json:"start,omitempty"`
	End        string                   `json:"end,omitempty"`
	Duration   string                   `json:"duration,omitempty"`
	DurationMs int64                    `json:"duration_ms,omitempty"`
	StartTime  time.Time                `json:"start_time"`
	EndTime    *time.Time               `json:"end_time,omitempty"`
	Attributes []model.DisplayAttribute `json:"attributes,omitempty"`
}

// View turns timeline items into rows under one card configuration
type View struct {
	cfg    *config.TimelineConfig
	locale DateFormatter
}

// NewView creates a View
func NewView(cfg *config.TimelineConfig, f DateFormatter) *View {
	return &View{cfg: cfg, locale: f}
}

// Row flattens one item
func (v *View) Row(item model.TimelineItem) Row {
	show := v.cfg.Show
	var row Row

	switch item.Kind {
	case model.KindHistory:
		h := item.History
		end := h.End
		row = Row{
			Type:       item.Kind,
			Entity:     h.EntityID,
			State:      h.Label,
			StartTime:  h.Start,
			EndTime:    &end,
			Attributes: h.Attributes,
		}
		if show.EntityName {
			row.EntityName = h.EntityName
		}
		if show.Icon && h.Icon != nil {
			row.Icon = h.Icon.Icon
			row.IconColor = h.Icon.Color
		}
		if show.EndDate {
			row.End = v.locale.FormatDate(h.End, v.cfg.DateFormat)
		}
		if show.Duration {
			row.DurationMs = h.DurationMs
			row.Duration = v.locale.FormatDuration(h.DurationMs, v.cfg.Duration)
		}
		if !show.State {
			row.State = ""
		}

	case model.KindCustomLog:
		c := item.CustomLog
		row = Row{
			Type:      item.Kind,
			Entity:    c.Entity,
			State:     c.Name,
			Message:   c.Message,
			StartTime: c.Start,
		}
		if show.EntityName {
			row.EntityName = c.EntityName
		}
		if show.Icon {
			row.Icon = c.Icon
			row.IconColor = c.IconColor
		}
	}

	if show.StartDate {
		row.Start = v.locale.FormatDate(row.StartTime, v.cfg.DateFormat)
	}
	return row
}

// Rows flattens all items
func (v *View) Rows(items []model.TimelineItem) []Row {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = v.Row(item)
	}
	return rows
}

// Details joins the attributes of a row, or returns its message.
func (r Row) Details() string {
	if r.Message != "" {
		return r.Message
	}
	parts := make([]string, 0, len(r.Attributes))
	for _, a := range r.Attributes {
		value := a.Value
		if a.Href != "" {
			value = fmt.Sprintf("%s <%s>", a.Value, a.Href)
		}
		parts = append(parts, a.Name+": "+value)
	}
	return strings.Join(parts, ", ")
}

// Format names
const (
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatSummary = "summary"
)

// Formats lists the supported output formats
func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatCSV, FormatSummary}
}

// New returns the formatter for the named output format
func New(format string, cfg *config.TimelineConfig, f DateFormatter) (Formatter, error) {
	view := NewView(cfg, f)
	switch strings.ToLower(format) {
	case FormatTable, "":
		return NewTableFormatter(view, TableOptions{}), nil
	case FormatJSON:
		return NewJSONFormatter(view), nil
	case FormatCSV:
		return NewCSVFormatter(view), nil
	case FormatSummary:
		return NewSummaryFormatter(view), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}
