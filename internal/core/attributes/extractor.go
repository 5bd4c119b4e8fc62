// Package attributes projects a state record's attribute bag into display values.
package attributes

import (
	"sort"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/core/pattern"
)

// TypeDate marks a projection whose value is a timestamp.
const TypeDate = "date"

// Formatter supplies locale-aware attribute names and values.
type Formatter interface {
	AttributeName(sample model.RawStateSample, key string) (string, bool)
	AttributeValue(sample model.RawStateSample, key string, value any, linkLabel string) (text, href string)
	FormatDate(t time.Time, format string) string
}

// Extract returns one or more display attributes per projection, in projection order.
// Only absent keys are skipped: zero values and empty strings are kept, nil renders as "null".
func Extract(sample model.RawStateSample, projections []config.AttributeProjection, dateFormat string, f Formatter) []model.DisplayAttribute {
	out := make([]model.DisplayAttribute, 0, len(projections))

	for _, p := range projections {
		value, ok := sample.Attribute(p.Key)
		if !ok {
			continue
		}

		switch v := value.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				out = append(out, model.DisplayAttribute{Name: k, Value: pattern.Stringify(v[k])})
			}
		case []any:
			out = append(out, model.DisplayAttribute{Name: nameOr(p.Label, p.Key), Value: pattern.Stringify(v)})
		default:
			out = append(out, scalar(sample, p, v, dateFormat, f))
		}
	}
	return out
}

func scalar(sample model.RawStateSample, p config.AttributeProjection, value any, dateFormat string, f Formatter) model.DisplayAttribute {
	attr := model.DisplayAttribute{Name: p.Label}
	if attr.Name == "" {
		attr.Name = p.Key
		if f != nil {
			if name, ok := f.AttributeName(sample, p.Key); ok && name != "" {
				attr.Name = name
			}
		}
	}

	switch {
	case value == nil:
		attr.Value = "null"
	case p.Type == TypeDate:
		attr.Value = formatDate(value, dateFormat, f)
	case f != nil:
		attr.Value, attr.Href = f.AttributeValue(sample, p.Key, value, p.LinkLabel)
	default:
		attr.Value = pattern.Stringify(value)
	}
	return attr
}

// formatDate parses ISO strings and epoch numbers; unparseable values are shown as-is.
func formatDate(value any, dateFormat string, f Formatter) string {
	var t time.Time
	switch v := value.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return v
		}
		t = parsed
	case float64:
		t = model.FromEpoch(v)
	case time.Time:
		t = v
	default:
		return pattern.Stringify(value)
	}

	if f == nil {
		return t.Format(time.RFC3339)
	}
	return f.FormatDate(t, dateFormat)
}

func nameOr(label, key string) string {
	if label != "" {
		return label
	}
	return key
}
