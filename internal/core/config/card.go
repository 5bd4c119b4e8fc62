// Package config holds the card configuration: the YAML shape users write,
// its validation, and the compiled TimelineConfig consumed by the pipeline.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// CardKind is the Lovelace card type
type CardKind string

const (
	KindSingle   CardKind = "logbook-card"
	KindMultiple CardKind = "multiple-logbook-card"

	customPrefix = "custom:"
)

// ParseKind normalizes a card type, accepting the custom: prefix.
func ParseKind(t string) (CardKind, error) {
	switch CardKind(strings.TrimPrefix(strings.TrimSpace(t), customPrefix)) {
	case KindSingle:
		return KindSingle, nil
	case KindMultiple:
		return KindMultiple, nil
	default:
		return "", invalidf("unknown card type %q", t)
	}
}

// CardConfig is the card configuration as written in YAML.
type CardConfig struct {
	Type  string `yaml:"type"`
	Title string `yaml:"title,omitempty"`

	// Single card fields are inline; the multiple card lists them under entities.
	// custom_logs at the top level doubles as the default for every entity.
	Single   EntityConfig   `yaml:",inline"`
	Entities []EntityConfig `yaml:"entities,omitempty"`

	HoursToShow     *float64             `yaml:"hours_to_show,omitempty"`
	History         *float64             `yaml:"history,omitempty"`
	Desc            *bool                `yaml:"desc,omitempty"`
	MaxItems        *int                 `yaml:"max_items,omitempty"`
	NoEvent         string               `yaml:"no_event,omitempty"`
	MinimalDuration *float64             `yaml:"minimal_duration,omitempty"`
	DateFormat      string               `yaml:"date_format,omitempty"`
	Collapse        *int                 `yaml:"collapse,omitempty"`
	GroupByDay      bool                 `yaml:"group_by_day,omitempty"`
	Show            ShowConfig           `yaml:"show,omitempty"`
	Duration        DurationConfig       `yaml:"duration,omitempty"`
	SeparatorStyle  SeparatorStyleConfig `yaml:"separator_style,omitempty"`
	ShowHistory     *bool                `yaml:"show_history,omitempty"`
	Scroll          *bool                `yaml:"scroll,omitempty"`
}

// EntityConfig is the per-entity block.
type EntityConfig struct {
	Entity       string               `yaml:"entity,omitempty"`
	Label        string               `yaml:"label,omitempty"`
	EntityName   string               `yaml:"entity_name,omitempty"`
	Attributes   []AttributeConfig    `yaml:"attributes,omitempty"`
	StateMap     []StateMapConfig     `yaml:"state_map,omitempty"`
	HiddenState  []HiddenConfig       `yaml:"hidden_state,omitempty"`
	CustomLogs   *bool                `yaml:"custom_logs,omitempty"`
	CustomLogMap []CustomLogMapConfig `yaml:"custom_log_map,omitempty"`
}

// DisplayName returns the configured name override, if any.
func (e EntityConfig) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}
	return e.EntityName
}

// AttributeConfig projects one attribute of the state record.
type AttributeConfig struct {
	Value     string `yaml:"value"`
	Label     string `yaml:"label,omitempty"`
	Type      string `yaml:"type,omitempty"`
	LinkLabel string `yaml:"link_label,omitempty"`
}

// StateMapConfig maps a state (and optional attribute values) to a label and icon.
type StateMapConfig struct {
	Value      *string                `yaml:"value,omitempty"`
	Label      string                 `yaml:"label,omitempty"`
	Icon       string                 `yaml:"icon,omitempty"`
	IconColor  string                 `yaml:"icon_color,omitempty"`
	Attributes []AttributeStateConfig `yaml:"attributes,omitempty"`
}

// AttributeStateConfig is an attribute condition of a state map entry.
type AttributeStateConfig struct {
	Name  string  `yaml:"name"`
	Value *string `yaml:"value,omitempty"`
}

// HiddenConfig is a hide rule. A bare string is shorthand for {state: value}.
type HiddenConfig struct {
	State     *string                `yaml:"state,omitempty"`
	Attribute *HiddenAttributeConfig `yaml:"attribute,omitempty"`
}

// HiddenAttributeConfig is the attribute part of a hide rule.
type HiddenAttributeConfig struct {
	Name          string  `yaml:"name"`
	Value         *string `yaml:"value,omitempty"`
	HideIfMissing bool    `yaml:"hideIfMissing,omitempty"`
}

// UnmarshalYAML decodes either a plain state pattern or a full rule.
func (h *HiddenConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s := node.Value
		h.State = &s
		return nil
	}
	type plain HiddenConfig
	return node.Decode((*plain)(h))
}

// CustomLogMapConfig styles or hides logbook entries by name and message.
type CustomLogMapConfig struct {
	Name      *string `yaml:"name,omitempty"`
	Message   *string `yaml:"message,omitempty"`
	Icon      string  `yaml:"icon,omitempty"`
	IconColor string  `yaml:"icon_color,omitempty"`
	Hidden    bool    `yaml:"hidden,omitempty"`
}

// ShowConfig toggles parts of each rendered item.
type ShowConfig struct {
	State      *bool `yaml:"state,omitempty"`
	Duration   *bool `yaml:"duration,omitempty"`
	StartDate  *bool `yaml:"start_date,omitempty"`
	EndDate    *bool `yaml:"end_date,omitempty"`
	Icon       *bool `yaml:"icon,omitempty"`
	Separator  *bool `yaml:"separator,omitempty"`
	EntityName *bool `yaml:"entity_name,omitempty"`
}

// DurationConfig controls duration humanization.
type DurationConfig struct {
	Units     []string        `yaml:"units,omitempty"`
	Largest   *Largest        `yaml:"largest,omitempty"`
	Delimiter *string         `yaml:"delimiter,omitempty"`
	Labels    *DurationLabels `yaml:"labels,omitempty"`
}

// DurationLabels overrides unit names.
type DurationLabels struct {
	Month  string `yaml:"month,omitempty"`
	Week   string `yaml:"week,omitempty"`
	Day    string `yaml:"day,omitempty"`
	Hour   string `yaml:"hour,omitempty"`
	Minute string `yaml:"minute,omitempty"`
	Second string `yaml:"second,omitempty"`
}

// Largest is either a unit count or "full". Full is represented as 0.
type Largest struct {
	N    int
	Full bool
}

// UnmarshalYAML accepts an integer or the literal "full".
func (l *Largest) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return invalidf("duration.largest should be a number or `full`")
	}
	if node.Value == "full" {
		l.Full = true
		return nil
	}
	n, err := strconv.Atoi(node.Value)
	if err != nil {
		return invalidf("duration.largest should be a number or `full`")
	}
	l.N = n
	return nil
}

// MarshalYAML writes the value back in its input form.
func (l Largest) MarshalYAML() (interface{}, error) {
	if l.Full {
		return "full", nil
	}
	return l.N, nil
}

// SeparatorStyleConfig styles the separator between items.
type SeparatorStyleConfig struct {
	Width int    `yaml:"width,omitempty"`
	Style string `yaml:"style,omitempty"`
	Color string `yaml:"color,omitempty"`
}

// Parse decodes a card configuration from YAML. Unknown keys are rejected.
// An entities item may be a bare entity id, shorthand for {entity: id}.
func Parse(data []byte) (*CardConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return nil, invalidf("empty configuration")
	}
	expandEntityShorthand(&root)

	// EntityConfig is inlined for the single card, so it cannot unmarshal
	// itself; the shorthand is rewritten on the node tree and the result is
	// decoded strictly.
	normalized, err := yaml.Marshal(&root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var cfg CardConfig
	dec := yaml.NewDecoder(bytes.NewReader(normalized))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalidf("empty configuration")
		}
		if errors.Is(err, ErrInvalidConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// expandEntityShorthand turns scalar items of the top-level entities list
// into {entity: <id>} mappings.
func expandEntityShorthand(root *yaml.Node) {
	doc := root
	if doc.Kind == yaml.DocumentNode {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		if key.Value != "entities" || value.Kind != yaml.SequenceNode {
			continue
		}
		for j, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				continue
			}
			value.Content[j] = &yaml.Node{
				Kind:   yaml.MappingNode,
				Tag:    "!!map",
				Style:  yaml.FlowStyle,
				Line:   item.Line,
				Column: item.Column,
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: "entity"},
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: item.Value},
				},
			}
		}
	}
}

// Load reads and parses a card configuration file.
func Load(path string) (*CardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse card config %s: %w", path, err)
	}
	return cfg, nil
}
