// Package locale is the formatting collaborator of the pipeline: state and
// attribute display, dates, durations and the card's own strings.
package locale

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/core/pattern"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// Formatter is everything the pipeline and renderers ask of a locale.
type Formatter interface {
	StateDisplay(sample model.RawStateSample) string
	EntityIcon(sample model.RawStateSample) string
	AttributeName(sample model.RawStateSample, key string) (string, bool)
	AttributeValue(sample model.RawStateSample, key string, value any, linkLabel string) (text, href string)
	FormatDate(t time.Time, format string) string
	FormatDuration(ms int64, opts config.DurationOptions) string
	Text(key TextKey) string
	Language() string
}

var supported = []language.Tag{
	language.English,
	language.French,
	language.MustParse("nb"),
	language.Norwegian,
}

var supportedCodes = []string{"en", "fr", "nb", "nb"}

var matcher = language.NewMatcher(supported)

// MatchLanguage maps any BCP 47 tag (en-GB, fr_CA, no...) to a supported code, defaulting to en.
func MatchLanguage(lang string) string {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return "en"
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "en"
	}
	return supportedCodes[idx]
}

// Provider is the default Formatter.
type Provider struct {
	lang     string
	location *time.Location
	clock    util.Clock
	upper    cases.Caser
}

// New creates a provider for the language, rendering times in loc.
// clock drives relative dates.
func New(lang string, loc *time.Location, clock util.Clock) *Provider {
	code := MatchLanguage(lang)
	if loc == nil {
		loc = time.Local
	}
	return &Provider{
		lang:     code,
		location: loc,
		clock:    clock,
		upper:    cases.Upper(language.MustParse(code)),
	}
}

// Language returns the matched language code.
func (p *Provider) Language() string {
	return p.lang
}

// Location returns the display timezone.
func (p *Provider) Location() *time.Location {
	return p.location
}

// StateDisplay translates common states, humanizes the rest and appends the unit.
func (p *Provider) StateDisplay(sample model.RawStateSample) string {
	if t, ok := stateTexts[p.lang][sample.State]; ok {
		return t
	}
	if unit, ok := sample.Attributes["unit_of_measurement"].(string); ok && unit != "" {
		return sample.State + " " + unit
	}
	return p.capitalize(strings.ReplaceAll(sample.State, "_", " "))
}

// EntityIcon returns the icon attribute, or a default for the entity domain.
func (p *Provider) EntityIcon(sample model.RawStateSample) string {
	if icon, ok := sample.Attributes["icon"].(string); ok && icon != "" {
		return icon
	}
	if icon, ok := domainIcons[sample.Domain()]; ok {
		return icon
	}
	return defaultIcon
}

// AttributeName humanizes an attribute key, with translations for common ones.
func (p *Provider) AttributeName(_ model.RawStateSample, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if name, ok := attributeNames[p.lang][key]; ok {
		return name, true
	}
	return p.capitalize(strings.ReplaceAll(key, "_", " ")), true
}

// AttributeValue stringifies the value. URLs rendered with a link label carry the URL as href.
func (p *Provider) AttributeValue(_ model.RawStateSample, _ string, value any, linkLabel string) (string, string) {
	text := pattern.Stringify(value)
	if linkLabel != "" && isURL(text) {
		return linkLabel, text
	}
	return text, ""
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (p *Provider) capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return p.upper.String(string(r)) + s[size:]
}

const defaultIcon = "mdi:bookmark"

var domainIcons = map[string]string{
	"alarm_control_panel": "mdi:shield",
	"automation":          "mdi:robot",
	"binary_sensor":       "mdi:radiobox-blank",
	"camera":              "mdi:video",
	"climate":             "mdi:thermostat",
	"cover":               "mdi:window-shutter",
	"device_tracker":      "mdi:account",
	"fan":                 "mdi:fan",
	"input_boolean":       "mdi:toggle-switch-outline",
	"light":               "mdi:lightbulb",
	"lock":                "mdi:lock",
	"media_player":        "mdi:cast",
	"person":              "mdi:account",
	"scene":               "mdi:palette",
	"script":              "mdi:script-text",
	"sensor":              "mdi:eye",
	"sun":                 "mdi:white-balance-sunny",
	"switch":              "mdi:toggle-switch",
	"vacuum":              "mdi:robot-vacuum",
	"zone":                "mdi:map-marker-radius",
}
