package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

var now = time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)

func provider(lang string) *Provider {
	return New(lang, time.UTC, util.FixedClock{T: now})
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"en-GB", "en"},
		{"fr", "fr"},
		{"fr_CA", "fr"},
		{"nb", "nb"},
		{"no", "nb"},
		{"de", "en"},
		{"", "en"},
		{"???", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLanguage(tt.in))
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "No event on the period", provider("en").Text(TextDefaultNoEvent))
	assert.Equal(t, "Aucun événement sur la période", provider("fr").Text(TextDefaultNoEvent))
	assert.Equal(t, "Ugyldig konfigurasjon", provider("nb").Text(TextInvalidConfiguration))
	// missing nb string falls back to English
	assert.Equal(t, "showing last known timeline", provider("nb").Text(TextStale))
	assert.Equal(t, "some.key", provider("en").Text("some.key"))
}

func TestStateDisplay(t *testing.T) {
	p := provider("en")

	assert.Equal(t, "On", p.StateDisplay(model.RawStateSample{State: "on"}))
	assert.Equal(t, "Away", p.StateDisplay(model.RawStateSample{State: "not_home"}))
	assert.Equal(t, "Heat cool", p.StateDisplay(model.RawStateSample{State: "heat_cool"}))
	assert.Equal(t, "21.5 °C", p.StateDisplay(model.RawStateSample{
		State:      "21.5",
		Attributes: map[string]any{"unit_of_measurement": "°C"},
	}))
	assert.Equal(t, "Désactivé", provider("fr").StateDisplay(model.RawStateSample{State: "off"}))
	assert.Equal(t, "Élevé", provider("fr").StateDisplay(model.RawStateSample{State: "élevé"}))
}

func TestEntityIcon(t *testing.T) {
	p := provider("en")

	assert.Equal(t, "mdi:lightbulb", p.EntityIcon(model.RawStateSample{EntityID: "light.kitchen"}))
	assert.Equal(t, "mdi:fire", p.EntityIcon(model.RawStateSample{
		EntityID:   "light.kitchen",
		Attributes: map[string]any{"icon": "mdi:fire"},
	}))
	assert.Equal(t, defaultIcon, p.EntityIcon(model.RawStateSample{EntityID: "weird.thing"}))
}

func TestAttributeNameAndValue(t *testing.T) {
	p := provider("en")
	s := model.RawStateSample{}

	name, ok := p.AttributeName(s, "battery_level")
	assert.True(t, ok)
	assert.Equal(t, "Battery level", name)

	name, _ = p.AttributeName(s, "current_temperature")
	assert.Equal(t, "Current temperature", name)

	_, ok = p.AttributeName(s, "")
	assert.False(t, ok)

	text, href := p.AttributeValue(s, "url", "https://example.org/a", "open")
	assert.Equal(t, "open", text)
	assert.Equal(t, "https://example.org/a", href)

	text, href = p.AttributeValue(s, "url", "https://example.org/a", "")
	assert.Equal(t, "https://example.org/a", text)
	assert.Empty(t, href)

	text, _ = p.AttributeValue(s, "level", 42.0, "")
	assert.Equal(t, "42", text)
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2024, 3, 1, 22, 5, 9, 123000000, time.UTC)

	tests := []struct {
		name   string
		lang   string
		format string
		want   string
	}{
		{"en default", "en", "", "March 1, 2024, 10:05 PM"},
		{"fr default", "fr", "", "1 mars 2024 à 22:05"},
		{"nb default", "nb", "", "1. mars 2024 kl. 22:05"},
		{"tokens", "en", "YYYY-MM-DD HH:mm:ss.SSS", "2024-03-01 22:05:09.123"},
		{"literal", "en", "[Day] Do [of] MMMM", "Day 1st of March"},
		{"weekday", "en", "ddd dddd dd", "Fri Friday Fr"},
		{"twelve hour", "en", "hh:mm a", "10:05 pm"},
		{"named mask", "en", "isoDate", "2024-03-01"},
		{"nb weekday", "nb", "dddd", "fredag"},
		{"fr ordinal", "fr", "Do MMM", "1er mars"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, provider(tt.lang).FormatDate(at, tt.format))
		})
	}
}

func TestFormatDate_UsesLocation(t *testing.T) {
	p := New("en", time.FixedZone("CET", 3600), nil)
	at := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-02 00:30", p.FormatDate(at, "YYYY-MM-DD HH:mm"))
}

func TestFormatDate_Relative(t *testing.T) {
	assert.Equal(t, "5 minutes ago", provider("en").FormatDate(now.Add(-5*time.Minute), FormatRelative))
	assert.Equal(t, "il y a 5 minutes", provider("fr").FormatDate(now.Add(-5*time.Minute), FormatRelative))
	assert.Equal(t, "3 timer siden", provider("nb").FormatDate(now.Add(-3*time.Hour), FormatRelative))
}

func TestFormatDay(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Friday, March 1, 2024", provider("en").FormatDay(day))
	assert.Equal(t, "Vendredi 1 mars 2024", provider("fr").FormatDay(day))
}

func TestFormatDuration(t *testing.T) {
	full := config.DurationOptions{}
	one := config.DurationOptions{Largest: 1}
	semi := "; "

	tests := []struct {
		name string
		lang string
		ms   int64
		opts config.DurationOptions
		want string
	}{
		{"zero", "en", 0, one, ""},
		{"rounds seconds into minutes", "en", 2219606, one, "37 minutes"},
		{"singular", "en", 60000, one, "1 minute"},
		{"largest one carries", "en", 3940000, one, "1 hour"},
		{"largest two", "en", 3940000, config.DurationOptions{Largest: 2}, "1 hour, 6 minutes"},
		{"full", "en", 3940000, full, "1 hour, 5 minutes, 40 seconds"},
		{"delimiter", "en", 3940000, config.DurationOptions{Delimiter: &semi}, "1 hour; 5 minutes; 40 seconds"},
		{"sub second rounds up", "en", 600, one, "1 second"},
		{"sub second rounds to zero", "en", 400, one, "0 seconds"},
		{"restricted units", "en", 2 * 86400000, config.DurationOptions{Units: []string{"h", "m"}, Largest: 1}, "48 hours"},
		{"days", "en", 3*86400000 + 3600000, one, "3 days"},
		{"french", "fr", 2219606, one, "37 minutes"},
		{"french singular", "fr", 3600000, one, "1 heure"},
		{"french zero is singular", "fr", 400, one, "0 seconde"},
		{"french plural", "fr", 2 * 86400000, one, "2 jours"},
		{"norwegian", "nb", 2 * 3600000, one, "2 timer"},
		{"norwegian singular", "nb", 3600000, one, "1 time"},
		{"months", "en", 2*2629800000 + 86400000, one, "2 months"},
		{"labels", "en", 3940000, config.DurationOptions{
			Largest: 2,
			Labels:  &config.DurationLabels{Hour: "h", Minute: "min"},
		}, "1 h, 6 min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, provider(tt.lang).FormatDuration(tt.ms, tt.opts))
		})
	}
}

func TestProviderSatisfiesFormatter(t *testing.T) {
	var f Formatter = provider("en")
	assert.Equal(t, "en", f.Language())
}
