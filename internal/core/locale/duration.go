package locale

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
)

// DefaultDurationUnits are used when the card does not restrict units.
var DefaultDurationUnits = []string{"y", "mo", "w", "d", "h", "m", "s"}

const (
	defaultDelimiter = ", "
	spacer           = " "
)

// Unit lengths in milliseconds. A year is 365.25 days and a month a twelfth of it.
var unitMeasures = map[string]float64{
	"y":  31557600000,
	"mo": 2629800000,
	"w":  604800000,
	"d":  86400000,
	"h":  3600000,
	"m":  60000,
	"s":  1000,
	"ms": 1,
}

type unitWords struct {
	one, many string
}

// Unit words per language; the plural form is picked by CLDR cardinal rules.
var durationWords = map[string]map[string]unitWords{
	"en": {
		"y": {"year", "years"}, "mo": {"month", "months"}, "w": {"week", "weeks"},
		"d": {"day", "days"}, "h": {"hour", "hours"}, "m": {"minute", "minutes"},
		"s": {"second", "seconds"}, "ms": {"millisecond", "milliseconds"},
	},
	"fr": {
		"y": {"an", "ans"}, "mo": {"mois", "mois"}, "w": {"semaine", "semaines"},
		"d": {"jour", "jours"}, "h": {"heure", "heures"}, "m": {"minute", "minutes"},
		"s": {"seconde", "secondes"}, "ms": {"milliseconde", "millisecondes"},
	},
	"nb": {
		"y": {"år", "år"}, "mo": {"måned", "måneder"}, "w": {"uke", "uker"},
		"d": {"dag", "dager"}, "h": {"time", "timer"}, "m": {"minutt", "minutter"},
		"s": {"sekund", "sekunder"}, "ms": {"millisekund", "millisekunder"},
	},
}

type durationPiece struct {
	unit  string
	count float64
}

// FormatDuration humanizes a millisecond duration: "37 minutes",
// "1 hour, 5 minutes". Non-positive durations render as "".
func (p *Provider) FormatDuration(ms int64, opts config.DurationOptions) string {
	if ms <= 0 {
		return ""
	}

	units := opts.Units
	if len(units) == 0 {
		units = DefaultDurationUnits
	}
	delimiter := defaultDelimiter
	if opts.Delimiter != nil {
		delimiter = *opts.Delimiter
	}

	pieces := splitDuration(float64(ms), units)
	roundPieces(pieces, opts.Largest)

	var parts []string
	for _, piece := range pieces {
		if piece.count != 0 {
			parts = append(parts, p.renderPiece(piece, opts.Labels))
		}
		if opts.Largest > 0 && len(parts) == opts.Largest {
			break
		}
	}
	if len(parts) == 0 {
		return p.renderPiece(durationPiece{unit: units[len(units)-1]}, opts.Labels)
	}
	return strings.Join(parts, delimiter)
}

// splitDuration floors every unit but the last, which keeps the remainder.
func splitDuration(ms float64, units []string) []durationPiece {
	pieces := make([]durationPiece, len(units))
	for i, unit := range units {
		measure := unitMeasures[unit]
		count := ms / measure
		if i+1 < len(units) {
			count = math.Floor(count)
		}
		pieces[i] = durationPiece{unit: unit, count: count}
		ms -= count * measure
	}
	return pieces
}

// roundPieces rounds from the smallest unit up, carrying whole multiples and
// anything below the largest-th occupied unit into the next larger unit.
func roundPieces(pieces []durationPiece, largest int) {
	firstOccupied := 0
	for i, piece := range pieces {
		if piece.count != 0 {
			firstOccupied = i
			break
		}
	}

	for i := len(pieces) - 1; i >= 0; i-- {
		pieces[i].count = math.Round(pieces[i].count)
		if i == 0 {
			break
		}
		prev := &pieces[i-1]
		ratio := unitMeasures[prev.unit] / unitMeasures[pieces[i].unit]
		if math.Mod(pieces[i].count, ratio) == 0 || (largest > 0 && largest-1 < i-firstOccupied) {
			prev.count += pieces[i].count / ratio
			pieces[i].count = 0
		}
	}
}

// renderPiece renders one unit. Counts are whole numbers once rounded.
func (p *Provider) renderPiece(piece durationPiece, labels *config.DurationLabels) string {
	n := int64(piece.count)
	count := strconv.FormatInt(n, 10)

	if labels != nil {
		return count + spacer + shortLabel(piece.unit, labels)
	}

	words := durationWords[p.lang][piece.unit]
	tag := language.Make(p.lang)
	if plural.Cardinal.MatchPlural(tag, int(n), 0, 0, 0, 0) == plural.One {
		return count + spacer + words.one
	}
	return count + spacer + words.many
}

// shortLabel returns the configured label for a unit, or its short symbol.
func shortLabel(unit string, labels *config.DurationLabels) string {
	pick := func(label, fallback string) string {
		if label != "" {
			return label
		}
		return fallback
	}
	switch unit {
	case "mo":
		return pick(labels.Month, unit)
	case "w":
		return pick(labels.Week, unit)
	case "d":
		return pick(labels.Day, unit)
	case "h":
		return pick(labels.Hour, unit)
	case "m":
		return pick(labels.Minute, unit)
	case "s":
		return pick(labels.Second, unit)
	}
	return unit
}
