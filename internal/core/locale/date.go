package locale

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatRelative is the date_format value that renders "3 minutes ago" style dates.
const FormatRelative = "relative"

// Named masks accepted in date_format.
var namedMasks = map[string]string{
	"default":     "ddd MMM DD YYYY HH:mm:ss",
	"shortDate":   "M/D/YY",
	"mediumDate":  "MMM D, YYYY",
	"longDate":    "MMMM D, YYYY",
	"fullDate":    "dddd, MMMM D, YYYY",
	"shortTime":   "HH:mm",
	"mediumTime":  "HH:mm:ss",
	"longTime":    "HH:mm:ss.SSS",
	"isoDate":     "YYYY-MM-DD",
	"isoDateTime": "YYYY-MM-DDTHH:mm:ssZ",
}

// Layouts used when no date_format is configured
var defaultMasks = map[string]string{
	"en": "MMMM D, YYYY, h:mm A",
	"fr": "D MMMM YYYY [à] HH:mm",
	"nb": "D. MMMM YYYY [kl.] HH:mm",
}

var dayMasks = map[string]string{
	"en": "dddd, MMMM D, YYYY",
	"fr": "dddd D MMMM YYYY",
	"nb": "dddd D. MMMM YYYY",
}

var tokenRe = regexp.MustCompile(`\[([^\]]*)\]|d{1,4}|M{1,4}|YYYY|YY|S{1,3}|Do|ZZ|Z|DD?|HH?|hh?|mm?|ss?|[aA]`)

type calendar struct {
	months      [12]string
	shortMonths [12]string
	days        [7]string
	shortDays   [7]string
}

var calendars = map[string]calendar{
	"en": {
		months:      [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		shortMonths: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		days:        [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		shortDays:   [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	},
	"fr": {
		months:      [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		shortMonths: [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		days:        [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		shortDays:   [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
	},
	"nb": {
		months:      [12]string{"januar", "februar", "mars", "april", "mai", "juni", "juli", "august", "september", "oktober", "november", "desember"},
		shortMonths: [12]string{"jan.", "feb.", "mar.", "apr.", "mai", "jun.", "jul.", "aug.", "sep.", "okt.", "nov.", "des."},
		days:        [7]string{"søndag", "mandag", "tirsdag", "onsdag", "torsdag", "fredag", "lørdag"},
		shortDays:   [7]string{"søn.", "man.", "tir.", "ons.", "tor.", "fre.", "lør."},
	},
}

// FormatDate renders t in the provider's timezone. An empty format uses the
// locale default, "relative" renders relative to the clock, anything else is
// a token mask or a named mask.
func (p *Provider) FormatDate(t time.Time, format string) string {
	if format == FormatRelative {
		return p.relative(t)
	}
	if format == "" {
		format = defaultMasks[p.lang]
	}
	if named, ok := namedMasks[format]; ok {
		format = named
	}
	return p.formatMask(t.In(p.location), format)
}

// FormatDay renders a day header for grouped timelines.
func (p *Provider) FormatDay(t time.Time) string {
	return p.capitalize(p.formatMask(t.In(p.location), dayMasks[p.lang]))
}

func (p *Provider) formatMask(t time.Time, mask string) string {
	cal := calendars[p.lang]
	return tokenRe.ReplaceAllStringFunc(mask, func(tok string) string {
		if strings.HasPrefix(tok, "[") {
			return tok[1 : len(tok)-1]
		}
		return p.token(t, tok, cal)
	})
}

func (p *Provider) token(t time.Time, tok string, cal calendar) string {
	switch tok {
	case "D":
		return strconv.Itoa(t.Day())
	case "DD":
		return fmt.Sprintf("%02d", t.Day())
	case "Do":
		return p.ordinal(t.Day())
	case "d":
		return strconv.Itoa(int(t.Weekday()))
	case "dd":
		return string([]rune(cal.shortDays[t.Weekday()])[:2])
	case "ddd":
		return cal.shortDays[t.Weekday()]
	case "dddd":
		return cal.days[t.Weekday()]
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "MM":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "MMM":
		return cal.shortMonths[t.Month()-1]
	case "MMMM":
		return cal.months[t.Month()-1]
	case "YY":
		return fmt.Sprintf("%02d", t.Year()%100)
	case "YYYY":
		return fmt.Sprintf("%04d", t.Year())
	case "h":
		return strconv.Itoa(hour12(t))
	case "hh":
		return fmt.Sprintf("%02d", hour12(t))
	case "H":
		return strconv.Itoa(t.Hour())
	case "HH":
		return fmt.Sprintf("%02d", t.Hour())
	case "m":
		return strconv.Itoa(t.Minute())
	case "mm":
		return fmt.Sprintf("%02d", t.Minute())
	case "s":
		return strconv.Itoa(t.Second())
	case "ss":
		return fmt.Sprintf("%02d", t.Second())
	case "S":
		return strconv.Itoa(t.Nanosecond() / 100000000)
	case "SS":
		return fmt.Sprintf("%02d", t.Nanosecond()/10000000)
	case "SSS":
		return fmt.Sprintf("%03d", t.Nanosecond()/1000000)
	case "a":
		if t.Hour() < 12 {
			return "am"
		}
		return "pm"
	case "A":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case "Z":
		return t.Format("-0700")
	case "ZZ":
		return t.Format("-07:00")
	}
	return tok
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}

func (p *Provider) ordinal(day int) string {
	switch p.lang {
	case "fr":
		if day == 1 {
			return "1er"
		}
		return strconv.Itoa(day)
	case "nb":
		return strconv.Itoa(day) + "."
	}
	return humanize.Ordinal(day)
}

func (p *Provider) relative(t time.Time) string {
	now := time.Now()
	if p.clock != nil {
		now = p.clock.Now()
	}
	switch p.lang {
	case "fr":
		return humanize.CustomRelTime(t, now, "il y a", "dans", frMagnitudes)
	case "nb":
		return humanize.CustomRelTime(t, now, "siden", "fra nå", nbMagnitudes)
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

var frMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "maintenant", DivBy: time.Second},
	{D: 2 * time.Second, Format: "%s 1 seconde", DivBy: 1},
	{D: time.Minute, Format: "%s %d secondes", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "%s 1 minute", DivBy: 1},
	{D: time.Hour, Format: "%s %d minutes", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "%s 1 heure", DivBy: 1},
	{D: humanize.Day, Format: "%s %d heures", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "%s 1 jour", DivBy: 1},
	{D: humanize.Week, Format: "%s %d jours", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "%s 1 semaine", DivBy: 1},
	{D: humanize.Month, Format: "%s %d semaines", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "%s 1 mois", DivBy: 1},
	{D: humanize.Year, Format: "%s %d mois", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "%s 1 an", DivBy: 1},
	{D: humanize.LongTime, Format: "%s %d ans", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "%s très longtemps", DivBy: 1},
}

var nbMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "nå", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 sekund %s", DivBy: 1},
	{D: time.Minute, Format: "%d sekunder %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minutt %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutter %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 time %s", DivBy: 1},
	{D: humanize.Day, Format: "%d timer %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 dag %s", DivBy: 1},
	{D: humanize.Week, Format: "%d dager %s", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "1 uke %s", DivBy: 1},
	{D: humanize.Month, Format: "%d uker %s", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "1 måned %s", DivBy: 1},
	{D: humanize.Year, Format: "%d måneder %s", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "1 år %s", DivBy: 1},
	{D: humanize.LongTime, Format: "%d år %s", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "lenge %s", DivBy: 1},
}
