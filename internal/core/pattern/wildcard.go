// Package pattern compiles the glob-like patterns used throughout the card
// configuration into anchored matchers.
package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

var starRun = regexp.MustCompile(`\*+`)

// Matcher tests candidates against a compiled wildcard pattern.
// A nil *Matcher is valid and never matches.
type Matcher struct {
	source string
	re     *regexp.Regexp
}

// Compile turns a wildcard pattern into a Matcher. Runs of '*' match any
// sequence (including the empty one); everything else is literal.
func Compile(p string) *Matcher {
	segments := starRun.Split(p, -1)
	for i, s := range segments {
		segments[i] = regexp.QuoteMeta(s)
	}
	expr := "(?s)^" + strings.Join(segments, ".*") + "$"
	return &Matcher{source: p, re: regexp.MustCompile(expr)}
}

// CompileOptional compiles p when it is set and returns nil otherwise.
func CompileOptional(p *string) *Matcher {
	if p == nil {
		return nil
	}
	return Compile(*p)
}

// Test reports whether candidate fully matches the pattern.
func (m *Matcher) Test(candidate string) bool {
	if m == nil {
		return false
	}
	return m.re.MatchString(candidate)
}

// String returns the source pattern.
func (m *Matcher) String() string {
	if m == nil {
		return ""
	}
	return m.source
}

// MarshalText renders the source pattern, so compiled configs serialize readably.
func (m *Matcher) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

var slashReplacer = strings.NewReplacer(
	`\`, `\\`,
	"\b", `\b`,
	"\t", `\t`,
	"\n", `\n`,
	"\f", `\f`,
	"\r", `\r`,
	`'`, `\'`,
	`"`, `\"`,
)

// EscapeSlashes stringifies v and escapes backslashes, control characters and quotes
// the way they would be embedded in a quoted string literal.
func EscapeSlashes(v any) string {
	return slashReplacer.Replace(Stringify(v))
}

// Stringify renders an attribute or state value as text. nil becomes "null";
// numbers use their shortest exact decimal form.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t)
	case fmt.Stringer:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		if data, err := sonic.ConfigStd.MarshalToString(t); err == nil {
			return data
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
