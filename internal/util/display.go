package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorGray    = "\033[90m"
	ColorBold    = "\033[1m"

	ClearScreen          = "\033[2J"
	ClearLine            = "\033[2K"
	MoveCursorHome       = "\033[H"
	HideCursor           = "\033[?25l"
	ShowCursor           = "\033[?25h"
	EnterAlternateScreen = "\033[?1049h"
	ExitAlternateScreen  = "\033[?1049l"
)

// namedColors maps the CSS color names commonly used in icon_color to ANSI codes
var namedColors = map[string]string{
	"red":     ColorRed,
	"green":   ColorGreen,
	"yellow":  ColorYellow,
	"orange":  ColorYellow,
	"amber":   ColorYellow,
	"blue":    ColorBlue,
	"cyan":    ColorCyan,
	"purple":  ColorMagenta,
	"magenta": ColorMagenta,
	"grey":    ColorGray,
	"gray":    ColorGray,
}

// GetDisplayWidth calculates the display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads text with spaces to the given display width, truncating with an ellipsis when too wide
func PadRight(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) > width {
		return runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}

// Colorize wraps text in the ANSI color matching a CSS color name; unknown colors return text unchanged
func Colorize(text, color string) string {
	code, ok := namedColors[strings.ToLower(strings.TrimSpace(color))]
	if !ok {
		return text
	}
	return code + text + ColorReset
}

// FormatHeaderTitle formats main header titles (Magenta + Bold)
func FormatHeaderTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorMagenta, title, ColorReset)
}

// FormatDayTitle formats day group headers (Cyan + Bold)
func FormatDayTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorCyan, title, ColorReset)
}

// FormatSeparator creates a separator line of the given width
func FormatSeparator(width int) string {
	if width <= 0 {
		width = 40
	}
	return ColorGray + strings.Repeat("─", width) + ColorReset
}

// CenterText centers text within the given display width
func CenterText(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return runewidth.Truncate(text, width, "")
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-w)
}
