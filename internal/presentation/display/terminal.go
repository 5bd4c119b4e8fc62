package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/presentation/formatter"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// ConfigFunc returns the configuration of the card being displayed. It is
// asked on every render so a reloaded card takes effect immediately.
type ConfigFunc func() *config.TimelineConfig

// TerminalDisplay draws the timeline of watch mode
type TerminalDisplay struct {
	out    io.Writer
	locale formatter.DateFormatter
	config ConfigFunc
	size   func() (int, int)
	color  bool

	mu                sync.Mutex
	inAlternateScreen bool
}

// Option customizes a TerminalDisplay
type Option func(*TerminalDisplay)

// WithOutput writes to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(td *TerminalDisplay) { td.out = w }
}

// WithSize fixes the terminal size
func WithSize(width, height int) Option {
	return func(td *TerminalDisplay) {
		td.size = func() (int, int) { return width, height }
	}
}

// WithColor enables or disables ANSI colors
func WithColor(enabled bool) Option {
	return func(td *TerminalDisplay) { td.color = enabled }
}

func NewTerminalDisplay(f formatter.DateFormatter, cfg ConfigFunc, opts ...Option) *TerminalDisplay {
	td := &TerminalDisplay{
		out:    os.Stdout,
		locale: f,
		config: cfg,
		size:   stdoutSize,
		color:  true,
	}
	for _, opt := range opts {
		opt(td)
	}
	return td
}

func stdoutSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth, defaultHeight
	}
	return width, height
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAlternateScreen+util.ClearScreen+util.MoveCursorHome+util.HideCursor)
	td.inAlternateScreen = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome+util.ShowCursor+util.ExitAlternateScreen)
	td.inAlternateScreen = false
}

// Render redraws the whole screen
func (td *TerminalDisplay) Render(result *card.Result, state model.InteractionState) {
	td.mu.Lock()
	defer td.mu.Unlock()

	width, height := td.size()

	var b strings.Builder
	b.WriteString(util.MoveCursorHome)
	b.WriteString(util.ClearScreen)

	cfg := td.config()
	if result == nil || cfg == nil {
		td.renderLoadingScreen(&b, state, width)
	} else {
		td.renderTimeline(&b, result, cfg, state, width, height)
	}

	io.WriteString(td.out, b.String())
}

func (td *TerminalDisplay) renderTimeline(b *strings.Builder, result *card.Result, cfg *config.TimelineConfig, state model.InteractionState, width, height int) {
	table := formatter.NewTableFormatter(formatter.NewView(cfg, td.locale), formatter.TableOptions{
		Color:    td.color,
		Expanded: state.Expanded,
		Width:    width,
		Offset:   state.ScrollOffset,
	})

	var body strings.Builder
	if err := table.Format(&body, result); err != nil {
		util.LogError("Failed to render timeline", util.F("error", err.Error()))
	}

	// keep the status bar on screen
	lines := strings.Split(strings.TrimRight(body.String(), "\n"), "\n")
	if limit := height - 3; limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(td.statusLine(state))
}

// statusLine summarizes refresh state and the key bindings
func (td *TerminalDisplay) statusLine(state model.InteractionState) string {
	var parts []string

	if !state.LastUpdated.IsZero() {
		parts = append(parts, "Updated "+td.locale.FormatDate(state.LastUpdated, locale.FormatRelative))
	}
	switch {
	case state.IsPaused:
		parts = append(parts, td.paint("PAUSED", util.ColorYellow))
	case state.IsLoading:
		parts = append(parts, td.paint("refreshing…", util.ColorGray))
	}
	if state.LastError != "" {
		parts = append(parts, td.paint(fmt.Sprintf("%s (%s)", state.LastError, td.locale.Text(locale.TextStale)), util.ColorRed))
	}
	parts = append(parts, td.paint("q quit · r refresh · p pause · e expand · ↑↓ scroll", util.ColorGray))

	return strings.Join(parts, "  ")
}

func (td *TerminalDisplay) paint(text, color string) string {
	if !td.color {
		return text
	}
	return color + text + util.ColorReset
}

// renderLoadingScreen displays a loading message with animation
func (td *TerminalDisplay) renderLoadingScreen(b *strings.Builder, state model.InteractionState, width int) {
	boxWidth := 50
	padding := 0
	if width > boxWidth {
		padding = (width - boxWidth) / 2
	}
	indent := strings.Repeat(" ", padding)

	message := state.LoadingMessage
	if message == "" {
		message = "Loading data..."
	}
	if state.LastError != "" {
		message = state.LastError
	}

	loadingChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	animIndex := int(time.Now().Unix() % int64(len(loadingChars)))
	animated := fmt.Sprintf("%s %s", loadingChars[animIndex], message)

	inner := boxWidth - 2
	b.WriteString("\r\n\r\n")
	fmt.Fprintf(b, "%s╔%s╗\r\n", indent, strings.Repeat("═", inner))
	fmt.Fprintf(b, "%s║%s║\r\n", indent, util.CenterText("Home Assistant Logbook", inner))
	fmt.Fprintf(b, "%s╠%s╣\r\n", indent, strings.Repeat("═", inner))
	fmt.Fprintf(b, "%s║%s║\r\n", indent, strings.Repeat(" ", inner))
	fmt.Fprintf(b, "%s║%s║\r\n", indent, util.CenterText(animated, inner))
	fmt.Fprintf(b, "%s║%s║\r\n", indent, strings.Repeat(" ", inner))
	fmt.Fprintf(b, "%s║%s║\r\n", indent, util.CenterText("Press 'q' to quit", inner))
	fmt.Fprintf(b, "%s╚%s╝\r\n", indent, strings.Repeat("═", inner))
}
