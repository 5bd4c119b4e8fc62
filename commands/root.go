package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-ha-logbook/internal/application/logbook"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/data/hass"
	"github.com/penwyp/go-ha-logbook/internal/data/parser"
	"github.com/penwyp/go-ha-logbook/internal/presentation/formatter"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

const (
	defaultLogFile  = "~/.go-ha-logbook/logs/app.log"
	defaultCardFile = "logbook.yaml"
)

// globalOptions are the flags shared by every command
type globalOptions struct {
	// Card configuration
	cardFile string

	// Home Assistant connection
	haURL   string
	haToken string
	timeout time.Duration

	// Recorded responses
	historyFile string
	logbookFile string

	// Display
	timezone string
	language string

	// Logging
	debug     bool
	logFile   string
	logLevel  string
	logFormat string
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "go-ha-logbook [flags]",
		Short: "Home Assistant logbook timeline",
		Long: `go-ha-logbook renders the history of Home Assistant entities as a logbook
timeline: state intervals with durations, merged with custom logbook entries.

The card is described by a YAML file using the logbook-card options. Data comes
from a live Home Assistant instance (LOGBOOK_HA_URL / LOGBOOK_HA_TOKEN) or from
recorded API responses.

Examples:
  go-ha-logbook -c kitchen.yaml                          # Print the timeline once
  go-ha-logbook -c kitchen.yaml -o json                  # Print it as JSON
  go-ha-logbook -c kitchen.yaml --history-file h.json    # Use a recorded history
  go-ha-logbook watch -c kitchen.yaml                    # Refresh in the terminal
  go-ha-logbook serve -c kitchen.yaml --listen :8099     # Serve over HTTP`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts, outputFormat)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.cardFile, "config", "c", defaultCardFile,
		"Card configuration file (YAML)")
	flags.StringVar(&opts.haURL, "ha-url", "",
		"Home Assistant base url (overrides LOGBOOK_HA_URL)")
	flags.StringVar(&opts.haToken, "token", "",
		"Long-lived access token (overrides LOGBOOK_HA_TOKEN)")
	flags.DurationVar(&opts.timeout, "timeout", 0,
		"HTTP timeout (overrides LOGBOOK_HTTP_TIMEOUT)")
	flags.StringVar(&opts.historyFile, "history-file", "",
		"Recorded history response used instead of Home Assistant")
	flags.StringVar(&opts.logbookFile, "logbook-file", "",
		"Recorded logbook response used instead of Home Assistant")
	flags.StringVar(&opts.timezone, "timezone", "",
		"Timezone setting (e.g., Europe/Paris, UTC)")
	flags.StringVar(&opts.language, "language", "",
		"Display language (en, fr, nb)")
	flags.BoolVar(&opts.debug, "debug", false,
		"Enable debug mode")
	flags.StringVar(&opts.logFile, "log-file", "",
		"Log file path (default "+defaultLogFile+")")
	flags.StringVar(&opts.logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", string(util.FormatText),
		"Log format (text, json)")

	cmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.FormatTable,
		"Output format ("+strings.Join(formatter.Formats(), ", ")+")")

	cmd.AddCommand(
		newWatchCmd(opts),
		newServeCmd(opts),
		newValidateCmd(opts),
		newCardsCmd(),
	)
	return cmd
}

func Execute() error {
	return rootCmd.Execute()
}

func runOnce(cmd *cobra.Command, opts *globalOptions, outputFormat string) error {
	cfg, err := opts.runConfig()
	if err != nil {
		return err
	}
	if err := opts.initLogging(); err != nil {
		return err
	}

	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	o, err := logbook.NewOrchestrator(cfg, src)
	if err != nil {
		return err
	}
	defer o.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	result, err := o.RunOnce(ctx)
	if err != nil {
		return err
	}

	out, err := formatter.New(outputFormat, o.TimelineConfig(), o.Formatter())
	if err != nil {
		return err
	}
	return out.Format(cmd.OutOrStdout(), result)
}

// runConfig merges the LOGBOOK_* environment with the flags; flags win.
func (opts *globalOptions) runConfig() (*logbook.RunConfig, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	cfg := &logbook.RunConfig{
		CardFile:        expandPath(opts.cardFile),
		HAURL:           firstNonEmpty(opts.haURL, env.HAURL),
		HAToken:         firstNonEmpty(opts.haToken, env.HAToken),
		Timezone:        firstNonEmpty(opts.timezone, env.Timezone),
		Language:        firstNonEmpty(opts.language, env.Language),
		RefreshInterval: env.RefreshInterval,
		HTTPTimeout:     env.HTTPTimeout,
	}
	if opts.timeout > 0 {
		cfg.HTTPTimeout = opts.timeout
	}
	if opts.historyFile != "" {
		cfg.HistoryFile = expandPath(opts.historyFile)
	}
	if opts.logbookFile != "" {
		cfg.LogbookFile = expandPath(opts.logbookFile)
	}
	if opts.logLevel == "" {
		opts.logLevel = env.LogLevel
	}
	if opts.logFile == "" {
		opts.logFile = env.LogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogging writes to the log file; --debug mirrors to stderr.
func (opts *globalOptions) initLogging() error {
	level := opts.logLevel
	if level == "" {
		level = "info"
	}
	if opts.debug {
		level = "debug"
	}

	logFile := expandPath(firstNonEmpty(opts.logFile, defaultLogFile))
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	format := util.LogFormat(opts.logFormat)
	if format != util.FormatJSON {
		format = util.FormatText
	}
	return util.InitLogger(level, logFile, opts.debug, format)
}

// newSource picks the recorded files when given, the live API otherwise.
func newSource(cfg *logbook.RunConfig) (logbook.Source, error) {
	if cfg.Recorded() {
		util.LogDebug("Using recorded responses",
			util.F("history_file", cfg.HistoryFile),
			util.F("logbook_file", cfg.LogbookFile))
		return parser.NewParser(cfg.HistoryFile, cfg.LogbookFile), nil
	}
	return hass.NewClient(hass.Config{
		BaseURL: cfg.HAURL,
		Token:   cfg.HAToken,
		Timeout: cfg.HTTPTimeout,
	})
}

// signalContext is cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

// Helper functions

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
