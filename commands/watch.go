package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-ha-logbook/internal/application/logbook"
	"github.com/penwyp/go-ha-logbook/internal/core/constants"
	"github.com/penwyp/go-ha-logbook/internal/presentation/display"
	"github.com/penwyp/go-ha-logbook/internal/presentation/interaction"
)

type watchOptions struct {
	refreshRate time.Duration
	noColor     bool
	noReload    bool
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Display the timeline in the terminal and keep it up to date",
		Long: `Similar to Linux top, redraws the logbook timeline on a fixed refresh
interval. The card file is reloaded when it changes; an invalid edit keeps the
previous card.

Keys:
  q   quit          r   refresh now     p   pause / resume
  e   expand collapsed items            ↑↓  scroll`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, global, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.refreshRate, "refresh-rate", 0,
		"Data refresh interval (overrides LOGBOOK_REFRESH_INTERVAL)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false,
		"Disable colors")
	cmd.Flags().BoolVar(&opts.noReload, "no-reload", false,
		"Do not reload the card file when it changes")
	return cmd
}

func (opts *watchOptions) validate() error {
	if opts.refreshRate != 0 && opts.refreshRate < constants.MinRefreshInterval {
		return fmt.Errorf("refresh-rate must be at least %s", constants.MinRefreshInterval)
	}
	return nil
}

func runWatch(cmd *cobra.Command, global *globalOptions, opts *watchOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	cfg, err := global.runConfig()
	if err != nil {
		return err
	}
	if opts.refreshRate > 0 {
		cfg.RefreshInterval = opts.refreshRate
	}
	cfg.WatchConfig = !opts.noReload

	// The screen is taken over below; logs go to the file only
	global.debug = false
	if err := global.initLogging(); err != nil {
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
	// Fail on a bad card before touching the terminal
	if err := o.Configure(); err != nil {
		return err
	}

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		return fmt.Errorf("failed to read keyboard: %w", err)
	}
	screen := display.NewTerminalDisplay(o.Formatter(), o.TimelineConfig,
		display.WithOutput(cmd.OutOrStdout()), display.WithColor(!opts.noColor))

	o.Apply(logbook.WithDisplay(screen), logbook.WithKeyboard(keyboard))

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	return o.Run(ctx)
}
