package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/penwyp/go-ha-logbook/internal/application/logbook"
	"github.com/penwyp/go-ha-logbook/internal/core/constants"
	"github.com/penwyp/go-ha-logbook/internal/observability/metrics"
	"github.com/penwyp/go-ha-logbook/internal/presentation/api"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

type serveOptions struct {
	listen      string
	refreshRate time.Duration
	noReload    bool
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline over HTTP",
		Long: `Runs the refresh cycle in the background and serves the latest timeline.

Endpoints:
  GET /api/timeline   latest rendered timeline (JSON)
  GET /api/cards      registered card types
  GET /healthz        liveness and last refresh error
  GET /metrics        Prometheus metrics
  GET /ws             websocket pushing every new timeline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", constants.DefaultListenAddr,
		"HTTP listen address")
	cmd.Flags().DurationVar(&opts.refreshRate, "refresh-rate", 0,
		"Data refresh interval (overrides LOGBOOK_REFRESH_INTERVAL)")
	cmd.Flags().BoolVar(&opts.noReload, "no-reload", false,
		"Do not reload the card file when it changes")
	return cmd
}

func (opts *serveOptions) validate() error {
	if opts.listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if opts.refreshRate != 0 && opts.refreshRate < constants.MinRefreshInterval {
		return fmt.Errorf("refresh-rate must be at least %s", constants.MinRefreshInterval)
	}
	return nil
}

func runServe(cmd *cobra.Command, global *globalOptions, opts *serveOptions) error {
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

	if err := global.initLogging(); err != nil {
		return err
	}
	metrics.Init()

	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	o, err := logbook.NewOrchestrator(cfg, src)
	if err != nil {
		return err
	}
	if err := o.Configure(); err != nil {
		return err
	}

	server := api.NewServer(o.State(), o.Cards())

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return o.Run(ctx)
	})
	g.Go(func() error {
		return server.ListenAndServe(ctx, opts.listen)
	})

	util.LogInfo("Serving timeline", util.F("addr", opts.listen), util.F("card", cfg.CardFile))
	return g.Wait()
}
