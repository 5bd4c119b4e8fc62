package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func newValidateCmd(global *globalOptions) *cobra.Command {
	var checkEntities bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a card configuration file",
		Long: `Loads and compiles the card file and prints what would be rendered.
With --check-entities, every configured entity is also looked up in Home
Assistant (or in the recorded history file).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, global, checkEntities)
		},
	}

	cmd.Flags().BoolVar(&checkEntities, "check-entities", false,
		"Look up every entity")
	return cmd
}

func runValidate(cmd *cobra.Command, global *globalOptions, checkEntities bool) error {
	out := cmd.OutOrStdout()
	path := expandPath(global.cardFile)

	tc, err := config.LoadTimeline(path)
	if err != nil {
		return err
	}
	reg := card.NewRegistry()
	if err := card.RegisterBuiltins(reg); err != nil {
		return err
	}
	if _, err := reg.New(tc); err != nil {
		return err
	}

	printCardSummary(out, path, tc)

	if !checkEntities {
		return nil
	}

	cfg, err := global.runConfig()
	if err != nil {
		return err
	}
	src, err := newSource(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout)
	defer cancel()

	if p, ok := src.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("home assistant unreachable: %w", err)
		}
	}

	missing := 0
	printf(out, "\nEntities:\n")
	for _, id := range tc.EntityIDs() {
		state, err := src.FetchState(ctx, id)
		switch {
		case err != nil:
			return fmt.Errorf("failed to look up %s: %w", id, err)
		case state == nil:
			missing++
			printf(out, "  ✗ %s (not found)\n", id)
		default:
			printf(out, "  ✓ %s (%s)\n", id, state.State)
		}
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d entities not found", missing, len(tc.Entities))
	}
	return nil
}

func printCardSummary(w io.Writer, path string, tc *config.TimelineConfig) {
	printf(w, "Card file:      %s\n", path)
	printf(w, "Type:           %s\n", tc.Kind)
	printf(w, "Period:         %s\n", tc.Lookback())
	if tc.MaxItems > 0 {
		printf(w, "Max items:      %d\n", tc.MaxItems)
	}
	printf(w, "Entities:       %d\n", len(tc.Entities))
	for _, e := range tc.Entities {
		printf(w, "  - %s", e.EntityID)
		if e.Name != "" {
			printf(w, " (%s)", e.Name)
		}
		if e.CustomLogs {
			printf(w, " +logs")
		}
		printf(w, "\n")
	}
	printf(w, "Configuration OK\n")
}
