package commands

import (
	"github.com/spf13/cobra"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

func newCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List the available card types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := card.NewRegistry()
			if err := card.RegisterBuiltins(reg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			infos := reg.List()
			width := len("TYPE")
			for _, info := range infos {
				if w := util.GetDisplayWidth(string(info.Kind)); w > width {
					width = w
				}
			}

			printf(out, "%s  %s\n", util.PadRight("TYPE", width), "DESCRIPTION")
			for _, info := range infos {
				printf(out, "%s  %s\n", util.PadRight(string(info.Kind), width), info.Description)
			}
			return nil
		},
	}
}
