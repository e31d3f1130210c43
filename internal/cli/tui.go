package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mlorentedev/productai/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <product-id>",
		Short: "Open the interactive panel for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.newStore()
			if err != nil {
				return err
			}
			p, err := store.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load product %s: %w", args[0], err)
			}

			// The program owns the terminal; keep log lines off it.
			if !a.debug {
				a.log.SetOutput(io.Discard)
			}
			return tui.Run(ctx, tui.New(ctx, p, a.newStreamer(), store))
		},
	}
}
