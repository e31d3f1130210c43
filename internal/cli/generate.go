package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/mlorentedev/productai/internal/panel"
	"github.com/mlorentedev/productai/internal/prompt"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		action string
		save   bool
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "generate <product-id>",
		Short: "Generate a new description without the interactive panel",
		Long: `generate streams a rewritten description for a product to stdout.
With --save the result is written back to the product.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := prompt.Parse(action)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := a.newStore()
			if err != nil {
				return err
			}
			p, err := store.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load product %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			var ind *spinner.Spinner
			if !quiet {
				ind = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				ind.Suffix = " Generating..."
				ind.Start()
			}
			pw := &draftPrinter{w: out, stop: func() {
				if ind != nil {
					ind.Stop()
				}
			}}

			pn := panel.New(p, a.newStreamer(), store, logNotifier{log: a.log}, panel.WithObserver(pw.observe))
			defer pn.Close()

			if !pn.Visible() {
				pw.stop()
				return fmt.Errorf("product %s has no description to rewrite", p.ID)
			}

			a.log.WithField("product", p.ID).WithField("action", t).Debug("generating")
			if err := pn.Select(ctx, t); err != nil {
				pw.stop()
				return err
			}
			pn.Wait()
			pw.stop()

			snap := pn.Snapshot()
			if snap.Err != nil {
				return snap.Err
			}
			fmt.Fprintln(out)

			if !save {
				return nil
			}
			return pn.Save(ctx)
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", string(prompt.FixWriting), "rewrite action (see 'panel actions')")
	cmd.Flags().BoolVarP(&save, "save", "s", false, "write the result back to the product")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress indicator")
	return cmd
}

// draftPrinter writes the new part of each streamed draft, stopping the
// progress indicator on the first chunk.
type draftPrinter struct {
	w       io.Writer
	stop    func()
	printed int
	started bool
}

func (d *draftPrinter) observe(s panel.Snapshot) {
	if s.State != panel.Streaming && s.State != panel.ReviewReady {
		return
	}
	if len(s.Draft) <= d.printed {
		return
	}
	if !d.started {
		d.stop()
		d.started = true
	}
	io.WriteString(d.w, s.Draft[d.printed:])
	d.printed = len(s.Draft)
}
