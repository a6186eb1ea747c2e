package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"pomotimer/internal/tracker"
)

func newPatternsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the breathing patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return printPatterns(cmd.OutOrStdout(), cfg.Breathing.Pattern, cfg.Breathing.Duration())
		},
	}
}

var phaseOrder = []tracker.Phase{
	tracker.PhaseInhale,
	tracker.PhaseHold,
	tracker.PhaseExhale,
	tracker.PhaseRest,
	tracker.PhaseTransition,
}

func printPatterns(out io.Writer, current tracker.Pattern, total time.Duration) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tKEY\tNAME\tPHASES\tCYCLE\tCYCLES")

	for _, p := range tracker.Patterns() {
		marker := ""
		if p == current {
			marker = "*"
		}

		var phases []string
		for _, ph := range phaseOrder {
			if d := p.PhaseDuration(ph); d > 0 {
				phases = append(phases, fmt.Sprintf("%s %s", ph, d))
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			marker, p, p.Name(), strings.Join(phases, ", "),
			p.CycleDuration(), tracker.CyclesForDuration(p, total))
	}

	return w.Flush()
}
