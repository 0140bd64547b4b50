package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uconn-ofc/sv-browser/internal/output"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
)

func newStatsCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats <summary|sizes|chromosomes|top>",
		Short: "Print cohort structural variant statistics",
		Long: `Print statistics over the cohort and background variant calls.

  summary      calls per type, children with calls, carriers per sex
  sizes        type and length of every call
  chromosomes  calls per chromosome for mothers, fathers, children and background
  top          child variants ranked by number of calls`,
		Example: `  sv-browser stats summary
  sv-browser stats top --limit 5 --json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"summary", "sizes", "chromosomes", "top"},
		RunE: func(cmd *cobra.Command, args []string) error {
			stat := args[0]
			switch stat {
			case "summary", "sizes", "chromosomes", "top":
			default:
				return usageError{fmt.Errorf("unknown statistic %q", stat)}
			}
			if limit <= 0 {
				return usageError{fmt.Errorf("--limit must be positive")}
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			tw := output.NewTabWriter(cmd.OutOrStdout())
			var (
				result any
				table  func() error
			)
			switch stat {
			case "summary":
				sum, err := a.store.Summary(ctx)
				if err != nil {
					return err
				}
				result, table = sum, func() error { return tw.WriteSummary(sum) }
			case "sizes":
				points, err := a.store.SizeDistribution(ctx)
				if err != nil {
					return err
				}
				result, table = points, func() error { return tw.WriteSizes(points) }
			case "chromosomes":
				counts, err := a.store.ChromosomeDistribution(ctx)
				if err != nil {
					return err
				}
				result, table = counts, func() error { return tw.WriteChromCounts(counts) }
			case "top":
				top, err := a.store.TopChildVariants(ctx, limit)
				if err != nil {
					return err
				}
				result, table = top, func() error { return tw.WriteTopVariants(top) }
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			return table()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", refdata.DefaultTopVariants, "Number of ranked variants for top")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
