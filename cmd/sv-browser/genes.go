package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/output"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGenesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genes",
		Short: "Look up genes",
	}
	cmd.AddCommand(newGenesSearchCmd(), newGenesGetCmd())
	return cmd
}

func newGenesSearchCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "search <fragment>",
		Short:   "Search genes by name fragment",
		Example: "  sv-browser genes search irf",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			genes, err := a.genes.SearchGenes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), genes)
			}
			return output.NewTabWriter(cmd.OutOrStdout()).WriteGenes(genes)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newGenesGetCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one gene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			g, err := a.genes.FindGeneByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), g)
			}
			return output.NewTabWriter(cmd.OutOrStdout()).WriteGenes([]genome.Gene{g})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
