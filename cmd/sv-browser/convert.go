package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uconn-ofc/sv-browser/internal/refdata"
)

func newConvertCmd() *cobra.Command {
	var inputPath, outputPath string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the SQLite reference database to a DuckDB snapshot",
		Long: `Copy the genes, phenotype and structural variant tables of the SQLite
reference database into a DuckDB file that can be served with store.driver=duckdb.`,
		Example: `  sv-browser convert --input data/ofc.db --output data/ofc.duckdb`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				inputPath = viper.GetString("store.path")
			}
			if outputPath == "" {
				return usageError{fmt.Errorf("--output is required")}
			}
			if filepath.Ext(outputPath) != ".duckdb" {
				outputPath += ".duckdb"
			}

			if _, err := os.Stat(outputPath); err == nil {
				if err := os.Remove(outputPath); err != nil {
					return fmt.Errorf("remove existing output: %w", err)
				}
			}

			src, err := refdata.Open(refdata.DriverSQLite, inputPath, refdata.ReadOnly())
			if err != nil {
				return err
			}
			defer src.Close()

			dst, err := refdata.Open(refdata.DriverDuckDB, outputPath)
			if err != nil {
				return err
			}
			defer dst.Close()

			start := time.Now()
			stats, err := src.CopyTo(cmd.Context(), dst)
			if err != nil {
				return fmt.Errorf("convert %s: %w", inputPath, err)
			}

			errOut := cmd.ErrOrStderr()
			names := make([]string, 0, len(stats))
			for name := range stats {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(errOut, "  %-16s %d rows\n", name, stats[name])
			}
			fmt.Fprintf(errOut, "Wrote %d rows to %s in %s\n", stats.Total(), outputPath, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input SQLite database (default: store.path)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file path")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var outputPath, driver string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the demo cohort to a new reference database",
		Long: `Create a reference database holding a small demo cohort: two families
with structural variants around IRF6 and a handful of candidate genes.`,
		Example: `  sv-browser seed --output data/ofc.db`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				return usageError{fmt.Errorf("--output is required")}
			}
			if _, err := os.Stat(outputPath); err == nil {
				return fmt.Errorf("%s already exists", outputPath)
			}
			if dir := filepath.Dir(outputPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}

			s, err := refdata.Open(driver, outputPath)
			if err != nil {
				return err
			}
			defer s.Close()

			ds := refdata.DemoDataset()
			if err := s.Load(cmd.Context(), ds); err != nil {
				return fmt.Errorf("seed %s: %w", outputPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d genes, %d members and %d variants to %s\n",
				len(ds.Genes), len(ds.Members), len(ds.Variants)+len(ds.Background), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output database path")
	cmd.Flags().StringVar(&driver, "db-driver", refdata.DriverSQLite, "Database driver: sqlite or duckdb")
	return cmd
}
