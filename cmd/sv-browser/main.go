// Package main provides the sv-browser command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uconn-ofc/sv-browser/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

// usageError marks errors caused by bad arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sv-browser",
		Short: "Structural variant browser for orofacial cleft families",
		Long: `sv-browser resolves genome viewer regions and annotation tracks for
structural variants in an orofacial cleft cohort, and serves them over a JSON API.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ~/"+config.FileName+")")
	flags.String("store", "", "Reference database path")
	flags.String("driver", "", "Reference database driver: sqlite or duckdb")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: json or console")
	bindFlag(cmd, "store.path", "store")
	bindFlag(cmd, "store.driver", "driver")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")

	cmd.AddCommand(
		newServeCmd(),
		newGenesCmd(),
		newFamilyCmd(),
		newLocusCmd(),
		newTracksCmd(),
		newStatsCmd(),
		newConvertCmd(),
		newSeedCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	v := viper.GetViper()
	config.SetDefaults(v)
	return config.ReadFile(v, cfgFile)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sv-browser version %s (%s) built %s\n", version, commit, date)
		},
	}
}
