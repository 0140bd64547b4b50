package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/uconn-ofc/sv-browser/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser JSON API",
		Long:  "Open the reference database and serve genes, families, tracks and viewer sessions over HTTP.",
		Example: `  sv-browser serve --store data/ofc.db
  sv-browser serve --addr :9000 --candidates candidates.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := server.New(server.Deps{
				Store:      a.store,
				Genes:      a.genes,
				Families:   a.families,
				Assembler:  a.assembler,
				Browser:    a.browser,
				Candidates: a.candidates,
				Metrics:    a.metrics,
				Logger:     a.logger.Named("http"),
				Version:    version,
			}, server.Options{
				Addr:            a.cfg.Server.Addr,
				SessionTTL:      a.cfg.Server.SessionTTL,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
			})
			if err != nil {
				return err
			}

			a.logger.Info("starting sv-browser",
				zap.String("version", version),
				zap.String("addr", a.cfg.Server.Addr),
				zap.Int("candidates", a.candidates.Len()))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8050)")
	cmd.Flags().String("candidates", "", "Candidate gene CSV with a Gene column")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("candidates.path", cmd.Flags().Lookup("candidates"))
	return cmd
}
