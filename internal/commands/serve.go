package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/francis-pang/expense-tally/internal/config"
	"github.com/francis-pang/expense-tally/internal/metrics"
	"github.com/francis-pang/expense-tally/internal/server"
	"github.com/francis-pang/expense-tally/internal/tally"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reconciliation over HTTP",
		Long: `Start an HTTP server exposing:

  GET  /health
  GET  /metrics
  POST /api/v1/reconcile   statement CSV as the raw body or multipart field "file"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return exitErr(ExitUsage, err)
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg)
			rec := metrics.NewRecorder()
			runner, err := tally.NewRunner(logger, rec, tally.Options{
				Format:       cfg.Bank.Format,
				LedgerSource: cfg.Ledger.Source,
				Location:     loc,
				Window:       cfg.Reconcile.Window,
			})
			if err != nil {
				return exitErr(ExitUsage, err)
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           server.New(runner, rec, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting", "addr", srv.Addr, "ledger", cfg.Ledger.Source)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serving: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("server shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}
			return nil
		},
	}

	addMatchFlags(cmd)
	cmd.Flags().String("addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().String("ledger", config.Default().Ledger.Source, "ledger source: bolt file path or postgres:// URL")

	return cmd
}
