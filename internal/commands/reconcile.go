package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/francis-pang/expense-tally/internal/metrics"
	"github.com/francis-pang/expense-tally/internal/report"
	"github.com/francis-pang/expense-tally/internal/tally"
)

func newReconcileCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "reconcile <statement.csv> [ledger-source]",
		Short: "List bank debits that have no matching ledger entry",
		Long: `Reconcile a bank statement export against the expense ledger.

The ledger source is a bolt database file or a postgres:// URL. When omitted,
ledger.source from the config is used.

Exit codes: 1 bad arguments or config, 2 statement unreadable, 3 ledger unreadable.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) > 1 {
				cfg.Ledger.Source = args[1]
			}
			format, err := report.ParseFormat(output)
			if err != nil {
				return exitErr(ExitUsage, err)
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

			res, err := runner.RunFile(cmd.Context(), args[0])
			switch {
			case errors.Is(err, tally.ErrStatement):
				return exitErr(ExitStatement, err)
			case errors.Is(err, tally.ErrLedger):
				return exitErr(ExitLedger, err)
			case err != nil:
				return err
			}

			if err := report.Write(cmd.OutOrStdout(), format, res.Discrepancies); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}

			if cfg.Metrics.Textfile != "" {
				if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					logger.Warn("metrics not written", "path", cfg.Metrics.Textfile, "err", err)
				}
			}
			return nil
		},
	}

	addMatchFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatText), "output format: text, csv or json")
	cmd.Flags().String("metrics-file", "", "write run metrics to this node-exporter textfile")

	return cmd
}
