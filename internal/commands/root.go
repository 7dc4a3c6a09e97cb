package commands

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/francis-pang/expense-tally/internal/buildinfo"
	"github.com/francis-pang/expense-tally/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "expense-tally",
		Short:   "Find bank debits missing from your expense ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default ./"+config.FileName+")")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newLedgerCommand())

	return rootCmd
}

// buildConfig layers the config file, environment and this command's flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, exitErr(ExitUsage, err)
	}
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, exitErr(ExitUsage, err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	// Level was checked by config validation.
	level, _ := cfg.LogLevel()
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "expense-tally",
		Level:           level,
	})
}

// addMatchFlags registers the flags shared by reconcile and serve.
func addMatchFlags(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().String("bank-format", def.Bank.Format, "bank statement format")
	cmd.Flags().String("timezone", def.Bank.Timezone, "time zone of the bank statement dates")
	cmd.Flags().Duration("window", def.Reconcile.Window, "how long before the end of the bank day a ledger entry may be recorded")
}
