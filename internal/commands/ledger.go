package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/francis-pang/expense-tally/internal/ledger"
)

func newLedgerCommand() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger store operations",
	}
	ledgerCmd.AddCommand(newLedgerImportCommand())
	ledgerCmd.AddCommand(newLedgerExportCommand())
	return ledgerCmd
}

func newLedgerImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <ledger.csv> <ledger.db>",
		Short: "Load a ledger CSV export into a bolt ledger file",
		Long: `Load a ledger CSV export into a bolt ledger file, creating it if needed.

The CSV header is:
  id,amount,category,subcategory,payment_method,description,expensed_time,reference_number
with expensed_time in epoch milliseconds. Records replace any with the same id.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := runLedgerImport(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", n, args[1])
			return nil
		},
	}
}

func runLedgerImport(csvPath, dbPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, exitErr(ExitStatement, fmt.Errorf("opening ledger export: %w", err))
	}
	defer f.Close()

	records, err := ledger.ReadRecords(f)
	if err != nil {
		return 0, exitErr(ExitStatement, fmt.Errorf("reading %s: %w", csvPath, err))
	}

	store, err := ledger.OpenBolt(dbPath, false)
	if err != nil {
		return 0, exitErr(ExitLedger, err)
	}
	defer store.Close()

	if err := store.Save(records); err != nil {
		return 0, exitErr(ExitLedger, fmt.Errorf("saving records: %w", err))
	}
	return len(records), nil
}

func newLedgerExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <ledger-source> [ledger.csv]",
		Short: "Write the records of a ledger store as CSV",
		Long: `Write every record of a ledger store in the same CSV layout that
"ledger import" reads. The source is a bolt file path or a postgres:// URL.
Output goes to stdout unless a file is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				_, err := runLedgerExport(cmd.Context(), args[0], cmd.OutOrStdout())
				return err
			}

			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[1], err)
			}
			n, err := runLedgerExport(cmd.Context(), args[0], f)
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("closing %s: %w", args[1], cerr)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", n, args[1])
			return nil
		},
	}
}

func runLedgerExport(ctx context.Context, source string, w io.Writer) (int, error) {
	store, err := ledger.Open(ctx, source)
	if err != nil {
		return 0, exitErr(ExitLedger, err)
	}
	defer store.Close()

	records, err := store.Records(ctx)
	if err != nil {
		return 0, exitErr(ExitLedger, fmt.Errorf("reading ledger: %w", err))
	}
	if err := ledger.WriteRecords(w, records); err != nil {
		return 0, fmt.Errorf("writing ledger CSV: %w", err)
	}
	return len(records), nil
}
