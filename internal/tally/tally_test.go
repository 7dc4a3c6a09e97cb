package tally

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/francis-pang/expense-tally/internal/ledger"
	"github.com/francis-pang/expense-tally/internal/metrics"
	"github.com/francis-pang/expense-tally/internal/model"
)

const (
	statementFixture = "../../testdata/dbs_statement.csv"
	ledgerFixture    = "../../testdata/ledger.csv"
)

var sgt = time.FixedZone("SGT", 8*60*60)

// seedLedger writes the ledger fixture into a bolt file and returns its path.
func seedLedger(t *testing.T) string {
	t.Helper()
	f, err := os.Open(ledgerFixture)
	require.NoError(t, err)
	defer f.Close()
	records, err := ledger.ReadRecords(f)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := ledger.OpenBolt(path, false)
	require.NoError(t, err)
	require.NoError(t, store.Save(records))
	require.NoError(t, store.Close())
	return path
}

func newRunner(t *testing.T, source string, rec *metrics.Recorder) *Runner {
	t.Helper()
	r, err := NewRunner(log.New(io.Discard), rec, Options{
		Format:       "dbs",
		LedgerSource: source,
		Location:     sgt,
		Window:       24 * time.Hour,
	})
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func TestRunFile(t *testing.T) {
	rec := metrics.NewRecorder()
	r := newRunner(t, seedLedger(t), rec)

	res, err := r.RunFile(context.Background(), statementFixture)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Bank, 6)
	assert.Equal(t, 8, res.LedgerCount)
	require.Len(t, res.Discrepancies, 1)
	d := res.Discrepancies[0]
	assert.Equal(t, model.TypeFastPayment, d.Type)
	assert.Equal(t, "120.00", d.Amount.StringFixed(2))
	assert.Equal(t, "FAST Payment To: LANDLORD OTHR rent", d.Description)

	reg := rec.Registry()
	n, err := testutil.GatherAndCount(reg, "expense_tally_reconcile_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	expected := `
# HELP expense_tally_reconcile_outcomes_total Bank transactions reconciled, by outcome.
# TYPE expense_tally_reconcile_outcomes_total counter
expense_tally_reconcile_outcomes_total{outcome="ambiguous"} 1
expense_tally_reconcile_outcomes_total{outcome="matched"} 4
expense_tally_reconcile_outcomes_total{outcome="missing"} 1
# HELP expense_tally_ledger_records_total Ledger transactions loaded.
# TYPE expense_tally_ledger_records_total counter
expense_tally_ledger_records_total 8
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"expense_tally_reconcile_outcomes_total", "expense_tally_ledger_records_total"))
}

func TestRun_Reader(t *testing.T) {
	r := newRunner(t, seedLedger(t), nil)

	csv := "Transaction Date,Reference,Debit Amount,Credit Amount\n" +
		"03 Feb 2019,GRO, 30.00, ,INSURANCE,,\n"
	res, err := r.Run(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Discrepancies, 1)
	assert.Equal(t, "INSURANCE", res.Discrepancies[0].Description)
}

func TestRunFile_RunIDsDiffer(t *testing.T) {
	r := newRunner(t, seedLedger(t), nil)
	a, err := r.RunFile(context.Background(), statementFixture)
	require.NoError(t, err)
	b, err := r.RunFile(context.Background(), statementFixture)
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Discrepancies, b.Discrepancies)
}

func TestRunFile_StatementError(t *testing.T) {
	r := newRunner(t, seedLedger(t), nil)
	_, err := r.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatement)
	assert.NotErrorIs(t, err, ErrLedger)
}

func TestRunFile_LedgerError(t *testing.T) {
	r := newRunner(t, filepath.Join(t.TempDir(), "missing.db"), nil)
	_, err := r.RunFile(context.Background(), statementFixture)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLedger)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewRunner_UnknownFormat(t *testing.T) {
	_, err := NewRunner(log.New(io.Discard), nil, Options{Format: "ocbc"})
	assert.ErrorContains(t, err, `unknown bank format "ocbc"`)
}
