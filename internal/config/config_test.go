package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Ledger.Source = "postgres://localhost/expenses"
	cfg.Reconcile.Window = 36 * time.Hour
	cfg.Metrics.Textfile = "/var/lib/node_exporter/expense_tally.prom"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "dbs", cfg.Bank.Format)
	assert.Equal(t, "Asia/Singapore", cfg.Bank.Timezone)
	assert.Equal(t, 24*time.Hour, cfg.Reconcile.Window)
	assert.Equal(t, "ledger.db", cfg.Ledger.Source)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "bank:")
	assert.Contains(t, content, "timezone: Asia/Singapore")
	assert.Contains(t, content, "window: 24h0m0s")
	assert.Contains(t, content, "source: ledger.db")
	assert.NotContains(t, content, "textfile")
}

func TestBuild_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Build("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestBuild_ReadsWorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("reconcile:\n  window: 12h\nledger:\n  source: /data/ledger.db\n"), 0o644))
	chdir(t, dir)

	cfg, err := Build("", nil)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.Reconcile.Window)
	assert.Equal(t, "/data/ledger.db", cfg.Ledger.Source)
	assert.Equal(t, "Asia/Singapore", cfg.Bank.Timezone)
}

func TestBuild_ExplicitFileMissing(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestBuild_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bank:\n  timezone: UTC\nlog:\n  level: debug\nserver:\n  addr: :9000\n"), 0o644))

	t.Setenv("EXPENSE_TALLY_LOG_LEVEL", "warn")
	t.Setenv("EXPENSE_TALLY_SERVER_ADDR", ":9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")
	flags.Duration("window", 24*time.Hour, "")
	require.NoError(t, flags.Parse([]string{"--addr", ":9200"}))

	cfg, err := Build(path, flags)
	require.NoError(t, err)

	// file over default, env over file, changed flag over env
	assert.Equal(t, "UTC", cfg.Bank.Timezone)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":9200", cfg.Server.Addr)
	// an unchanged flag does not override the default
	assert.Equal(t, 24*time.Hour, cfg.Reconcile.Window)
}

func TestBuild_DurationFlag(t *testing.T) {
	chdir(t, t.TempDir())
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Duration("window", 24*time.Hour, "")
	require.NoError(t, flags.Parse([]string{"--window", "48h"}))

	cfg, err := Build("", flags)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.Reconcile.Window)
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"bad timezone", "EXPENSE_TALLY_BANK_TIMEZONE", "Mars/Olympus"},
		{"bad level", "EXPENSE_TALLY_LOG_LEVEL", "loud"},
		{"negative window", "EXPENSE_TALLY_RECONCILE_WINDOW", "-1h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.env, tt.val)
			_, err := Build("", nil)
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLocationAndLevel(t *testing.T) {
	cfg := Default()
	cfg.Bank.Timezone = "UTC"
	cfg.Log.Level = "debug"

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, lvl)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}
