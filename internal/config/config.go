package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // bank zones must resolve on hosts without zoneinfo

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "expense-tally.yaml"

// EnvPrefix prefixes environment overrides, e.g. EXPENSE_TALLY_BANK_TIMEZONE.
const EnvPrefix = "EXPENSE_TALLY"

// Config represents the top-level expense-tally.yaml configuration.
type Config struct {
	Bank      BankConfig      `yaml:"bank" mapstructure:"bank"`
	Reconcile ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Ledger    LedgerConfig    `yaml:"ledger" mapstructure:"ledger"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
}

// BankConfig describes the bank statement export.
type BankConfig struct {
	Format   string `yaml:"format" mapstructure:"format"`
	Timezone string `yaml:"timezone" mapstructure:"timezone"` // IANA zone the bank dates are in
}

// ReconcileConfig controls matching.
type ReconcileConfig struct {
	Window time.Duration `yaml:"window" mapstructure:"window"`
}

// LedgerConfig locates the expense ledger: a bolt file path or a postgres:// URL.
type LedgerConfig struct {
	Source string `yaml:"source" mapstructure:"source"`
}

// LogConfig sets the minimum log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// MetricsConfig names an optional node-exporter textfile written after each CLI run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" mapstructure:"textfile"`
}

// ServerConfig is the listen address for the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Bank: BankConfig{
			Format:   "dbs",
			Timezone: "Asia/Singapore",
		},
		Reconcile: ReconcileConfig{
			Window: 24 * time.Hour,
		},
		Ledger: LedgerConfig{
			Source: "ledger.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads an expense-tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// flagKeys binds command-line flag names to config keys.
var flagKeys = map[string]string{
	"bank-format":  "bank.format",
	"timezone":     "bank.timezone",
	"window":       "reconcile.window",
	"ledger":       "ledger.source",
	"log-level":    "log.level",
	"metrics-file": "metrics.textfile",
	"addr":         "server.addr",
}

// Build layers defaults, the config file, EXPENSE_TALLY_* environment
// variables and changed flags, in increasing precedence. With an empty
// cfgFile, expense-tally.yaml in the working directory is used if present.
// flags may be nil.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("bank.format", def.Bank.Format)
	v.SetDefault("bank.timezone", def.Bank.Timezone)
	v.SetDefault("reconcile.window", def.Reconcile.Window)
	v.SetDefault("ledger.source", def.Ledger.Source)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("metrics.textfile", def.Metrics.Textfile)
	v.SetDefault("server.addr", def.Server.Addr)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if c.Reconcile.Window <= 0 {
		return fmt.Errorf("invalid config: reconcile.window must be positive, got %s", c.Reconcile.Window)
	}
	if strings.TrimSpace(c.Bank.Format) == "" {
		return fmt.Errorf("invalid config: bank.format must be set")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location loads the bank time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Bank.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Bank.Timezone, err)
	}
	return loc, nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
