// Package config defines the run configuration of cc-erddap and how it is
// assembled from flags, environment variables and an optional config file.
//
// Precedence, highest first: explicit flags, CC_ERDDAP_* environment
// variables, the config file, flag defaults. Keys use underscores
// everywhere (flag names, file keys, env suffixes); flags also accept
// dashes on the command line.
//
// Example config file (YAML):
//
//	standards: [cf:1.6, acdd]
//	format: json_new
//	exclude: "^test_"
//	exclude_regex: true
//	ledger_kind: sqlite
//	ledger_dsn: /var/lib/cc_erddap/results.db
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ccerddap/internal/checker"
	"ccerddap/internal/filter"
	"ccerddap/internal/ledger"
	"ccerddap/internal/sample"
	"ccerddap/internal/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CC_ERDDAP"

// Metrics backends.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// Config is the fully resolved run configuration.
type Config struct {
	// Server is the ERDDAP base URL, e.g. https://host/erddap. It normally
	// comes from the positional argument.
	Server string `mapstructure:"server"`

	Standards    []string `mapstructure:"standards"`
	Exclude      string   `mapstructure:"exclude"`
	ExcludeRegex bool     `mapstructure:"exclude_regex"`
	ExcludeFile  string   `mapstructure:"exclude_file"`
	DatasetID    string   `mapstructure:"dataset_id"`

	Format    string `mapstructure:"format"`
	OutputDir string `mapstructure:"output_dir"`
	Work      string `mapstructure:"work"`
	Verbose   int    `mapstructure:"verbose"`
	Checker   string `mapstructure:"checker"`

	TimeOffset   string `mapstructure:"time_offset"`
	GridResponse string `mapstructure:"grid_response"`

	// Timeout is the per-request HTTP timeout in seconds.
	Timeout  int  `mapstructure:"timeout"`
	Insecure bool `mapstructure:"insecure"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	MetricsBackend string `mapstructure:"metrics_backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	DogstatsdAddr  string `mapstructure:"dogstatsd_addr"`

	LedgerKind  string `mapstructure:"ledger_kind"`
	LedgerDSN   string `mapstructure:"ledger_dsn"`
	LedgerTable string `mapstructure:"ledger_table"`
}

// RegisterFlags defines every configuration flag on fs, with its default.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(NormalizeFlagName)

	fs.StringSliceP("standards", "s", []string{"cf:1.6"}, "checker standards, comma separated")
	fs.StringP("exclude", "e", "", "dataset ids to skip: comma separated list, or a regex with --exclude_regex")
	fs.Bool("exclude_regex", false, "treat --exclude as a regular expression")
	fs.String("exclude_file", "", "file with one dataset id to skip per line (literal mode only)")
	fs.String("dataset_id", "", "only check datasets whose id contains this string")

	fs.StringP("format", "f", checker.FormatHTML, "report format: "+strings.Join(checker.Formats, ", "))
	fs.StringP("output_dir", "o", "results", "base directory for reports")
	fs.String("work", "/tmp/cc_erddap", "directory for downloaded samples")
	fs.CountP("verbose", "v", "checker verbosity, repeat to increase")
	fs.String("checker", checker.DefaultBinary, "compliance checker executable")

	fs.StringP("time_offset", "t", "1hour", "tabular sample window, as an ERDDAP relative duration")
	fs.String("grid_response", sample.ResponseNC, "griddap sample encoding")

	fs.Int("timeout", 30, "per-request HTTP timeout in seconds")
	fs.Bool("insecure", false, "skip TLS certificate verification")

	fs.String("log_level", "info", "log level")
	fs.String("log_format", "text", "log format: text or json")

	fs.String("metrics_backend", MetricsNone, "metrics backend: none, pushgateway or datadog")
	fs.String("pushgateway_url", "", "Prometheus Pushgateway URL")
	fs.String("dogstatsd_addr", "", "DogStatsD address, host:port")

	fs.String("ledger_kind", "", "results ledger backend: "+strings.Join(knownLedgerKinds, ", ")+" (empty disables)")
	fs.String("ledger_dsn", "", "results ledger connection string")
	fs.String("ledger_table", ledger.DefaultTable, "results ledger table")

	fs.String("config", "", "config file (yaml, json or toml)")
}

// NormalizeFlagName lets --exclude-regex and --exclude_regex name the same flag.
func NormalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
}

// Load resolves the configuration from fs (already parsed), the environment
// and the config file named by the "config" flag or CC_ERDDAP_CONFIG.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Config, error) {
	var c Config

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("server", "")
	if err := v.BindPFlags(fs); err != nil {
		return c, fmt.Errorf("config: bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("config: decode: %w", err)
	}
	c.Server = strings.TrimSpace(c.Server)
	return c, nil
}

// HTTPTimeout returns Timeout as a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// FilterCriteria maps the selection settings; extra holds ids read from
// ExcludeFile.
func (c Config) FilterCriteria(extra []string) filter.Criteria {
	return filter.Criteria{
		SingleID:      c.DatasetID,
		Exclude:       c.Exclude,
		ExcludeRegex:  c.ExcludeRegex,
		ExtraExcludes: extra,
	}
}

// SampleOptions maps the sample-building settings.
func (c Config) SampleOptions() sample.Options {
	return sample.Options{TimeOffset: c.TimeOffset, GridResponse: c.GridResponse}
}

// StorageConfig maps the ledger settings.
func (c Config) StorageConfig() storage.Config {
	return storage.Config{Kind: c.LedgerKind, DSN: c.LedgerDSN, Table: c.LedgerTable}
}
