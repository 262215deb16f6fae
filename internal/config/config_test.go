package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) Config {
	t.Helper()

	fs := pflag.NewFlagSet("cc-erddap", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	c, err := Load(viper.New(), fs)
	require.NoError(t, err)
	return c
}

func TestLoad_Defaults(t *testing.T) {
	c := load(t)

	assert.Equal(t, []string{"cf:1.6"}, c.Standards)
	assert.Equal(t, "html", c.Format)
	assert.Equal(t, "results", c.OutputDir)
	assert.Equal(t, "/tmp/cc_erddap", c.Work)
	assert.Equal(t, "1hour", c.TimeOffset)
	assert.Equal(t, "nc", c.GridResponse)
	assert.Equal(t, 30, c.Timeout)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout())
	assert.Equal(t, "compliance-checker", c.Checker)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, MetricsNone, c.MetricsBackend)
	assert.Equal(t, "cc_erddap_results", c.LedgerTable)
	assert.Empty(t, c.LedgerKind)
	assert.Zero(t, c.Verbose)
	assert.False(t, c.ExcludeRegex)
	assert.False(t, c.Insecure)
}

func TestLoad_FlagsAcceptBothSeparators(t *testing.T) {
	c := load(t,
		"--exclude-regex", "--exclude", "^test_",
		"--dataset_id", "buoy",
		"-s", "cf:1.6,acdd",
		"-f", "json_new",
		"--output-dir", "out",
		"-vv",
	)

	assert.True(t, c.ExcludeRegex)
	assert.Equal(t, "^test_", c.Exclude)
	assert.Equal(t, "buoy", c.DatasetID)
	assert.Equal(t, []string{"cf:1.6", "acdd"}, c.Standards)
	assert.Equal(t, "json_new", c.Format)
	assert.Equal(t, "out", c.OutputDir)
	assert.Equal(t, 2, c.Verbose)
}

// Flags override the environment, which overrides the config file.
func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cc.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"format: text\n"+
			"timeout: 5\n"+
			"output_dir: from-file\n"+
			"standards: [acdd]\n"+
			"ledger_kind: sqlite\n",
	), 0o644))

	t.Setenv("CC_ERDDAP_TIMEOUT", "9")
	t.Setenv("CC_ERDDAP_OUTPUT_DIR", "from-env")
	t.Setenv("CC_ERDDAP_SERVER", " https://erddap.example.org/erddap ")

	c := load(t, "--config", file, "--output_dir", "from-flag")

	assert.Equal(t, "text", c.Format, "file beats default")
	assert.Equal(t, 9, c.Timeout, "env beats file")
	assert.Equal(t, "from-flag", c.OutputDir, "flag beats env")
	assert.Equal(t, []string{"acdd"}, c.Standards)
	assert.Equal(t, "sqlite", c.LedgerKind)
	assert.Equal(t, "https://erddap.example.org/erddap", c.Server)
}

func TestLoad_EnvStandardsSplitOnComma(t *testing.T) {
	t.Setenv("CC_ERDDAP_STANDARDS", "cf:1.6,acdd")

	c := load(t)
	assert.Equal(t, []string{"cf:1.6", "acdd"}, c.Standards)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("cc-erddap", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}))

	_, err := Load(viper.New(), fs)
	assert.ErrorContains(t, err, "config: read")
}

func TestConfigMappings(t *testing.T) {
	t.Parallel()

	c := Config{
		DatasetID:    "buoy",
		Exclude:      "a,b",
		TimeOffset:   "2hours",
		GridResponse: "ncCF",
		LedgerKind:   "sqlite",
		LedgerDSN:    "file.db",
		LedgerTable:  "t",
	}

	fc := c.FilterCriteria([]string{"c"})
	assert.Equal(t, "buoy", fc.SingleID)
	assert.Equal(t, "a,b", fc.Exclude)
	assert.Equal(t, []string{"c"}, fc.ExtraExcludes)

	so := c.SampleOptions()
	assert.Equal(t, "2hours", so.TimeOffset)
	assert.Equal(t, "ncCF", so.GridResponse)

	sc := c.StorageConfig()
	assert.Equal(t, "sqlite", sc.Kind)
	assert.Equal(t, "file.db", sc.DSN)
	assert.Equal(t, "t", sc.Table)
}
