package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func valid() Config {
	return Config{
		Server:         "https://erddap.example.org/erddap",
		Standards:      []string{"cf:1.6"},
		Format:         "html",
		OutputDir:      "results",
		Work:           "/tmp/cc_erddap",
		Checker:        "compliance-checker",
		TimeOffset:     "1hour",
		GridResponse:   "nc",
		Timeout:        30,
		LogLevel:       "info",
		LogFormat:      "text",
		MetricsBackend: MetricsNone,
		LedgerTable:    "cc_erddap_results",
	}
}

func TestValidate_ValidMinimal(t *testing.T) {
	t.Parallel()

	issues := Validate(valid())
	assert.Empty(t, issues)
	assert.False(t, HasErrors(issues))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"empty server", func(c *Config) { c.Server = "" }, SeverityError, "server", "must not be empty"},
		{"ftp server", func(c *Config) { c.Server = "ftp://h/erddap" }, SeverityError, "server", "http or https"},
		{"no host", func(c *Config) { c.Server = "https:///erddap" }, SeverityError, "server", "no host"},
		{"odd path", func(c *Config) { c.Server = "https://h/data" }, SeverityWarning, "server", "/erddap"},
		{"bad regex", func(c *Config) { c.ExcludeRegex, c.Exclude = true, "(" }, SeverityError, "exclude", "invalid regular expression"},
		{"file with regex", func(c *Config) { c.ExcludeRegex, c.ExcludeFile = true, "skip.txt" }, SeverityWarning, "exclude_file", "ignored"},
		{"no standards", func(c *Config) { c.Standards = nil }, SeverityError, "standards", "at least one"},
		{"blank standard", func(c *Config) { c.Standards = []string{"cf:1.6", " "} }, SeverityError, "standards[1]", "must not be empty"},
		{"unknown format", func(c *Config) { c.Format = "xml" }, SeverityError, "format", "unknown format"},
		{"no checker", func(c *Config) { c.Checker = "" }, SeverityError, "checker", "must not be empty"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, SeverityError, "timeout", "must be positive"},
		{"empty offset", func(c *Config) { c.TimeOffset = "" }, SeverityError, "time_offset", "must not be empty"},
		{"csv grid", func(c *Config) { c.GridResponse = "csv" }, SeverityWarning, "grid_response", "not a NetCDF"},
		{"insecure", func(c *Config) { c.Insecure = true }, SeverityWarning, "insecure", "disabled"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, SeverityError, "log_level", "not a valid logrus Level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, SeverityError, "log_format", "text or json"},
		{"pushgateway without url", func(c *Config) { c.MetricsBackend = MetricsPushgateway }, SeverityError, "pushgateway_url", "required"},
		{"datadog without addr", func(c *Config) { c.MetricsBackend = MetricsDatadog }, SeverityError, "dogstatsd_addr", "required"},
		{"unknown metrics", func(c *Config) { c.MetricsBackend = "graphite" }, SeverityError, "metrics_backend", "unknown backend"},
		{"ledger without dsn", func(c *Config) { c.LedgerKind = "sqlite" }, SeverityError, "ledger_dsn", "required"},
		{"unknown ledger", func(c *Config) { c.LedgerKind, c.LedgerDSN = "oracle", "x" }, SeverityWarning, "ledger_kind", "unknown ledger kind"},
		{"dsn without ledger", func(c *Config) { c.LedgerDSN = "x" }, SeverityWarning, "ledger_dsn", "ignored"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tc.mutate(&c)
			issues := Validate(c)
			assert.True(t, hasIssue(issues, tc.sev, tc.path, tc.msg), "got issues: %+v", issues)
			assert.Equal(t, tc.sev == SeverityError, HasErrors(issues))
		})
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "format", Message: "unknown"}
	assert.Equal(t, "error at format: unknown", iss.Error())
}
