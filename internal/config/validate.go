package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"ccerddap/internal/checker"
	"ccerddap/internal/sample"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to the user but the run proceeds.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is the config key the
// finding is about (e.g. "format", "ledger_dsn").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownLedgerKinds are the backends linked into the cc-erddap binary.
var knownLedgerKinds = []string{"mssql", "mysql", "postgres", "sqlite"}

// Validate performs static checks over c. It does not mutate c or touch the
// network; callers decide how to treat warnings.
func Validate(c Config) []Issue {
	var issues []Issue
	issues = append(issues, validateServer(c.Server)...)
	issues = append(issues, validateSelection(c)...)
	issues = append(issues, validateChecker(c)...)
	issues = append(issues, validateSampling(c)...)
	issues = append(issues, validateLogging(c)...)
	issues = append(issues, validateMetrics(c)...)
	issues = append(issues, validateLedger(c)...)
	return issues
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func errorf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)}
}

func warnf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

func validateServer(server string) []Issue {
	if server == "" {
		return []Issue{errorf("server", "ERDDAP server URL must not be empty")}
	}
	u, err := url.Parse(server)
	if err != nil {
		return []Issue{errorf("server", "invalid URL %q: %v", server, err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return []Issue{errorf("server", "scheme must be http or https, got %q", u.Scheme)}
	}
	if u.Host == "" {
		return []Issue{errorf("server", "URL %q has no host", server)}
	}
	if !strings.HasSuffix(strings.TrimRight(u.Path, "/"), "/erddap") {
		return []Issue{warnf("server", "URL path %q does not end in /erddap; requests may 404", u.Path)}
	}
	return nil
}

func validateSelection(c Config) []Issue {
	var issues []Issue
	if c.ExcludeRegex {
		if _, err := regexp.Compile(c.Exclude); err != nil {
			issues = append(issues, errorf("exclude", "invalid regular expression: %v", err))
		}
		if c.ExcludeFile != "" {
			issues = append(issues, warnf("exclude_file", "ignored when exclude_regex is set"))
		}
	}
	return issues
}

func validateChecker(c Config) []Issue {
	var issues []Issue
	if len(c.Standards) == 0 {
		issues = append(issues, errorf("standards", "at least one standard is required"))
	}
	for i, s := range c.Standards {
		if strings.TrimSpace(s) == "" {
			issues = append(issues, errorf(fmt.Sprintf("standards[%d]", i), "standard must not be empty"))
		}
	}
	if !slices.Contains(checker.Formats, c.Format) {
		issues = append(issues, errorf("format", "unknown format %q; expected one of %s",
			c.Format, strings.Join(checker.Formats, ", ")))
	}
	if strings.TrimSpace(c.Checker) == "" {
		issues = append(issues, errorf("checker", "checker executable must not be empty"))
	}
	if c.Verbose < 0 {
		issues = append(issues, errorf("verbose", "must not be negative"))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		issues = append(issues, errorf("output_dir", "must not be empty"))
	}
	return issues
}

func validateSampling(c Config) []Issue {
	var issues []Issue
	if strings.TrimSpace(c.TimeOffset) == "" {
		issues = append(issues, errorf("time_offset", "must not be empty"))
	}
	switch c.GridResponse {
	case sample.ResponseNC, sample.ResponseNCCF:
	case "":
		issues = append(issues, errorf("grid_response", "must not be empty"))
	default:
		issues = append(issues, warnf("grid_response",
			"%q is not a NetCDF encoding; the checker may not read it", c.GridResponse))
	}
	if strings.TrimSpace(c.Work) == "" {
		issues = append(issues, errorf("work", "must not be empty"))
	}
	if c.Timeout <= 0 {
		issues = append(issues, errorf("timeout", "must be positive, got %d", c.Timeout))
	}
	if c.Insecure {
		issues = append(issues, warnf("insecure", "TLS certificate verification is disabled"))
	}
	return issues
}

func validateLogging(c Config) []Issue {
	var issues []Issue
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		issues = append(issues, errorf("log_level", "%v", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		issues = append(issues, errorf("log_format", "expected text or json, got %q", c.LogFormat))
	}
	return issues
}

func validateMetrics(c Config) []Issue {
	var issues []Issue
	switch c.MetricsBackend {
	case MetricsNone, "":
	case MetricsPushgateway:
		if strings.TrimSpace(c.PushgatewayURL) == "" {
			issues = append(issues, errorf("pushgateway_url", "required when metrics_backend=pushgateway"))
		}
	case MetricsDatadog:
		if strings.TrimSpace(c.DogstatsdAddr) == "" {
			issues = append(issues, errorf("dogstatsd_addr", "required when metrics_backend=datadog"))
		}
	default:
		issues = append(issues, errorf("metrics_backend", "unknown backend %q", c.MetricsBackend))
	}
	return issues
}

func validateLedger(c Config) []Issue {
	if c.LedgerKind == "" {
		if c.LedgerDSN != "" {
			return []Issue{warnf("ledger_dsn", "ignored without ledger_kind")}
		}
		return nil
	}

	var issues []Issue
	if !slices.Contains(knownLedgerKinds, c.LedgerKind) {
		issues = append(issues, warnf("ledger_kind",
			"unknown ledger kind %q; ensure a matching backend is registered", c.LedgerKind))
	}
	if strings.TrimSpace(c.LedgerDSN) == "" {
		issues = append(issues, errorf("ledger_dsn", "required when ledger_kind is set"))
	}
	if strings.TrimSpace(c.LedgerTable) == "" {
		issues = append(issues, errorf("ledger_table", "must not be empty"))
	}
	return issues
}
