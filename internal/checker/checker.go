// Package checker runs the external compliance-checker engine against a
// downloaded sample and reports whether it passed.
package checker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"ccerddap/internal/erddap"
)

// DefaultBinary is the engine executable looked up on PATH.
const DefaultBinary = "compliance-checker"

// CriteriaNormal is the pass/fail strictness every run uses.
const CriteriaNormal = "normal"

// Report formats understood by the engine.
const (
	FormatText    = "text"
	FormatHTML    = "html"
	FormatJSON    = "json"
	FormatJSONNew = "json_new"
)

// Formats lists the accepted report formats.
var Formats = []string{FormatText, FormatHTML, FormatJSON, FormatJSONNew}

// ReportExtension maps a format to the report file extension.
func ReportExtension(format string) string {
	switch format {
	case FormatText:
		return "txt"
	case FormatJSONNew:
		return "json"
	default:
		return format
	}
}

// ReportPath is <dir>/<datasetID>.<ext>. Ids that could name a file outside
// dir are rejected.
func ReportPath(dir, datasetID, format string) (string, error) {
	if err := erddap.ValidateDatasetID(datasetID); err != nil {
		return "", err
	}
	return filepath.Join(dir, datasetID+"."+ReportExtension(format)), nil
}

// Request is one engine invocation.
type Request struct {
	SamplePath string
	Standards  []string
	Verbose    int
	Format     string
	OutputPath string
}

// Result is the outcome of a completed engine run. Passed is false when the
// sample failed the normal criteria.
type Result struct {
	Passed     bool
	ExitCode   int
	Errors     []string
	OutputPath string
}

// Runner checks a sample.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// EngineError reports that the engine did not complete: it could not be
// started, or it exited with a code other than 0 or 1. Any partial report it
// wrote is left in place.
type EngineError struct {
	Binary   string
	ExitCode int
	Errors   []string
	Err      error
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("checker: %s exited with code %d", e.Binary, e.ExitCode)
	if e.Err != nil && e.ExitCode < 0 {
		msg = fmt.Sprintf("checker: run %s: %v", e.Binary, e.Err)
	}
	if len(e.Errors) > 0 {
		msg += ": " + strings.Join(e.Errors, "; ")
	}
	return msg
}

func (e *EngineError) Unwrap() error { return e.Err }

// ExecRunner runs the engine as a child process.
type ExecRunner struct {
	Binary string
}

// NewExecRunner returns a runner for binary, defaulting to DefaultBinary.
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecRunner{Binary: binary}
}

// Args renders the engine command line for req.
func Args(req Request) []string {
	args := make([]string, 0, 2*len(req.Standards)+8+req.Verbose)
	for _, s := range req.Standards {
		args = append(args, "--test", s)
	}
	args = append(args, "--criteria", CriteriaNormal)
	for i := 0; i < req.Verbose; i++ {
		args = append(args, "-v")
	}
	args = append(args, "--format", req.Format, "--output", req.OutputPath, req.SamplePath)
	return args
}

// Run executes the engine and waits for it. Exit code 0 means passed and 1
// means the criteria were not met; both are a completed run.
func (r *ExecRunner) Run(ctx context.Context, req Request) (*Result, error) {
	cmd := exec.CommandContext(ctx, r.Binary, Args(req)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	lines := splitLines(stderr.Bytes())

	code := 0
	if err != nil {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return nil, &EngineError{Binary: r.Binary, ExitCode: -1, Errors: lines, Err: err}
		}
		code = ee.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &EngineError{Binary: r.Binary, ExitCode: -1, Errors: lines, Err: ctxErr}
	}

	switch code {
	case 0, 1:
		return &Result{
			Passed:     code == 0,
			ExitCode:   code,
			Errors:     lines,
			OutputPath: req.OutputPath,
		}, nil
	default:
		return nil, &EngineError{
			Binary:   r.Binary,
			ExitCode: code,
			Errors:   lines,
			Err:      errors.New("exit status " + strconv.Itoa(code)),
		}
	}
}

func splitLines(b []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}
