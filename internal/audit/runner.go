// Package audit drives a compliance run over an ERDDAP server: read the
// catalog, filter it, and take each remaining dataset through build, fetch,
// check and summarize, one dataset at a time.
//
// A failure while processing one dataset is logged, classified and counted;
// it never stops the run. Only a catalog failure (or cancellation) ends a
// run early.
package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"ccerddap/internal/checker"
	"ccerddap/internal/erddap"
	"ccerddap/internal/filter"
	"ccerddap/internal/ledger"
	"ccerddap/internal/metrics"
	"ccerddap/internal/report"
	"ccerddap/internal/sample"
)

// Step names used for metrics and log fields.
const (
	StepCatalog   = "catalog"
	StepBuild     = "build"
	StepFetch     = "fetch"
	StepCheck     = "check"
	StepSummarize = "summarize"
)

// Catalog lists the server's datasets. *erddap.Client satisfies it.
type Catalog interface {
	Catalog(ctx context.Context) ([]erddap.Dataset, error)
	Host() string
}

// Builder turns a dataset into a sample request. *sample.Builder satisfies it.
type Builder interface {
	Build(ctx context.Context, d erddap.Dataset) (*sample.Sample, error)
}

// Fetcher downloads a sample. *sample.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, s *sample.Sample) (*sample.Downloaded, error)
}

// Recorder persists outcomes. *ledger.Ledger satisfies it.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

// Options are the per-run settings.
type Options struct {
	Standards []string
	Format    string
	OutputDir string
	Verbose   int

	// Job labels metrics. Defaults to "cc_erddap".
	Job string
}

// Runner holds the collaborators of a run. Catalog, Filter, Builder, Fetcher
// and Checker are required; the rest are optional.
type Runner struct {
	Catalog Catalog
	Filter  *filter.Filter
	Builder Builder
	Fetcher Fetcher
	Checker checker.Runner

	// Ledger, when set, receives one entry per dataset.
	Ledger Recorder

	// Inspect reads a downloaded sample's header. Defaults to sample.Inspect.
	Inspect func(path string) (*sample.Summary, error)

	// Log receives diagnostics. Defaults to the logrus standard logger.
	Log logrus.FieldLogger

	// Out receives the console progress lines. Defaults to os.Stdout.
	Out io.Writer

	Opts Options

	now func() time.Time
}

// Outcome is one dataset the checker completed.
type Outcome struct {
	DatasetID  string
	Passed     bool
	ReportPath string
	Scores     map[string]report.Score
}

// Summary describes a finished (or interrupted) run.
type Summary struct {
	// Selected are the ids left after filtering, in catalog order.
	Selected  []string
	Processed []Outcome
	Failed    []Failure
}

// Run executes the audit. The returned error is non-nil only when the
// catalog could not be read, the report directory could not be created, or
// ctx was canceled; in the last case the partial Summary is returned too.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	r.defaults()

	start := r.now()
	datasets, err := r.Catalog.Catalog(ctx)
	metrics.RecordStep(r.Opts.Job, StepCatalog, err, r.now().Sub(start))
	if err != nil {
		return nil, err
	}

	selected := r.Filter.Apply(datasets)
	sum := &Summary{Selected: make([]string, len(selected))}
	for i, d := range selected {
		sum.Selected[i] = d.ID
	}
	r.Log.WithFields(logrus.Fields{
		"catalog":  len(datasets),
		"selected": len(selected),
	}).Info("catalog read")
	fmt.Fprintf(r.Out, "List of datasets to check for compliance (%d):\n", len(sum.Selected))
	for _, id := range sum.Selected {
		fmt.Fprintf(r.Out, " - %s\n", id)
	}

	dir := filepath.Join(r.Opts.OutputDir, r.Catalog.Host())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sum, fmt.Errorf("audit: create report dir: %w", err)
	}

	for i, d := range selected {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		entry := ledger.Entry{
			ServerHost:    r.Catalog.Host(),
			DatasetID:     d.ID,
			DataStructure: d.DataStructure,
		}
		out, err := r.process(ctx, dir, d, &entry)
		entry.CheckedAt = r.now()

		if err != nil && ctx.Err() != nil {
			return sum, ctx.Err()
		}
		if err != nil {
			kind := Classify(err)
			r.Log.WithFields(logrus.Fields{
				"dataset": d.ID,
				"kind":    kind,
			}).WithError(err).Error("dataset skipped")
			sum.Failed = append(sum.Failed, Failure{DatasetID: d.ID, Kind: kind, Err: err})
			metrics.RecordDataset(r.Opts.Job, string(kind))

			entry.Status = ledger.StatusFailed
			entry.FailureKind = string(kind)
			entry.Error = err.Error()
		} else {
			sum.Processed = append(sum.Processed, *out)
			outcome := "passed"
			if !out.Passed {
				outcome = "failed_criteria"
			}
			metrics.RecordDataset(r.Opts.Job, outcome)

			entry.Status = ledger.StatusOK
			entry.Passed = out.Passed
			entry.Scores = out.Scores
		}
		r.record(ctx, entry)

		fmt.Fprintf(r.Out, "[%d/%d] processed=%d failed=%d\n",
			i+1, len(selected), len(sum.Processed), len(sum.Failed))
	}
	return sum, nil
}

func (r *Runner) defaults() {
	if r.Log == nil {
		r.Log = logrus.StandardLogger()
	}
	if r.Out == nil {
		r.Out = os.Stdout
	}
	if r.Inspect == nil {
		r.Inspect = sample.Inspect
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.Opts.Job == "" {
		r.Opts.Job = "cc_erddap"
	}
}

// step times fn and records it under name.
func (r *Runner) step(name string, fn func() error) error {
	start := r.now()
	err := fn()
	metrics.RecordStep(r.Opts.Job, name, err, r.now().Sub(start))
	return err
}

func (r *Runner) process(ctx context.Context, dir string, d erddap.Dataset, entry *ledger.Entry) (*Outcome, error) {
	log := r.Log.WithField("dataset", d.ID)
	fmt.Fprintf(r.Out, "Checking %s\n", d.ID)

	var s *sample.Sample
	if err := r.step(StepBuild, func() (err error) {
		s, err = r.Builder.Build(ctx, d)
		return err
	}); err != nil {
		return nil, err
	}
	entry.SampleURL = s.URL
	log.WithField("url", s.URL).Debug("sample url built")

	var dl *sample.Downloaded
	if err := r.step(StepFetch, func() (err error) {
		dl, err = r.Fetcher.Fetch(ctx, s)
		return err
	}); err != nil {
		return nil, err
	}
	entry.SampleBytes = dl.Size
	entry.SampleXXH3 = dl.ChecksumHex()
	metrics.RecordSampleBytes(r.Opts.Job, dl.Size)

	if info, err := r.Inspect(dl.Path); err != nil {
		log.WithError(err).Warn("sample header not readable as NetCDF-3")
	} else {
		log.WithFields(logrus.Fields{
			"variables":   info.Variables,
			"conventions": info.Conventions,
			"bytes":       dl.Size,
		}).Debug("sample downloaded")
	}

	reportPath, err := checker.ReportPath(dir, d.ID, r.Opts.Format)
	if err != nil {
		return nil, err
	}
	out := &Outcome{DatasetID: d.ID, ReportPath: reportPath}
	var res *checker.Result
	if err := r.step(StepCheck, func() (err error) {
		res, err = r.Checker.Run(ctx, checker.Request{
			SamplePath: dl.Path,
			Standards:  r.Opts.Standards,
			Verbose:    r.Opts.Verbose,
			Format:     r.Opts.Format,
			OutputPath: out.ReportPath,
		})
		return err
	}); err != nil {
		return nil, err
	}
	out.Passed = res.Passed
	if len(res.Errors) > 0 {
		log.WithField("errors", res.Errors).Warn("checker reported errors")
	}
	verdict := "passed"
	if !res.Passed {
		verdict = "did not pass"
	}
	fmt.Fprintf(r.Out, "%s %s; report: %s\n", d.ID, verdict, out.ReportPath)

	if !report.Structured(r.Opts.Format) {
		return out, nil
	}
	if err := r.step(StepSummarize, func() (err error) {
		out.Scores, err = report.ParseFile(out.ReportPath, r.Opts.Format, r.Opts.Standards)
		return err
	}); err != nil {
		return nil, err
	}
	for _, line := range report.Lines(r.Opts.Standards, out.Scores) {
		fmt.Fprintln(r.Out, line)
	}
	return out, nil
}

func (r *Runner) record(ctx context.Context, e ledger.Entry) {
	if r.Ledger == nil {
		return
	}
	if err := r.Ledger.Record(ctx, e); err != nil {
		r.Log.WithField("dataset", e.DatasetID).WithError(err).Warn("ledger write failed")
	}
}
