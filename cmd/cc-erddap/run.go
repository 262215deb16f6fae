package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ccerddap/internal/audit"
	"ccerddap/internal/checker"
	"ccerddap/internal/config"
	"ccerddap/internal/datasource/file"
	"ccerddap/internal/datasource/httpds"
	"ccerddap/internal/erddap"
	"ccerddap/internal/filter"
	"ccerddap/internal/ledger"
	"ccerddap/internal/metrics"
	"ccerddap/internal/metrics/datadog"
	"ccerddap/internal/metrics/prompush"
	"ccerddap/internal/sample"
)

const (
	userAgent = "cc-erddap"
	metricJob = "cc_erddap"
)

// run wires the collaborators from cfg and executes one audit. It returns an
// error only when the run could not complete.
func run(ctx context.Context, cfg config.Config, log *logrus.Logger, stdout io.Writer) error {
	var extra []string
	if cfg.ExcludeFile != "" && !cfg.ExcludeRegex {
		ids, err := file.ReadList(cfg.ExcludeFile)
		if err != nil {
			return err
		}
		extra = ids
	}
	flt, err := filter.Compile(cfg.FilterCriteria(extra))
	if err != nil {
		return err
	}

	httpc := httpds.NewClient(httpds.Config{
		Timeout:            cfg.HTTPTimeout(),
		InsecureSkipVerify: cfg.Insecure,
		UserAgent:          userAgent,
	})
	client, err := erddap.NewClient(cfg.Server, httpc)
	if err != nil {
		return err
	}

	flush := setupMetrics(cfg, client.Host(), log)
	defer flush()

	r := &audit.Runner{
		Catalog: client,
		Filter:  flt,
		Builder: sample.NewBuilder(client, cfg.SampleOptions()),
		Fetcher: sample.NewFetcher(httpc, cfg.Work),
		Checker: checker.NewExecRunner(cfg.Checker),
		Log:     log.WithField("server", client.Host()),
		Out:     stdout,
		Opts: audit.Options{
			Standards: cfg.Standards,
			Format:    cfg.Format,
			OutputDir: cfg.OutputDir,
			Verbose:   cfg.Verbose,
			Job:       metricJob,
		},
	}

	if cfg.LedgerKind != "" {
		l, err := ledger.Open(ctx, cfg.StorageConfig(), ledger.NewRunID())
		if err != nil {
			log.WithError(err).WithField("ledger_kind", cfg.LedgerKind).Warn("ledger: disabled")
		} else {
			defer l.Close()
			log.WithFields(logrus.Fields{
				"ledger_kind": cfg.LedgerKind,
				"table":       cfg.LedgerTable,
				"run_id":      l.RunID(),
			}).Info("ledger: recording results")
			r.Ledger = l
		}
	}

	start := time.Now()
	sum, err := r.Run(ctx)
	if sum != nil {
		logSummary(log, sum, time.Since(start))
	}
	return err
}

// setupMetrics installs the configured backend and returns the function that
// flushes it at the end of the run. Backend failures only disable metrics.
func setupMetrics(cfg config.Config, host string, log logrus.FieldLogger) func() {
	nop := func() {}
	flush := func() {
		if err := metrics.Flush(); err != nil {
			log.WithError(err).Warn("metrics: flush error")
		}
	}

	switch cfg.MetricsBackend {
	case config.MetricsPushgateway:
		b, err := prompush.NewBackend(metricJob, cfg.PushgatewayURL)
		if err != nil {
			log.WithError(err).Warn("metrics: failed to init prom push backend; using nop")
			return nop
		}
		log.WithFields(logrus.Fields{"url": cfg.PushgatewayURL, "backend": cfg.MetricsBackend}).Info("metrics: enabled")
		metrics.SetBackend(b)
		return flush

	case config.MetricsDatadog:
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.DogstatsdAddr,
			GlobalTags: []string{"erddap_host:" + host},
		})
		if err != nil {
			log.WithError(err).Warn("metrics: failed to init datadog backend; using nop")
			return nop
		}
		log.WithFields(logrus.Fields{"addr": cfg.DogstatsdAddr, "backend": cfg.MetricsBackend}).Info("metrics: enabled")
		metrics.SetBackend(b)
		return func() {
			flush()
			if err := b.Close(); err != nil {
				log.WithError(err).Warn("metrics: datadog close error")
			}
		}

	default:
		log.Debug("metrics: disabled")
		return nop
	}
}

func logSummary(log logrus.FieldLogger, sum *audit.Summary, elapsed time.Duration) {
	passed := 0
	for _, o := range sum.Processed {
		if o.Passed {
			passed++
		}
	}
	byKind := map[audit.FailureKind]int{}
	for _, f := range sum.Failed {
		byKind[f.Kind]++
	}
	kinds := make([]string, 0, len(byKind))
	for k, n := range byKind {
		kinds = append(kinds, fmt.Sprintf("%s=%d", k, n))
	}
	sort.Strings(kinds)

	log.WithFields(logrus.Fields{
		"selected":  len(sum.Selected),
		"processed": len(sum.Processed),
		"passed":    passed,
		"failed":    len(sum.Failed),
		"failures":  strings.Join(kinds, ","),
		"elapsed":   elapsed.Truncate(time.Millisecond).String(),
	}).Info("summary")
}
