package audit

import (
	"errors"

	"ccerddap/internal/checker"
	"ccerddap/internal/erddap"
	"ccerddap/internal/report"
	"ccerddap/internal/sample"
)

// FailureKind classifies why a dataset was skipped.
type FailureKind string

const (
	KindInvalidID        FailureKind = "invalid_dataset_id"
	KindUnsupportedShape FailureKind = "unsupported_shape"
	KindFetchFailed      FailureKind = "fetch_failed"
	KindTimeUnresolvable FailureKind = "time_unresolvable"
	KindEngineError      FailureKind = "engine_error"
	KindReportParse      FailureKind = "report_parse_error"
	KindOther            FailureKind = "other"
)

// Classify maps a per-dataset error to its kind.
func Classify(err error) FailureKind {
	var (
		inv   *erddap.InvalidDatasetIDError
		shape *sample.UnsupportedShapeError
		fetch *sample.FetchError
		tb    *sample.TimeBoundError
		eng   *checker.EngineError
		parse *report.ParseError
	)
	switch {
	case errors.As(err, &inv):
		return KindInvalidID
	case errors.As(err, &shape):
		return KindUnsupportedShape
	case errors.As(err, &fetch):
		return KindFetchFailed
	case errors.As(err, &tb):
		return KindTimeUnresolvable
	case errors.As(err, &eng):
		return KindEngineError
	case errors.As(err, &parse):
		return KindReportParse
	default:
		return KindOther
	}
}

// Failure is one skipped dataset.
type Failure struct {
	DatasetID string
	Kind      FailureKind
	Err       error
}
