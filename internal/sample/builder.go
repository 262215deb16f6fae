// Package sample builds, downloads and inspects the small recent-data
// samples that get fed to the compliance checker.
package sample

import (
	"context"
	"fmt"
	"strings"

	"ccerddap/internal/erddap"
)

// Response encodings.
const (
	ResponseNC   = "nc"
	ResponseNCCF = "ncCF"
)

// lastIndex selects only the final index along one grid axis.
const lastIndex = "[(last):1:(last)]"

// Source is the metadata the builder needs from the server.
// *erddap.Client satisfies it.
type Source interface {
	LatestTimer
	Server() string
	Info(ctx context.Context, datasetID string) (*erddap.Metadata, error)
}

// Options configures a Builder.
type Options struct {
	// TimeOffset is an ERDDAP relative duration such as "1hour" or "2days".
	TimeOffset string

	// GridResponse is the griddap file type. Defaults to "nc".
	GridResponse string
}

// Builder turns catalog entries into sample requests.
type Builder struct {
	src  Source
	opts Options
}

// NewBuilder returns a Builder reading metadata from src.
func NewBuilder(src Source, opts Options) *Builder {
	if opts.TimeOffset == "" {
		opts.TimeOffset = "1hour"
	}
	if opts.GridResponse == "" {
		opts.GridResponse = ResponseNC
	}
	return &Builder{src: src, opts: opts}
}

// Sample is one dataset's sample request. TimeBound is nil for grids.
type Sample struct {
	DatasetID string
	Request   erddap.Request
	URL       string
	TimeBound TimeBound
}

// Build selects a strategy from the dataset's dataStructure. An id outside
// the datasetID character set yields *erddap.InvalidDatasetIDError.
func (b *Builder) Build(ctx context.Context, d erddap.Dataset) (*Sample, error) {
	if err := erddap.ValidateDatasetID(d.ID); err != nil {
		return nil, err
	}
	switch d.DataStructure {
	case erddap.StructureTable:
		return b.tabular(ctx, d)
	case erddap.StructureGrid:
		return b.grid(ctx, d)
	default:
		return nil, &UnsupportedShapeError{DatasetID: d.ID, DataStructure: d.DataStructure}
	}
}

// TabularResponse is "nc" for cdm_data_type Other and "ncCF" otherwise.
// The checker misreads plain nc of feature types as point data.
func TabularResponse(cdmDataType string) string {
	if cdmDataType == erddap.CDMOther {
		return ResponseNC
	}
	return ResponseNCCF
}

func (b *Builder) tabular(ctx context.Context, d erddap.Dataset) (*Sample, error) {
	tb := ResolveTimeBound(ctx, b.src, d, b.opts.TimeOffset)
	constraint, err := tb.Constraint()
	if err != nil {
		return nil, &TimeBoundError{DatasetID: d.ID, Err: err}
	}

	req := erddap.Request{
		Server:      b.src.Server(),
		Protocol:    erddap.Tabledap,
		DatasetID:   d.ID,
		Response:    TabularResponse(d.CDMDataType),
		Constraints: []string{constraint},
	}
	return &Sample{DatasetID: d.ID, Request: req, URL: req.URL(), TimeBound: tb}, nil
}

func (b *Builder) grid(ctx context.Context, d erddap.Dataset) (*Sample, error) {
	md, err := b.src.Info(ctx, d.ID)
	if err != nil {
		infoURL := erddap.Request{
			Server: b.src.Server(), Protocol: erddap.Info, DatasetID: d.ID + "/index", Response: "csv",
		}.URL()
		return nil, newFetchError(d.ID, infoURL, err)
	}

	terms, err := GridTerms(md.Dimensions, md.Variables)
	if err != nil {
		return nil, fmt.Errorf("sample: %s: %w", d.ID, err)
	}
	req := erddap.Request{
		Server:    b.src.Server(),
		Protocol:  erddap.Griddap,
		DatasetID: d.ID,
		Response:  b.opts.GridResponse,
		Variables: terms,
	}
	return &Sample{DatasetID: d.ID, Request: req, URL: req.URL()}, nil
}

// GridTerms returns one "<var>[(last):1:(last)]..." term per variable, with
// one index clause per dimension.
func GridTerms(dimensions, variables []string) ([]string, error) {
	if len(dimensions) == 0 {
		return nil, fmt.Errorf("grid has no dimensions")
	}
	if len(variables) == 0 {
		return nil, fmt.Errorf("grid has no variables")
	}
	clause := strings.Repeat(lastIndex, len(dimensions))
	terms := make([]string, len(variables))
	for i, v := range variables {
		terms[i] = v + clause
	}
	return terms, nil
}
