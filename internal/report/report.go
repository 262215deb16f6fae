// Package report reads the structured reports written by the compliance
// checker and renders per-standard score lines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Report formats with a machine-readable score section.
const (
	formatJSON    = "json"
	formatJSONNew = "json_new"
)

// Structured reports whether reports in format carry parseable scores.
func Structured(format string) bool {
	return format == formatJSON || format == formatJSONNew
}

// Score is one standard's result. The numbers are kept as written by the
// checker so they print the same way.
type Score struct {
	Scored   json.Number `json:"scored_points"`
	Possible json.Number `json:"possible_points"`
}

// Line renders the console summary for one standard.
func Line(standard string, s Score) string {
	return fmt.Sprintf("%s: CC Scored %s out of %s possible points", standard, s.Scored, s.Possible)
}

// Lines renders one line per standard, in the order given.
func Lines(standards []string, scores map[string]Score) []string {
	out := make([]string, 0, len(standards))
	for _, std := range standards {
		if s, ok := scores[std]; ok {
			out = append(out, Line(std, s))
		}
	}
	return out
}

// ParseError reports a structured report that lacks an expected entry.
type ParseError struct {
	Path     string
	Standard string
	Key      string
	Err      error
}

func (e *ParseError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("report: %s: standard %q has no %q", e.Path, e.Standard, e.Key)
	case e.Standard != "":
		return fmt.Sprintf("report: %s: no results for standard %q", e.Path, e.Standard)
	default:
		return fmt.Sprintf("report: %s: %v", e.Path, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFile reads the report at path. See Parse.
func ParseFile(path, format string, standards []string) (map[string]Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()
	return parse(f, path, format, standards)
}

// Parse extracts the scores of every requested standard. "json" reports key
// results by standard at the top level; "json_new" nests them one level
// down, under the checked source.
func Parse(r io.Reader, format string, standards []string) (map[string]Score, error) {
	return parse(r, "<report>", format, standards)
}

func parse(r io.Reader, name, format string, standards []string) (map[string]Score, error) {
	if !Structured(format) {
		return nil, &ParseError{Path: name, Err: fmt.Errorf("format %q has no scores", format)}
	}

	var doc map[string]json.RawMessage
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Path: name, Err: fmt.Errorf("decode: %w", err)}
	}

	if format == formatJSONNew {
		nested, err := unnest(doc)
		if err != nil {
			return nil, &ParseError{Path: name, Err: err}
		}
		doc = nested
	}

	scores := make(map[string]Score, len(standards))
	for _, std := range standards {
		raw, ok := doc[std]
		if !ok {
			return nil, &ParseError{Path: name, Standard: std}
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, &ParseError{Path: name, Standard: std, Err: err}
		}
		var s Score
		for key, dst := range map[string]*json.Number{
			"scored_points":   &s.Scored,
			"possible_points": &s.Possible,
		} {
			v, ok := fields[key]
			if !ok {
				return nil, &ParseError{Path: name, Standard: std, Key: key}
			}
			if err := json.Unmarshal(v, dst); err != nil {
				return nil, &ParseError{Path: name, Standard: std, Key: key, Err: err}
			}
		}
		scores[std] = s
	}
	return scores, nil
}

// unnest merges the per-source objects of a json_new report. The checker
// writes a single source per run, so collisions do not occur in practice;
// sources are visited in name order to stay deterministic if they do.
func unnest(doc map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]json.RawMessage)
	for _, k := range keys {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(doc[k], &inner); err != nil {
			return nil, fmt.Errorf("source %q is not an object: %w", k, err)
		}
		for std, v := range inner {
			if _, seen := out[std]; !seen {
				out[std] = v
			}
		}
	}
	return out, nil
}
