// Package filter narrows a server catalog down to the datasets a run should
// audit. It is pure: nothing here performs I/O.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"ccerddap/internal/erddap"
)

// Criteria selects datasets.
type Criteria struct {
	// SingleID keeps only ids containing this substring. Empty keeps all.
	SingleID string

	// Exclude is either a comma-separated list of literal ids or, when
	// ExcludeRegex is set, a regular expression.
	Exclude      string
	ExcludeRegex bool

	// ExtraExcludes are literal ids appended to the Exclude list, typically
	// read from an exclude file. Ignored in regex mode.
	ExtraExcludes []string
}

// Filter is a compiled Criteria.
type Filter struct {
	singleID string
	re       *regexp.Regexp
	literal  map[string]struct{}
}

// Compile validates c. An invalid regular expression is reported here so the
// run can be refused before any dataset is touched.
func Compile(c Criteria) (*Filter, error) {
	f := &Filter{singleID: c.SingleID}
	if c.ExcludeRegex {
		re, err := regexp.Compile(c.Exclude)
		if err != nil {
			return nil, fmt.Errorf("filter: invalid exclude regex %q: %w", c.Exclude, err)
		}
		f.re = re
		return f, nil
	}

	// An empty Exclude still yields the single entry "", which only matches
	// an empty id.
	parts := strings.Split(c.Exclude, ",")
	f.literal = make(map[string]struct{}, len(parts)+len(c.ExtraExcludes))
	for _, id := range parts {
		f.literal[id] = struct{}{}
	}
	for _, id := range c.ExtraExcludes {
		f.literal[id] = struct{}{}
	}
	return f, nil
}

// Keep reports whether a dataset id survives the filter: single-id first,
// exclude second.
func (f *Filter) Keep(id string) bool {
	if f.singleID != "" && !strings.Contains(id, f.singleID) {
		return false
	}
	if f.re != nil {
		return !f.re.MatchString(id)
	}
	_, excluded := f.literal[id]
	return !excluded
}

// Apply returns the datasets that survive the filter, in catalog order. The
// input slice is not modified.
func (f *Filter) Apply(datasets []erddap.Dataset) []erddap.Dataset {
	out := make([]erddap.Dataset, 0, len(datasets))
	for _, d := range datasets {
		if f.Keep(d.ID) {
			out = append(out, d)
		}
	}
	return out
}

// Apply compiles c and applies it to datasets in one step.
func Apply(datasets []erddap.Dataset, c Criteria) ([]erddap.Dataset, error) {
	f, err := Compile(c)
	if err != nil {
		return nil, err
	}
	return f.Apply(datasets), nil
}
