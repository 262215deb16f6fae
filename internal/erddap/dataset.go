package erddap

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AllDatasetsID is the synthetic catalog entry every ERDDAP server lists
// for its own catalog table.
const AllDatasetsID = "allDatasets"

// Data structures reported in the catalog's dataStructure column.
const (
	StructureTable = "table"
	StructureGrid  = "grid"
)

// CDMOther is the cdm_data_type of tabular datasets with no discrete
// sampling geometry.
const CDMOther = "Other"

// datasetIDPattern is the character set ERDDAP allows in a datasetID.
var datasetIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// InvalidDatasetIDError reports a catalog id outside the ERDDAP datasetID
// character set. Such ids are never joined into URLs or local paths.
type InvalidDatasetIDError struct {
	ID string
}

func (e *InvalidDatasetIDError) Error() string {
	return fmt.Sprintf("erddap: invalid datasetID %q: only letters, digits and underscore are allowed", e.ID)
}

// ValidateDatasetID returns an *InvalidDatasetIDError unless id is made of
// letters, digits and underscores only.
func ValidateDatasetID(id string) error {
	if !datasetIDPattern.MatchString(id) {
		return &InvalidDatasetIDError{ID: id}
	}
	return nil
}

// Dataset is one row of the server catalog.
type Dataset struct {
	ID            string
	DataStructure string
	CDMDataType   string
	HasTabledap   bool
	HasGriddap    bool

	// MinTime and MaxTime hold the catalog cells verbatim. Missing bounds
	// are normalized to "".
	MinTime string
	MaxTime string
}

// StatedMaxTime parses the catalog's maxTime. ok is false when the bound is
// absent or unparseable.
func (d Dataset) StatedMaxTime() (t time.Time, ok bool) {
	if d.MaxTime == "" {
		return time.Time{}, false
	}
	t, err := ParseTime(d.MaxTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsMissing reports whether a catalog cell stands for "no value".
func IsMissing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses the ISO-8601 timestamps ERDDAP emits. Timestamps without
// a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("erddap: unrecognized timestamp %q", s)
}

// FormatTime renders t the way ERDDAP query constraints expect it.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
