package sample

import (
	"errors"
	"fmt"

	"ccerddap/internal/datasource/httpds"
	"ccerddap/internal/parser/html"
)

// maxBodyText caps the server diagnostic kept on a FetchError.
const maxBodyText = 512

// UnsupportedShapeError reports a dataStructure the builder has no strategy
// for. It is local to one dataset.
type UnsupportedShapeError struct {
	DatasetID     string
	DataStructure string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("sample: dataset %s has unsupported dataStructure %q", e.DatasetID, e.DataStructure)
}

// TimeBoundError reports that no time lower bound could be determined for a
// tabular dataset.
type TimeBoundError struct {
	DatasetID string
	Err       error
}

func (e *TimeBoundError) Error() string {
	return fmt.Sprintf("sample: no time bound for %s: %v", e.DatasetID, e.Err)
}

func (e *TimeBoundError) Unwrap() error { return e.Err }

// FetchError reports a failed download of sample data or of the metadata
// needed to build the sample request. StatusCode and Body are set when the
// server answered with a non-2xx status; Body is the server's message reduced
// to one line.
type FetchError struct {
	DatasetID  string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sample: fetch %s for %s: status %d: %s", e.URL, e.DatasetID, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("sample: fetch %s for %s: %v", e.URL, e.DatasetID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func newFetchError(id, url string, err error) *FetchError {
	fe := &FetchError{DatasetID: id, URL: url, Err: err}
	var se *httpds.StatusError
	if errors.As(err, &se) {
		fe.StatusCode = se.StatusCode
		fe.Body = html.ErrorMessage(se.Body, maxBodyText)
		if fe.URL == "" {
			fe.URL = se.URL
		}
	}
	return fe
}
