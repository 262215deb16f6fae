package erddap

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoTimeData is returned by LatestTime when the dataset has no rows.
var ErrNoTimeData = errors.New("erddap: dataset returned no time values")

// LatestTime asks the server for the dataset's newest timestamp with
// time&orderByMax("time"), requesting only the time column.
func (c *Client) LatestTime(ctx context.Context, datasetID string) (time.Time, error) {
	if err := ValidateDatasetID(datasetID); err != nil {
		return time.Time{}, err
	}
	req := c.Request(Tabledap, datasetID, "csv")
	req.Variables = []string{"time"}
	req.Constraints = []string{`orderByMax("time")`}

	tbl, err := c.table(ctx, req, true)
	if err != nil {
		return time.Time{}, fmt.Errorf("erddap: latest time for %s: %w", datasetID, err)
	}
	if !tbl.HasColumn("time") {
		return time.Time{}, fmt.Errorf("erddap: latest time for %s: response has no time column", datasetID)
	}
	if len(tbl.Rows) == 0 {
		return time.Time{}, ErrNoTimeData
	}

	raw := tbl.Value(tbl.Rows[len(tbl.Rows)-1], "time")
	if IsMissing(raw) {
		return time.Time{}, ErrNoTimeData
	}
	return ParseTime(raw)
}
