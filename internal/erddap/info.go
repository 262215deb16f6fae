package erddap

import (
	"context"
	"fmt"
)

// Row types in an info/<id>/index.csv listing.
const (
	rowDimension = "dimension"
	rowVariable  = "variable"
)

// Metadata is the variable/dimension listing of one dataset, in listing
// order.
type Metadata struct {
	Dimensions []string
	Variables  []string
}

// Info fetches <server>/info/<id>/index.csv and collects the dimension and
// variable rows. Attribute rows are ignored.
func (c *Client) Info(ctx context.Context, datasetID string) (*Metadata, error) {
	if err := ValidateDatasetID(datasetID); err != nil {
		return nil, err
	}
	tbl, err := c.table(ctx, c.Request(Info, datasetID+"/index", "csv"), false)
	if err != nil {
		return nil, fmt.Errorf("erddap: info for %s: %w", datasetID, err)
	}
	for _, col := range []string{"Row Type", "Variable Name"} {
		if !tbl.HasColumn(col) {
			return nil, fmt.Errorf("erddap: info for %s has no %q column", datasetID, col)
		}
	}

	info := &Metadata{}
	for _, row := range tbl.Rows {
		name := tbl.Value(row, "Variable Name")
		switch tbl.Value(row, "Row Type") {
		case rowDimension:
			info.Dimensions = append(info.Dimensions, name)
		case rowVariable:
			info.Variables = append(info.Variables, name)
		}
	}
	return info, nil
}
