package erddap

import (
	"context"
	"fmt"
)

// catalogColumns are requested from allDatasets, in this order.
var catalogColumns = []string{
	"datasetID",
	"dataStructure",
	"cdm_data_type",
	"tabledap",
	"griddap",
	"minTime",
	"maxTime",
}

// CatalogUnavailableError reports that the dataset list could not be read.
// Without it there is nothing to audit, so callers treat it as fatal.
type CatalogUnavailableError struct {
	Server string
	Err    error
}

func (e *CatalogUnavailableError) Error() string {
	return fmt.Sprintf("erddap: catalog unavailable at %s: %v", e.Server, e.Err)
}

func (e *CatalogUnavailableError) Unwrap() error { return e.Err }

// Catalog returns every dataset the server lists, minus the synthetic
// allDatasets entry. Datasets without time bounds are returned with empty
// MinTime/MaxTime. Ids outside the datasetID character set are kept so they
// are reported per dataset; see ValidateDatasetID.
func (c *Client) Catalog(ctx context.Context) ([]Dataset, error) {
	req := c.Request(Tabledap, AllDatasetsID, "csv")
	req.Variables = catalogColumns

	tbl, err := c.table(ctx, req, true)
	if err != nil {
		return nil, &CatalogUnavailableError{Server: c.server, Err: err}
	}
	for _, col := range []string{"datasetID", "dataStructure"} {
		if !tbl.HasColumn(col) {
			return nil, &CatalogUnavailableError{
				Server: c.server,
				Err:    fmt.Errorf("catalog has no %q column", col),
			}
		}
	}

	seen := make(map[string]struct{}, len(tbl.Rows))
	out := make([]Dataset, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		id := tbl.Value(row, "datasetID")
		if id == "" {
			return nil, &CatalogUnavailableError{
				Server: c.server,
				Err:    fmt.Errorf("catalog row %d has an empty datasetID", i+1),
			}
		}
		if _, dup := seen[id]; dup {
			return nil, &CatalogUnavailableError{
				Server: c.server,
				Err:    fmt.Errorf("catalog lists datasetID %q more than once", id),
			}
		}
		seen[id] = struct{}{}
		if id == AllDatasetsID {
			continue
		}

		out = append(out, Dataset{
			ID:            id,
			DataStructure: tbl.Value(row, "dataStructure"),
			CDMDataType:   tbl.Value(row, "cdm_data_type"),
			HasTabledap:   !IsMissing(tbl.Value(row, "tabledap")),
			HasGriddap:    !IsMissing(tbl.Value(row, "griddap")),
			MinTime:       cell(tbl.Value(row, "minTime")),
			MaxTime:       cell(tbl.Value(row, "maxTime")),
		})
	}
	return out, nil
}

func cell(s string) string {
	if IsMissing(s) {
		return ""
	}
	return s
}
