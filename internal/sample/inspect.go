package sample

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
)

// Summary is what Inspect learns from a sample's header.
type Summary struct {
	Variables   int
	Conventions string
}

// Inspect reads the NetCDF-3 header of a downloaded sample. ERDDAP's nc and
// ncCF responses are classic NetCDF, so a failure here usually means the
// server sent something else; the checker still gets the final word.
func Inspect(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sample: inspect: %w", err)
	}
	defer f.Close()

	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("sample: inspect %s: %w", path, err)
	}
	s := &Summary{Variables: len(nc.Header.Variables())}
	switch v := nc.Header.GetAttribute("", "Conventions").(type) {
	case string:
		s.Conventions = strings.TrimSpace(v)
	case []byte:
		s.Conventions = strings.TrimSpace(string(v))
	}
	return s, nil
}
