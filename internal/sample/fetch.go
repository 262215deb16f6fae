package sample

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"ccerddap/internal/erddap"
)

// Downloaded is a sample written to the work directory.
type Downloaded struct {
	Path     string
	Size     int64
	Checksum uint64
}

// ChecksumHex renders the xxh3 checksum as 16 hex digits.
func (d *Downloaded) ChecksumHex() string {
	return fmt.Sprintf("%016x", d.Checksum)
}

// Fetcher downloads samples into a work directory.
type Fetcher struct {
	http    erddap.Fetcher
	workDir string
}

// NewFetcher returns a Fetcher writing into workDir.
func NewFetcher(f erddap.Fetcher, workDir string) *Fetcher {
	return &Fetcher{http: f, workDir: workDir}
}

// Path is where the sample for datasetID lands. Ids that could name a file
// outside the work dir are rejected.
func (f *Fetcher) Path(datasetID string) (string, error) {
	if err := erddap.ValidateDatasetID(datasetID); err != nil {
		return "", err
	}
	return filepath.Join(f.workDir, datasetID+".nc"), nil
}

// Fetch downloads s. Nothing is written unless the server answered 2xx; an
// existing file of the same name is overwritten.
func (f *Fetcher) Fetch(ctx context.Context, s *Sample) (*Downloaded, error) {
	path, err := f.Path(s.DatasetID)
	if err != nil {
		return nil, err
	}
	payload, err := f.http.Fetch(ctx, s.URL)
	if err != nil {
		return nil, newFetchError(s.DatasetID, s.URL, err)
	}

	if err := os.MkdirAll(f.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("sample: create work dir: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return nil, fmt.Errorf("sample: write %s: %w", path, err)
	}
	return &Downloaded{
		Path:     path,
		Size:     int64(len(payload)),
		Checksum: xxh3.Hash(payload),
	}, nil
}
