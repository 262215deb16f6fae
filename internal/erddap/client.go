// Package erddap talks to an ERDDAP server: it reads the dataset catalog,
// per-dataset variable/dimension listings and the latest timestamp of a
// tabular dataset, and renders download URLs.
package erddap

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	csvtable "ccerddap/internal/parser/csv"
)

// Fetcher retrieves a URL's body. *httpds.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client reads metadata from one ERDDAP server.
type Client struct {
	server string
	host   string
	http   Fetcher
}

// NewClient validates server (e.g. "https://host/erddap") and returns a
// Client that issues requests through f.
func NewClient(server string, f Fetcher) (*Client, error) {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("erddap: parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("erddap: server url %q must use http or https", server)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("erddap: server url %q has no host", server)
	}
	if f == nil {
		return nil, fmt.Errorf("erddap: fetcher must not be nil")
	}
	return &Client{server: server, host: u.Host, http: f}, nil
}

// Server returns the normalized server base URL.
func (c *Client) Server() string { return c.server }

// Host returns the server's host[:port], used to namespace report output.
func (c *Client) Host() string { return c.host }

// Request returns a Request bound to this server.
func (c *Client) Request(p Protocol, datasetID, response string) Request {
	return Request{Server: c.server, Protocol: p, DatasetID: datasetID, Response: response}
}

func (c *Client) table(ctx context.Context, req Request, unitsRow bool) (*csvtable.Table, error) {
	body, err := c.http.Fetch(ctx, req.URL())
	if err != nil {
		return nil, err
	}
	return csvtable.ReadTable(bytes.NewReader(body), csvtable.Options{
		UnitsRow:  unitsRow,
		TrimSpace: true,
	})
}
