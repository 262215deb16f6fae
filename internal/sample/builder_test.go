package sample

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccerddap/internal/datasource/httpds"
	"ccerddap/internal/erddap"
)

type fakeSource struct {
	latest     time.Time
	latestErr  error
	latestHits int
	md         *erddap.Metadata
	mdErr      error
}

func (f *fakeSource) Server() string { return "https://data.example.org/erddap" }

func (f *fakeSource) LatestTime(context.Context, string) (time.Time, error) {
	f.latestHits++
	return f.latest, f.latestErr
}

func (f *fakeSource) Info(context.Context, string) (*erddap.Metadata, error) {
	return f.md, f.mdErr
}

func TestTabularResponse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ResponseNC, TabularResponse("Other"))
	for _, cdm := range []string{"TimeSeries", "Point", "Profile", "Trajectory", "TimeSeriesProfile", ""} {
		assert.Equal(t, ResponseNCCF, TabularResponse(cdm), cdm)
	}
}

func TestBuild_TabularRelative(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	b := NewBuilder(src, Options{TimeOffset: "2days"})
	s, err := b.Build(context.Background(), erddap.Dataset{
		ID: "buoyA", DataStructure: "table", CDMDataType: "TimeSeries",
		MaxTime: "2024-01-01T12:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, Relative{Offset: "2days"}, s.TimeBound)
	assert.Equal(t, "https://data.example.org/erddap/tabledap/buoyA.ncCF?time%3Emax(time)-2days", s.URL)
	assert.Zero(t, src.latestHits, "stated max time must not trigger discovery")
}

func TestBuild_TabularDiscovered(t *testing.T) {
	t.Parallel()

	src := &fakeSource{latest: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	b := NewBuilder(src, Options{})
	for _, maxTime := range []string{"", "not-a-time"} {
		s, err := b.Build(context.Background(), erddap.Dataset{
			ID: "plain", DataStructure: "table", CDMDataType: "Other", MaxTime: maxTime,
		})
		require.NoError(t, err)

		tb, ok := s.TimeBound.(DiscoveredAbsolute)
		require.True(t, ok, "got %T", s.TimeBound)
		assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), tb.Since)
		assert.Equal(t, ResponseNC, s.Request.Response)
		assert.Equal(t, []string{"time>=2024-01-01T11:00:00Z"}, s.Request.Constraints)
		assert.NotContains(t, s.URL, "max(time)")
	}
	assert.Equal(t, 2, src.latestHits)
}

func TestBuild_TabularUnresolvable(t *testing.T) {
	t.Parallel()

	boom := errors.New("no rows")
	b := NewBuilder(&fakeSource{latestErr: boom}, Options{})
	_, err := b.Build(context.Background(), erddap.Dataset{ID: "x", DataStructure: "table"})

	var tbe *TimeBoundError
	require.ErrorAs(t, err, &tbe)
	assert.Equal(t, "x", tbe.DatasetID)
	assert.ErrorIs(t, err, boom)
}

func TestBuild_Grid(t *testing.T) {
	t.Parallel()

	src := &fakeSource{md: &erddap.Metadata{
		Dimensions: []string{"time", "lat", "lon"},
		Variables:  []string{"temp", "sal"},
	}}
	s, err := NewBuilder(src, Options{}).Build(context.Background(), erddap.Dataset{ID: "sst", DataStructure: "grid"})
	require.NoError(t, err)

	const term = "[(last):1:(last)][(last):1:(last)][(last):1:(last)]"
	assert.Equal(t, []string{"temp" + term, "sal" + term}, s.Request.Variables)
	assert.Nil(t, s.TimeBound)
	assert.True(t, strings.HasPrefix(s.URL, "https://data.example.org/erddap/griddap/sst.nc?"))

	query := s.URL[strings.Index(s.URL, "?")+1:]
	parts := strings.Split(query, ",")
	require.Len(t, parts, 2)
	for _, p := range parts {
		assert.Equal(t, 3, strings.Count(p, "(last)%3A1%3A(last)"))
	}
}

func TestBuild_GridResponseOption(t *testing.T) {
	t.Parallel()

	src := &fakeSource{md: &erddap.Metadata{Dimensions: []string{"time"}, Variables: []string{"v"}}}
	s, err := NewBuilder(src, Options{GridResponse: "nc4"}).Build(context.Background(), erddap.Dataset{ID: "g", DataStructure: "grid"})
	require.NoError(t, err)
	assert.Equal(t, "nc4", s.Request.Response)
}

func TestBuild_GridErrors(t *testing.T) {
	t.Parallel()

	status := &httpds.StatusError{URL: "u", StatusCode: 404, Body: "Not Found"}
	_, err := NewBuilder(&fakeSource{mdErr: status}, Options{}).
		Build(context.Background(), erddap.Dataset{ID: "g", DataStructure: "grid"})
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 404, fe.StatusCode)
	assert.Equal(t, "https://data.example.org/erddap/info/g/index.csv", fe.URL)

	_, err = NewBuilder(&fakeSource{md: &erddap.Metadata{Variables: []string{"v"}}}, Options{}).
		Build(context.Background(), erddap.Dataset{ID: "g", DataStructure: "grid"})
	assert.ErrorContains(t, err, "no dimensions")

	_, err = NewBuilder(&fakeSource{md: &erddap.Metadata{Dimensions: []string{"time"}}}, Options{}).
		Build(context.Background(), erddap.Dataset{ID: "g", DataStructure: "grid"})
	assert.ErrorContains(t, err, "no variables")
}

func TestBuild_UnsupportedShape(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder(&fakeSource{}, Options{}).
		Build(context.Background(), erddap.Dataset{ID: "odd", DataStructure: "swath"})
	var us *UnsupportedShapeError
	require.ErrorAs(t, err, &us)
	assert.Equal(t, "swath", us.DataStructure)
}

func TestBuild_InvalidDatasetID(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	for _, d := range []erddap.Dataset{
		{ID: "../escaped", DataStructure: erddap.StructureTable},
		{ID: "a/b", DataStructure: erddap.StructureGrid},
	} {
		_, err := NewBuilder(src, Options{}).Build(context.Background(), d)
		var inv *erddap.InvalidDatasetIDError
		require.ErrorAs(t, err, &inv, d.ID)
		assert.Equal(t, d.ID, inv.ID)
	}
	assert.Zero(t, src.latestHits, "no server query for a rejected id")
}

// TestBuild_DiscoveryEndToEnd runs the tabular strategy against a live
// server double whose catalog has no maxTime for buoyA.
func TestBuild_DiscoveryEndToEnd(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Path+"?"+r.URL.RawQuery)
		switch r.URL.Path {
		case "/erddap/tabledap/allDatasets.csv":
			_, _ = w.Write([]byte("datasetID,dataStructure,cdm_data_type,tabledap,griddap,minTime,maxTime\n" +
				",,,,,UTC,UTC\n" +
				"allDatasets,table,Other,x,,,\n" +
				"buoyA,table,TimeSeries,x,,,NaN\n"))
		case "/erddap/tabledap/buoyA.csv":
			_, _ = w.Write([]byte("time\nUTC\n2024-01-01T12:00:00Z\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := erddap.NewClient(srv.URL+"/erddap", httpds.NewClient(httpds.Config{Timeout: 5 * time.Second}))
	require.NoError(t, err)

	ctx := context.Background()
	cat, err := client.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, cat, 1)

	s, err := NewBuilder(client, Options{}).Build(ctx, cat[0])
	require.NoError(t, err)

	require.Len(t, queries, 2)
	assert.Equal(t, "/erddap/tabledap/buoyA.csv?time&orderByMax(%22time%22)", queries[1])
	assert.Equal(t, []string{"time>=2024-01-01T11:00:00Z"}, s.Request.Constraints)
	assert.Equal(t, srv.URL+"/erddap/tabledap/buoyA.ncCF?time%3E%3D2024-01-01T11%3A00%3A00Z", s.URL)
}
