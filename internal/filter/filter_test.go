package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccerddap/internal/erddap"
)

func catalog(ids ...string) []erddap.Dataset {
	out := make([]erddap.Dataset, len(ids))
	for i, id := range ids {
		out[i] = erddap.Dataset{ID: id, DataStructure: erddap.StructureTable}
	}
	return out
}

func ids(ds []erddap.Dataset) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}

func TestApply_Identity(t *testing.T) {
	t.Parallel()

	for _, cat := range [][]erddap.Dataset{
		nil,
		catalog("a"),
		catalog("buoyA", "buoyB", "sst_daily", "wind"),
	} {
		got, err := Apply(cat, Criteria{})
		require.NoError(t, err)
		assert.Equal(t, ids(cat), ids(got))
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	cat := catalog("buoyA", "buoyB", "sst_daily", "sst_monthly", "wind")
	cases := []struct {
		name string
		c    Criteria
		want []string
	}{
		{
			name: "literal exclude",
			c:    Criteria{Exclude: "buoyB,wind"},
			want: []string{"buoyA", "sst_daily", "sst_monthly"},
		},
		{
			name: "literal exclude is exact",
			c:    Criteria{Exclude: "buoy"},
			want: []string{"buoyA", "buoyB", "sst_daily", "sst_monthly", "wind"},
		},
		{
			name: "exclude file entries",
			c:    Criteria{Exclude: "wind", ExtraExcludes: []string{"sst_daily"}},
			want: []string{"buoyA", "buoyB", "sst_monthly"},
		},
		{
			name: "regex exclude searches",
			c:    Criteria{Exclude: "sst", ExcludeRegex: true},
			want: []string{"buoyA", "buoyB", "wind"},
		},
		{
			name: "regex ignores extra excludes",
			c:    Criteria{Exclude: "^buoy", ExcludeRegex: true, ExtraExcludes: []string{"wind"}},
			want: []string{"sst_daily", "sst_monthly", "wind"},
		},
		{
			name: "single id is a substring match",
			c:    Criteria{SingleID: "sst"},
			want: []string{"sst_daily", "sst_monthly"},
		},
		{
			name: "single id then exclude",
			c:    Criteria{SingleID: "sst", Exclude: "sst_daily"},
			want: []string{"sst_monthly"},
		},
		{
			name: "single id with no match",
			c:    Criteria{SingleID: "nothing"},
			want: []string{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Apply(cat, tc.c)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestExcludedIDAlwaysAbsent(t *testing.T) {
	t.Parallel()

	cat := catalog("a", "b.c", "d(e)", "f+g")
	for _, d := range cat {
		got, err := Apply(cat, Criteria{Exclude: d.ID})
		require.NoError(t, err)
		assert.NotContains(t, ids(got), d.ID)
		assert.Len(t, got, len(cat)-1)
	}
}

func TestEmptyExcludeMatchesOnlyEmptyID(t *testing.T) {
	t.Parallel()

	f, err := Compile(Criteria{})
	require.NoError(t, err)
	assert.False(t, f.Keep(""))
	assert.True(t, f.Keep("x"))
}

func TestCompile_InvalidRegex(t *testing.T) {
	t.Parallel()

	_, err := Compile(Criteria{Exclude: "sst(", ExcludeRegex: true})
	assert.ErrorContains(t, err, "invalid exclude regex")

	_, err = Apply(catalog("a"), Criteria{Exclude: "[", ExcludeRegex: true})
	assert.Error(t, err)
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	cat := catalog("a", "b", "c")
	_, err := Apply(cat, Criteria{Exclude: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(cat))
}
