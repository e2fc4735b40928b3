package journal

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.BeginSession("s1"))
	assert.Equal(t, "s1", j.Session())

	require.NoError(t, j.Record(Event{Tick: 1, Kind: "cell_revealed", HasCell: true, Row: 2, Column: 3}))
	require.NoError(t, j.Record(Event{Tick: 2, Kind: "hive_grew", Detail: `{"revealed":1}`}))

	got, err := j.Recent(10)
	require.NoError(t, err)
	want := []Event{
		{Tick: 2, Kind: "hive_grew", Detail: `{"revealed":1}`},
		{Tick: 1, Kind: "cell_revealed", HasCell: true, Row: 2, Column: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Recent mismatch (-want +got):\n%s", diff)
	}

	got, err = j.Recent(1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecentIsScopedToSession(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.BeginSession("old"))
	require.NoError(t, j.Record(Event{Tick: 1, Kind: "tick"}))
	require.NoError(t, j.EndSession(4, 1))

	require.NoError(t, j.BeginSession("new"))
	got, err := j.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Error(t, j.BeginSession("old"), "session ids are unique")
}

func TestGrowthSeries(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.BeginSession("s"))
	for _, ev := range []Event{
		{Tick: 0, Kind: "cell_revealed"},
		{Tick: 3, Kind: "cell_revealed"},
		{Tick: 3, Kind: "cell_revealed"},
		{Tick: 3, Kind: "cell_opened"},
		{Tick: 7, Kind: "cell_revealed"},
	} {
		require.NoError(t, j.Record(ev))
	}

	got, err := j.GrowthSeries("cell_revealed")
	require.NoError(t, err)
	assert.Equal(t, []GrowthPoint{{0, 1}, {3, 3}, {7, 4}}, got)
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.BeginSession("a"))
	require.NoError(t, j.Record(Event{Tick: 1, Kind: "tick"}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, j.BeginSession("b"))
	require.NoError(t, j.Record(Event{Tick: 1, Kind: "tick"}))
}
