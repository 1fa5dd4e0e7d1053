package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smd/pkg/logger"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	l := New(filepath.Join(t.TempDir(), "history.csv"), logger.NewTestLogger())
	l.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return l
}

func TestRecordAppendsCSVRow(t *testing.T) {
	l := testLog(t)

	l.Record("https://youtu.be/abc", "Success")

	data, err := os.ReadFile(l.path)
	require.NoError(t, err)
	assert.Equal(t, "https://youtu.be/abc,Success,2025-03-14 09:26:53\n", string(data))
}

func TestRecordQuotesStatusWithComma(t *testing.T) {
	l := testLog(t)

	l.Record("https://youtu.be/abc", "Failed: network error, retry exhausted")

	data, err := os.ReadFile(l.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Failed: network error, retry exhausted"`)
}

func TestTailReturnsRecentEntriesOldestFirst(t *testing.T) {
	l := testLog(t)

	l.Record("https://one", "Success")
	l.Record("https://two", "Failed: boom")
	l.Record("https://three", "Success")

	entries, err := l.Tail(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://two", entries[0].URL)
	assert.Equal(t, "Failed: boom", entries[0].Status)
	assert.Equal(t, "https://three", entries[1].URL)
	assert.Equal(t, "2025-03-14 09:26:53", entries[1].Timestamp)
}

func TestTailZeroReturnsEverything(t *testing.T) {
	l := testLog(t)

	l.Record("https://one", "Success")
	l.Record("https://two", "Success")

	entries, err := l.Tail(0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTailMissingFile(t *testing.T) {
	l := testLog(t)

	entries, err := l.Tail(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTailToleratesShortRows(t *testing.T) {
	l := testLog(t)
	require.NoError(t, os.WriteFile(l.path, []byte("https://one,Success\n"), 0644))

	entries, err := l.Tail(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://one", entries[0].URL)
	assert.Equal(t, "Success", entries[0].Status)
	assert.Equal(t, "", entries[0].Timestamp)
}
