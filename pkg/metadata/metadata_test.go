package metadata

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smd/pkg/logger"
)

func writeSidecarFile(t *testing.T, dir, base string, sidecar map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(sidecar)
	require.NoError(t, err)
	path := filepath.Join(dir, base+".info.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestExtractDescription(t *testing.T) {
	dir := t.TempDir()
	infoPath := writeSidecarFile(t, dir, "video", map[string]interface{}{
		"description": "  A great video.\nSecond line.  ",
	})
	outPath := filepath.Join(dir, "video.description.txt")

	require.NoError(t, ExtractDescription(infoPath, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "A great video.\nSecond line.", string(data))
}

func TestExtractDescriptionEmpty(t *testing.T) {
	dir := t.TempDir()
	infoPath := writeSidecarFile(t, dir, "video", map[string]interface{}{
		"description": "   ",
	})
	outPath := filepath.Join(dir, "video.description.txt")

	assert.Error(t, ExtractDescription(infoPath, outPath))
	assert.NoFileExists(t, outPath)
}

func TestCommentsToCSV(t *testing.T) {
	dir := t.TempDir()
	infoPath := writeSidecarFile(t, dir, "video", map[string]interface{}{
		"comments": []map[string]interface{}{
			{
				"id":          "c1",
				"author":      "alice",
				"text":        "first line\nsecond line",
				"timestamp":   1700000000,
				"like_count":  12,
				"reply_count": 3,
			},
			{
				"id":     "c2",
				"author": "bob",
				"text":   "plain, with comma",
			},
		},
	})
	outPath := filepath.Join(dir, "video.comments.csv")

	require.NoError(t, CommentsToCSV(infoPath, outPath))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Author", "Text", "Timestamp", "Likes", "Replies", "Comment_ID"}, records[0])

	wantTS := time.Unix(1700000000, 0).Format("2006-01-02 15:04:05")
	assert.Equal(t, []string{"alice", "first line second line", wantTS, "12", "3", "c1"}, records[1])
	assert.Equal(t, []string{"bob", "plain, with comma", "", "0", "0", "c2"}, records[2])
}

func TestCommentsToCSVNoComments(t *testing.T) {
	dir := t.TempDir()
	infoPath := writeSidecarFile(t, dir, "video", map[string]interface{}{
		"description": "no comments here",
	})
	outPath := filepath.Join(dir, "video.comments.csv")

	assert.Error(t, CommentsToCSV(infoPath, outPath))
	assert.NoFileExists(t, outPath)
}

func TestProcessDir(t *testing.T) {
	dir := t.TempDir()
	writeSidecarFile(t, dir, "one", map[string]interface{}{
		"description": "first",
		"comments": []map[string]interface{}{
			{"id": "c1", "author": "alice", "text": "hi"},
		},
	})
	writeSidecarFile(t, dir, "two", map[string]interface{}{
		"description": "second",
	})
	// broken sidecars are skipped, not fatal
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.info.json"), []byte("{oops"), 0644))
	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.mp4"), []byte("x"), 0644))

	p := NewProcessor(true, logger.NewTestLogger())
	p.ProcessDir(dir)

	assert.FileExists(t, filepath.Join(dir, "one.description.txt"))
	assert.FileExists(t, filepath.Join(dir, "one.comments.csv"))
	assert.FileExists(t, filepath.Join(dir, "two.description.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "two.comments.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.description.txt"))
}

func TestProcessDirCommentsDisabled(t *testing.T) {
	dir := t.TempDir()
	writeSidecarFile(t, dir, "one", map[string]interface{}{
		"description": "text",
		"comments": []map[string]interface{}{
			{"id": "c1", "author": "alice", "text": "hi"},
		},
	})

	p := NewProcessor(false, logger.NewTestLogger())
	p.ProcessDir(dir)

	assert.FileExists(t, filepath.Join(dir, "one.description.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "one.comments.csv"))
}

func TestProcessDirMissingDirectory(t *testing.T) {
	p := NewProcessor(true, logger.NewTestLogger())
	// must not panic
	p.ProcessDir(filepath.Join(t.TempDir(), "nope"))
}
