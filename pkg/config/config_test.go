package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smd/pkg/logger"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	return NewStore(path, logger.NewTestLogger()), path
}

func writeRaw(t *testing.T, path string, raw map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func readRaw(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestLoadCreatesFileWithDefaults(t *testing.T) {
	store, path := testStore(t)

	cfg := store.Load()

	require.FileExists(t, path)
	assert.Equal(t, DefaultConfig(), cfg)

	raw := readRaw(t, path)
	assert.Equal(t, "media", raw["download_directory"])
	assert.Equal(t, "show_all", raw["default_format"])
	assert.Equal(t, "192", raw["mp3_quality"])

	auth, ok := raw["authentication"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "chrome", auth["cookie_browser"])
	assert.Equal(t, true, auth["use_browser_cookies"])
}

func TestLoadFillsMissingKeys(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{
		"download_directory": "custom",
	})

	cfg := store.Load()

	assert.Equal(t, "custom", cfg.DownloadDirectory)
	assert.Equal(t, "show_all", cfg.DefaultFormat)
	assert.Equal(t, "192", cfg.MP3Quality)
	assert.Equal(t, 200, cfg.MaxComments)
	assert.True(t, cfg.OrganizeDownloads)
	assert.Equal(t, ".smd_sessions", cfg.Authentication.SessionDirectory)

	// repairs are persisted
	raw := readRaw(t, path)
	assert.Equal(t, "custom", raw["download_directory"])
	assert.Contains(t, raw, "history_file")
	assert.Contains(t, raw, "authentication")
}

func TestLoadRepairsInvalidMP3Quality(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{"mp3_quality": "500"})

	cfg := store.Load()
	assert.Equal(t, "192", cfg.MP3Quality)
}

func TestLoadCoercesNumericMP3Quality(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{"mp3_quality": 320})

	cfg := store.Load()
	assert.Equal(t, "320", cfg.MP3Quality)

	raw := readRaw(t, path)
	assert.Equal(t, "320", raw["mp3_quality"])
}

func TestLoadKeepsMixedCaseValidFormat(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{"default_format": "MP3"})

	cfg := store.Load()
	assert.Equal(t, "MP3", cfg.DefaultFormat)
}

func TestLoadRepairsInvalidFormat(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{"default_format": "8k"})

	cfg := store.Load()
	assert.Equal(t, "show_all", cfg.DefaultFormat)
}

func TestLoadRepairsMaxComments(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"negative", -5, 200},
		{"zero", 0, 200},
		{"too large", 20000, 200},
		{"non-integer string", "many", 200},
		{"bool", true, 200},
		{"fractional", 10.5, 200},
		{"numeric string", "500", 500},
		{"valid", 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, path := testStore(t)
			writeRaw(t, path, map[string]interface{}{"max_comments": tt.value})

			cfg := store.Load()
			assert.Equal(t, tt.want, cfg.MaxComments)
		})
	}
}

func TestLoadRepairsWrongTypedBooleans(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{
		"organize_downloads": "yes",
		"download_metadata":  1,
		"download_comments":  true,
	})

	cfg := store.Load()
	assert.True(t, cfg.OrganizeDownloads)
	assert.True(t, cfg.DownloadMetadata)
	assert.True(t, cfg.DownloadComments)
	assert.False(t, cfg.DownloadSubtitles)
}

func TestLoadRepairsAuthenticationBlock(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{
		"authentication": map[string]interface{}{
			"instagram_username":  42,
			"use_browser_cookies": "nope",
		},
	})

	cfg := store.Load()
	assert.Equal(t, "", cfg.Authentication.InstagramUsername)
	assert.True(t, cfg.Authentication.UseBrowserCookies)
	assert.Equal(t, "chrome", cfg.Authentication.CookieBrowser)
	assert.Equal(t, ".smd_sessions", cfg.Authentication.SessionDirectory)
}

func TestLoadUnparseableFileLeftUntouched(t *testing.T) {
	store, path := testStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cfg := store.Load()
	assert.Equal(t, DefaultConfig(), cfg)

	// the broken file must not be overwritten
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestLoadIsIdempotent(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{
		"mp3_quality":  "bad",
		"max_comments": -1,
	})

	first := store.Load()
	afterFirst, err := os.ReadFile(path)
	require.NoError(t, err)

	second := store.Load()
	afterSecond, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, string(afterFirst), string(afterSecond))
}

func TestLoadPersistedMatchesInMemory(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{
		"default_format": "bogus",
		"mp3_quality":    64,
	})

	cfg := store.Load()

	fresh := NewStore(path, logger.NewTestLogger())
	reloaded := fresh.Load()
	assert.Equal(t, cfg, reloaded)
}

func TestValidFieldsSurviveLoad(t *testing.T) {
	store, path := testStore(t)
	writeRaw(t, path, map[string]interface{}{
		"download_directory": "dl",
		"history_file":       "h.csv",
		"default_format":     "720p",
		"mp3_quality":        "320",
		"organize_downloads": false,
		"download_metadata":  false,
		"download_comments":  true,
		"download_subtitles": true,
		"max_comments":       42,
		"authentication": map[string]interface{}{
			"instagram_username":  "someone",
			"use_browser_cookies": false,
			"cookie_browser":      "firefox",
			"session_directory":   ".sessions",
		},
	})

	cfg := store.Load()

	assert.Equal(t, "dl", cfg.DownloadDirectory)
	assert.Equal(t, "h.csv", cfg.HistoryFile)
	assert.Equal(t, "720p", cfg.DefaultFormat)
	assert.Equal(t, "320", cfg.MP3Quality)
	assert.False(t, cfg.OrganizeDownloads)
	assert.False(t, cfg.DownloadMetadata)
	assert.True(t, cfg.DownloadComments)
	assert.True(t, cfg.DownloadSubtitles)
	assert.Equal(t, 42, cfg.MaxComments)
	assert.Equal(t, "someone", cfg.Authentication.InstagramUsername)
	assert.False(t, cfg.Authentication.UseBrowserCookies)
	assert.Equal(t, "firefox", cfg.Authentication.CookieBrowser)
}

func TestApplyEnvOverrides(t *testing.T) {
	store, _ := testStore(t)
	cfg := DefaultConfig()

	t.Setenv("SMD_DOWNLOAD_DIR", "/tmp/media")
	t.Setenv("SMD_DEFAULT_FORMAT", "1080p")
	t.Setenv("SMD_MP3_QUALITY", "640") // invalid, ignored
	t.Setenv("SMD_MAX_COMMENTS", "50")
	t.Setenv("SMD_COOKIE_BROWSER", "firefox")

	store.ApplyEnv(cfg)

	assert.Equal(t, "/tmp/media", cfg.DownloadDirectory)
	assert.Equal(t, "1080p", cfg.DefaultFormat)
	assert.Equal(t, "192", cfg.MP3Quality)
	assert.Equal(t, 50, cfg.MaxComments)
	assert.Equal(t, "firefox", cfg.Authentication.CookieBrowser)
}
