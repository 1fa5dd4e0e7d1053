package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smd/pkg/logger"
)

func releaseServer(t *testing.T, release Release) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/smd-project/smd/releases/latest", r.URL.Path)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(release))
	}))
	t.Cleanup(server.Close)
	return server
}

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := Version
	Version = v
	t.Cleanup(func() { Version = old })
}

func TestCheckNewerVersionAvailable(t *testing.T) {
	withVersion(t, "1.2.0")
	server := releaseServer(t, Release{
		TagName: "v1.3.0",
		HTMLURL: "https://example.com/releases/v1.3.0",
		Body:    "bug fixes",
	})

	checker := NewCheckerWithBaseURL(server.URL, logger.NewTestLogger())
	status, err := checker.Check(context.Background())
	require.NoError(t, err)

	assert.True(t, status.UpdateAvailable)
	assert.Equal(t, "1.2.0", status.CurrentVersion)
	assert.Equal(t, "1.3.0", status.LatestVersion)
	assert.Equal(t, "https://example.com/releases/v1.3.0", status.ReleaseURL)
	assert.Equal(t, "bug fixes", status.Notes)
}

func TestCheckAlreadyCurrent(t *testing.T) {
	withVersion(t, "v1.3.0")
	server := releaseServer(t, Release{TagName: "v1.3.0"})

	checker := NewCheckerWithBaseURL(server.URL, logger.NewTestLogger())
	status, err := checker.Check(context.Background())
	require.NoError(t, err)

	assert.False(t, status.UpdateAvailable)
	assert.Equal(t, "1.3.0", status.CurrentVersion)
}

func TestCheckOlderRemoteVersion(t *testing.T) {
	withVersion(t, "2.0.0")
	server := releaseServer(t, Release{TagName: "v1.9.9"})

	checker := NewCheckerWithBaseURL(server.URL, logger.NewTestLogger())
	status, err := checker.Check(context.Background())
	require.NoError(t, err)

	assert.False(t, status.UpdateAvailable)
}

func TestCheckDevBuildNeverUpdates(t *testing.T) {
	withVersion(t, "dev")
	server := releaseServer(t, Release{TagName: "v99.0.0"})

	checker := NewCheckerWithBaseURL(server.URL, logger.NewTestLogger())
	status, err := checker.Check(context.Background())
	require.NoError(t, err)

	assert.False(t, status.UpdateAvailable)
	assert.Equal(t, "99.0.0", status.LatestVersion)
}

func TestLatestReleaseAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	checker := NewCheckerWithBaseURL(server.URL, logger.NewTestLogger())
	_, err := checker.latestRelease(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLatestReleaseBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{broken"))
	}))
	t.Cleanup(server.Close)

	checker := NewCheckerWithBaseURL(server.URL, logger.NewTestLogger())
	_, err := checker.latestRelease(context.Background())
	assert.Error(t, err)
}

func TestLatestReleaseUnreachable(t *testing.T) {
	checker := NewCheckerWithBaseURL("http://127.0.0.1:1", logger.NewTestLogger())
	_, err := checker.latestRelease(context.Background())
	assert.Error(t, err)
}
