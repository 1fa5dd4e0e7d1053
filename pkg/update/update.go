// Package update checks GitHub releases for a newer build.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goversion "github.com/mcuadros/go-version"

	errs "smd/pkg/errors"
	"smd/pkg/logger"
	"smd/pkg/retry"
)

// Version is the build version, overridden at link time.
var Version = "dev"

const (
	defaultBaseURL = "https://api.github.com"
	repoOwner      = "smd-project"
	repoName       = "smd"
)

// Release is the subset of the GitHub release payload we read.
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
	Body    string `json:"body"`
}

// Status is the outcome of an update check.
type Status struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
	Notes           string
}

// Checker queries the GitHub releases API.
type Checker struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

// NewChecker creates a Checker against the public GitHub API.
func NewChecker(log logger.Logger) *Checker {
	return &Checker{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// NewCheckerWithBaseURL creates a Checker against a custom API base,
// used in tests.
func NewCheckerWithBaseURL(baseURL string, log logger.Logger) *Checker {
	c := NewChecker(log)
	c.baseURL = baseURL
	return c
}

// Check fetches the latest release and compares it to the running
// version. Network failures come back as errors; callers degrade to a
// logged message, never a crash.
func (c *Checker) Check(ctx context.Context) (*Status, error) {
	release, err := retry.DoWithResult(func() (*Release, error) {
		return c.latestRelease(ctx)
	}, &retry.Config{
		MaxAttempts: 3,
		Backoff:     retry.DefaultExponentialBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.log,
	})
	if err != nil {
		return nil, err
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(Version, "v")

	status := &Status{
		CurrentVersion: current,
		LatestVersion:  latest,
		ReleaseURL:     release.HTMLURL,
		Notes:          release.Body,
	}
	if current != "dev" {
		status.UpdateAvailable = goversion.CompareSimple(latest, current) > 0
	}

	c.log.DebugWithFields("update check complete", map[string]interface{}{
		"current": current,
		"latest":  latest,
	})
	return status, nil
}

func (c *Checker) latestRelease(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, repoOwner, repoName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "building release request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "fetching latest release", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errs.New(errs.ErrorTypeNetwork,
			fmt.Sprintf("GitHub API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeValidation, "decoding release payload", err)
	}
	return &release, nil
}
