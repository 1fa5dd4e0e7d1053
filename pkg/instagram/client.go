package instagram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smd/pkg/config"
	errs "smd/pkg/errors"
	"smd/pkg/extractor"
	"smd/pkg/history"
	"smd/pkg/logger"
	"smd/pkg/ratelimit"
	"smd/pkg/storage"
)

// Client drives Instagram downloads. It leans on the extractor for the
// actual transfer; its own job is shortcode handling, URL validation
// and uploader-based path organization.
type Client struct {
	cfg     *config.Config
	ext     *extractor.Extractor
	hist    *history.Log
	limiter ratelimit.Limiter
	log     logger.Logger
}

// NewClient creates an Instagram client.
func NewClient(cfg *config.Config, ext *extractor.Extractor, hist *history.Log, log logger.Logger) *Client {
	return &Client{
		cfg:     cfg,
		ext:     ext,
		hist:    hist,
		limiter: ratelimit.NewTokenBucket(1, time.Second),
		log:     log,
	}
}

// ValidateURL checks that the URL points at a supported Instagram
// domain.
func ValidateURL(url string) error {
	if !storage.IsValidPlatformURL(url, storage.InstagramDomains) {
		return errs.New(errs.ErrorTypeValidation, "not an Instagram URL")
	}
	return nil
}

// DownloadPost downloads a single Instagram post, organizing output
// under the post owner's name.
func (c *Client) DownloadPost(ctx context.Context, url string) (string, error) {
	if err := ValidateURL(url); err != nil {
		c.hist.Record(url, "Failed: Invalid Instagram URL")
		return "", err
	}

	shortcode := ExtractShortcode(url)
	if shortcode == "" {
		c.hist.Record(url, "Failed: Invalid URL format")
		return "", errs.New(errs.ErrorTypeValidation, "could not extract shortcode from URL")
	}

	info, err := c.ext.FetchInfo(ctx, url)
	if err != nil {
		c.hist.Record(url, fmt.Sprintf("Failed: %v", err))
		return "", err
	}

	path, err := c.ext.Download(ctx, extractor.Request{
		URL:              url,
		Info:             info,
		UploaderOverride: info.BestUploader(),
	})
	if err != nil {
		c.hist.Record(url, fmt.Sprintf("Failed: %v", err))
		return "", err
	}

	c.hist.Record(url, "Success")
	return path, nil
}

// ExtractMP3 downloads the audio track of an Instagram video as MP3,
// named instagram_<shortcode>.mp3.
func (c *Client) ExtractMP3(ctx context.Context, url string) (string, error) {
	if err := ValidateURL(url); err != nil {
		c.hist.Record(url, "Failed: Invalid Instagram URL")
		return "", err
	}

	shortcode := ExtractShortcode(url)
	if shortcode == "" {
		c.hist.Record(url, "Failed: Invalid URL format")
		return "", errs.New(errs.ErrorTypeValidation, "could not extract shortcode from URL")
	}

	info, err := c.ext.FetchInfo(ctx, url)
	if err != nil {
		c.hist.Record(url, fmt.Sprintf("Failed: %v", err))
		return "", err
	}

	path, err := c.ext.Download(ctx, extractor.Request{
		URL:              url,
		Choice:           "mp3",
		Info:             info,
		UploaderOverride: info.BestUploader(),
		FilenameBase:     "instagram_" + shortcode,
	})
	if err != nil {
		c.hist.Record(url, fmt.Sprintf("Failed: %v", err))
		return "", err
	}

	c.hist.Record(url, "Success")
	return path, nil
}

// DownloadSaved downloads a set of collected post links, pacing one
// download per second. It returns the number of successful downloads.
func (c *Client) DownloadSaved(ctx context.Context, links []string) int {
	success := 0
	for i, url := range links {
		if ctx.Err() != nil {
			break
		}
		c.limiter.Wait()

		c.log.InfoWithFields("downloading saved post", map[string]interface{}{
			"index": i + 1,
			"total": len(links),
			"url":   url,
		})

		if _, err := c.DownloadPost(ctx, url); err != nil {
			c.log.ErrorWithFields("saved post download failed", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
			continue
		}
		success++
	}
	return success
}

// SessionDir ensures the configured session directory exists with
// owner-only permissions and returns its path.
func (c *Client) SessionDir() (string, error) {
	dir := c.cfg.Authentication.SessionDirectory
	if dir == "" {
		dir = ".smd_sessions"
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errs.Wrap(errs.ErrorTypeIO, "creating session directory", err)
	}
	return filepath.Clean(dir), nil
}
