package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smd/internal/downloader"
	"smd/pkg/extractor"
	"smd/pkg/ratelimit"
	"smd/pkg/storage"
	"smd/pkg/ui"
)

var (
	batchWorkers int
	batchFormat  string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Download every URL listed in a text file",
	Long: `Download all URLs from a file, one URL per line. Blank lines
and lines starting with # are skipped. Downloads run concurrently
through a bounded worker pool, one start per second.`,
	Example: `  smd batch urls.txt
  smd batch urls.txt --workers 5 --format 720p`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(&batchWorkers, "workers", downloader.DefaultWorkers, "number of concurrent downloads")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "format choice applied to every URL")
}

// batchDownloader adapts the extractor to the worker pool interface.
type batchDownloader struct {
	ext *extractor.Extractor
}

func (b *batchDownloader) DownloadURL(ctx context.Context, url, choice string) (string, error) {
	return b.ext.Download(ctx, extractor.Request{URL: url, Choice: choice})
}

func runBatch(cmd *cobra.Command, args []string) error {
	a := current

	urls, err := readURLFile(args[0])
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", args[0])
	}

	var valid []string
	for _, url := range urls {
		if !storage.IsValidPlatformURL(url, storage.SupportedDomains) {
			ui.PrintWarning("skipping unsupported URL: %s", url)
			a.hist.Record(url, "Failed: Unsupported platform")
			continue
		}
		valid = append(valid, url)
	}
	if len(valid) == 0 {
		return fmt.Errorf("no supported URLs in %s", args[0])
	}

	ui.PrintInfo("Downloading %d URLs with %d workers", len(valid), batchWorkers)

	format := batchFormat
	if format == "" || strings.EqualFold(format, "show_all") {
		// Interactive selection makes no sense for a batch; fall back
		// to best quality.
		format = "best"
	}

	pool := downloader.NewWorkerPool(
		batchWorkers,
		&batchDownloader{ext: a.ext},
		a.hist,
		ratelimit.NewTokenBucket(1, time.Second),
		a.log,
	)
	pool.Start()

	go func() {
		for _, url := range valid {
			if err := pool.Submit(downloader.Job{URL: url, Choice: format}); err != nil {
				a.log.ErrorWithFields("submit failed", map[string]interface{}{
					"url":   url,
					"error": err.Error(),
				})
			}
		}
		pool.Stop()
	}()

	bar := ui.NewBatchBar(len(valid), "Batch download")
	succeeded, failed := 0, 0
	for result := range pool.Results() {
		bar.Add(1)
		if result.Success {
			succeeded++
		} else {
			failed++
			ui.PrintError("failed: %s: %v", result.Job.URL, result.Error)
		}
	}
	bar.Finish()

	ui.PrintSuccess("Batch complete: %d succeeded, %d failed", succeeded, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(valid))
	}
	return nil
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL file: %w", err)
	}
	return urls, nil
}
