package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"smd/pkg/extractor"
	"smd/pkg/storage"
	"smd/pkg/ui"
)

var downloadFormat string

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download a video or audio track from a supported platform",
	Long: `Download media from a single URL.

The configured default format is used unless --format is given. With
the default "show_all" format, the available formats are listed and you
pick one interactively.`,
	Example: `  # Interactive format selection
  smd download https://www.youtube.com/watch?v=dQw4w9WgXcQ

  # Fixed quality
  smd download --format 720p https://vimeo.com/12345

  # Audio only
  smd download --format mp3 https://soundcloud.com/artist/track`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVarP(&downloadFormat, "format", "f", "", "format choice (friendly name, format ID, or yt-dlp selector)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	url := strings.TrimSpace(args[0])
	a := current

	if !storage.IsValidPlatformURL(url, storage.SupportedDomains) {
		a.hist.Record(url, "Failed: Unsupported platform")
		return fmt.Errorf("unsupported platform URL: %s", url)
	}

	ui.PrintInfo("Fetching media info...")
	info, err := a.ext.FetchInfo(cmd.Context(), url)
	if err != nil {
		a.hist.Record(url, fmt.Sprintf("Failed: %v", err))
		return err
	}
	ui.PrintMediaSummary(info)

	choice := downloadFormat
	if choice == "" {
		choice = a.cfg.DefaultFormat
	}
	if strings.EqualFold(choice, "show_all") {
		ui.PrintFormatTable(info)
		choice, err = promptFormatChoice()
		if err != nil {
			return err
		}
	}

	bar := ui.NewDownloadBar(-1, "Downloading")
	a.ext.SetProgressFunc(func(downloaded, total int64) {
		if total > 0 {
			bar.ChangeMax64(total)
		}
		bar.Set64(downloaded)
	})

	path, err := a.ext.Download(cmd.Context(), extractor.Request{
		URL:    url,
		Choice: choice,
		Info:   info,
	})
	bar.Finish()
	if err != nil {
		a.hist.Record(url, fmt.Sprintf("Failed: %v", err))
		return err
	}

	a.hist.Record(url, "Success")
	if path != "" {
		ui.PrintSuccess("Downloaded: %s", path)
	} else {
		ui.PrintSuccess("Downloaded: %s", url)
	}
	return nil
}

func promptFormatChoice() (string, error) {
	fmt.Print("\nEnter format ID to download (or type 'mp3' for audio only): ")
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading format choice: %w", err)
	}
	choice := strings.TrimSpace(input)
	if choice == "" {
		return "", fmt.Errorf("no format selected")
	}
	return choice, nil
}
