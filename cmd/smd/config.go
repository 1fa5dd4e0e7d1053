package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"smd/pkg/config"
	"smd/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the config file.

Keys use the JSON field names, with a dot for the authentication
block:

  download_directory, history_file, default_format, mp3_quality,
  organize_downloads, download_metadata, download_comments,
  download_subtitles, max_comments,
  authentication.instagram_username, authentication.use_browser_cookies,
  authentication.cookie_browser, authentication.session_directory`,
	Example: `  smd config set default_format 1080p
  smd config set mp3_quality 320
  smd config set authentication.cookie_browser firefox`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a := current
	cfg := a.cfg

	ui.PrintInfo("Config file: %s", a.store.Path())
	fmt.Println()
	fmt.Printf("download_directory: %s\n", cfg.DownloadDirectory)
	fmt.Printf("history_file: %s\n", cfg.HistoryFile)
	fmt.Printf("default_format: %s\n", cfg.DefaultFormat)
	fmt.Printf("mp3_quality: %s\n", cfg.MP3Quality)
	fmt.Printf("organize_downloads: %t\n", cfg.OrganizeDownloads)
	fmt.Printf("download_metadata: %t\n", cfg.DownloadMetadata)
	fmt.Printf("download_comments: %t\n", cfg.DownloadComments)
	fmt.Printf("download_subtitles: %t\n", cfg.DownloadSubtitles)
	fmt.Printf("max_comments: %d\n", cfg.MaxComments)
	fmt.Printf("authentication.instagram_username: %s\n", cfg.Authentication.InstagramUsername)
	fmt.Printf("authentication.use_browser_cookies: %t\n", cfg.Authentication.UseBrowserCookies)
	fmt.Printf("authentication.cookie_browser: %s\n", cfg.Authentication.CookieBrowser)
	fmt.Printf("authentication.session_directory: %s\n", cfg.Authentication.SessionDirectory)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	a := current
	key, value := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])

	if err := applyConfigValue(a.cfg, key, value); err != nil {
		return err
	}
	if err := a.store.Save(a.cfg); err != nil {
		return err
	}

	ui.PrintSuccess("Set %s = %s", key, value)
	return nil
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "download_directory":
		cfg.DownloadDirectory = value
	case "history_file":
		cfg.HistoryFile = value
	case "default_format":
		if !containsFold(config.ValidDefaultFormats, value) {
			return fmt.Errorf("invalid default_format %q (valid: %s)", value, strings.Join(config.ValidDefaultFormats, ", "))
		}
		cfg.DefaultFormat = value
	case "mp3_quality":
		if !containsFold(config.ValidMP3Qualities, value) {
			return fmt.Errorf("invalid mp3_quality %q (valid: %s)", value, strings.Join(config.ValidMP3Qualities, ", "))
		}
		cfg.MP3Quality = value
	case "organize_downloads", "download_metadata", "download_comments", "download_subtitles",
		"authentication.use_browser_cookies":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q for %s", value, key)
		}
		switch key {
		case "organize_downloads":
			cfg.OrganizeDownloads = b
		case "download_metadata":
			cfg.DownloadMetadata = b
		case "download_comments":
			cfg.DownloadComments = b
		case "download_subtitles":
			cfg.DownloadSubtitles = b
		case "authentication.use_browser_cookies":
			cfg.Authentication.UseBrowserCookies = b
		}
	case "max_comments":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 10000 {
			return fmt.Errorf("max_comments must be an integer between 1 and 10000")
		}
		cfg.MaxComments = n
	case "authentication.instagram_username":
		cfg.Authentication.InstagramUsername = value
	case "authentication.cookie_browser":
		cfg.Authentication.CookieBrowser = value
	case "authentication.session_directory":
		cfg.Authentication.SessionDirectory = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
