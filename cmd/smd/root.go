package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"smd/pkg/auth"
	"smd/pkg/config"
	"smd/pkg/extractor"
	"smd/pkg/history"
	"smd/pkg/logger"
	"smd/pkg/storage"
	"smd/pkg/ui"
	"smd/pkg/update"
)

var (
	// Global flags
	configFile string
	logLevel   string
	logFile    string
	noColor    bool
	quiet      bool
)

// app bundles the collaborators every command needs. It is built once
// in PersistentPreRunE after flags are parsed.
type app struct {
	store     *config.Store
	cfg       *config.Config
	organizer *storage.Organizer
	ext       *extractor.Extractor
	hist      *history.Log
	authMgr   *auth.Manager
	log       logger.Logger
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "smd",
	Short: "Download media from social platforms via yt-dlp",
	Long: `smd downloads videos, audio and posts from YouTube, TikTok,
Instagram, Facebook, X and other supported platforms.

Media extraction is delegated to yt-dlp; smd adds organized download
directories, format selection, batch downloads, download history and
Instagram-specific flows.`,
	Version: update.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.SetNoColor(noColor)
		ui.SetQuiet(quiet)
		ui.PrintBanner()

		if err := logger.Initialize(logger.Options{
			Level:   logLevel,
			File:    logFile,
			Console: !quiet,
		}); err != nil {
			return err
		}
		log := logger.GetLogger()

		store := config.NewStore(configFile, log)
		cfg := store.Load()
		store.ApplyEnv(cfg)

		organizer := storage.NewOrganizer(cfg.DownloadDirectory, cfg.OrganizeDownloads)
		ext := extractor.New(cfg, organizer, log)
		hist := history.New(cfg.HistoryFile, log)

		key, err := auth.LoadOrCreateKey(auth.DefaultKeyFile)
		if err != nil {
			return err
		}
		vault := auth.NewVault(key, auth.DefaultCredentialsFile, log)

		current = &app{
			store:     store,
			cfg:       cfg,
			organizer: organizer,
			ext:       ext,
			hist:      hist,
			authMgr:   auth.NewManager(vault, log),
			log:       log,
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.json", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(fmt.Sprintf(`smd {{.Version}}
Go Version: %s
OS/Arch: %s/%s
`, runtime.Version(), runtime.GOOS, runtime.GOARCH))

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
