package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"smd/pkg/browser"
	"smd/pkg/instagram"
	"smd/pkg/ui"
)

var savedMaxPosts int

var instagramCmd = &cobra.Command{
	Use:   "instagram",
	Short: "Instagram-specific download flows",
}

var igPostCmd = &cobra.Command{
	Use:     "post <url>",
	Short:   "Download a single Instagram post",
	Example: `  smd instagram post https://www.instagram.com/p/Cxyz123/`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newInstagramClient()
		path, err := client.DownloadPost(cmd.Context(), strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		ui.PrintSuccess("Downloaded Instagram post: %s", pathOrURL(path, args[0]))
		return nil
	},
}

var igMP3Cmd = &cobra.Command{
	Use:     "mp3 <url>",
	Short:   "Extract the audio of an Instagram video as MP3",
	Example: `  smd instagram mp3 https://www.instagram.com/reel/Cxyz123/`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newInstagramClient()
		path, err := client.ExtractMP3(cmd.Context(), strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		ui.PrintSuccess("Extracted MP3: %s", pathOrURL(path, args[0]))
		return nil
	},
}

var igSavedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Download your saved Instagram posts",
	Long: `Open a browser window, wait for you to log into Instagram,
then collect links from your saved-posts grid and download them.

The browser must stay open until collection finishes. Downloads use
cookies from your configured browser, so stay logged in there too.`,
	RunE: runSaved,
}

func init() {
	rootCmd.AddCommand(instagramCmd)
	instagramCmd.AddCommand(igPostCmd)
	instagramCmd.AddCommand(igMP3Cmd)
	instagramCmd.AddCommand(igSavedCmd)

	igSavedCmd.Flags().IntVar(&savedMaxPosts, "max", 50, "maximum number of saved posts to download")
}

func newInstagramClient() *instagram.Client {
	a := current
	return instagram.NewClient(a.cfg, a.ext, a.hist, a.log)
}

func runSaved(cmd *cobra.Command, args []string) error {
	a := current
	ctx := cmd.Context()

	session, err := browser.NewSession(a.log)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.OpenInstagram(ctx); err != nil {
		return err
	}

	ui.PrintInfo("Log into Instagram in the opened browser window.")
	fmt.Print("Press Enter when you are logged in... ")
	bufio.NewReader(os.Stdin).ReadString('\n')

	username := session.DetectUsername(ctx)
	if username == "" {
		username = a.cfg.Authentication.InstagramUsername
	}
	if username == "" {
		return fmt.Errorf("could not detect Instagram username; set authentication.instagram_username in the config")
	}
	ui.PrintInfo("Collecting saved posts for @%s...", username)

	links, err := session.CollectSavedPosts(ctx, username, savedMaxPosts)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		ui.PrintWarning("no saved posts found")
		return nil
	}
	ui.PrintInfo("Found %d saved posts", len(links))

	client := newInstagramClient()
	success := client.DownloadSaved(ctx, links)
	ui.PrintSuccess("Downloaded %d/%d saved posts", success, len(links))
	return nil
}

func pathOrURL(path, url string) string {
	if path != "" {
		return path
	}
	return url
}
