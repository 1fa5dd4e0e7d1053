package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"smd/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Instagram credentials",
	Long: `Manage the stored Instagram credential.

The password is stored in the system keychain when one is available,
with an encrypted file as fallback. The username lives in the config
file; only the password is treated as a secret.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store the Instagram username and password",
	Example: `  # Interactive login
  smd auth login

  # Username given up front, password prompted
  smd auth login myusername`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether Instagram credentials are configured",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Instagram credential",
	RunE:  runAuthLogout,
}

// cookieBrowsers are the browsers yt-dlp can read cookies from.
var cookieBrowsers = []string{
	"brave", "chrome", "chromium", "edge", "firefox", "opera", "safari", "vivaldi",
}

var authBrowserCmd = &cobra.Command{
	Use:   "browser <name>",
	Short: "Choose the browser to read cookies from",
	Long: `Choose which browser's cookies yt-dlp uses for authenticated
downloads. Supported: ` + strings.Join(cookieBrowsers, ", ") + `.`,
	Example: `  smd auth browser firefox`,
	Args:    cobra.ExactArgs(1),
	RunE:    runAuthBrowser,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authBrowserCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a := current

	var username string
	if len(args) > 0 {
		username = strings.TrimSpace(args[0])
	}
	if username == "" {
		fmt.Print("Instagram username: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		username = strings.TrimSpace(input)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Instagram password (hidden): ")
	password, err := readPassword()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if err := a.authMgr.StorePassword(password); err != nil {
		return err
	}

	a.cfg.Authentication.InstagramUsername = username
	if err := a.store.Save(a.cfg); err != nil {
		return err
	}

	ui.PrintSuccess("Credentials stored for %s", username)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	a := current

	username := a.cfg.Authentication.InstagramUsername
	if a.authMgr.Authenticated(username) {
		ui.PrintSuccess("Logged in as %s", username)
	} else if username != "" {
		ui.PrintWarning("Username configured (%s) but no stored password", username)
	} else {
		ui.PrintInfo("No Instagram credentials configured. Run 'smd auth login'.")
	}

	if a.cfg.Authentication.UseBrowserCookies {
		ui.PrintInfo("Browser cookies enabled (%s)", a.cfg.Authentication.CookieBrowser)
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a := current

	if err := a.authMgr.Delete(); err != nil {
		return err
	}
	a.cfg.Authentication.InstagramUsername = ""
	if err := a.store.Save(a.cfg); err != nil {
		return err
	}

	ui.PrintSuccess("Credentials removed")
	return nil
}

func runAuthBrowser(cmd *cobra.Command, args []string) error {
	a := current
	name := strings.ToLower(strings.TrimSpace(args[0]))

	if !containsFold(cookieBrowsers, name) {
		return fmt.Errorf("unsupported browser %q (supported: %s)", args[0], strings.Join(cookieBrowsers, ", "))
	}

	a.cfg.Authentication.CookieBrowser = name
	a.cfg.Authentication.UseBrowserCookies = true
	if err := a.store.Save(a.cfg); err != nil {
		return err
	}

	ui.PrintSuccess("Cookie browser set to %s", name)
	return nil
}

// readPassword reads a password from stdin without echoing.
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback for piped stdin
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
