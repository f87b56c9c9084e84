package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gradewatch/pkg/auth"
	"gradewatch/pkg/browser"
	"gradewatch/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the portal session and login credentials",
	Long: `Manage how gradewatch gets into the portal.

A stored browser session is used first. When it has expired, gradewatch
logs in again with credentials taken from, in order:
  - HP_USERNAME / HP_PASSWORD (environment or config file)
  - the system keychain (see 'gradewatch auth login')
  - a sealed credentials file, when GRADEWATCH_SESSION_PASSPHRASE is set`,
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Log in manually in a browser window and save the session",
	Long: `Open a visible browser on the portal, let you log in by hand (useful when
the SSO gateway asks for a second factor) and save the resulting session to
the data directory.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store portal credentials in the system keychain",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials and the saved session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where credentials and the session come from",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var logoutKeepSession bool

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(captureCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	logoutCmd.Flags().BoolVar(&logoutKeepSession, "keep-session", false, "only remove credentials")
}

func runCapture(cmd *cobra.Command, args []string) error {
	a, err := newApp(false, nil)
	if err != nil {
		return err
	}
	if a.cfg.Portal.URL == "" {
		return errors.New("portal URL is required (HP_URL or --config)")
	}

	browserCfg := a.cfg.Browser
	browserCfg.Headless = false
	browserCfg.BlockedTypes = nil

	ctx := cmd.Context()
	b, err := browser.Launch(ctx, &browserCfg, a.log)
	if err != nil {
		return err
	}
	defer b.Close()

	page, err := b.NewPage(ctx, nil)
	if err != nil {
		return err
	}

	navCtx, cancel := context.WithTimeout(ctx, a.cfg.Portal.NavigationTimeout)
	err = page.Navigate(navCtx, a.cfg.Portal.URL)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", a.cfg.Portal.URL, err)
	}

	ui.PrintBanner()
	auth.ShowCaptureGuide(a.cfg.Portal.URL, a.sessions.Path())
	if _, err := prompt("Press ENTER once logged in >> "); err != nil {
		return err
	}

	state, err := page.StorageState(ctx)
	if err != nil {
		return fmt.Errorf("failed to read browser session: %w", err)
	}
	if err := a.sessions.Save(state); err != nil {
		return err
	}

	ui.PrintSuccess("Session saved")
	ui.PrintInfo("Path", a.sessions.Path())
	ui.PrintInfo("Cookies", itoa(len(state.Cookies)))
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(false, nil)
	if err != nil {
		return err
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		username, err = prompt("Portal username: ")
		if err != nil {
			return err
		}
	}
	if username == "" {
		return errors.New("username is required")
	}

	if existing, _ := a.creds.Retrieve(); existing != nil && existing.Username != username {
		if !confirm(fmt.Sprintf("Credentials for '%s' are already stored. Replace them?", existing.Username)) {
			return nil
		}
	}

	fmt.Print("Portal password: ")
	password, err := readPassword()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	account := &auth.Account{Username: username, Password: password, LastModified: time.Now()}
	if err := a.creds.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess("Credentials stored for " + username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(false, nil)
	if err != nil {
		return err
	}

	if err := a.creds.Delete(); err != nil {
		if !errors.Is(err, auth.ErrCredentialsNotFound) {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		ui.PrintWarning("No stored credentials")
	} else {
		ui.PrintSuccess("Credentials removed")
	}

	if logoutKeepSession {
		return nil
	}
	if err := a.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	ui.PrintSuccess("Session removed")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(false, nil)
	if err != nil {
		return err
	}

	ui.PrintHighlight("Credentials")
	t := ui.NewTable(cmd.OutOrStdout())
	t.AppendHeader([]interface{}{"Source", "Username", "Found"})
	for _, st := range a.creds.Status() {
		user := "-"
		if st.Found {
			user = st.Username
		}
		t.AppendRow([]interface{}{st.Store, user, st.Found})
	}
	t.Render()

	ui.PrintHighlight("Session")
	ui.PrintInfo("Path", a.sessions.Path())
	if !a.sessions.Exists() {
		ui.PrintWarning("No saved session")
		return nil
	}
	state, err := a.sessions.Load()
	if err != nil {
		ui.PrintError("Saved session is unusable", err)
		return nil
	}
	ui.PrintInfo("Cookies", itoa(len(state.Cookies)))
	ui.PrintInfo("Origins", itoa(len(state.Origins)))
	return nil
}
