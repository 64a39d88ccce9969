package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/oauth"
	"github.com/custodia-labs/imgscout/internal/logger"
)

const keyAccessToken = "imgur.access_token" //nolint:gosec // config key name

// openBrowser is replaced in tests.
var openBrowser = oauth.OpenBrowser

var (
	authPort      int
	authNoBrowser bool
	authTimeout   time.Duration
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Imgur user token",
	Long: `Sign in to Imgur as a user. Searches then run with your account's
bearer token instead of the anonymous Client-ID.

Register an application at https://api.imgur.com/oauth2/addclient with the
callback URL http://localhost:<port>/callback, then set imgur.client_id and
imgur.client_secret before running auth login.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the browser",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored user token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credential searches use",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().IntVar(&authPort, "port", 8085, "loopback port for the OAuth callback")
	authLoginCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the sign-in URL without opening a browser")
	authLoginCmd.Flags().DurationVar(&authTimeout, "timeout", 5*time.Minute, "how long to wait for the browser callback")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	if svc.Exchanger == nil {
		return errors.New("sign-in is not available in this build")
	}

	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	if settings.Catalog.ClientID == "" || settings.Catalog.ClientSecret == "" {
		return errors.New("imgur.client_id and imgur.client_secret must be set first (see imgscout config set)")
	}

	state, err := oauth.NewState()
	if err != nil {
		return err
	}
	callback := oauth.NewCallbackServer(authPort, state)
	if err := callback.Start(); err != nil {
		return fmt.Errorf("starting callback listener: %w", err)
	}
	defer func() {
		if err := callback.Stop(); err != nil {
			logger.Warn("stopping callback listener: %v", err)
		}
	}()

	exchanger := svc.Exchanger(settings.Catalog)
	redirect := callback.RedirectURI()
	authURL := exchanger.AuthCodeURL(state, redirect)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Open this URL to sign in:\n\n  %s\n\n", authURL)
	if !authNoBrowser {
		if err := openBrowser(authURL); err != nil {
			logger.Warn("opening browser: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
	defer cancel()

	code, err := callback.Wait(ctx)
	if err != nil {
		return err
	}
	token, err := exchanger.Exchange(ctx, code, redirect)
	if err != nil {
		return err
	}
	if err := svc.Settings.Set(keyAccessToken, token.AccessToken); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	if token.Account != "" {
		fmt.Fprintf(out, "Signed in as %s.\n", token.Account)
	} else {
		fmt.Fprintln(out, "Signed in.")
	}
	if !token.Expiry.IsZero() {
		fmt.Fprintf(out, "Token expires %s.\n", token.Expiry.Local().Format(time.DateTime))
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	if err := svc.Settings.Set(keyAccessToken, ""); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case settings.Catalog.AccessToken != "":
		fmt.Fprintf(out, "User token %s\n", maskAPIKey(settings.Catalog.AccessToken))
	case settings.Catalog.ClientID != "":
		fmt.Fprintf(out, "Anonymous, Client-ID %s\n", maskAPIKey(settings.Catalog.ClientID))
	default:
		fmt.Fprintln(out, "No credentials configured. Set imgur.client_id to search.")
	}
	return nil
}
