package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"igsdk/pkg/config"
	"igsdk/pkg/instagram"
	"igsdk/pkg/logger"
	"igsdk/pkg/ui"
)

// Version information
var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// app carries the global flags and the dependencies commands share
type app struct {
	configFile  string
	format      string
	logLevel    string
	noColor     bool
	quiet       bool
	appID       string
	appSecret   string
	redirectURI string
	accessToken string
	userID      string
	timeout     time.Duration

	// httpClient replaces the default transport, used by tests
	httpClient instagram.Doer
	stdin      io.Reader

	cfg *config.Config
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "igsdk",
		Short: "Instagram OAuth and Graph API companion tool",
		Long: `igsdk walks through Instagram's OAuth flow and reads the user profile
and media endpoints.

Typical flow:
  1. igsdk auth url            open the printed URL and approve the app
  2. igsdk auth exchange CODE  trade the code from the redirect for a token
  3. igsdk auth long-lived     upgrade it to a 60 day token
  4. igsdk user media          list media with that token

Settings come from flags, IGSDK_* environment variables, a .env file and
the config file, in that order of priority.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.SetNoColor(a.noColor)
			ui.SetQuietMode(a.quiet)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "config file (default is $HOME/.config/igsdk/config.yaml)")
	pf.StringVarP(&a.format, "format", "f", "json", "output format (json, yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors and results")
	pf.StringVar(&a.appID, "app-id", "", "Instagram app id")
	pf.StringVar(&a.appSecret, "app-secret", "", "Instagram app secret")
	pf.StringVar(&a.redirectURI, "redirect-uri", "", "OAuth redirect URI registered for the app")
	pf.StringVar(&a.accessToken, "access-token", "", "access token to use")
	pf.StringVar(&a.userID, "user-id", "", "Instagram user id")
	pf.DurationVar(&a.timeout, "timeout", 0, "HTTP timeout (default 30s)")

	rootCmd.SetVersionTemplate(`igsdk {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newAuthCmd(a), newUserCmd(a), newConfigCmd(a))
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	a := &app{stdin: os.Stdin}
	if err := newRootCmd(a).Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func (a *app) flagOverrides() map[string]interface{} {
	flags := make(map[string]interface{})
	if a.appID != "" {
		flags["app-id"] = a.appID
	}
	if a.appSecret != "" {
		flags["app-secret"] = a.appSecret
	}
	if a.redirectURI != "" {
		flags["redirect-uri"] = a.redirectURI
	}
	if a.accessToken != "" {
		flags["access-token"] = a.accessToken
	}
	if a.userID != "" {
		flags["user-id"] = a.userID
	}
	if a.timeout > 0 {
		flags["timeout"] = a.timeout
	}
	if a.logLevel != "" {
		flags["log-level"] = a.logLevel
	}
	return flags
}

// loadConfig loads the configuration once and initializes logging from it
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	cfg, err := config.Load(a.configFile, a.flagOverrides())
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	return cfg, nil
}

// newClient builds an Instagram client from the loaded configuration.
// requireApp enforces app credentials for the OAuth calls.
func (a *app) newClient(requireApp bool) (*instagram.Client, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if requireApp {
		if err := cfg.RequireApp(); err != nil {
			return nil, err
		}
	}

	opts := []instagram.Option{
		instagram.WithTimeout(cfg.HTTP.Timeout),
		instagram.WithLogger(logger.WithField("component", "instagram")),
	}
	if a.httpClient != nil {
		opts = append(opts, instagram.WithHTTPClient(a.httpClient))
	}

	ig := cfg.Instagram
	client := instagram.NewClient(ig.AppID, ig.AppSecret, ig.RedirectURI, opts...)
	if len(ig.Scope) > 0 {
		client.SetScope(ig.Scope)
	}
	if len(ig.MediaFields) > 0 {
		client.SetMediaFields(ig.MediaFields)
	}
	client.SetAccessToken(ig.AccessToken)
	client.SetUserID(ig.UserID)

	logger.WithFields(map[string]interface{}{
		"has_token": ig.AccessToken != "",
		"user_id":   ig.UserID,
	}).Debug("client configured")

	return client, nil
}
