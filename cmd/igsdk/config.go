package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"igsdk/pkg/config"
	"igsdk/pkg/ui"
)

const exampleConfig = `# igsdk configuration file
#
# Every value can also be set with an IGSDK_ environment variable,
# for example IGSDK_APP_SECRET or IGSDK_ACCESS_TOKEN.

instagram:
  # From the Basic Display section of the Meta app dashboard
  app_id: ""
  app_secret: ""

  # Must match a Valid OAuth Redirect URI exactly
  redirect_uri: "https://example.com/auth/"

  # Permissions requested by 'igsdk auth url'
  # scope: [user_profile, user_media]

  # Fields requested by 'igsdk user media'
  # media_fields: [id, media_type, media_url, caption, permalink, thumbnail_url]

  # Optional session, usually supplied through the environment
  # access_token: ""
  # user_id: ""

http:
  timeout: 30s

logging:
  # debug, info, warn, error, disabled
  level: warn
  # Log file path, empty logs to stderr
  file: ""
`

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage igsdk configuration files.

Configuration is loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGSDK_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create an example configuration file",
		Long: `Create an example configuration file.

The file is written to the --config path, or to
$HOME/.config/igsdk/config.yaml when no path is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("configuration file already exists: %s", path)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
				return fmt.Errorf("failed to create configuration file: %w", err)
			}

			ui.PrintSuccess("Configuration file created: " + path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging all sources.

Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg.Sanitized())
			if err != nil {
				return fmt.Errorf("failed to format configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration can drive the OAuth flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireApp(); err != nil {
				return err
			}
			if cfg.Instagram.AccessToken == "" {
				ui.PrintWarning("No access token configured", "the user commands will prompt for one")
			}
			ui.PrintSuccess("Configuration is valid")
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd, validateCmd)
	return configCmd
}
