package main

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"
	"igsdk/pkg/instagram"
	"igsdk/pkg/logger"
	"igsdk/pkg/ui"
)

func newAuthCmd(a *app) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Run the Instagram OAuth flow",
		Long: `Run the Instagram OAuth flow step by step.

Tokens are printed, never stored. Export the one you want to keep as
IGSDK_ACCESS_TOKEN or put it in the config file.`,
	}

	var state string
	urlCmd := &cobra.Command{
		Use:   "url",
		Short: "Print the authorization URL",
		Long: `Print the URL that asks the user to authorize the app.

A random state value is generated unless --state is given. Compare it with the
state query parameter Instagram sends back to the redirect URI.`,
		Example: `  igsdk auth url --app-id 990602627938098 --redirect-uri https://example.com/auth/`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(true)
			if err != nil {
				return err
			}
			if state == "" {
				if state, err = gonanoid.New(); err != nil {
					return fmt.Errorf("failed to generate state: %w", err)
				}
			}

			ui.PrintInfo("State", state)
			fmt.Fprintln(cmd.OutOrStdout(), client.AuthorizationURL(state))
			ui.PrintHighlight("Open the URL above, approve the app, then run 'igsdk auth exchange' with the code from the redirect")
			return nil
		},
	}
	urlCmd.Flags().StringVar(&state, "state", "", "state value to round-trip through the redirect")

	exchangeCmd := &cobra.Command{
		Use:     "exchange <code>",
		Short:   "Exchange an authorization code for a short-lived token",
		Example: `  igsdk auth exchange AQBx-hBsH3...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(true)
			if err != nil {
				return err
			}
			body, err := client.ExchangeCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.finishToken(cmd, body)
		},
	}

	longLivedCmd := &cobra.Command{
		Use:   "long-lived",
		Short: "Exchange a short-lived token for a long-lived token",
		Long: `Exchange a short-lived token (about one hour) for a long-lived token
(about 60 days). expires_in in the output is the absolute expiry time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(true)
			if err != nil {
				return err
			}
			token, err := a.ensureAccessToken(client.AccessToken())
			if err != nil {
				return err
			}
			client.SetAccessToken(token)

			body, err := client.ExchangeLongLivedToken(cmd.Context())
			if err != nil {
				return err
			}
			return a.finishToken(cmd, body)
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh a long-lived token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(false)
			if err != nil {
				return err
			}
			token, err := a.ensureAccessToken(client.AccessToken())
			if err != nil {
				return err
			}
			client.SetAccessToken(token)

			body, err := client.RefreshToken(cmd.Context())
			if err != nil {
				return err
			}
			return a.finishToken(cmd, body)
		},
	}

	authCmd.AddCommand(urlCmd, exchangeCmd, longLivedCmd, refreshCmd)
	return authCmd
}

// finishToken prints a token body and reports provider errors
func (a *app) finishToken(cmd *cobra.Command, body instagram.Response) error {
	if err := writeResponse(cmd.OutOrStdout(), a.format, body); err != nil {
		return err
	}
	if err := providerError(body); err != nil {
		return err
	}

	token, err := instagram.ParseToken(body)
	if err != nil {
		return err
	}
	logger.WithField("user_id", token.UserID).Info("token issued")

	if !token.ExpiresAt.IsZero() {
		ui.PrintInfo("Expires", token.ExpiresAt.Format(instagram.ExpiryLayout))
	}
	ui.PrintSuccess("Export the token with: export IGSDK_ACCESS_TOKEN=<access_token>")
	return nil
}
