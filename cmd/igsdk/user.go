package main

import (
	"context"

	"github.com/spf13/cobra"
	"igsdk/pkg/instagram"
)

func newUserCmd(a *app) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Read the authorized user's profile and media",
	}

	var id string
	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Fetch the user profile",
		Long:  `Fetch the user profile of the configured user id, or of --id when given.`,
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

			fetch := client.FetchCurrentUser
			if id != "" {
				fetch = func(ctx context.Context) (instagram.Response, error) {
					return client.FetchUser(ctx, id)
				}
			}
			body, err := fetch(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeResponse(cmd.OutOrStdout(), a.format, body); err != nil {
				return err
			}
			return providerError(body)
		},
	}
	meCmd.Flags().StringVar(&id, "id", "", "user id to fetch instead of the configured one")

	var fields, extraFields []string
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "List the user's media",
		Example: `  # default fields plus timestamp
  igsdk user media --add-field timestamp

  # only ids and captions
  igsdk user media --field id --field caption`,
		Args: cobra.NoArgs,
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

			if len(fields) > 0 {
				client.SetMediaFields(fields)
			}
			for _, f := range extraFields {
				client.AddMediaField(f)
			}

			body, err := client.FetchUserMedia(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeResponse(cmd.OutOrStdout(), a.format, body); err != nil {
				return err
			}
			return providerError(body)
		},
	}
	mediaCmd.Flags().StringSliceVar(&fields, "field", nil, "media fields to request, replacing the configured list")
	mediaCmd.Flags().StringSliceVar(&extraFields, "add-field", nil, "media fields to add to the configured list")

	userCmd.AddCommand(meCmd, mediaCmd)
	return userCmd
}
