package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	var (
		grant       grantFlags
		scopes      []string
		queryParams map[string]string
		bodyParams  map[string]string
		raw         bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Request an access token",
		Long: `Request an access token from the token endpoint and print the response as JSON.

Supported grants are client_credentials, password, authorization_code and refresh_token.`,
		Example: `  authmosphere token --access-token-endpoint https://auth.example.com/oauth2/access_token \
    --credentials-dir /meta/credentials --scope uid --scope nucleus.read`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := grant.toGrant()
			if err != nil {
				return err
			}
			opts, err := clientOptions(cmd, v)
			if err != nil {
				return err
			}

			cfg := oauthConfig(v, g)
			cfg.Scopes = scopes
			cfg.QueryParams = queryParams
			cfg.BodyParams = bodyParams

			token, err := oauth2client.GetAccessToken(cmd.Context(), &cfg, opts...)
			if err != nil {
				return err
			}

			if raw {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
				return err
			}
			return printJSON(cmd, token)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&grant.grant, "grant", string(oauth2client.ClientCredentialsGrantType), "Grant type")
	flags.StringVar(&grant.code, "code", "", "Authorization code for the authorization_code grant")
	flags.StringVar(&grant.redirectURI, "redirect-uri", "", "Redirect URI for the authorization_code grant")
	flags.StringVar(&grant.refreshToken, "refresh-token", "", "Refresh token for the refresh_token grant")
	flags.StringSliceVar(&scopes, "scope", nil, "Requested scope, may be repeated")
	flags.StringToStringVar(&queryParams, "query", nil, "Extra query parameter for the token endpoint (key=value)")
	flags.StringToStringVar(&bodyParams, "body", nil, "Extra body parameter for the token request (key=value)")
	flags.BoolVar(&raw, "raw", false, "Print only the access token")

	return cmd
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
