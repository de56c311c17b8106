package app

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

func newTokenInfoCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tokeninfo ACCESS_TOKEN",
		Short: "Introspect an access token",
		Long:  `Look up an access token at the token info endpoint and print the result as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := v.GetString(keyTokenInfoEndpoint)
			if endpoint == "" {
				return errors.New("--token-info-endpoint is required")
			}
			opts, err := clientOptions(cmd, v)
			if err != nil {
				return err
			}

			info, err := oauth2client.GetTokenInfo(cmd.Context(), endpoint, args[0], opts...)
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
}
