package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

func newRefreshCmd(v *viper.Viper) *cobra.Command {
	var (
		grant          grantFlags
		specs          []string
		percentageLeft float64
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Obtain every configured named token",
		Long: `Fill a token cache with one token per configured name and print the cached tokens
as a JSON object keyed by name. Every token was checked at the token info endpoint, but the
printed value is the token endpoint response plus its local_expiry.

Names come from the "tokens" key of the configuration file and from --token flags.`,
		Example: `  authmosphere refresh --token nucleus=uid,nucleus.read --token halo=halo.read`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens, err := parseTokenSpecs(v, specs)
			if err != nil {
				return err
			}
			g, err := grant.toGrant()
			if err != nil {
				return err
			}
			opts, err := clientOptions(cmd, v)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, v)

			cache, err := oauth2client.NewTokenCache(oauth2client.TokenCacheConfig{
				Tokens:         tokens,
				OAuth:          oauthConfig(v, g),
				PercentageLeft: percentageLeft,
			}, opts...)
			if err != nil {
				return err
			}

			result, err := cache.RefreshAllTokens(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range sortedNames(result) {
				logger.Info("token refreshed", "name", name, "expires_in", result[name].ExpiresIn)
			}
			return printJSON(cmd, result)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&grant.grant, "grant", string(oauth2client.ClientCredentialsGrantType), "Grant type")
	flags.StringArrayVar(&specs, "token", nil, "Named token as name=scope1,scope2, may be repeated")
	flags.Float64Var(&percentageLeft, "percentage-left", 0, "Share of the lifetime left when a token is renewed (0 selects the default)")

	return cmd
}
