// Package app implements the authmosphere commands.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zalando-incubator/authmosphere-sub000/httpclient"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// EnvPrefix is prepended to every setting read from the environment,
// e.g. AUTHMOSPHERE_ACCESS_TOKEN_ENDPOINT.
const EnvPrefix = "AUTHMOSPHERE"

const (
	keyConfig              = "config"
	keyDebug               = "debug"
	keyAccessTokenEndpoint = "access-token-endpoint"
	keyTokenInfoEndpoint   = "token-info-endpoint"
	keyCredentialsDir      = "credentials-dir"
	keyClientID            = "client-id"
	keyClientSecret        = "client-secret"
	keyUsername            = "username"
	keyPassword            = "password"
	keyTimeout             = "timeout"
	keyCAFile              = "ca-file"
	keyCertFile            = "cert-file"
	keyKeyFile             = "key-file"
	keyTokens              = "tokens"
)

// NewRootCmd creates the authmosphere root command with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "authmosphere",
		Short: "Obtain and inspect OAuth2 access tokens",
		Long: `authmosphere requests access tokens from an OAuth2 token endpoint and introspects
them at a token info endpoint.

Settings are read from flags, from AUTHMOSPHERE_* environment variables and from an
optional configuration file, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			path := v.GetString(keyConfig)
			if path == "" {
				return nil
			}
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(keyConfig, "c", "", "Path to a configuration file (yaml, json or toml)")
	flags.Bool(keyDebug, false, "Enable debug logging")
	flags.String(keyAccessTokenEndpoint, "", "OAuth2 token endpoint URL")
	flags.String(keyTokenInfoEndpoint, "", "OAuth2 token info endpoint URL")
	flags.String(keyCredentialsDir, "", "Directory containing client.json and user.json")
	flags.String(keyClientID, "", "Client id, used when no credentials directory is set")
	flags.String(keyClientSecret, "", "Client secret, used when no credentials directory is set")
	flags.String(keyUsername, "", "Resource owner username for the password grant")
	flags.String(keyPassword, "", "Resource owner password for the password grant")
	flags.Duration(keyTimeout, 10*time.Second, "Timeout of a single request to the authorization server")
	flags.String(keyCAFile, "", "CA certificate used to verify the authorization server")
	flags.String(keyCertFile, "", "Client certificate for mTLS to the authorization server")
	flags.String(keyKeyFile, "", "Client private key for mTLS to the authorization server")
	// Every persistent flag exists, so binding cannot fail.
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(newTokenCmd(v))
	rootCmd.AddCommand(newTokenInfoCmd(v))
	rootCmd.AddCommand(newRefreshCmd(v))

	return rootCmd
}

// newLogger writes human readable log lines to the command's error stream.
func newLogger(cmd *cobra.Command, v *viper.Viper) oauth2client.Logger {
	level := zerolog.InfoLevel
	if v.GetBool(keyDebug) {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return oauth2client.NewZerologLogger(logger)
}

// clientOptions configures the HTTP client and logger used for requests to the authorization server.
func clientOptions(cmd *cobra.Command, v *viper.Viper) ([]oauth2client.Option, error) {
	builder := httpclient.NewBuilder().WithTimeout(v.GetDuration(keyTimeout))

	caFile, certFile, keyFile := v.GetString(keyCAFile), v.GetString(keyCertFile), v.GetString(keyKeyFile)
	if caFile != "" || certFile != "" || keyFile != "" {
		builder = builder.WithTLS(caFile, certFile, keyFile)
	}

	client, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return []oauth2client.Option{
		oauth2client.WithHTTPClient(client),
		oauth2client.WithLogger(newLogger(cmd, v)),
	}, nil
}
